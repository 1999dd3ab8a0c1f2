package density

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a malformed builder argument. It is fatal for
// the planet being configured.
type ConfigurationError struct {
	Op     string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("density: %s: %s", e.Op, e.Reason)
}

func configErr(op, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// UnresolvedReferenceError lists ids a resolver could not supply when a tree
// was compiled for sampling.
type UnresolvedReferenceError struct {
	Noises     []string
	References []string
}

func (e *UnresolvedReferenceError) Error() string {
	var parts []string
	if len(e.Noises) > 0 {
		parts = append(parts, "noises "+strings.Join(e.Noises, ","))
	}
	if len(e.References) > 0 {
		parts = append(parts, "references "+strings.Join(e.References, ","))
	}
	return "density: unresolved " + strings.Join(parts, "; ")
}
