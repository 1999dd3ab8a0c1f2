package datapack

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Kind names a datapack document type.
type Kind string

const (
	KindNoiseSettings Kind = "noise_settings"
	KindNoise         Kind = "noise"
	KindDimension     Kind = "dimension"
	KindDimensionType Kind = "dimension_type"
)

var kinds = []Kind{KindNoiseSettings, KindNoise, KindDimension, KindDimensionType}

const schemaBase = "https://planetgen.ai/schemas/"

// Validator checks rendered documents against the embedded draft-07 schemas.
type Validator struct {
	schemas map[Kind]*jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	for _, k := range kinds {
		b, err := schemaFS.ReadFile("schemas/" + string(k) + ".schema.json")
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(schemaBase+string(k)+".schema.json", bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("datapack: schema %s: %w", k, err)
		}
	}
	v := &Validator{schemas: map[Kind]*jsonschema.Schema{}}
	for _, k := range kinds {
		s, err := c.Compile(schemaBase + string(k) + ".schema.json")
		if err != nil {
			return nil, fmt.Errorf("datapack: compile %s: %w", k, err)
		}
		v.schemas[k] = s
	}
	return v, nil
}

// Validate checks one encoded document of the given kind.
func (v *Validator) Validate(kind Kind, data []byte) error {
	s, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("datapack: unknown document kind %q", kind)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("datapack: %s: %w", kind, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("datapack: %s: %w", kind, err)
	}
	return nil
}
