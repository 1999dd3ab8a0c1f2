package router

import (
	"fmt"
	"io"
	"log"
	"strings"

	"planetgen.ai/internal/density"
)

// IncompleteRouterError names the slots that were never set.
type IncompleteRouterError struct {
	Planet string
	Slots  []Slot
}

func (e *IncompleteRouterError) Error() string {
	names := make([]string, len(e.Slots))
	for i, s := range e.Slots {
		names[i] = string(s)
	}
	if e.Planet == "" {
		return "router: missing slots " + strings.Join(names, ",")
	}
	return fmt.Sprintf("router %s: missing slots %s", e.Planet, strings.Join(names, ","))
}

// Builder collects slot functions for one planet. Calls chain; the first
// invalid function or unknown slot is reported by Build.
type Builder struct {
	planet string
	logger *log.Logger
	funcs  map[Slot]density.Func
	err    error
}

func NewBuilder(planetID string, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Builder{planet: planetID, logger: logger, funcs: map[Slot]density.Func{}}
}

func (b *Builder) Planet() string { return b.planet }

// Set assigns f to slot s, replacing any earlier assignment.
func (b *Builder) Set(s Slot, f density.Func) *Builder {
	if b.err != nil {
		return b
	}
	if !knownSlot(s) {
		b.err = fmt.Errorf("router %s: unknown slot %q", b.planet, s)
		return b
	}
	if err := f.Err(); err != nil {
		b.err = fmt.Errorf("router %s: slot %s: %w", b.planet, s, err)
		return b
	}
	b.funcs[s] = f
	return b
}

func (b *Builder) Barrier(f density.Func) *Builder      { return b.Set(Barrier, f) }
func (b *Builder) Continents(f density.Func) *Builder   { return b.Set(Continents, f) }
func (b *Builder) Depth(f density.Func) *Builder        { return b.Set(Depth, f) }
func (b *Builder) Erosion(f density.Func) *Builder      { return b.Set(Erosion, f) }
func (b *Builder) FinalDensity(f density.Func) *Builder { return b.Set(FinalDensity, f) }
func (b *Builder) FluidLevelFloodedness(f density.Func) *Builder {
	return b.Set(FluidLevelFloodedness, f)
}
func (b *Builder) FluidLevelSpread(f density.Func) *Builder { return b.Set(FluidLevelSpread, f) }
func (b *Builder) InitialDensityWithoutJaggedness(f density.Func) *Builder {
	return b.Set(InitialDensityWithoutJaggedness, f)
}
func (b *Builder) Lava(f density.Func) *Builder        { return b.Set(Lava, f) }
func (b *Builder) Ridges(f density.Func) *Builder      { return b.Set(Ridges, f) }
func (b *Builder) Temperature(f density.Func) *Builder { return b.Set(Temperature, f) }
func (b *Builder) Vegetation(f density.Func) *Builder  { return b.Set(Vegetation, f) }
func (b *Builder) VeinGap(f density.Func) *Builder     { return b.Set(VeinGap, f) }
func (b *Builder) VeinRidged(f density.Func) *Builder  { return b.Set(VeinRidged, f) }
func (b *Builder) VeinToggle(f density.Func) *Builder  { return b.Set(VeinToggle, f) }

// Missing returns the unset slots in wire order.
func (b *Builder) Missing() []Slot {
	var out []Slot
	for _, s := range Slots {
		if _, ok := b.funcs[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// Build returns the router with every unset slot defaulted to constant 0.
// Defaulted slots are logged; only invalid slot functions fail.
func (b *Builder) Build() (NoiseRouterConfig, error) {
	if b.err != nil {
		return NoiseRouterConfig{}, b.err
	}
	if missing := b.Missing(); len(missing) > 0 {
		b.logger.Printf("router %s: defaulting %d slot(s) to constant 0: %v", b.planet, len(missing), missing)
	}
	return b.snapshot(), nil
}

// BuildStrict is Build without defaulting.
func (b *Builder) BuildStrict() (NoiseRouterConfig, error) {
	if b.err != nil {
		return NoiseRouterConfig{}, b.err
	}
	if missing := b.Missing(); len(missing) > 0 {
		return NoiseRouterConfig{}, &IncompleteRouterError{Planet: b.planet, Slots: missing}
	}
	return b.snapshot(), nil
}

func (b *Builder) snapshot() NoiseRouterConfig {
	var c NoiseRouterConfig
	for i, s := range Slots {
		f, ok := b.funcs[s]
		if !ok {
			f = density.Const(0)
		}
		c.funcs[i] = f
	}
	return c
}
