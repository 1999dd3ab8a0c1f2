package router

import (
	"encoding/json"
	"fmt"

	"planetgen.ai/internal/density"
)

type Slot string

const (
	Barrier                         Slot = "barrier"
	Continents                      Slot = "continents"
	Depth                           Slot = "depth"
	Erosion                         Slot = "erosion"
	FinalDensity                    Slot = "final_density"
	FluidLevelFloodedness           Slot = "fluid_level_floodedness"
	FluidLevelSpread                Slot = "fluid_level_spread"
	InitialDensityWithoutJaggedness Slot = "initial_density_without_jaggedness"
	Lava                            Slot = "lava"
	Ridges                          Slot = "ridges"
	Temperature                     Slot = "temperature"
	Vegetation                      Slot = "vegetation"
	VeinGap                         Slot = "vein_gap"
	VeinRidged                      Slot = "vein_ridged"
	VeinToggle                      Slot = "vein_toggle"
)

// Slots lists every router slot in wire order.
var Slots = []Slot{
	Barrier, Continents, Depth, Erosion, FinalDensity,
	FluidLevelFloodedness, FluidLevelSpread, InitialDensityWithoutJaggedness,
	Lava, Ridges, Temperature, Vegetation, VeinGap, VeinRidged, VeinToggle,
}

func knownSlot(s Slot) bool {
	for _, k := range Slots {
		if k == s {
			return true
		}
	}
	return false
}

// NoiseRouterConfig holds one density function per slot. A value returned by
// Builder.Build has every slot populated and shares nothing mutable.
type NoiseRouterConfig struct {
	funcs [15]density.Func
}

func slotIndex(s Slot) int {
	for i, k := range Slots {
		if k == s {
			return i
		}
	}
	return -1
}

// Get returns the function in slot s.
func (c NoiseRouterConfig) Get(s Slot) density.Func {
	i := slotIndex(s)
	if i < 0 {
		return density.Func{}
	}
	return c.funcs[i]
}

// Node is shorthand for Get(s).Node().
func (c NoiseRouterConfig) Node(s Slot) density.Node { return c.Get(s).Node() }

// MarshalJSON writes the slots as an object in wire order.
func (c NoiseRouterConfig) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, s := range Slots {
		data, err := c.funcs[i].Build()
		if err != nil {
			return nil, fmt.Errorf("router: slot %s: %w", s, err)
		}
		if i > 0 {
			buf = append(buf, ',')
		}
		key, _ := json.Marshal(string(s))
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, data...)
	}
	return append(buf, '}'), nil
}

// Decode parses a router object. Every slot must be present.
func Decode(data []byte) (NoiseRouterConfig, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return NoiseRouterConfig{}, fmt.Errorf("router: %w", err)
	}
	var c NoiseRouterConfig
	var missing []Slot
	for i, s := range Slots {
		v, ok := raw[string(s)]
		if !ok {
			missing = append(missing, s)
			continue
		}
		n, err := density.Decode(v)
		if err != nil {
			return NoiseRouterConfig{}, fmt.Errorf("router: slot %s: %w", s, err)
		}
		c.funcs[i] = density.Wrap(n)
	}
	if len(missing) > 0 {
		return NoiseRouterConfig{}, &IncompleteRouterError{Slots: missing}
	}
	return c, nil
}
