package climate

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON writes a single value for a point range and [min, max]
// otherwise.
func (p Parameter) MarshalJSON() ([]byte, error) {
	if p.Min == p.Max {
		return json.Marshal(p.Min)
	}
	return json.Marshal([2]float32{p.Min, p.Max})
}

func (p *Parameter) UnmarshalJSON(data []byte) error {
	var v float32
	if err := json.Unmarshal(data, &v); err == nil {
		*p = Parameter{v, v}
		return nil
	}
	var pair [2]float32
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("climate: parameter: %w", err)
	}
	*p = Parameter{pair[0], pair[1]}
	return nil
}

type pointWire struct {
	Temperature     Parameter `json:"temperature"`
	Humidity        Parameter `json:"humidity"`
	Continentalness Parameter `json:"continentalness"`
	Erosion         Parameter `json:"erosion"`
	Depth           Parameter `json:"depth"`
	Weirdness       Parameter `json:"weirdness"`
	Offset          float32   `json:"offset"`
}

type entryWire struct {
	Biome      string    `json:"biome"`
	Parameters pointWire `json:"parameters"`
}

type sourceWire struct {
	Type   string      `json:"type"`
	Biomes []entryWire `json:"biomes"`
}

const multiNoise = "minecraft:multi_noise"

// MarshalJSON writes the map as a multi_noise biome source.
func (m *ParameterMap) MarshalJSON() ([]byte, error) {
	src := sourceWire{Type: multiNoise, Biomes: make([]entryWire, len(m.entries))}
	for i, e := range m.entries {
		src.Biomes[i] = entryWire{Biome: e.Biome, Parameters: pointWire(e.Point)}
	}
	return json.Marshal(src)
}

// DecodeBiomeSource parses a multi_noise biome source, keeping entry order.
func DecodeBiomeSource(data []byte) (*ParameterMap, error) {
	var src sourceWire
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("climate: %w", err)
	}
	if src.Type != multiNoise {
		return nil, fmt.Errorf("climate: biome source type %q, want %s", src.Type, multiNoise)
	}
	b := NewBuilder()
	for _, e := range src.Biomes {
		b.Add(e.Biome, ParameterPoint(e.Parameters))
	}
	return b.Build()
}
