package noise

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Kind string

const (
	Simplex Kind = "simplex"
	Perlin  Kind = "perlin"
)

// Definition is an octave noise as the host declares it: octave i samples at
// frequency 2^(FirstOctave+i) with weight Amplitudes[i]. Kind selects the
// reference generator and is not part of the wire form.
type Definition struct {
	FirstOctave int       `json:"firstOctave" yaml:"first_octave"`
	Amplitudes  []float64 `json:"amplitudes" yaml:"amplitudes"`
	Kind        Kind      `json:"-" yaml:"kind"`
}

func (d Definition) Validate() error {
	if len(d.Amplitudes) == 0 {
		return fmt.Errorf("noise: no amplitudes")
	}
	nonZero := false
	for _, a := range d.Amplitudes {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("noise: amplitude %v is not finite", a)
		}
		nonZero = nonZero || a != 0
	}
	if !nonZero {
		return fmt.Errorf("noise: all amplitudes are zero")
	}
	if d.FirstOctave < -30 || d.FirstOctave > 10 {
		return fmt.Errorf("noise: first octave %d out of range", d.FirstOctave)
	}
	switch d.Kind {
	case "", Simplex, Perlin:
	default:
		return fmt.Errorf("noise: unknown kind %q", d.Kind)
	}
	return nil
}

func def(first int, kind Kind, amps ...float64) Definition {
	return Definition{FirstOctave: first, Amplitudes: amps, Kind: kind}
}

// planetNoises holds the definitions of per-planet noises, keyed by the
// name that follows the planet prefix in the id.
var planetNoises = map[string]Definition{
	"continents":  def(-9, Simplex, 1, 1, 2, 2, 2, 1, 1, 1, 1),
	"erosion":     def(-9, Simplex, 1, 1, 0, 1, 1),
	"ridges":      def(-7, Simplex, 1, 2, 1, 0, 0, 0),
	"temperature": def(-10, Simplex, 1.5, 0, 1, 0, 0, 0),
	"vegetation":  def(-8, Simplex, 1, 1, 0, 0, 0, 0),
	"islands":     def(-8, Simplex, 1, 1),
	"river":       def(-7, Simplex, 1, 1),
	"jagged":      def(-16, Perlin, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1),
	"cheese":      def(-8, Perlin, 0.5, 1, 2, 1, 2, 1, 0, 2, 0),
	"noodle":      def(-8, Perlin, 1),
	"lava_tunnel": def(-7, Perlin, 1),
	"lava_rarity": def(-11, Simplex, 1),
}

// hostNoises are the host's own noises, keyed by full id.
var hostNoises = map[string]Definition{
	"minecraft:offset":                          def(-3, Simplex, 1, 1, 1, 0),
	"minecraft:aquifer_barrier":                 def(-3, Simplex, 1),
	"minecraft:aquifer_fluid_level_floodedness": def(-7, Simplex, 1),
	"minecraft:aquifer_fluid_level_spread":      def(-5, Simplex, 1),
	"minecraft:aquifer_lava":                    def(-1, Simplex, 1),
	"minecraft:ore_veininess":                   def(-8, Simplex, 1),
	"minecraft:ore_vein_a":                      def(-7, Simplex, 1),
	"minecraft:ore_vein_b":                      def(-7, Simplex, 1),
	"minecraft:ore_gap":                         def(-5, Simplex, 1),
}

// DefinitionFor returns the default definition for a noise id. Planet ids
// (namespace:planet_name) match on the longest known name suffix.
func DefinitionFor(id string) (Definition, bool) {
	if d, ok := hostNoises[id]; ok {
		return d.clone(), true
	}
	i := strings.IndexByte(id, ':')
	if i < 0 {
		return Definition{}, false
	}
	path := id[i+1:]
	best := ""
	for name := range planetNoises {
		if (path == name || strings.HasSuffix(path, "_"+name)) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return Definition{}, false
	}
	return planetNoises[best].clone(), true
}

// DefinitionsFor resolves every id, failing on the first unknown one.
func DefinitionsFor(ids []string) (map[string]Definition, error) {
	out := make(map[string]Definition, len(ids))
	var unknown []string
	for _, id := range ids {
		d, ok := DefinitionFor(id)
		if !ok {
			unknown = append(unknown, id)
			continue
		}
		out[id] = d
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("noise: no definition for %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

func (d Definition) clone() Definition {
	d.Amplitudes = append([]float64(nil), d.Amplitudes...)
	return d
}
