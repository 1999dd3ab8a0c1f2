package climate

import (
	"fmt"
	"math"
)

type GapPolicy string

const (
	// FillLast assigns grid cells left over after the last biome to it.
	FillLast GapPolicy = "fill_last"
	// Preserve leaves leftover grid cells unmapped.
	Preserve GapPolicy = "preserve"
)

func (p GapPolicy) Valid() bool { return p == FillLast || p == Preserve }

// BuildBiomeMap partitions climate space among biomes:
//
//	1     the whole space
//	2     temperature halves [-1, 0) and [0, 1]
//	3..5  equal temperature bands
//	6+    a ceil(sqrt(n)) square grid over temperature x humidity, row-major
func BuildBiomeMap(biomes []string, policy GapPolicy) (*ParameterMap, error) {
	if len(biomes) == 0 {
		return nil, fmt.Errorf("climate: no biomes")
	}
	if policy == "" {
		policy = FillLast
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("climate: unknown gap policy %q", policy)
	}
	seen := map[string]bool{}
	for _, b := range biomes {
		if b == "" {
			return nil, fmt.Errorf("climate: empty biome id")
		}
		if seen[b] {
			return nil, fmt.Errorf("climate: duplicate biome %q", b)
		}
		seen[b] = true
	}

	n := len(biomes)
	m := &ParameterMap{}
	switch {
	case n == 1:
		m.entries = []Entry{{Point: Full(), Biome: biomes[0]}}
	case n == 2:
		m.entries = []Entry{
			{Point: Full().With(Temperature, Span(-1, 0)), Biome: biomes[0]},
			{Point: Full().With(Temperature, Span(0, 1)), Biome: biomes[1]},
		}
	case n <= 5:
		for i, b := range biomes {
			m.entries = append(m.entries, Entry{Point: Full().With(Temperature, band(i, n)), Biome: b})
		}
	default:
		g := int(math.Ceil(math.Sqrt(float64(n))))
		for cell := 0; cell < g*g; cell++ {
			biome := ""
			if cell < n {
				biome = biomes[cell]
			} else if policy == FillLast {
				biome = biomes[n-1]
				m.filled++
			} else {
				continue
			}
			p := Full().
				With(Temperature, band(cell/g, g)).
				With(Humidity, band(cell%g, g))
			m.entries = append(m.entries, Entry{Point: p, Biome: biome})
		}
	}
	return m, nil
}

// band is the i-th of n equal slices of [-1, 1]; the last ends exactly at 1.
func band(i, n int) Parameter {
	edge := func(k int) float32 {
		if k >= n {
			return 1
		}
		return float32(-1 + 2*float64(k)/float64(n))
	}
	return Parameter{edge(i), edge(i + 1)}
}
