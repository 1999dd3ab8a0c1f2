package noise

import (
	"math"
	"math/rand"
	"testing"

	"planetgen.ai/internal/density"
)

var _ density.NoiseSource = (*Registry)(nil)

func TestDefinitionFor(t *testing.T) {
	cases := map[string]int{
		"adastramekanized:moon_continents":  -9,
		"adastramekanized:moon_lava_tunnel": -7,
		"adastramekanized:moon_lava_rarity": -11,
		"x:deep_space_jagged":               -16,
		"minecraft:offset":                  -3,
	}
	for id, first := range cases {
		d, ok := DefinitionFor(id)
		if !ok || d.FirstOctave != first {
			t.Fatalf("%s: %+v %v", id, d, ok)
		}
	}
	if _, ok := DefinitionFor("x:moon_teapot"); ok {
		t.Fatalf("unknown noise resolved")
	}
	if _, err := DefinitionsFor([]string{"x:moon_erosion", "x:moon_teapot"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDefinitionIsCopied(t *testing.T) {
	d, _ := DefinitionFor("x:a_river")
	d.Amplitudes[0] = 42
	again, _ := DefinitionFor("x:a_river")
	if again.Amplitudes[0] == 42 {
		t.Fatalf("definition table aliased")
	}
}

func TestRegistryIsDeterministicAndBounded(t *testing.T) {
	ids := []string{"x:p_continents", "x:p_cheese", "minecraft:offset"}
	a, err := ForIDs(7, ids)
	if err != nil {
		t.Fatalf("ForIDs: %v", err)
	}
	b, _ := ForIDs(7, ids)
	c, _ := ForIDs(8, ids)
	rng := rand.New(rand.NewSource(1))
	differs := false
	for i := 0; i < 200; i++ {
		x, y, z := rng.Float64()*1e4, rng.Float64()*300, rng.Float64()*1e4
		for _, id := range ids {
			sa, _ := a.Sampler(id)
			sb, _ := b.Sampler(id)
			sc, _ := c.Sampler(id)
			va := sa.Sample(x, y, z)
			if va != sb.Sample(x, y, z) {
				t.Fatalf("%s not deterministic", id)
			}
			if math.Abs(va) > 1.0001 || math.IsNaN(va) {
				t.Fatalf("%s = %v out of range", id, va)
			}
			differs = differs || va != sc.Sample(x, y, z)
		}
	}
	if !differs {
		t.Fatalf("seed has no effect")
	}
	if _, ok := a.Sampler("x:missing"); ok {
		t.Fatalf("missing id resolved")
	}
}

func TestRegistryDrivesCompiledDensity(t *testing.T) {
	r, err := ForIDs(1, []string{"x:p_erosion"})
	if err != nil {
		t.Fatalf("ForIDs: %v", err)
	}
	p, err := density.Compile(density.NoiseFunc("x:p_erosion", 0.25, 0).Abs().Node(), density.Env{Noises: r})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if v := p.ComputeAt(100, 64, -30); v < 0 || v > 1 {
		t.Fatalf("abs(erosion) = %v", v)
	}
}

func TestValidate(t *testing.T) {
	for name, d := range map[string]Definition{
		"empty":  {FirstOctave: -3},
		"zeros":  {FirstOctave: -3, Amplitudes: []float64{0, 0}},
		"nan":    {FirstOctave: -3, Amplitudes: []float64{math.NaN()}},
		"kind":   {FirstOctave: -3, Amplitudes: []float64{1}, Kind: "value"},
		"octave": {FirstOctave: -40, Amplitudes: []float64{1}},
	} {
		if err := d.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
