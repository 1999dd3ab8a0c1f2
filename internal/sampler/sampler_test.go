package sampler

import (
	"context"
	"errors"
	"testing"

	"planetgen.ai/internal/density"
	"planetgen.ai/internal/planet"
	"planetgen.ai/internal/presets"
)

func moonSampler(t *testing.T) (*Sampler, *planet.Artifact) {
	t.Helper()
	cfg, _ := planet.Load("")
	spec, _ := cfg.Find("moon")
	cat, _ := presets.Default()
	a, err := planet.AssemblePlanet(cfg.Namespace, spec, cat, nil)
	if err != nil {
		t.Fatalf("AssemblePlanet: %v", err)
	}
	reg, err := a.Registry(42)
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	s, err := New(a, reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, a
}

func TestColumnIsWithinBounds(t *testing.T) {
	s, a := moonSampler(t)
	known := map[string]bool{}
	for _, b := range a.Biomes.Biomes() {
		known[b] = true
	}
	for _, xz := range [][2]int{{0, 0}, {517, -90}, {-4000, 2500}} {
		c := s.Column(xz[0], xz[1])
		if c.Surface < a.Spec.MinY-1 || c.Surface >= a.Spec.MaxY {
			t.Fatalf("surface %d outside world", c.Surface)
		}
		if !known[c.Biome] {
			t.Fatalf("unknown biome %q", c.Biome)
		}
		if s.Column(xz[0], xz[1]) != c {
			t.Fatalf("column not deterministic")
		}
	}
}

func TestSurfaceIsTopSolidBlock(t *testing.T) {
	s, _ := moonSampler(t)
	for _, xz := range [][2]int{{3, 9}, {-120, 64}} {
		y := s.Surface(xz[0], xz[1])
		fx, fz := float64(xz[0]), float64(xz[1])
		if y >= s.maxY-1 {
			continue
		}
		if s.final.ComputeAt(fx, float64(y+1), fz) > 0 {
			t.Fatalf("block above surface %d is solid", y)
		}
		if y >= s.minY && s.final.ComputeAt(fx, float64(y), fz) <= 0 {
			t.Fatalf("surface %d is not solid", y)
		}
	}
}

func TestSampleRegionMatchesColumns(t *testing.T) {
	s, _ := moonSampler(t)
	r := Region{X: -32, Z: 16, Width: 5, Depth: 3, Stride: 16}
	cols, err := s.SampleRegion(context.Background(), r, 4)
	if err != nil {
		t.Fatalf("SampleRegion: %v", err)
	}
	if len(cols) != 15 {
		t.Fatalf("columns = %d", len(cols))
	}
	for idx, c := range cols {
		want := s.Column(r.X+(idx%r.Width)*r.Stride, r.Z+(idx/r.Width)*r.Stride)
		if c != want {
			t.Fatalf("column %d = %+v, want %+v", idx, c, want)
		}
	}
}

func TestSampleRegionCancelled(t *testing.T) {
	s, _ := moonSampler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.SampleRegion(ctx, Region{Width: 64, Depth: 64, Stride: 1}, 2)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.SampleRegion(context.Background(), Region{Width: 0, Depth: 1, Stride: 1}, 1); err == nil {
		t.Fatalf("empty region accepted")
	}
}

type yNoise struct{}

func (yNoise) Sampler(id string) (density.NoiseSampler, bool) { return yNoise{}, id == "test:y" }

func (yNoise) Sample(x, y, z float64) float64 { return y }

func TestSurfaceFindsThinLayer(t *testing.T) {
	for _, layer := range [][2]float64{{13, 14}, {40, 42}, {63, 64}, {0, 1}} {
		f := density.NoiseFunc("test:y", 1, 1).RangeChoice(layer[0], layer[1], density.Const(1), density.Const(-1))
		p, err := density.Compile(f.Node(), density.Env{Noises: yNoise{}})
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		s := &Sampler{minY: 0, maxY: 64, final: p}
		want := int(layer[1]) - 1
		if got := s.Surface(5, -5); got != want {
			t.Fatalf("layer %v: surface = %d, want %d", layer, got, want)
		}
	}
	p, err := density.Compile(density.Const(-1).Node(), density.Env{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	s := &Sampler{minY: -16, maxY: 64, final: p}
	if got := s.Surface(0, 0); got != -17 {
		t.Fatalf("empty column surface = %d", got)
	}
}

func TestRegionValidateRejectsOverflow(t *testing.T) {
	for _, r := range []Region{
		{Width: 3 << 61, Depth: 4, Stride: 1},
		{Width: 4, Depth: 3 << 61, Stride: 1},
		{Width: MaxRegionColumns + 1, Depth: 1, Stride: 1},
		{Width: 1025, Depth: 1024, Stride: 1},
	} {
		if err := r.Validate(); err == nil {
			t.Fatalf("region %dx%d accepted", r.Width, r.Depth)
		}
	}
	if err := (Region{Width: 1024, Depth: 1024, Stride: 1}).Validate(); err != nil {
		t.Fatalf("max region rejected: %v", err)
	}
	if _, err := (&Sampler{}).SampleRegion(context.Background(), Region{Width: 3 << 61, Depth: 4, Stride: 1}, 1); err == nil {
		t.Fatalf("SampleRegion accepted overflowing region")
	}
}
