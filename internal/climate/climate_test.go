package climate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("t:biome_%d", i)
	}
	return out
}

func TestSingleBiome(t *testing.T) {
	m, err := BuildBiomeMap([]string{"highlands"}, FillLast)
	if err != nil {
		t.Fatalf("BuildBiomeMap: %v", err)
	}
	es := m.Entries()
	if len(es) != 1 || es[0].Biome != "highlands" || es[0].Point != Full() {
		t.Fatalf("entries = %+v", es)
	}
	if es[0].Point.Temperature != Span(-1, 1) || es[0].Point.Depth != Span(0, 1) {
		t.Fatalf("point = %+v", es[0].Point)
	}
}

func TestTwoBiomeSplit(t *testing.T) {
	m, err := BuildBiomeMap([]string{"cold_biome", "hot_biome"}, FillLast)
	if err != nil {
		t.Fatalf("BuildBiomeMap: %v", err)
	}
	es := m.Entries()
	if len(es) != 2 {
		t.Fatalf("entries = %d", len(es))
	}
	if es[0].Biome != "cold_biome" || es[0].Point != Full().With(Temperature, Span(-1, 0)) {
		t.Fatalf("cold = %+v", es[0])
	}
	if es[1].Biome != "hot_biome" || es[1].Point != Full().With(Temperature, Span(0, 1)) {
		t.Fatalf("hot = %+v", es[1])
	}
	// 0 belongs to the upper half only, 1 to the upper half as the axis bound
	cases := map[float32]string{-1: "cold_biome", -0.001: "cold_biome", 0: "hot_biome", 1: "hot_biome"}
	for temp, want := range cases {
		if got, ok := m.Lookup(NewTarget(temp, 0, 0, 0, 0.5, 0)); !ok || got != want {
			t.Fatalf("temperature %v -> %q, want %q", temp, got, want)
		}
	}
}

func TestTemperatureBands(t *testing.T) {
	m, err := BuildBiomeMap(names(4), FillLast)
	if err != nil {
		t.Fatalf("BuildBiomeMap: %v", err)
	}
	want := []Parameter{{-1, -0.5}, {-0.5, 0}, {0, 0.5}, {0.5, 1}}
	for i, e := range m.Entries() {
		if e.Point.Temperature != want[i] || e.Point.Humidity != Humidity.Bounds() {
			t.Fatalf("band %d = %+v", i, e.Point)
		}
	}
}

func TestCoverageTotality(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 6, 7, 9, 10} {
		m, err := BuildBiomeMap(names(n), FillLast)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if err := CheckCoverage(m); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		got := map[string]bool{}
		for _, b := range m.Biomes() {
			got[b] = true
		}
		if len(got) != n {
			t.Fatalf("n=%d: %d distinct biomes mapped", n, len(got))
		}
	}
}

func TestSevenBiomeGrid(t *testing.T) {
	filled, err := BuildBiomeMap(names(7), FillLast)
	if err != nil {
		t.Fatalf("fill_last: %v", err)
	}
	if filled.Len() != 9 || filled.FilledCells() != 2 {
		t.Fatalf("fill_last: %d entries, %d filled", filled.Len(), filled.FilledCells())
	}
	last := filled.Entries()
	if last[7].Biome != "t:biome_6" || last[8].Biome != "t:biome_6" {
		t.Fatalf("leftover cells = %s, %s", last[7].Biome, last[8].Biome)
	}

	gappy, err := BuildBiomeMap(names(7), Preserve)
	if err != nil {
		t.Fatalf("preserve: %v", err)
	}
	if gappy.Len() != 7 {
		t.Fatalf("preserve: %d entries", gappy.Len())
	}
	var ge *CoverageGapError
	if err := CheckCoverage(gappy); !errors.As(err, &ge) {
		t.Fatalf("expected CoverageGapError, got %v", err)
	}
	// 2 of 9 temperature x humidity cells are missing
	if ge.Total != 9 || ge.Cells != 2 {
		t.Fatalf("gap = %+v", ge)
	}
	// the nearest rectangle still answers inside the gap
	if got := gappy.Resolve(ge.Example); got == "" {
		t.Fatalf("no fallback for %v", ge.Example)
	}
}

func TestFirstRegisteredWins(t *testing.T) {
	m, err := NewBuilder().
		Add("t:first", Full().With(Erosion, Span(-0.5, 0.5))).
		Add("t:second", Full()).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := m.Resolve(NewTarget(0, 0, 0, 0, 0.5, 0)); got != "t:first" {
		t.Fatalf("overlap resolved to %s", got)
	}
	if got := m.Resolve(NewTarget(0, 0, 0, 0.9, 0.5, 0)); got != "t:second" {
		t.Fatalf("outside first resolved to %s", got)
	}
}

func TestNearestFallbackUsesOffset(t *testing.T) {
	m, err := NewBuilder().
		Add("t:cold", Full().With(Temperature, Span(-1, -0.5))).
		Add("t:hot", ParameterPoint{
			Temperature: Span(0.5, 1), Humidity: Humidity.Bounds(), Continentalness: Continentalness.Bounds(),
			Erosion: Erosion.Bounds(), Depth: Depth.Bounds(), Weirdness: Weirdness.Bounds(), Offset: 0.2,
		}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// equidistant on temperature; the offset pushes hot away
	if got := m.Resolve(NewTarget(0, 0, 0, 0, 0.5, 0)); got != "t:cold" {
		t.Fatalf("resolved to %s", got)
	}
	if got := m.Resolve(NewTarget(0.3, 0, 0, 0, 0.5, 0)); got != "t:hot" {
		t.Fatalf("resolved to %s", got)
	}
}

func TestMoonMap(t *testing.T) {
	m, err := MoonBiomeMap("t")
	if err != nil {
		t.Fatalf("MoonBiomeMap: %v", err)
	}
	if err := CheckCoverage(m); err != nil {
		t.Fatalf("moon coverage: %v", err)
	}
	cases := []struct {
		target Target
		want   string
	}{
		{NewTarget(-0.9, 0, 0, 0, 0.5, 0), "t:" + MoonPolar},
		{NewTarget(1, 0, 0, 0, 0.5, 0), "t:" + MoonPolar},
		{NewTarget(0, 0, 0.6, 0.8, 0.5, 0.7), "t:" + MoonCraterRim},
		{NewTarget(0, 0, -0.6, -0.6, 0.1, 0), "t:" + MoonCraterFloor},
		{NewTarget(0, 0, 0, 0, 0.05, 0), "t:" + MoonMaria},
		{NewTarget(0, 0.5, 0, 0, 0.5, 0), "t:" + MoonHighlands},
	}
	for _, c := range cases {
		if got := m.Resolve(c.target); got != c.want {
			t.Fatalf("%v -> %s, want %s", c.target, got, c.want)
		}
	}
}

func TestResolveAlwaysAnswers(t *testing.T) {
	m, _ := MoonBiomeMap("t")
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		var tg Target
		for a := range tg {
			tg[a] = float32(rng.Float64()*4 - 2)
		}
		if m.Resolve(tg) == "" {
			t.Fatalf("no biome for %v", tg)
		}
	}
}

func TestBuilderValidation(t *testing.T) {
	if _, err := NewBuilder().Add("t:x", Full().With(Depth, Span(-0.5, 1))).Build(); err == nil {
		t.Fatalf("depth below 0 accepted")
	}
	if _, err := NewBuilder().Add("t:x", Full().With(Erosion, Span(0.5, 0))).Build(); err == nil {
		t.Fatalf("inverted range accepted")
	}
	if _, err := NewBuilder().Add("", Full()).Build(); err == nil {
		t.Fatalf("empty biome accepted")
	}
	if _, err := BuildBiomeMap([]string{"a", "a"}, FillLast); err == nil {
		t.Fatalf("duplicate biome accepted")
	}
	if _, err := BuildBiomeMap(names(3), "scatter"); err == nil {
		t.Fatalf("unknown policy accepted")
	}
}

func TestBiomeSourceRoundTrip(t *testing.T) {
	m, _ := MoonBiomeMap("t")
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := DecodeBiomeSource(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a, b := m.Entries(), back.Entries()
	if len(a) != len(b) {
		t.Fatalf("entries %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("entry %d: %+v vs %+v", i, a[i], b[i])
		}
	}
	var point struct {
		Biomes []struct {
			Parameters map[string]json.RawMessage `json:"parameters"`
		} `json:"biomes"`
	}
	single, _ := NewBuilder().Add("t:x", Full().With(Weirdness, Point(0))).Build()
	raw, _ := json.Marshal(single)
	if err := json.Unmarshal(raw, &point); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := string(point.Biomes[0].Parameters["weirdness"]); got != "0" {
		t.Fatalf("point parameter encoded as %s", got)
	}
}
