package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"hash/fnv"
	"log"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"planetgen.ai/internal/density"
	"planetgen.ai/internal/presets"
)

type wave struct{ k float64 }

func (w wave) Sample(x, y, z float64) float64 {
	return math.Sin(x*0.013*w.k+y*0.021) * math.Cos(z*0.017+w.k)
}

// anyNoise resolves every id to a smooth deterministic field.
type anyNoise struct{}

func (anyNoise) Sampler(id string) (density.NoiseSampler, bool) {
	h := fnv.New32a()
	h.Write([]byte(id))
	return wave{k: 1 + float64(h.Sum32()%97)/31}, true
}

func program(t *testing.T, f density.Func) *density.Program {
	t.Helper()
	p, err := density.Compile(f.Node(), density.Env{Noises: anyNoise{}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return p
}

func containsNoise(n density.Node, id string) bool {
	for _, got := range density.NoiseIDs(n) {
		if got == id {
			return true
		}
	}
	return false
}

func TestMoonCarvers(t *testing.T) {
	moon, err := CreateTectonicTerrain("moon", -64, 320, 63, presets.Moon())
	if err != nil {
		t.Fatalf("CreateTectonicTerrain: %v", err)
	}
	if !moon.Config.LavaTunnels || moon.Config.CheeseCaves {
		t.Fatalf("moon config = %+v", moon.Config)
	}
	chain := density.Operands(moon.Router.Node(FinalDensity), density.OpMin)
	if len(chain) != 2 {
		t.Fatalf("min chain has %d operands, want base + lava", len(chain))
	}
	lava := NoiseID(DefaultNamespace, "moon", "lava_tunnel")
	cheese := NoiseID(DefaultNamespace, "moon", "cheese")
	var sawLava bool
	for _, op := range chain {
		if containsNoise(op, cheese) {
			t.Fatalf("cheese carver present on the moon")
		}
		sawLava = sawLava || containsNoise(op, lava)
	}
	if !sawLava {
		t.Fatalf("lava tunnel carver missing")
	}
}

func TestOffsetClamp(t *testing.T) {
	one := density.Const(1)
	raw := density.SumOf(one.MulConst(ContinentWeight), one.MulConst(ErosionWeight), one.MulConst(RidgeWeight))
	if got := program(t, raw).ComputeAt(0, 0, 0); !mgl64.FloatEqualThreshold(got, 3.5, 1e-12) {
		t.Fatalf("unclamped offset = %v", got)
	}
	if got := program(t, TerrainOffset(one, one, one)).ComputeAt(0, 0, 0); got != OffsetMax {
		t.Fatalf("clamped offset = %v, want %v", got, OffsetMax)
	}
	neg := density.Const(-1)
	if got := program(t, TerrainOffset(neg, neg, neg)).ComputeAt(0, 0, 0); got != OffsetMin {
		t.Fatalf("clamped offset = %v, want %v", got, OffsetMin)
	}
}

func TestCarvingLaw(t *testing.T) {
	earth, err := CreateTectonicTerrain("earth", -64, 320, 63, presets.EarthLike())
	if err != nil {
		t.Fatalf("CreateTectonicTerrain: %v", err)
	}
	if len(earth.Carvers) != 3 {
		t.Fatalf("carvers = %d", len(earth.Carvers))
	}
	carved := program(t, earth.Carved)
	base := program(t, earth.Base)
	carvers := make([]*density.Program, len(earth.Carvers))
	for i, c := range earth.Carvers {
		carvers[i] = program(t, c.Func)
	}
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 300; i++ {
		p := mgl64.Vec3{rng.Float64()*4000 - 2000, float64(rng.Intn(384) - 64), rng.Float64()*4000 - 2000}
		want := base.Compute(p)
		for _, c := range carvers {
			want = math.Min(want, c.Compute(p))
		}
		if got := carved.Compute(p); got != want {
			t.Fatalf("at %v: final %v != min %v", p, got, want)
		}
	}
}

func TestDepthCrossesZeroAtSeaLevel(t *testing.T) {
	g := density.YGradient(-64, 320, DepthTop, DepthBottom(-64, 320, 63))
	p := program(t, g)
	if got := p.ComputeAt(0, 63, 0); !mgl64.FloatEqualThreshold(got, 0, 1e-9) {
		t.Fatalf("depth at sea level = %v", got)
	}
	if p.ComputeAt(0, 62, 0) <= 0 || p.ComputeAt(0, 64, 0) >= 0 {
		t.Fatalf("depth gradient does not change sign at sea level")
	}
	if got := p.ComputeAt(0, -64, 0); got != DepthTop {
		t.Fatalf("depth at min_y = %v", got)
	}
}

func TestInitialDensityHasNoJaggedness(t *testing.T) {
	mars, err := CreateTectonicTerrain("mars", -64, 256, 40, presets.Mars())
	if err != nil {
		t.Fatalf("CreateTectonicTerrain: %v", err)
	}
	jagged := NoiseID(DefaultNamespace, "mars", "jagged")
	if containsNoise(mars.Router.Node(InitialDensityWithoutJaggedness), jagged) {
		t.Fatalf("initial density samples %s", jagged)
	}
	if !containsNoise(mars.Router.Node(FinalDensity), jagged) {
		t.Fatalf("final density lacks %s", jagged)
	}
	if len(mars.Decorations) != 1 || mars.Decorations[0].Name != DesertDunes {
		t.Fatalf("decorations = %+v", mars.Decorations)
	}
}

func TestCreateRejectsBadBounds(t *testing.T) {
	for _, c := range [][3]int{{0, 0, 0}, {-64, 320, -64}, {-64, 320, 320}} {
		if _, err := CreateTectonicTerrain("x", c[0], c[1], c[2], presets.Moon()); err == nil {
			t.Fatalf("bounds %v accepted", c)
		}
	}
}

func TestBuilderDefaultsAndStrict(t *testing.T) {
	var buf bytes.Buffer
	b := NewBuilder("empty", log.New(&buf, "", 0)).Continents(density.Const(0.5))
	r, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(buf.String(), "defaulting 14 slot(s)") {
		t.Fatalf("diagnostic = %q", buf.String())
	}
	if c, ok := r.Node(VeinGap).(density.Constant); !ok || c.Value != 0 {
		t.Fatalf("vein_gap = %#v", r.Node(VeinGap))
	}
	_, err = b.BuildStrict()
	var ie *IncompleteRouterError
	if !errors.As(err, &ie) || len(ie.Slots) != 14 || ie.Planet != "empty" {
		t.Fatalf("BuildStrict = %v", err)
	}
}

func TestBuilderRejectsInvalidSlots(t *testing.T) {
	b := NewBuilder("bad", nil).Depth(density.Const(1).Clamp(1, 0))
	var ce *density.ConfigurationError
	if _, err := b.Build(); !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if _, err := NewBuilder("bad", nil).Set("sky", density.Const(0)).Build(); err == nil {
		t.Fatalf("unknown slot accepted")
	}
}

func TestRouterJSONRoundTrip(t *testing.T) {
	moon, err := CreateTectonicTerrain("moon", -64, 320, 63, presets.Moon())
	if err != nil {
		t.Fatalf("CreateTectonicTerrain: %v", err)
	}
	a, err := json.Marshal(moon.Router)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, _ := json.Marshal(moon.Router)
	if !bytes.Equal(a, b) {
		t.Fatalf("router build not idempotent")
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(a, &keys); err != nil || len(keys) != len(Slots) {
		t.Fatalf("router has %d keys (%v)", len(keys), err)
	}
	back, err := Decode(a)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	c, _ := json.Marshal(back)
	if !bytes.Equal(a, c) {
		t.Fatalf("router round trip differs")
	}
	if _, err := Decode([]byte(`{"barrier":0}`)); err == nil {
		t.Fatalf("partial router accepted")
	}
}

func TestNoiseSettings(t *testing.T) {
	moon, err := CreateTectonicTerrain("moon", -64, 320, 63, presets.Moon())
	if err != nil {
		t.Fatalf("CreateTectonicTerrain: %v", err)
	}
	s, err := moon.Settings("minecraft:stone", "minecraft:air")
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if s.Noise.Height != 384 || s.SeaLevel != 63 || s.AquifersEnabled {
		t.Fatalf("settings = %+v", s.Noise)
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"noise_router":{"barrier"`, `"surface_rule":{"type":"minecraft:sequence","sequence":[]}`, `"spawn_target":[]`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Fatalf("settings JSON lacks %s", want)
		}
	}

	odd, err := CreateTectonicTerrain("odd", -60, 300, 63, presets.Moon())
	if err != nil {
		t.Fatalf("CreateTectonicTerrain: %v", err)
	}
	if _, err := odd.Settings("minecraft:stone", "minecraft:air"); err == nil {
		t.Fatalf("min_y -60 accepted")
	}
}
