package presets

import (
	"strings"
	"testing"
	"testing/fstest"

	"planetgen.ai/internal/density"
)

func roles() map[string]density.Func {
	return map[string]density.Func{
		"continents": density.Ref("t:continents"),
		"erosion":    density.Ref("t:erosion"),
		"ridges":     density.Ref("t:ridges"),
		"vegetation": density.Ref("t:vegetation"),
		"river":      density.Ref("t:river"),
	}
}

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(c.Splines.Digest) != 64 || len(c.Tectonic.Digest) != 64 {
		t.Fatalf("digests: %q %q", c.Splines.Digest, c.Tectonic.Digest)
	}
	for _, name := range requiredSplines {
		f, err := c.Splines.Spline(name, roles())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if _, err := f.Build(); err != nil {
			t.Fatalf("%s build: %v", name, err)
		}
	}
	if got := strings.Join(c.Tectonic.Names(), ","); got != "earth_like,mars,moon" {
		t.Fatalf("tectonic names = %s", got)
	}
}

func TestTerrainShaperReadsThreeCoordinates(t *testing.T) {
	c, _ := Default()
	d := c.Splines.ByName[TerrainShaper]
	if got := strings.Join(d.Roles(), ","); got != "continents,erosion,ridges" {
		t.Fatalf("roles = %s", got)
	}
	f, err := c.Splines.Spline(TerrainShaper, roles())
	if err != nil {
		t.Fatalf("shaper: %v", err)
	}
	if !f.Node().(density.SplineFunc).Spline.IsMulti() {
		t.Fatalf("terrain shaper must be a multi spline")
	}
}

func TestControlPointsArePreserved(t *testing.T) {
	c, _ := Default()
	d := c.Splines.ByName[ContinentalTransition]
	want := [][2]float32{{-1.1, -0.3}, {-0.45, -0.2}, {-0.19, -0.05}, {-0.11, 0}, {0.03, 0.05}, {0.3, 0.2}, {1, 0.6}}
	if len(d.Points) != len(want) {
		t.Fatalf("points = %d", len(d.Points))
	}
	for i, w := range want {
		if d.Points[i].Location != w[0] || d.Points[i].Value != w[1] {
			t.Fatalf("point %d = %+v", i, d.Points[i])
		}
	}
	if d.Points[5].Derivative != 0.5 {
		t.Fatalf("derivative = %v", d.Points[5].Derivative)
	}
}

func TestMoonPreset(t *testing.T) {
	m := Moon()
	if !m.LavaTunnels || m.CheeseCaves {
		t.Fatalf("moon = %+v", m)
	}
	if got := strings.Join(m.Carvers(), ","); got != "lava_tunnels" {
		t.Fatalf("carvers = %s", got)
	}
	if !EarthLike().UndergroundRivers || !Mars().DesertDunes {
		t.Fatalf("presets drifted")
	}
}

func TestMissingRoleIsAnError(t *testing.T) {
	c, _ := Default()
	if _, err := c.Splines.Spline(RidgeFactor, map[string]density.Func{}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := c.Splines.Spline("nope", roles()); err == nil {
		t.Fatalf("expected unknown spline error")
	}
}

func TestLoadRejectsBadTables(t *testing.T) {
	tect, _ := embedded.ReadFile("tectonic.yaml")
	spl, _ := embedded.ReadFile("splines.yaml")
	cases := map[string]fstest.MapFS{
		"unordered": {
			"splines.yaml":  {Data: []byte("splines:\n  - name: x\n    coordinate: c\n    points: [{location: 1}, {location: 0}]\n")},
			"tectonic.yaml": {Data: tect},
		},
		"missing required": {
			"splines.yaml":  {Data: []byte("splines: []\n")},
			"tectonic.yaml": {Data: tect},
		},
		"bad scale": {
			"splines.yaml":  {Data: spl},
			"tectonic.yaml": {Data: []byte("presets:\n  - name: flat\n    continent_scale: 0\n")},
		},
	}
	for name, fsys := range cases {
		if _, err := LoadFS(fsys); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
