package presets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"math"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed splines.yaml tectonic.yaml
var embedded embed.FS

// Spline preset names every catalog must define.
const (
	ContinentalTransition = "continental_transition"
	ErosionFactor         = "erosion_factor"
	RidgeFactor           = "ridge_factor"
	DesertDunes           = "desert_dunes"
	JunglePillars         = "jungle_pillars"
	UndergroundRiver      = "underground_river"
	TerrainShaper         = "terrain_shaper"
)

var requiredSplines = []string{
	ContinentalTransition, ErosionFactor, RidgeFactor,
	DesertDunes, JunglePillars, UndergroundRiver, TerrainShaper,
}

type Catalog struct {
	Splines  SplineTable
	Tectonic TectonicTable
}

type SplineTable struct {
	ByName map[string]SplineDef
	Digest string
}

type TectonicTable struct {
	ByName map[string]TectonicConfig
	Digest string
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = LoadFS(embedded)
	})
	return defaultCat, defaultErr
}

func mustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic("presets: embedded catalog: " + err.Error())
	}
	return c
}

// LoadFS reads splines.yaml and tectonic.yaml from fsys.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var c Catalog
	if err := loadSplines(fsys, "splines.yaml", &c.Splines); err != nil {
		return nil, err
	}
	if err := loadTectonic(fsys, "tectonic.yaml", &c.Tectonic); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadSplines(fsys fs.FS, name string, out *SplineTable) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var file struct {
		Version int         `yaml:"version"`
		Splines []SplineDef `yaml:"splines"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	out.ByName = map[string]SplineDef{}
	for _, d := range file.Splines {
		if d.Name == "" {
			return fmt.Errorf("%s: spline with empty name", name)
		}
		if _, dup := out.ByName[d.Name]; dup {
			return fmt.Errorf("%s: duplicate spline %q", name, d.Name)
		}
		if err := d.check(d.Name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		out.ByName[d.Name] = d
	}
	for _, req := range requiredSplines {
		if _, ok := out.ByName[req]; !ok {
			return fmt.Errorf("%s: missing spline %q", name, req)
		}
	}
	return nil
}

func loadTectonic(fsys fs.FS, name string, out *TectonicTable) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var file struct {
		Version int              `yaml:"version"`
		Presets []TectonicConfig `yaml:"presets"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	out.ByName = map[string]TectonicConfig{}
	for _, p := range file.Presets {
		if p.Name == "" {
			return fmt.Errorf("%s: preset with empty name", name)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		out.ByName[p.Name] = p
	}
	return nil
}

// Names returns the sorted preset names.
func (t TectonicTable) Names() []string {
	out := make([]string, 0, len(t.ByName))
	for n := range t.ByName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (t TectonicTable) Get(name string) (TectonicConfig, error) {
	p, ok := t.ByName[name]
	if !ok {
		return TectonicConfig{}, fmt.Errorf("presets: unknown tectonic preset %q", name)
	}
	return p, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
