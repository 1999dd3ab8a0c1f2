package planet

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"planetgen.ai/internal/climate"
	"planetgen.ai/internal/presets"
)

type Config struct {
	Namespace string       `yaml:"namespace"`
	Seed      int64        `yaml:"seed"`
	Planets   []PlanetSpec `yaml:"planets"`
}

type PlanetSpec struct {
	ID        string    `yaml:"id"`
	Preset    string    `yaml:"preset"`
	MinY      int       `yaml:"min_y"`
	MaxY      int       `yaml:"max_y"`
	SeaLevel  int       `yaml:"sea_level"`
	Overrides Overrides `yaml:"overrides,omitempty"`

	// Biomes are partitioned automatically; BiomePreset selects a hand-tuned
	// map instead. Exactly one is set.
	Biomes      []string          `yaml:"biomes,omitempty"`
	BiomePreset string            `yaml:"biome_preset,omitempty"`
	GapPolicy   climate.GapPolicy `yaml:"gap_policy,omitempty"`

	DefaultBlock string `yaml:"default_block"`
	DefaultFluid string `yaml:"default_fluid"`
}

// Overrides replaces individual knobs of the planet's preset.
type Overrides struct {
	ContinentScale    *float64 `yaml:"continent_scale,omitempty"`
	ErosionScale      *float64 `yaml:"erosion_scale,omitempty"`
	RidgeScale        *float64 `yaml:"ridge_scale,omitempty"`
	MountainSharpness *float64 `yaml:"mountain_sharpness,omitempty"`
	JaggednessScale   *float64 `yaml:"jaggedness_scale,omitempty"`
	Islands           *bool    `yaml:"islands,omitempty"`
	IslandStrength    *float64 `yaml:"island_strength,omitempty"`
	CheeseCaves       *bool    `yaml:"cheese_caves,omitempty"`
	NoodleCaves       *bool    `yaml:"noodle_caves,omitempty"`
	UndergroundRivers *bool    `yaml:"underground_rivers,omitempty"`
	LavaTunnels       *bool    `yaml:"lava_tunnels,omitempty"`
	DesertDunes       *bool    `yaml:"desert_dunes,omitempty"`
	JunglePillars     *bool    `yaml:"jungle_pillars,omitempty"`
	Aquifers          *bool    `yaml:"aquifers,omitempty"`
	OreVeins          *bool    `yaml:"ore_veins,omitempty"`
}

func (o Overrides) Apply(c presets.TectonicConfig) presets.TectonicConfig {
	setF := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setB := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setF(&c.ContinentScale, o.ContinentScale)
	setF(&c.ErosionScale, o.ErosionScale)
	setF(&c.RidgeScale, o.RidgeScale)
	setF(&c.MountainSharpness, o.MountainSharpness)
	setF(&c.JaggednessScale, o.JaggednessScale)
	setB(&c.Islands, o.Islands)
	setF(&c.IslandStrength, o.IslandStrength)
	setB(&c.CheeseCaves, o.CheeseCaves)
	setB(&c.NoodleCaves, o.NoodleCaves)
	setB(&c.UndergroundRivers, o.UndergroundRivers)
	setB(&c.LavaTunnels, o.LavaTunnels)
	setB(&c.DesertDunes, o.DesertDunes)
	setB(&c.JunglePillars, o.JunglePillars)
	setB(&c.Aquifers, o.Aquifers)
	setB(&c.OreVeins, o.OreVeins)
	return c
}

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("planets.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("planets.yaml: %w", err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Namespace: "adastramekanized",
		Seed:      0,
		Planets: []PlanetSpec{
			{
				ID:           "moon",
				Preset:       "moon",
				MinY:         -64,
				MaxY:         320,
				SeaLevel:     63,
				BiomePreset:  "moon",
				DefaultBlock: "minecraft:stone",
				DefaultFluid: "minecraft:air",
			},
			{
				ID:           "mars",
				Preset:       "mars",
				MinY:         -64,
				MaxY:         256,
				SeaLevel:     40,
				Biomes:       []string{"mars_wastes", "mars_dunes", "mars_canyons"},
				DefaultBlock: "minecraft:red_sandstone",
				DefaultFluid: "minecraft:lava",
			},
		},
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Namespace = strings.TrimSpace(c.Namespace)
	for i := range c.Planets {
		p := &c.Planets[i]
		p.ID = strings.TrimSpace(p.ID)
		p.Preset = strings.TrimSpace(p.Preset)
		if p.Preset == "" {
			p.Preset = "earth_like"
		}
		if len(p.Biomes) > 0 && p.GapPolicy == "" {
			p.GapPolicy = climate.FillLast
		}
		if p.DefaultBlock == "" {
			p.DefaultBlock = "minecraft:stone"
		}
		if p.DefaultFluid == "" {
			p.DefaultFluid = "minecraft:water"
		}
	}
}

var (
	namespaceRe = regexp.MustCompile(`^[a-z0-9_.-]+$`)
	planetIDRe  = regexp.MustCompile(`^[a-z0-9_]+$`)
)

func (c Config) Validate() error {
	c.Normalize()
	if !namespaceRe.MatchString(c.Namespace) {
		return fmt.Errorf("namespace %q must match %s", c.Namespace, namespaceRe)
	}
	if len(c.Planets) == 0 {
		return fmt.Errorf("planets must not be empty")
	}
	cat, err := presets.Default()
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, p := range c.Planets {
		if !planetIDRe.MatchString(p.ID) {
			return fmt.Errorf("planet id %q must match %s", p.ID, planetIDRe)
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate planet id: %s", p.ID)
		}
		seen[p.ID] = true
		base, err := cat.Tectonic.Get(p.Preset)
		if err != nil {
			return fmt.Errorf("planet %s: %w", p.ID, err)
		}
		if err := p.Overrides.Apply(base).Validate(); err != nil {
			return fmt.Errorf("planet %s: overrides: %w", p.ID, err)
		}
		if p.MinY%16 != 0 {
			return fmt.Errorf("planet %s min_y must be a multiple of 16", p.ID)
		}
		if p.MaxY <= p.MinY || (p.MaxY-p.MinY)%16 != 0 {
			return fmt.Errorf("planet %s height (max_y - min_y) must be a positive multiple of 16", p.ID)
		}
		if p.SeaLevel <= p.MinY || p.SeaLevel >= p.MaxY {
			return fmt.Errorf("planet %s sea_level must be in (min_y, max_y)", p.ID)
		}
		switch {
		case len(p.Biomes) > 0 && p.BiomePreset != "":
			return fmt.Errorf("planet %s sets both biomes and biome_preset", p.ID)
		case len(p.Biomes) == 0 && p.BiomePreset == "":
			return fmt.Errorf("planet %s needs biomes or biome_preset", p.ID)
		case p.BiomePreset != "":
			if _, ok := climate.Presets[p.BiomePreset]; !ok {
				return fmt.Errorf("planet %s unknown biome_preset %q", p.ID, p.BiomePreset)
			}
		default:
			if !p.GapPolicy.Valid() {
				return fmt.Errorf("planet %s unknown gap_policy %q", p.ID, p.GapPolicy)
			}
		}
	}
	return nil
}

// Find returns the spec with the given id.
func (c Config) Find(id string) (PlanetSpec, bool) {
	for _, p := range c.Planets {
		if p.ID == id {
			return p, true
		}
	}
	return PlanetSpec{}, false
}
