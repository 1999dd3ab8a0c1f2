package presets

import "fmt"

// TectonicConfig is the set of knobs a planet's terrain is assembled from.
type TectonicConfig struct {
	Name string `yaml:"name"`

	ContinentScale    float64 `yaml:"continent_scale"`
	ErosionScale      float64 `yaml:"erosion_scale"`
	RidgeScale        float64 `yaml:"ridge_scale"`
	MountainSharpness float64 `yaml:"mountain_sharpness"`
	JaggednessScale   float64 `yaml:"jaggedness_scale"`

	Islands        bool    `yaml:"islands"`
	IslandStrength float64 `yaml:"island_strength"`

	CheeseCaves       bool `yaml:"cheese_caves"`
	NoodleCaves       bool `yaml:"noodle_caves"`
	UndergroundRivers bool `yaml:"underground_rivers"`
	LavaTunnels       bool `yaml:"lava_tunnels"`

	DesertDunes   bool `yaml:"desert_dunes"`
	JunglePillars bool `yaml:"jungle_pillars"`

	Aquifers bool `yaml:"aquifers"`
	OreVeins bool `yaml:"ore_veins"`
}

func (c TectonicConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"continent_scale", c.ContinentScale},
		{"erosion_scale", c.ErosionScale},
		{"ridge_scale", c.RidgeScale},
		{"jaggedness_scale", c.JaggednessScale},
	} {
		if !finite(f.v) || f.v <= 0 {
			return fmt.Errorf("preset %s: %s must be > 0 (got %v)", c.Name, f.name, f.v)
		}
	}
	if !finite(c.MountainSharpness) || c.MountainSharpness < 0 {
		return fmt.Errorf("preset %s: mountain_sharpness must be >= 0 (got %v)", c.Name, c.MountainSharpness)
	}
	if !finite(c.IslandStrength) || c.IslandStrength < 0 {
		return fmt.Errorf("preset %s: island_strength must be >= 0 (got %v)", c.Name, c.IslandStrength)
	}
	return nil
}

// Carvers lists the enabled cave carvers in the order they are layered into
// final density.
func (c TectonicConfig) Carvers() []string {
	var out []string
	if c.CheeseCaves {
		out = append(out, "cheese_caves")
	}
	if c.NoodleCaves {
		out = append(out, "noodle_caves")
	}
	if c.UndergroundRivers {
		out = append(out, "underground_rivers")
	}
	if c.LavaTunnels {
		out = append(out, "lava_tunnels")
	}
	return out
}

func Moon() TectonicConfig      { return mustDefault().Tectonic.ByName["moon"] }
func Mars() TectonicConfig      { return mustDefault().Tectonic.ByName["mars"] }
func EarthLike() TectonicConfig { return mustDefault().Tectonic.ByName["earth_like"] }
