package router

import (
	"encoding/json"
	"fmt"
)

type BlockState struct {
	Name       string            `json:"Name"`
	Properties map[string]string `json:"Properties,omitempty"`
}

// NoiseShape is the vertical extent and cell size of the sampled volume.
type NoiseShape struct {
	MinY           int `json:"min_y"`
	Height         int `json:"height"`
	SizeHorizontal int `json:"size_horizontal"`
	SizeVertical   int `json:"size_vertical"`
}

func (s NoiseShape) Validate() error {
	if s.Height <= 0 || s.Height%16 != 0 {
		return fmt.Errorf("noise: height %d must be a positive multiple of 16", s.Height)
	}
	if s.MinY%16 != 0 {
		return fmt.Errorf("noise: min_y %d must be a multiple of 16", s.MinY)
	}
	if s.SizeHorizontal < 1 || s.SizeHorizontal > 4 {
		return fmt.Errorf("noise: size_horizontal %d outside [1, 4]", s.SizeHorizontal)
	}
	if s.SizeVertical < 1 || s.SizeVertical > 4 {
		return fmt.Errorf("noise: size_vertical %d outside [1, 4]", s.SizeVertical)
	}
	return nil
}

type surfaceRule struct {
	Type     string            `json:"type"`
	Sequence []json.RawMessage `json:"sequence"`
}

// NoiseSettings is the top-level terrain document for one planet.
type NoiseSettings struct {
	SeaLevel             int               `json:"sea_level"`
	DisableMobGeneration bool              `json:"disable_mob_generation"`
	AquifersEnabled      bool              `json:"aquifers_enabled"`
	OreVeinsEnabled      bool              `json:"ore_veins_enabled"`
	LegacyRandomSource   bool              `json:"legacy_random_source"`
	DefaultBlock         BlockState        `json:"default_block"`
	DefaultFluid         BlockState        `json:"default_fluid"`
	Noise                NoiseShape        `json:"noise"`
	NoiseRouter          NoiseRouterConfig `json:"noise_router"`
	SpawnTarget          []json.RawMessage `json:"spawn_target"`
	SurfaceRule          surfaceRule       `json:"surface_rule"`
}

// Settings wraps the terrain router in a noise settings document.
func (t *Terrain) Settings(defaultBlock, defaultFluid string) (NoiseSettings, error) {
	s := NoiseSettings{
		SeaLevel:             t.SeaLevel,
		DisableMobGeneration: false,
		AquifersEnabled:      t.Config.Aquifers,
		OreVeinsEnabled:      t.Config.OreVeins,
		DefaultBlock:         BlockState{Name: defaultBlock},
		DefaultFluid:         BlockState{Name: defaultFluid},
		Noise: NoiseShape{
			MinY:           t.MinY,
			Height:         t.MaxY - t.MinY,
			SizeHorizontal: 1,
			SizeVertical:   2,
		},
		NoiseRouter: t.Router,
		SpawnTarget: []json.RawMessage{},
		SurfaceRule: surfaceRule{Type: "minecraft:sequence", Sequence: []json.RawMessage{}},
	}
	if err := s.Validate(); err != nil {
		return NoiseSettings{}, fmt.Errorf("router %s: %w", t.Planet, err)
	}
	return s, nil
}

func (s NoiseSettings) Validate() error {
	if err := s.Noise.Validate(); err != nil {
		return err
	}
	if s.SeaLevel < s.Noise.MinY || s.SeaLevel >= s.Noise.MinY+s.Noise.Height {
		return fmt.Errorf("sea_level %d outside [%d, %d)", s.SeaLevel, s.Noise.MinY, s.Noise.MinY+s.Noise.Height)
	}
	if s.DefaultBlock.Name == "" || s.DefaultFluid.Name == "" {
		return fmt.Errorf("default_block and default_fluid are required")
	}
	return nil
}
