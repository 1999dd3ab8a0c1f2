package planet

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"planetgen.ai/internal/climate"
	"planetgen.ai/internal/density"
	"planetgen.ai/internal/noise"
	"planetgen.ai/internal/presets"
	"planetgen.ai/internal/router"
)

// Artifact is everything generated for one planet. It is read-only once
// returned.
type Artifact struct {
	Namespace string
	Spec      PlanetSpec
	Tectonic  presets.TectonicConfig
	Terrain   *router.Terrain
	Settings  router.NoiseSettings
	Biomes    *climate.ParameterMap
	Noises    map[string]noise.Definition

	// Gaps is non-nil when the biome map leaves climate space unmapped.
	Gaps *climate.CoverageGapError
}

// Registry builds the noise service for the artifact's noises.
func (a *Artifact) Registry(seed int64) (*noise.Registry, error) {
	return noise.NewRegistry(seed, a.Noises)
}

// Compile binds a router slot to a noise registry.
func (a *Artifact) Compile(slot router.Slot, noises density.NoiseSource) (*density.Program, error) {
	return density.Compile(a.Terrain.Router.Node(slot), density.Env{Noises: noises})
}

// Assemble builds every planet in cfg, stopping at the first failure.
func Assemble(cfg Config, logger *log.Logger) ([]*Artifact, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	cat, err := presets.Default()
	if err != nil {
		return nil, err
	}
	out := make([]*Artifact, 0, len(cfg.Planets))
	for _, p := range cfg.Planets {
		a, err := AssemblePlanet(cfg.Namespace, p, cat, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func AssemblePlanet(namespace string, spec PlanetSpec, cat *presets.Catalog, logger *log.Logger) (*Artifact, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	base, err := cat.Tectonic.Get(spec.Preset)
	if err != nil {
		return nil, fmt.Errorf("planet %s: %w", spec.ID, err)
	}
	tect := spec.Overrides.Apply(base)

	terrain, err := router.CreateTectonicTerrain(spec.ID, spec.MinY, spec.MaxY, spec.SeaLevel, tect,
		router.WithNamespace(namespace),
		router.WithSplines(cat.Splines),
		router.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("planet %s: %w", spec.ID, err)
	}
	settings, err := terrain.Settings(spec.DefaultBlock, spec.DefaultFluid)
	if err != nil {
		return nil, fmt.Errorf("planet %s: %w", spec.ID, err)
	}
	noises, err := noise.DefinitionsFor(terrain.NoiseIDs())
	if err != nil {
		return nil, fmt.Errorf("planet %s: %w", spec.ID, err)
	}

	biomes, err := biomeMap(namespace, spec)
	if err != nil {
		return nil, fmt.Errorf("planet %s: %w", spec.ID, err)
	}
	if n := biomes.FilledCells(); n > 0 {
		logger.Printf("planet %s: assigned %d leftover grid cell(s) to %s", spec.ID, n, biomes.Entries()[biomes.Len()-1].Biome)
	}
	a := &Artifact{
		Namespace: namespace,
		Spec:      spec,
		Tectonic:  tect,
		Terrain:   terrain,
		Settings:  settings,
		Biomes:    biomes,
		Noises:    noises,
	}
	var gap *climate.CoverageGapError
	if err := climate.CheckCoverage(biomes); errors.As(err, &gap) {
		a.Gaps = gap
		logger.Printf("planet %s: %v", spec.ID, gap)
	}
	logger.Printf("planet %s: %d noises, %d biome entries", spec.ID, len(noises), biomes.Len())
	return a, nil
}

func biomeMap(namespace string, spec PlanetSpec) (*climate.ParameterMap, error) {
	if spec.BiomePreset != "" {
		build, ok := climate.Presets[spec.BiomePreset]
		if !ok {
			return nil, fmt.Errorf("unknown biome_preset %q", spec.BiomePreset)
		}
		return build(namespace)
	}
	ids := make([]string, len(spec.Biomes))
	for i, b := range spec.Biomes {
		ids[i] = qualify(namespace, b)
	}
	return climate.BuildBiomeMap(ids, spec.GapPolicy)
}

func qualify(namespace, id string) string {
	if strings.Contains(id, ":") {
		return id
	}
	return namespace + ":" + id
}
