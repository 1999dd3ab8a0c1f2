package router

import (
	"fmt"
	"io"
	"log"
	"sort"

	"planetgen.ai/internal/density"
	"planetgen.ai/internal/presets"
)

// Terrain offset weights and bounds.
const (
	ContinentWeight = 1.5
	ErosionWeight   = 0.8
	RidgeWeight     = 1.2
	OffsetMin       = -0.8
	OffsetMax       = 1.2

	// DepthTop is the depth gradient value at min_y.
	DepthTop = 1.5

	DefaultNamespace = "adastramekanized"
)

// Layer is a named component of final density.
type Layer struct {
	Name string
	Func density.Func
}

// Terrain is a fully assembled planet router plus the parts it was composed
// from.
type Terrain struct {
	Planet    string
	Namespace string
	MinY      int
	MaxY      int
	SeaLevel  int
	Config    presets.TectonicConfig

	Router NoiseRouterConfig

	// Base is the interpolated sloped terrain before carving.
	Base density.Func
	// Carved is min(Base, carvers...).
	Carved      density.Func
	Carvers     []Layer
	Decorations []Layer
	Offset      density.Func
}

type options struct {
	namespace string
	splines   *presets.SplineTable
	logger    *log.Logger
}

type Option func(*options)

func WithNamespace(ns string) Option { return func(o *options) { o.namespace = ns } }

func WithSplines(t presets.SplineTable) Option { return func(o *options) { o.splines = &t } }

func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// NoiseID returns the namespaced id of a planet noise, e.g.
// adastramekanized:moon_continents.
func NoiseID(namespace, planet, name string) string {
	return namespace + ":" + planet + "_" + name
}

// DepthBottom returns the gradient value at max_y that puts the zero
// crossing of the depth gradient at sea level.
func DepthBottom(minY, maxY, seaLevel int) float64 {
	return DepthTop - DepthTop*float64(maxY-minY)/float64(seaLevel-minY)
}

// TerrainOffset combines the three shaping functions with the fixed weights
// and clamps the sum to [OffsetMin, OffsetMax].
func TerrainOffset(continents, erosion, ridges density.Func) density.Func {
	return density.SumOf(
		continents.MulConst(ContinentWeight),
		erosion.MulConst(ErosionWeight),
		ridges.MulConst(RidgeWeight),
	).Clamp(OffsetMin, OffsetMax)
}

// CreateTectonicTerrain assembles the router for one planet from a preset.
func CreateTectonicTerrain(planetID string, minY, maxY, seaLevel int, cfg presets.TectonicConfig, opts ...Option) (*Terrain, error) {
	o := options{namespace: DefaultNamespace}
	for _, fn := range opts {
		fn(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}
	if o.splines == nil {
		cat, err := presets.Default()
		if err != nil {
			return nil, err
		}
		o.splines = &cat.Splines
	}
	if planetID == "" {
		return nil, fmt.Errorf("router: empty planet id")
	}
	if minY >= maxY {
		return nil, fmt.Errorf("router %s: min_y %d must be below max_y %d", planetID, minY, maxY)
	}
	if seaLevel <= minY || seaLevel >= maxY {
		return nil, fmt.Errorf("router %s: sea_level %d outside (%d, %d)", planetID, seaLevel, minY, maxY)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("router %s: %w", planetID, err)
	}

	a := assembler{
		planet: planetID, ns: o.namespace, minY: minY, maxY: maxY, sea: seaLevel,
		cfg: cfg, splines: *o.splines,
	}
	t, err := a.assemble(NewBuilder(planetID, o.logger))
	if err != nil {
		return nil, err
	}
	o.logger.Printf("router %s: preset=%s carvers=%v decorations=%d", planetID, cfg.Name, cfg.Carvers(), len(t.Decorations))
	return t, nil
}

type assembler struct {
	planet     string
	ns         string
	minY, maxY int
	sea        int
	cfg        presets.TectonicConfig
	splines    presets.SplineTable
}

func (a assembler) noise(name string, xz, y float64) density.Func {
	return density.NoiseFunc(NoiseID(a.ns, a.planet, name), xz, y)
}

func (a assembler) spline(name string, roles map[string]density.Func) (density.Func, error) {
	f, err := a.splines.Spline(name, roles)
	if err != nil {
		return density.Func{}, fmt.Errorf("router %s: %w", a.planet, err)
	}
	return f, nil
}

func (a assembler) assemble(b *Builder) (*Terrain, error) {
	cfg := a.cfg

	// Raw climate shapes, varying only horizontally.
	rawContinents := a.noise("continents", cfg.ContinentScale, 0).Cache2D()
	rawErosion := a.noise("erosion", cfg.ErosionScale, 0).Cache2D()
	rawRidges := a.noise("ridges", cfg.RidgeScale, 0).Cache2D()
	temperature := density.Shifted(NoiseID(a.ns, a.planet, "temperature"),
		density.Ref(density.RefShiftX), density.Const(0), density.Ref(density.RefShiftZ), 0.25)
	vegetation := density.Shifted(NoiseID(a.ns, a.planet, "vegetation"),
		density.Ref(density.RefShiftX), density.Const(0), density.Ref(density.RefShiftZ), 0.25)

	roles := map[string]density.Func{
		"continents": rawContinents,
		"erosion":    rawErosion,
		"ridges":     rawRidges,
		"vegetation": vegetation,
		"river":      a.noise("river", 1, 0).Cache2D(),
	}

	continents, err := a.spline(presets.ContinentalTransition, roles)
	if err != nil {
		return nil, err
	}
	if cfg.Islands && cfg.IslandStrength > 0 {
		continents = continents.Add(a.noise("islands", cfg.ContinentScale*4, 0).MulConst(cfg.IslandStrength))
	}
	continents = continents.Cache2D().FlatCache()

	erosion, err := a.spline(presets.ErosionFactor, roles)
	if err != nil {
		return nil, err
	}
	erosion = erosion.Cache2D().FlatCache()

	ridges, err := a.spline(presets.RidgeFactor, roles)
	if err != nil {
		return nil, err
	}
	ridges = ridges.Cache2D().FlatCache()

	offset := TerrainOffset(continents, erosion, ridges).Cache2D()
	gradient := density.YGradient(a.minY, a.maxY, DepthTop, DepthBottom(a.minY, a.maxY, a.sea))
	depth := gradient.Add(offset)

	shaper, err := a.spline(presets.TerrainShaper, roles)
	if err != nil {
		return nil, err
	}
	jaggedness := shaper.MulConst(cfg.MountainSharpness).Cache2D().
		Mul(a.noise("jagged", cfg.JaggednessScale, 0).HalfNegative())

	base := sloped(depth.Add(jaggedness)).Interpolated()
	initial := sloped(depth).Clamp(-64, 64)

	carvers, err := a.carvers(roles)
	if err != nil {
		return nil, err
	}
	chain := []density.Func{base}
	for _, c := range carvers {
		chain = append(chain, c.Func)
	}
	carved := density.MinOf(chain...)

	decorations, err := a.decorations(roles)
	if err != nil {
		return nil, err
	}
	final := carved
	for _, d := range decorations {
		final = final.Add(d.Func)
	}

	b.Continents(continents).
		Erosion(erosion).
		Ridges(ridges).
		Depth(depth).
		Temperature(temperature).
		Vegetation(vegetation).
		InitialDensityWithoutJaggedness(initial).
		FinalDensity(final)
	a.aquifers(b)
	a.veins(b)

	r, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Terrain{
		Planet:      a.planet,
		Namespace:   a.ns,
		MinY:        a.minY,
		MaxY:        a.maxY,
		SeaLevel:    a.sea,
		Config:      cfg,
		Router:      r,
		Base:        base,
		Carved:      carved,
		Carvers:     carvers,
		Decorations: decorations,
		Offset:      offset,
	}, nil
}

// sloped is 4 * quarter_negative(0.25 * f): positive density is kept, the
// negative side is softened.
func sloped(f density.Func) density.Func {
	return f.MulConst(0.25).QuarterNegative().MulConst(4)
}

// NoiseIDs returns every noise id the router samples.
func (t *Terrain) NoiseIDs() []string {
	set := map[string]struct{}{}
	for _, s := range Slots {
		for _, id := range density.NoiseIDs(t.Router.Node(s)) {
			set[id] = struct{}{}
		}
	}
	set[density.OffsetNoise] = struct{}{}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
