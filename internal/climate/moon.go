package climate

// Moon biome names, prefixed with a namespace by MoonBiomeMap.
const (
	MoonPolar       = "moon_polar"
	MoonCraterRim   = "moon_crater_rim"
	MoonCraterFloor = "moon_crater_floor"
	MoonMaria       = "moon_maria"
	MoonHighlands   = "moon_highlands"
)

// MoonBiomeMap returns the hand-tuned lunar rectangles. Highlands fill the
// remaining space through two overlapping catch-alls.
func MoonBiomeMap(namespace string) (*ParameterMap, error) {
	id := func(name string) string { return namespace + ":" + name }
	return NewBuilder().
		Add(id(MoonPolar), Full().With(Temperature, Span(-1, -0.75))).
		Add(id(MoonPolar), Full().With(Temperature, Span(0.75, 1))).
		Add(id(MoonCraterRim), Full().
			With(Continentalness, Span(0.3, 1)).
			With(Erosion, Span(0.45, 1)).
			With(Weirdness, Span(0.5, 1))).
		Add(id(MoonCraterFloor), Full().
			With(Continentalness, Span(-1, -0.2)).
			With(Erosion, Span(-1, -0.375)).
			With(Weirdness, Span(-0.5, 0.5)).
			With(Depth, Span(0, 0.2))).
		Add(id(MoonMaria), Full().
			With(Continentalness, Span(-0.5, 0.3)).
			With(Erosion, Span(-0.2, 0.45)).
			With(Depth, Span(0, 0.1))).
		Add(id(MoonHighlands), Full().
			With(Temperature, Span(-0.75, 0.75)).
			With(Humidity, Span(-1, 0.1))).
		Add(id(MoonHighlands), Full().
			With(Temperature, Span(-0.75, 0.75)).
			With(Humidity, Span(-0.1, 1))).
		Build()
}

// Presets names the explicit maps a planet can select.
var Presets = map[string]func(namespace string) (*ParameterMap, error){
	"moon": MoonBiomeMap,
}
