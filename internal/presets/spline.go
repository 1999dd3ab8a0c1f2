package presets

import (
	"fmt"

	"planetgen.ai/internal/density"
)

// SplineDef is one calibration curve. Coordinate is a role name bound to a
// density function at instantiation. A point carries either Value or a
// nested Spline.
type SplineDef struct {
	Name       string     `yaml:"name,omitempty"`
	Coordinate string     `yaml:"coordinate"`
	Points     []PointDef `yaml:"points"`
}

type PointDef struct {
	Location   float32    `yaml:"location"`
	Value      float32    `yaml:"value"`
	Derivative float32    `yaml:"derivative"`
	Spline     *SplineDef `yaml:"spline,omitempty"`
}

func (d SplineDef) check(path string) error {
	if d.Coordinate == "" {
		return fmt.Errorf("spline %s: missing coordinate", path)
	}
	if len(d.Points) == 0 {
		return fmt.Errorf("spline %s: no points", path)
	}
	for i, p := range d.Points {
		if i > 0 && p.Location <= d.Points[i-1].Location {
			return fmt.Errorf("spline %s: point %d location %v not above %v", path, i, p.Location, d.Points[i-1].Location)
		}
		if p.Spline != nil {
			if err := p.Spline.check(fmt.Sprintf("%s.points[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Roles returns the coordinate roles the curve reads, outermost first.
func (d SplineDef) Roles() []string {
	seen := map[string]bool{}
	var out []string
	var visit func(SplineDef)
	visit = func(s SplineDef) {
		if !seen[s.Coordinate] {
			seen[s.Coordinate] = true
			out = append(out, s.Coordinate)
		}
		for _, p := range s.Points {
			if p.Spline != nil {
				visit(*p.Spline)
			}
		}
	}
	visit(d)
	return out
}

// Builder instantiates the curve with every role bound from coords.
func (d SplineDef) Builder(coords map[string]density.Func) (density.SplineBuilder, error) {
	coord, ok := coords[d.Coordinate]
	if !ok {
		return density.SplineBuilder{}, fmt.Errorf("presets: spline %s: no coordinate bound for role %q", d.Name, d.Coordinate)
	}
	b := density.NewSpline(coord)
	for _, p := range d.Points {
		if p.Spline == nil {
			b = b.Point(p.Location, p.Value, p.Derivative)
			continue
		}
		nested, err := p.Spline.Builder(coords)
		if err != nil {
			return density.SplineBuilder{}, err
		}
		b = b.MultiSpline(p.Location, p.Derivative, nested)
	}
	return b, nil
}

// Spline instantiates the named curve as a density function.
func (t SplineTable) Spline(name string, coords map[string]density.Func) (density.Func, error) {
	d, ok := t.ByName[name]
	if !ok {
		return density.Func{}, fmt.Errorf("presets: unknown spline %q", name)
	}
	b, err := d.Builder(coords)
	if err != nil {
		return density.Func{}, err
	}
	f := b.Func()
	if err := f.Err(); err != nil {
		return density.Func{}, fmt.Errorf("presets: spline %s: %w", name, err)
	}
	return f, nil
}
