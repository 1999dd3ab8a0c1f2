package density

// SharpDerivative is the slope used by SharpPoint for abrupt transitions.
const SharpDerivative = 5.0

// Spline remaps the value of Coordinate through a piecewise cubic curve.
// Points are strictly ascending in Location. A point carries either a scalar
// Value or a Nested spline evaluated over another coordinate.
type Spline struct {
	Coordinate Node
	Points     []SplinePoint
}

type SplinePoint struct {
	Location   float32
	Value      float32
	Nested     *Spline
	Derivative float32
}

// IsMulti reports whether any point delegates to a nested spline.
func (s Spline) IsMulti() bool {
	for _, p := range s.Points {
		if p.Nested != nil {
			return true
		}
	}
	return false
}

func (s Spline) coordinates(out []Node) []Node {
	out = append(out, s.Coordinate)
	for _, p := range s.Points {
		if p.Nested != nil {
			out = p.Nested.coordinates(out)
		}
	}
	return out
}

func (s Spline) validate(op string) error {
	if s.Coordinate == nil {
		return configErr(op, "spline has no coordinate")
	}
	if len(s.Points) == 0 {
		return configErr(op, "spline has no points")
	}
	for i, p := range s.Points {
		if !finite32(p.Location) || !finite32(p.Value) || !finite32(p.Derivative) {
			return configErr(op, "point %d is not finite", i)
		}
		if i > 0 && p.Location <= s.Points[i-1].Location {
			return configErr(op, "point %d location %v not above %v", i, p.Location, s.Points[i-1].Location)
		}
		if p.Nested != nil {
			if err := p.Nested.validate(op); err != nil {
				return err
			}
		}
	}
	return nil
}

// SplineBuilder accumulates control points. It is a value: every call returns
// a new builder and leaves the receiver, and anything already built from it,
// untouched.
type SplineBuilder struct {
	coordinate Func
	points     []SplinePoint
	err        error
}

func NewSpline(coordinate Func) SplineBuilder {
	return SplineBuilder{coordinate: coordinate, err: coordinate.Err()}
}

func (b SplineBuilder) with(p SplinePoint, err error) SplineBuilder {
	next := SplineBuilder{coordinate: b.coordinate, err: b.err}
	if next.err == nil {
		next.err = err
	}
	next.points = make([]SplinePoint, len(b.points), len(b.points)+1)
	copy(next.points, b.points)
	next.points = append(next.points, p)
	return next
}

func (b SplineBuilder) Point(location, value, derivative float32) SplineBuilder {
	return b.with(SplinePoint{Location: location, Value: value, Derivative: derivative}, nil)
}

func (b SplineBuilder) FlatPoint(location, value float32) SplineBuilder {
	return b.Point(location, value, 0)
}

func (b SplineBuilder) SharpPoint(location, value float32) SplineBuilder {
	return b.Point(location, value, SharpDerivative)
}

// MultiSpline adds a point whose value is the nested spline evaluated at the
// same sample position.
func (b SplineBuilder) MultiSpline(location, derivative float32, nested SplineBuilder) SplineBuilder {
	s, err := nested.Build()
	if err != nil {
		return b.with(SplinePoint{Location: location, Derivative: derivative}, err)
	}
	return b.with(SplinePoint{Location: location, Derivative: derivative, Nested: &s}, nil)
}

// Build checks ordering and returns a snapshot of the spline.
func (b SplineBuilder) Build() (Spline, error) {
	if b.err != nil {
		return Spline{}, b.err
	}
	s := Spline{Coordinate: b.coordinate.node, Points: make([]SplinePoint, len(b.points))}
	copy(s.Points, b.points)
	if err := s.validate("spline"); err != nil {
		return Spline{}, err
	}
	return s, nil
}

// Func wraps the spline in a density function.
func (b SplineBuilder) Func() Func {
	s, err := b.Build()
	if err != nil {
		return invalid(err)
	}
	return newFunc(SplineFunc{Spline: s}, nil)
}

func finite32(v float32) bool { return finite(float64(v)) }
