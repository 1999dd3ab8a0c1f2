package climate

import "fmt"

type Axis int

const (
	Temperature Axis = iota
	Humidity
	Continentalness
	Erosion
	Depth
	Weirdness
	numAxes
)

var axisNames = [numAxes]string{"temperature", "humidity", "continentalness", "erosion", "depth", "weirdness"}

func (a Axis) String() string {
	if a < 0 || a >= numAxes {
		return fmt.Sprintf("axis(%d)", int(a))
	}
	return axisNames[a]
}

// Bounds returns the legal range of the axis: [0, 1] for depth, [-1, 1]
// otherwise.
func (a Axis) Bounds() Parameter {
	if a == Depth {
		return Parameter{0, 1}
	}
	return Parameter{-1, 1}
}

// Parameter is a range of one climate axis. It contains values in
// [Min, Max), and also Max itself when Max is the axis upper bound or the
// range is a single value.
type Parameter struct {
	Min float32
	Max float32
}

func Span(min, max float32) Parameter { return Parameter{min, max} }

func Point(v float32) Parameter { return Parameter{v, v} }

func (p Parameter) contains(v, upper float32) bool {
	if v < p.Min || v > p.Max {
		return false
	}
	return v < p.Max || p.Max == upper || p.Min == p.Max
}

// distance is how far v lies outside the range, 0 inside.
func (p Parameter) distance(v float32) float32 {
	switch {
	case v < p.Min:
		return p.Min - v
	case v > p.Max:
		return v - p.Max
	}
	return 0
}

func (p Parameter) String() string {
	if p.Min == p.Max {
		return fmt.Sprintf("%g", p.Min)
	}
	return fmt.Sprintf("[%g, %g]", p.Min, p.Max)
}

// ParameterPoint is one hyper-rectangle of climate space. Offset pushes the
// rectangle away when resolving a point that lies outside every rectangle.
type ParameterPoint struct {
	Temperature     Parameter
	Humidity        Parameter
	Continentalness Parameter
	Erosion         Parameter
	Depth           Parameter
	Weirdness       Parameter
	Offset          float32
}

// Full spans the legal range of every axis.
func Full() ParameterPoint {
	return ParameterPoint{
		Temperature:     Temperature.Bounds(),
		Humidity:        Humidity.Bounds(),
		Continentalness: Continentalness.Bounds(),
		Erosion:         Erosion.Bounds(),
		Depth:           Depth.Bounds(),
		Weirdness:       Weirdness.Bounds(),
	}
}

func (p ParameterPoint) Axis(a Axis) Parameter {
	switch a {
	case Temperature:
		return p.Temperature
	case Humidity:
		return p.Humidity
	case Continentalness:
		return p.Continentalness
	case Erosion:
		return p.Erosion
	case Depth:
		return p.Depth
	}
	return p.Weirdness
}

// With returns a copy of p with axis a replaced.
func (p ParameterPoint) With(a Axis, r Parameter) ParameterPoint {
	switch a {
	case Temperature:
		p.Temperature = r
	case Humidity:
		p.Humidity = r
	case Continentalness:
		p.Continentalness = r
	case Erosion:
		p.Erosion = r
	case Depth:
		p.Depth = r
	case Weirdness:
		p.Weirdness = r
	}
	return p
}

func (p ParameterPoint) Validate() error {
	for a := Axis(0); a < numAxes; a++ {
		r, b := p.Axis(a), a.Bounds()
		if r.Min > r.Max {
			return fmt.Errorf("climate: %s range %v is inverted", a, r)
		}
		if r.Min < b.Min || r.Max > b.Max {
			return fmt.Errorf("climate: %s range %v outside %v", a, r, b)
		}
	}
	if p.Offset < 0 || p.Offset > 1 {
		return fmt.Errorf("climate: offset %v outside [0, 1]", p.Offset)
	}
	return nil
}

// Contains reports whether the sampled climate t lies in the rectangle.
func (p ParameterPoint) Contains(t Target) bool {
	for a := Axis(0); a < numAxes; a++ {
		if !p.Axis(a).contains(t[a], a.Bounds().Max) {
			return false
		}
	}
	return true
}

// Fitness is the squared distance from t to the rectangle plus Offset squared.
func (p ParameterPoint) Fitness(t Target) float32 {
	var sum float32
	for a := Axis(0); a < numAxes; a++ {
		d := p.Axis(a).distance(t[a])
		sum += d * d
	}
	return sum + p.Offset*p.Offset
}

// Target is one sampled climate, indexed by Axis.
type Target [numAxes]float32

func NewTarget(temperature, humidity, continentalness, erosion, depth, weirdness float32) Target {
	return Target{temperature, humidity, continentalness, erosion, depth, weirdness}
}
