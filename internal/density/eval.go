package density

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NoiseSampler evaluates one named noise at a position.
type NoiseSampler interface {
	Sample(x, y, z float64) float64
}

// Resolver supplies the external capabilities a tree names by id.
type Resolver interface {
	ResolveNoise(id string) (NoiseSampler, bool)
	ResolveReference(id string) (Node, bool)
}

// Program is a tree bound to a resolver. It holds no mutable state and may be
// shared by any number of goroutines.
type Program struct {
	root evalFn
}

type evalFn func(p mgl64.Vec3) float64

// Compute evaluates the density at block position p (x, y, z with y up).
func (p *Program) Compute(pos mgl64.Vec3) float64 { return p.root(pos) }

func (p *Program) ComputeAt(x, y, z float64) float64 { return p.root(mgl64.Vec3{x, y, z}) }

// Compile resolves every noise and reference id in n up front, so sampling
// never fails. Cache and interpolation hints evaluate their argument directly.
func Compile(n Node, r Resolver) (*Program, error) {
	if n == nil {
		return nil, configErr("compile", "nil node")
	}
	if err := Validate(n); err != nil {
		return nil, err
	}
	c := &compiler{
		resolver: r,
		refs:     map[string]evalFn{},
		active:   map[string]bool{},
		noises:   map[string]struct{}{},
		missRefs: map[string]struct{}{},
	}
	root := c.compile(n)
	if c.err != nil {
		return nil, c.err
	}
	if len(c.noises) > 0 || len(c.missRefs) > 0 {
		return nil, &UnresolvedReferenceError{Noises: sortedKeys(c.noises), References: sortedKeys(c.missRefs)}
	}
	return &Program{root: root}, nil
}

type compiler struct {
	resolver Resolver
	refs     map[string]evalFn
	active   map[string]bool
	noises   map[string]struct{}
	missRefs map[string]struct{}
	err      error
}

func zero(mgl64.Vec3) float64 { return 0 }

func (c *compiler) noise(id string) NoiseSampler {
	if c.resolver != nil {
		if s, ok := c.resolver.ResolveNoise(id); ok && s != nil {
			return s
		}
	}
	c.noises[id] = struct{}{}
	return nil
}

func (c *compiler) reference(id string) evalFn {
	if fn, ok := c.refs[id]; ok {
		return fn
	}
	if c.active[id] {
		if c.err == nil {
			c.err = configErr("compile", "reference cycle through %q", id)
		}
		return zero
	}
	var target Node
	ok := false
	if c.resolver != nil {
		target, ok = c.resolver.ResolveReference(id)
	}
	if !ok || target == nil {
		c.missRefs[id] = struct{}{}
		return zero
	}
	c.active[id] = true
	fn := c.compile(target)
	delete(c.active, id)
	c.refs[id] = fn
	return fn
}

func (c *compiler) compile(n Node) evalFn {
	switch v := n.(type) {
	case Constant:
		value := v.Value
		return func(mgl64.Vec3) float64 { return value }
	case Noise:
		s := c.noise(v.ID)
		if s == nil {
			return zero
		}
		xz, ys := v.XZScale, v.YScale
		return func(p mgl64.Vec3) float64 { return s.Sample(p[0]*xz, p[1]*ys, p[2]*xz) }
	case Reference:
		return c.reference(v.ID)
	case Unary:
		return c.unary(v)
	case Clamp:
		in := c.compile(v.Input)
		lo, hi := v.Min, v.Max
		return func(p mgl64.Vec3) float64 { return mgl64.Clamp(in(p), lo, hi) }
	case Binary:
		return c.binary(v)
	case YClampedGradient:
		fromY, toY := float64(v.FromY), float64(v.ToY)
		fromV, toV := v.FromValue, v.ToValue
		return func(p mgl64.Vec3) float64 {
			t := mgl64.Clamp((p[1]-fromY)/(toY-fromY), 0, 1)
			return fromV + float64(t*(toV-fromV))
		}
	case ShiftedNoise:
		sx, sy, sz := c.compile(v.ShiftX), c.compile(v.ShiftY), c.compile(v.ShiftZ)
		s := c.noise(v.ID)
		if s == nil {
			return zero
		}
		xz, ys := v.XZScale, v.YScale
		return func(p mgl64.Vec3) float64 {
			return s.Sample(p[0]*xz+sx(p), p[1]*ys+sy(p), p[2]*xz+sz(p))
		}
	case SplineFunc:
		sp := c.spline(v.Spline)
		return func(p mgl64.Vec3) float64 { return float64(sp.apply(p)) }
	case BlendAlpha:
		return func(mgl64.Vec3) float64 { return 1 }
	case BlendOffset:
		return zero
	case RangeChoice:
		in, yes, no := c.compile(v.Input), c.compile(v.WhenInRange), c.compile(v.WhenOutOfRange)
		lo, hi := v.MinInclusive, v.MaxExclusive
		return func(p mgl64.Vec3) float64 {
			if x := in(p); x >= lo && x < hi {
				return yes(p)
			}
			return no(p)
		}
	case Shift:
		s := c.noise(v.ID)
		if s == nil {
			return zero
		}
		if v.Axis == ShiftB {
			return func(p mgl64.Vec3) float64 { return s.Sample(p[2]*0.25, p[0]*0.25, 0) * 4 }
		}
		return func(p mgl64.Vec3) float64 { return s.Sample(p[0]*0.25, 0, p[2]*0.25) * 4 }
	case WeirdScaled:
		in := c.compile(v.Input)
		s := c.noise(v.ID)
		if s == nil {
			return zero
		}
		rarity := rarityTunnels
		if v.Mapper == RarityCaves {
			rarity = rarityCaves
		}
		return func(p mgl64.Vec3) float64 {
			r := rarity(in(p))
			return r * math.Abs(s.Sample(p[0]/r, p[1]/r, p[2]/r))
		}
	}
	if c.err == nil {
		c.err = configErr("compile", "unsupported node %T", n)
	}
	return zero
}

func (c *compiler) unary(v Unary) evalFn {
	arg := c.compile(v.Argument)
	if v.Op.IsHint() || v.Op == OpBlendDensity {
		return arg
	}
	switch v.Op {
	case OpAbs:
		return func(p mgl64.Vec3) float64 { return math.Abs(arg(p)) }
	case OpSquare:
		return func(p mgl64.Vec3) float64 { x := arg(p); return x * x }
	case OpCube:
		return func(p mgl64.Vec3) float64 { x := arg(p); return x * x * x }
	case OpHalfNegative:
		return func(p mgl64.Vec3) float64 {
			x := arg(p)
			if x < 0 {
				return x * 0.5
			}
			return x
		}
	case OpQuarterNegative:
		return func(p mgl64.Vec3) float64 {
			x := arg(p)
			if x < 0 {
				return x * 0.25
			}
			return x
		}
	case OpSqueeze:
		return func(p mgl64.Vec3) float64 { return squeeze(arg(p)) }
	}
	return arg
}

func (c *compiler) binary(v Binary) evalFn {
	a, b := c.compile(v.Argument1), c.compile(v.Argument2)
	switch v.Op {
	case OpAdd:
		return func(p mgl64.Vec3) float64 { return a(p) + b(p) }
	case OpMul:
		return func(p mgl64.Vec3) float64 { return a(p) * b(p) }
	case OpMin:
		return func(p mgl64.Vec3) float64 { return math.Min(a(p), b(p)) }
	default:
		return func(p mgl64.Vec3) float64 { return math.Max(a(p), b(p)) }
	}
}

// squeeze is x/2 - x^3/24 over x clamped to [-1, 1].
func squeeze(x float64) float64 {
	c := mgl64.Clamp(x, -1, 1)
	return c/2 - c*c*c/24
}

func rarityTunnels(v float64) float64 {
	switch {
	case v < -0.5:
		return 0.75
	case v < 0:
		return 1
	case v < 0.5:
		return 1.5
	}
	return 2
}

func rarityCaves(v float64) float64 {
	switch {
	case v < -0.75:
		return 0.5
	case v < -0.5:
		return 0.75
	case v < 0.5:
		return 1
	case v < 0.75:
		return 2
	}
	return 3
}

type compiledSpline struct {
	coord     evalFn
	locations []float32
	values    []float32
	nested    []*compiledSpline
	slopes    []float32
}

func (c *compiler) spline(s Spline) *compiledSpline {
	cs := &compiledSpline{
		coord:     c.compile(s.Coordinate),
		locations: make([]float32, len(s.Points)),
		values:    make([]float32, len(s.Points)),
		nested:    make([]*compiledSpline, len(s.Points)),
		slopes:    make([]float32, len(s.Points)),
	}
	for i, pt := range s.Points {
		cs.locations[i] = pt.Location
		cs.values[i] = pt.Value
		cs.slopes[i] = pt.Derivative
		if pt.Nested != nil {
			cs.nested[i] = c.spline(*pt.Nested)
		}
	}
	return cs
}

func (s *compiledSpline) value(i int, p mgl64.Vec3) float32 {
	if s.nested[i] != nil {
		return s.nested[i].apply(p)
	}
	return s.values[i]
}

// apply is cubic Hermite interpolation between the bracketing points, with
// linear extension along the end slope outside the point range. Arithmetic
// is float32 and every product is rounded before it is summed, so no
// platform fuses a multiply-add.
func (s *compiledSpline) apply(p mgl64.Vec3) float32 {
	x := float32(s.coord(p))
	last := len(s.locations) - 1
	i := intervalStart(s.locations, x)
	if i < 0 {
		return extend(x, s.locations[0], s.value(0, p), s.slopes[0])
	}
	if i == last {
		return extend(x, s.locations[last], s.value(last, p), s.slopes[last])
	}
	x0, x1 := s.locations[i], s.locations[i+1]
	span := x1 - x0
	t := (x - x0) / span
	y0, y1 := s.value(i, p), s.value(i+1, p)
	a := float32(s.slopes[i]*span) - (y1 - y0)
	b := -float32(s.slopes[i+1]*span) + (y1 - y0)
	w := float32(t * (1 - t))
	return lerp32(t, y0, y1) + float32(w*lerp32(t, a, b))
}

func extend(x, location, value, slope float32) float32 {
	if slope == 0 {
		return value
	}
	return value + float32(slope*(x-location))
}

// intervalStart returns the last index whose location is <= x, or -1.
func intervalStart(locations []float32, x float32) int {
	lo, hi := 0, len(locations)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if x < locations[mid] {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo - 1
}

func lerp32(t, a, b float32) float32 { return a + float32(t*(b-a)) }
