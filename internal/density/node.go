package density

// Node is one density function in an expression tree. The set of
// implementations is closed; every concrete type lives in this package and is
// a plain value, so a node embedded as a child can never be changed through
// another handle.
type Node interface {
	// Type is the wire tag, e.g. "minecraft:add".
	Type() string
	// Children returns the owned sub-functions in wire order. Spline nodes
	// report every coordinate function reachable through the spline.
	Children() []Node
	isNode()
}

const ns = "minecraft:"

type Constant struct {
	Value float64
}

// Noise samples a named noise at (x*XZScale, y*YScale, z*XZScale).
type Noise struct {
	ID      string
	XZScale float64
	YScale  float64
}

// Reference names a density function resolved by the consumer.
type Reference struct {
	ID string
}

type UnaryOp uint8

const (
	OpAbs UnaryOp = iota + 1
	OpSquare
	OpCube
	OpHalfNegative
	OpQuarterNegative
	OpSqueeze
	OpCacheOnce
	OpFlatCache
	OpCache2D
	OpCacheAllInCell
	OpInterpolated
	OpBlendDensity
)

var unaryNames = map[UnaryOp]string{
	OpAbs:             ns + "abs",
	OpSquare:          ns + "square",
	OpCube:            ns + "cube",
	OpHalfNegative:    ns + "half_negative",
	OpQuarterNegative: ns + "quarter_negative",
	OpSqueeze:         ns + "squeeze",
	OpCacheOnce:       ns + "cache_once",
	OpFlatCache:       ns + "flat_cache",
	OpCache2D:         ns + "cache_2d",
	OpCacheAllInCell:  ns + "cache_all_in_cell",
	OpInterpolated:    ns + "interpolated",
	OpBlendDensity:    ns + "blend_density",
}

// IsHint reports whether the op only annotates evaluation strategy and leaves
// the value of its argument unchanged.
func (op UnaryOp) IsHint() bool {
	switch op {
	case OpCacheOnce, OpFlatCache, OpCache2D, OpCacheAllInCell, OpInterpolated:
		return true
	}
	return false
}

func (op UnaryOp) String() string { return unaryNames[op] }

type Unary struct {
	Op       UnaryOp
	Argument Node
}

type Clamp struct {
	Input Node
	Min   float64
	Max   float64
}

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota + 1
	OpMul
	OpMin
	OpMax
)

var binaryNames = map[BinaryOp]string{
	OpAdd: ns + "add",
	OpMul: ns + "mul",
	OpMin: ns + "min",
	OpMax: ns + "max",
}

func (op BinaryOp) String() string { return binaryNames[op] }

type Binary struct {
	Op        BinaryOp
	Argument1 Node
	Argument2 Node
}

// YClampedGradient maps world Y linearly from FromValue at FromY to ToValue
// at ToY and holds the end values outside that span.
type YClampedGradient struct {
	FromY     int
	ToY       int
	FromValue float64
	ToValue   float64
}

// ShiftedNoise samples a noise at a position displaced by three offset
// functions.
type ShiftedNoise struct {
	ID      string
	XZScale float64
	YScale  float64
	ShiftX  Node
	ShiftY  Node
	ShiftZ  Node
}

type SplineFunc struct {
	Spline Spline
}

type BlendAlpha struct{}

type BlendOffset struct{}

// RangeChoice selects WhenInRange when Input lies in [MinInclusive, MaxExclusive).
type RangeChoice struct {
	Input          Node
	MinInclusive   float64
	MaxExclusive   float64
	WhenInRange    Node
	WhenOutOfRange Node
}

type ShiftAxis uint8

const (
	ShiftA ShiftAxis = iota + 1
	ShiftB
)

// Shift samples a noise at quarter resolution in the horizontal plane,
// producing the classic domain-warp offsets.
type Shift struct {
	Axis ShiftAxis
	ID   string
}

type RarityMapper string

const (
	RarityTunnels RarityMapper = "type_1"
	RarityCaves   RarityMapper = "type_2"
)

// WeirdScaled samples a noise at a scale chosen from Input by a rarity mapper.
type WeirdScaled struct {
	Input  Node
	ID     string
	Mapper RarityMapper
}

func (Constant) Type() string         { return ns + "constant" }
func (Noise) Type() string            { return ns + "noise" }
func (Reference) Type() string        { return "reference" }
func (u Unary) Type() string          { return u.Op.String() }
func (Clamp) Type() string            { return ns + "clamp" }
func (b Binary) Type() string         { return b.Op.String() }
func (YClampedGradient) Type() string { return ns + "y_clamped_gradient" }
func (ShiftedNoise) Type() string     { return ns + "shifted_noise" }
func (SplineFunc) Type() string       { return ns + "spline" }
func (BlendAlpha) Type() string       { return ns + "blend_alpha" }
func (BlendOffset) Type() string      { return ns + "blend_offset" }
func (RangeChoice) Type() string      { return ns + "range_choice" }
func (WeirdScaled) Type() string      { return ns + "weird_scaled_sampler" }

func (s Shift) Type() string {
	if s.Axis == ShiftB {
		return ns + "shift_b"
	}
	return ns + "shift_a"
}

func (Constant) Children() []Node         { return nil }
func (Noise) Children() []Node            { return nil }
func (Reference) Children() []Node        { return nil }
func (u Unary) Children() []Node          { return []Node{u.Argument} }
func (c Clamp) Children() []Node          { return []Node{c.Input} }
func (b Binary) Children() []Node         { return []Node{b.Argument1, b.Argument2} }
func (YClampedGradient) Children() []Node { return nil }
func (s ShiftedNoise) Children() []Node   { return []Node{s.ShiftX, s.ShiftY, s.ShiftZ} }
func (s SplineFunc) Children() []Node     { return s.Spline.coordinates(nil) }
func (BlendAlpha) Children() []Node       { return nil }
func (BlendOffset) Children() []Node      { return nil }
func (r RangeChoice) Children() []Node    { return []Node{r.Input, r.WhenInRange, r.WhenOutOfRange} }
func (Shift) Children() []Node            { return nil }
func (w WeirdScaled) Children() []Node    { return []Node{w.Input} }

func (Constant) isNode()         {}
func (Noise) isNode()            {}
func (Reference) isNode()        {}
func (Unary) isNode()            {}
func (Clamp) isNode()            {}
func (Binary) isNode()           {}
func (YClampedGradient) isNode() {}
func (ShiftedNoise) isNode()     {}
func (SplineFunc) isNode()       {}
func (BlendAlpha) isNode()       {}
func (BlendOffset) isNode()      {}
func (RangeChoice) isNode()      {}
func (Shift) isNode()            {}
func (WeirdScaled) isNode()      {}
