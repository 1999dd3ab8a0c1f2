package density

import (
	"encoding/json"
	"math"
	"sync"
)

// Func is an immutable handle on a density-function tree. Every builder call
// returns a new Func; the receiver is never changed. An invalid argument
// poisons the returned Func and everything built from it, and Err or Build
// reports the first such error.
type Func struct {
	node Node
	err  error
	memo *buildMemo
}

type buildMemo struct {
	once sync.Once
	data []byte
	err  error
}

func newFunc(n Node, err error) Func {
	return Func{node: n, err: err, memo: &buildMemo{}}
}

func invalid(err error) Func { return newFunc(nil, err) }

// Wrap lifts an existing node, e.g. one returned by Decode, into a Func.
func Wrap(n Node) Func {
	if n == nil {
		return invalid(configErr("wrap", "nil node"))
	}
	return newFunc(n, Validate(n))
}

func (f Func) Node() Node { return f.node }

func (f Func) Err() error {
	if f.err != nil {
		return f.err
	}
	if f.node == nil {
		return configErr("func", "empty density function")
	}
	return nil
}

// Build serializes the tree to its wire form. The result is computed once per
// Func and shared by copies of it.
func (f Func) Build() ([]byte, error) {
	if err := f.Err(); err != nil {
		return nil, err
	}
	f.memo.once.Do(func() {
		f.memo.data, f.memo.err = json.Marshal(f.node)
	})
	return f.memo.data, f.memo.err
}

func (f Func) MarshalJSON() ([]byte, error) { return f.Build() }

func Const(v float64) Func {
	if !finite(v) {
		return invalid(configErr("constant", "value %v is not finite", v))
	}
	return newFunc(Constant{Value: v}, nil)
}

// NoiseFunc samples the named noise. Negative scales flip the sampled axis and
// are accepted.
func NoiseFunc(id string, xzScale, yScale float64) Func {
	if id == "" {
		return invalid(configErr("noise", "empty noise id"))
	}
	if !finite(xzScale) || !finite(yScale) {
		return invalid(configErr("noise", "%s: scale is not finite", id))
	}
	return newFunc(Noise{ID: id, XZScale: xzScale, YScale: yScale}, nil)
}

// Ref names a density function the consumer resolves; the id is not checked here.
func Ref(id string) Func {
	if id == "" {
		return invalid(configErr("reference", "empty id"))
	}
	return newFunc(Reference{ID: id}, nil)
}

func YGradient(fromY, toY int, fromValue, toValue float64) Func {
	if fromY >= toY {
		return invalid(configErr("y_clamped_gradient", "from_y %d must be below to_y %d", fromY, toY))
	}
	if !finite(fromValue) || !finite(toValue) {
		return invalid(configErr("y_clamped_gradient", "values must be finite"))
	}
	return newFunc(YClampedGradient{FromY: fromY, ToY: toY, FromValue: fromValue, ToValue: toValue}, nil)
}

// Shifted samples a noise warped by three offset functions. Warping is
// horizontal: the noise is sampled with xz_scale=scale and y_scale=0.
func Shifted(id string, shiftX, shiftY, shiftZ Func, scale float64) Func {
	if id == "" {
		return invalid(configErr("shifted_noise", "empty noise id"))
	}
	if !finite(scale) {
		return invalid(configErr("shifted_noise", "%s: scale is not finite", id))
	}
	if err := firstErr(shiftX, shiftY, shiftZ); err != nil {
		return invalid(err)
	}
	return newFunc(ShiftedNoise{
		ID:      id,
		XZScale: scale,
		YScale:  0,
		ShiftX:  shiftX.node,
		ShiftY:  shiftY.node,
		ShiftZ:  shiftZ.node,
	}, nil)
}

func ShiftAFunc(id string) Func {
	if id == "" {
		return invalid(configErr("shift_a", "empty noise id"))
	}
	return newFunc(Shift{Axis: ShiftA, ID: id}, nil)
}

func ShiftBFunc(id string) Func {
	if id == "" {
		return invalid(configErr("shift_b", "empty noise id"))
	}
	return newFunc(Shift{Axis: ShiftB, ID: id}, nil)
}

func Alpha() Func  { return newFunc(BlendAlpha{}, nil) }
func Offset() Func { return newFunc(BlendOffset{}, nil) }

func (f Func) unary(op UnaryOp) Func {
	if err := f.Err(); err != nil {
		return invalid(err)
	}
	return newFunc(Unary{Op: op, Argument: f.node}, nil)
}

func (f Func) Abs() Func             { return f.unary(OpAbs) }
func (f Func) Square() Func          { return f.unary(OpSquare) }
func (f Func) Cube() Func            { return f.unary(OpCube) }
func (f Func) HalfNegative() Func    { return f.unary(OpHalfNegative) }
func (f Func) QuarterNegative() Func { return f.unary(OpQuarterNegative) }
func (f Func) Squeeze() Func         { return f.unary(OpSqueeze) }
func (f Func) BlendDensity() Func    { return f.unary(OpBlendDensity) }

// Cache and the other caching ops are evaluation hints for the consumer and
// never change the value.
func (f Func) Cache() Func          { return f.unary(OpCacheOnce) }
func (f Func) FlatCache() Func      { return f.unary(OpFlatCache) }
func (f Func) Cache2D() Func        { return f.unary(OpCache2D) }
func (f Func) CacheAllInCell() Func { return f.unary(OpCacheAllInCell) }
func (f Func) Interpolated() Func   { return f.unary(OpInterpolated) }

func (f Func) Clamp(min, max float64) Func {
	if err := f.Err(); err != nil {
		return invalid(err)
	}
	if !finite(min) || !finite(max) {
		return invalid(configErr("clamp", "bounds must be finite"))
	}
	if min > max {
		return invalid(configErr("clamp", "min %v exceeds max %v", min, max))
	}
	return newFunc(Clamp{Input: f.node, Min: min, Max: max}, nil)
}

func (f Func) binary(op BinaryOp, other Func) Func {
	if err := firstErr(f, other); err != nil {
		return invalid(err)
	}
	return newFunc(Binary{Op: op, Argument1: f.node, Argument2: other.node}, nil)
}

func (f Func) Add(other Func) Func { return f.binary(OpAdd, other) }
func (f Func) Mul(other Func) Func { return f.binary(OpMul, other) }
func (f Func) Min(other Func) Func { return f.binary(OpMin, other) }
func (f Func) Max(other Func) Func { return f.binary(OpMax, other) }

func (f Func) AddConst(v float64) Func { return f.Add(Const(v)) }
func (f Func) MulConst(v float64) Func { return f.Mul(Const(v)) }

func (f Func) RangeChoice(minInclusive, maxExclusive float64, whenIn, whenOut Func) Func {
	if err := firstErr(f, whenIn, whenOut); err != nil {
		return invalid(err)
	}
	if !finite(minInclusive) || !finite(maxExclusive) || minInclusive > maxExclusive {
		return invalid(configErr("range_choice", "bad range [%v, %v)", minInclusive, maxExclusive))
	}
	return newFunc(RangeChoice{
		Input:          f.node,
		MinInclusive:   minInclusive,
		MaxExclusive:   maxExclusive,
		WhenInRange:    whenIn.node,
		WhenOutOfRange: whenOut.node,
	}, nil)
}

// WeirdScaled samples noise id scaled by the rarity chosen from f.
func (f Func) WeirdScaled(id string, mapper RarityMapper) Func {
	if err := f.Err(); err != nil {
		return invalid(err)
	}
	if id == "" {
		return invalid(configErr("weird_scaled_sampler", "empty noise id"))
	}
	if mapper != RarityTunnels && mapper != RarityCaves {
		return invalid(configErr("weird_scaled_sampler", "unknown rarity mapper %q", mapper))
	}
	return newFunc(WeirdScaled{Input: f.node, ID: id, Mapper: mapper}, nil)
}

// MinOf folds fs with min from the left: min(min(f0, f1), f2)...
func MinOf(fs ...Func) Func { return fold(OpMin, fs) }

func MaxOf(fs ...Func) Func { return fold(OpMax, fs) }

func SumOf(fs ...Func) Func { return fold(OpAdd, fs) }

func fold(op BinaryOp, fs []Func) Func {
	if len(fs) == 0 {
		return invalid(configErr(op.String(), "no arguments"))
	}
	acc := fs[0]
	for _, f := range fs[1:] {
		acc = acc.binary(op, f)
	}
	if err := acc.Err(); err != nil {
		return invalid(err)
	}
	return acc
}

func firstErr(fs ...Func) error {
	for _, f := range fs {
		if err := f.Err(); err != nil {
			return err
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
