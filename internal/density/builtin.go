package density

// Host-builtin functions referenced by id rather than owned.
const (
	RefZero   = "minecraft:zero"
	RefY      = "minecraft:y"
	RefShiftX = "minecraft:shift_x"
	RefShiftZ = "minecraft:shift_z"

	// OffsetNoise is the noise the host warps horizontal coordinates with.
	OffsetNoise = "minecraft:offset"
)

// Builtins returns the definitions of the host functions this engine refers
// to, for use by a reference resolver.
func Builtins() map[string]Node {
	return map[string]Node{
		RefZero: Constant{Value: 0},
		RefY:    YClampedGradient{FromY: -4064, ToY: 4062, FromValue: -4064, ToValue: 4062},
		RefShiftX: Unary{Op: OpFlatCache, Argument: Unary{Op: OpCache2D,
			Argument: Shift{Axis: ShiftA, ID: OffsetNoise}}},
		RefShiftZ: Unary{Op: OpFlatCache, Argument: Unary{Op: OpCache2D,
			Argument: Shift{Axis: ShiftB, ID: OffsetNoise}}},
	}
}

// NoiseSource looks up samplers by noise id.
type NoiseSource interface {
	Sampler(id string) (NoiseSampler, bool)
}

// Env is a Resolver over a noise source and a table of named functions.
// Names missing from References fall back to Builtins.
type Env struct {
	Noises     NoiseSource
	References map[string]Node
}

var builtins = Builtins()

func (e Env) ResolveNoise(id string) (NoiseSampler, bool) {
	if e.Noises == nil {
		return nil, false
	}
	return e.Noises.Sampler(id)
}

func (e Env) ResolveReference(id string) (Node, bool) {
	if n, ok := e.References[id]; ok {
		return n, true
	}
	n, ok := builtins[id]
	return n, ok
}
