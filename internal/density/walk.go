package density

import "sort"

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Count returns the number of nodes in the tree.
func Count(n Node) int {
	total := 0
	Walk(n, func(Node) bool {
		total++
		return true
	})
	return total
}

// NoiseIDs returns the sorted set of noise ids sampled anywhere in the tree.
func NoiseIDs(n Node) []string {
	set := map[string]struct{}{}
	Walk(n, func(n Node) bool {
		switch v := n.(type) {
		case Noise:
			set[v.ID] = struct{}{}
		case ShiftedNoise:
			set[v.ID] = struct{}{}
		case Shift:
			set[v.ID] = struct{}{}
		case WeirdScaled:
			set[v.ID] = struct{}{}
		}
		return true
	})
	return sortedKeys(set)
}

// ReferenceIDs returns the sorted set of named references in the tree.
func ReferenceIDs(n Node) []string {
	set := map[string]struct{}{}
	Walk(n, func(n Node) bool {
		if r, ok := n.(Reference); ok {
			set[r.ID] = struct{}{}
		}
		return true
	})
	return sortedKeys(set)
}

// Operands flattens a left or right nested chain of the same binary op, e.g.
// min(min(a, b), c) yields [a b c].
func Operands(n Node, op BinaryOp) []Node {
	b, ok := n.(Binary)
	if !ok || b.Op != op {
		return []Node{n}
	}
	out := Operands(b.Argument1, op)
	return append(out, Operands(b.Argument2, op)...)
}

// Validate applies the builder's argument checks to an existing tree.
func Validate(n Node) error {
	var err error
	Walk(n, func(n Node) bool {
		if err != nil {
			return false
		}
		err = validateNode(n)
		return err == nil
	})
	return err
}

func validateNode(n Node) error {
	switch v := n.(type) {
	case nil:
		return configErr("validate", "nil node")
	case Constant:
		if !finite(v.Value) {
			return configErr("constant", "value is not finite")
		}
	case Noise:
		if v.ID == "" || !finite(v.XZScale) || !finite(v.YScale) {
			return configErr("noise", "bad noise %q", v.ID)
		}
	case Reference:
		if v.ID == "" {
			return configErr("reference", "empty id")
		}
	case Unary:
		if _, ok := unaryNames[v.Op]; !ok || v.Argument == nil {
			return configErr("unary", "bad op %d", v.Op)
		}
	case Clamp:
		if v.Input == nil || !finite(v.Min) || !finite(v.Max) || v.Min > v.Max {
			return configErr("clamp", "bad bounds [%v, %v]", v.Min, v.Max)
		}
	case Binary:
		if _, ok := binaryNames[v.Op]; !ok || v.Argument1 == nil || v.Argument2 == nil {
			return configErr("binary", "bad op %d", v.Op)
		}
	case YClampedGradient:
		if v.FromY >= v.ToY || !finite(v.FromValue) || !finite(v.ToValue) {
			return configErr("y_clamped_gradient", "bad gradient %d..%d", v.FromY, v.ToY)
		}
	case ShiftedNoise:
		if v.ID == "" || v.ShiftX == nil || v.ShiftY == nil || v.ShiftZ == nil || !finite(v.XZScale) || !finite(v.YScale) {
			return configErr("shifted_noise", "bad shifted noise %q", v.ID)
		}
	case SplineFunc:
		return v.Spline.validate("spline")
	case RangeChoice:
		if v.Input == nil || v.WhenInRange == nil || v.WhenOutOfRange == nil || v.MinInclusive > v.MaxExclusive {
			return configErr("range_choice", "bad range [%v, %v)", v.MinInclusive, v.MaxExclusive)
		}
	case Shift:
		if v.ID == "" {
			return configErr(v.Type(), "empty noise id")
		}
	case WeirdScaled:
		if v.ID == "" || v.Input == nil || (v.Mapper != RarityTunnels && v.Mapper != RarityCaves) {
			return configErr("weird_scaled_sampler", "bad sampler %q/%q", v.ID, v.Mapper)
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
