package density

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestBuildIsIdempotent(t *testing.T) {
	f := NoiseFunc("test:continents", 0.25, 0).Abs().AddConst(-0.5).Clamp(-1, 1).FlatCache()
	a, err := f.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	b, err := f.Build()
	if err != nil {
		t.Fatalf("build again: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("builds differ:\n%s\n%s", a, b)
	}
	copyOf := f
	c, _ := copyOf.Build()
	if !bytes.Equal(a, c) {
		t.Fatalf("copy built differently")
	}
}

func TestEmbeddedChildIsUnaffectedByFurtherChaining(t *testing.T) {
	base := NoiseFunc("test:n", 1, 1)
	parent := base.Abs()
	before, _ := parent.Build()

	_ = base.Square().Mul(Const(3))
	_ = base.AddConst(2)

	after, _ := parent.Build()
	if !bytes.Equal(before, after) {
		t.Fatalf("parent changed: %s -> %s", before, after)
	}
	u := parent.Node().(Unary)
	if _, ok := u.Argument.(Noise); !ok {
		t.Fatalf("child = %T", u.Argument)
	}
}

func TestClampRejectsInvertedBounds(t *testing.T) {
	f := Const(1).Clamp(2, 1)
	var ce *ConfigurationError
	if err := f.Err(); !errors.As(err, &ce) || ce.Op != "clamp" {
		t.Fatalf("expected clamp ConfigurationError, got %v", err)
	}
	// the error sticks to everything built from it
	g := f.Add(Const(1)).Cache2D()
	if _, err := g.Build(); !errors.As(err, &ce) {
		t.Fatalf("expected sticky error, got %v", err)
	}
}

func TestConstructorErrors(t *testing.T) {
	cases := []struct {
		name string
		f    Func
	}{
		{"nan constant", Const(math.NaN())},
		{"inf scale", NoiseFunc("a:b", math.Inf(1), 0)},
		{"empty noise", NoiseFunc("", 1, 1)},
		{"empty ref", Ref("")},
		{"flat gradient", YGradient(10, 10, 0, 1)},
		{"inverted range", Const(0).RangeChoice(1, 0, Const(1), Const(2))},
		{"bad mapper", Const(0).WeirdScaled("a:b", "type_9")},
		{"empty fold", MinOf()},
		{"zero value", Func{}},
	}
	for _, tc := range cases {
		var ce *ConfigurationError
		if err := tc.f.Err(); !errors.As(err, &ce) {
			t.Fatalf("%s: expected ConfigurationError, got %v", tc.name, err)
		}
	}
}

func TestNegativeScaleIsAccepted(t *testing.T) {
	if err := NoiseFunc("a:b", -1, -0.5).Err(); err != nil {
		t.Fatalf("negative scale: %v", err)
	}
}

func TestShiftedUsesHorizontalWarp(t *testing.T) {
	f := Shifted("a:temperature", Ref(RefShiftX), Const(0), Ref(RefShiftZ), 0.25)
	s := f.Node().(ShiftedNoise)
	if s.XZScale != 0.25 || s.YScale != 0 {
		t.Fatalf("scales = %v/%v", s.XZScale, s.YScale)
	}
}

func TestFoldIsLeftAssociative(t *testing.T) {
	a, b, c := Const(1), Const(2), Const(3)
	n := MinOf(a, b, c).Node().(Binary)
	inner, ok := n.Argument1.(Binary)
	if !ok || inner.Op != OpMin {
		t.Fatalf("argument1 = %#v", n.Argument1)
	}
	if got := Operands(n, OpMin); len(got) != 3 {
		t.Fatalf("operands = %d", len(got))
	}
}

func TestWrapValidates(t *testing.T) {
	if err := Wrap(Clamp{Input: Constant{}, Min: 1, Max: 0}).Err(); err == nil {
		t.Fatalf("expected error")
	}
	if err := Wrap(nil).Err(); err == nil {
		t.Fatalf("expected error for nil")
	}
}
