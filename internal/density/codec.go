package density

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type typed struct {
	Type string `json:"type"`
}

func (c Constant) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string  `json:"type"`
		Argument float64 `json:"argument"`
	}{c.Type(), c.Value})
}

func (n Noise) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string  `json:"type"`
		Noise   string  `json:"noise"`
		XZScale float64 `json:"xz_scale"`
		YScale  float64 `json:"y_scale"`
	}{n.Type(), n.ID, n.XZScale, n.YScale})
}

// A reference is written as the bare id, the host's inline form.
func (r Reference) MarshalJSON() ([]byte, error) { return json.Marshal(r.ID) }

func (u Unary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Argument Node   `json:"argument"`
	}{u.Type(), u.Argument})
}

func (c Clamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string  `json:"type"`
		Input Node    `json:"input"`
		Min   float64 `json:"min"`
		Max   float64 `json:"max"`
	}{c.Type(), c.Input, c.Min, c.Max})
}

func (b Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string `json:"type"`
		Argument1 Node   `json:"argument1"`
		Argument2 Node   `json:"argument2"`
	}{b.Type(), b.Argument1, b.Argument2})
}

func (g YClampedGradient) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type      string  `json:"type"`
		FromY     int     `json:"from_y"`
		ToY       int     `json:"to_y"`
		FromValue float64 `json:"from_value"`
		ToValue   float64 `json:"to_value"`
	}{g.Type(), g.FromY, g.ToY, g.FromValue, g.ToValue})
}

func (s ShiftedNoise) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string  `json:"type"`
		Noise   string  `json:"noise"`
		XZScale float64 `json:"xz_scale"`
		YScale  float64 `json:"y_scale"`
		ShiftX  Node    `json:"shift_x"`
		ShiftY  Node    `json:"shift_y"`
		ShiftZ  Node    `json:"shift_z"`
	}{s.Type(), s.ID, s.XZScale, s.YScale, s.ShiftX, s.ShiftY, s.ShiftZ})
}

func (s SplineFunc) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Spline Spline `json:"spline"`
	}{s.Type(), s.Spline})
}

func (a BlendAlpha) MarshalJSON() ([]byte, error)  { return json.Marshal(typed{a.Type()}) }
func (o BlendOffset) MarshalJSON() ([]byte, error) { return json.Marshal(typed{o.Type()}) }

func (r RangeChoice) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type           string  `json:"type"`
		Input          Node    `json:"input"`
		MinInclusive   float64 `json:"min_inclusive"`
		MaxExclusive   float64 `json:"max_exclusive"`
		WhenInRange    Node    `json:"when_in_range"`
		WhenOutOfRange Node    `json:"when_out_of_range"`
	}{r.Type(), r.Input, r.MinInclusive, r.MaxExclusive, r.WhenInRange, r.WhenOutOfRange})
}

func (s Shift) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Argument string `json:"argument"`
	}{s.Type(), s.ID})
}

func (w WeirdScaled) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string       `json:"type"`
		Mapper RarityMapper `json:"rarity_value_mapper"`
		Noise  string       `json:"noise"`
		Input  Node         `json:"input"`
	}{w.Type(), w.Mapper, w.ID, w.Input})
}

type splinePointWire struct {
	Location   float32 `json:"location"`
	Value      any     `json:"value"`
	Derivative float32 `json:"derivative"`
}

func (s Spline) MarshalJSON() ([]byte, error) {
	points := make([]splinePointWire, len(s.Points))
	for i, p := range s.Points {
		points[i] = splinePointWire{Location: p.Location, Value: p.Value, Derivative: p.Derivative}
		if p.Nested != nil {
			points[i].Value = *p.Nested
		}
	}
	return json.Marshal(struct {
		Coordinate Node              `json:"coordinate"`
		Points     []splinePointWire `json:"points"`
	}{s.Coordinate, points})
}

// Decode parses the wire form back into a tree. Bare numbers decode as
// constants and bare strings as references, as the host accepts both.
func Decode(data []byte) (Node, error) {
	n, err := decodeNode(data, "$")
	if err != nil {
		return nil, err
	}
	if err := Validate(n); err != nil {
		return nil, err
	}
	return n, nil
}

// DecodeSpline parses a spline object.
func DecodeSpline(data []byte) (Spline, error) {
	s, err := decodeSpline(data, "$")
	if err != nil {
		return Spline{}, err
	}
	if err := s.validate("spline"); err != nil {
		return Spline{}, err
	}
	return s, nil
}

type fields struct {
	m    map[string]json.RawMessage
	path string
}

func (f fields) raw(key string) (json.RawMessage, error) {
	v, ok := f.m[key]
	if !ok {
		return nil, fmt.Errorf("density: %s: missing %q", f.path, key)
	}
	return v, nil
}

func (f fields) float(key string) (float64, error) {
	raw, err := f.raw(key)
	if err != nil {
		return 0, err
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("density: %s.%s: %w", f.path, key, err)
	}
	return v, nil
}

func (f fields) int(key string) (int, error) {
	raw, err := f.raw(key)
	if err != nil {
		return 0, err
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("density: %s.%s: %w", f.path, key, err)
	}
	return v, nil
}

func (f fields) str(key string) (string, error) {
	raw, err := f.raw(key)
	if err != nil {
		return "", err
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("density: %s.%s: %w", f.path, key, err)
	}
	return v, nil
}

func (f fields) node(key string) (Node, error) {
	raw, err := f.raw(key)
	if err != nil {
		return nil, err
	}
	return decodeNode(raw, f.path+"."+key)
}

func decodeNode(data []byte, path string) (Node, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("density: %s: empty value", path)
	}
	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return nil, fmt.Errorf("density: %s: %w", path, err)
		}
		return Reference{ID: id}, nil
	case '{':
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("density: %s: %w", path, err)
		}
		return Constant{Value: v}, nil
	}

	f := fields{path: path}
	if err := json.Unmarshal(data, &f.m); err != nil {
		return nil, fmt.Errorf("density: %s: %w", path, err)
	}
	typ, err := f.str("type")
	if err != nil {
		return nil, err
	}
	if !strings.Contains(typ, ":") {
		typ = ns + typ
	}
	for op, name := range unaryNames {
		if name == typ {
			arg, err := f.node("argument")
			if err != nil {
				return nil, err
			}
			return Unary{Op: op, Argument: arg}, nil
		}
	}
	for op, name := range binaryNames {
		if name == typ {
			a, err := f.node("argument1")
			if err != nil {
				return nil, err
			}
			b, err := f.node("argument2")
			if err != nil {
				return nil, err
			}
			return Binary{Op: op, Argument1: a, Argument2: b}, nil
		}
	}

	switch typ {
	case ns + "constant":
		v, err := f.float("argument")
		return Constant{Value: v}, err
	case ns + "noise":
		var n Noise
		if n.ID, err = f.str("noise"); err != nil {
			return nil, err
		}
		if n.XZScale, err = f.float("xz_scale"); err != nil {
			return nil, err
		}
		if n.YScale, err = f.float("y_scale"); err != nil {
			return nil, err
		}
		return n, nil
	case ns + "clamp":
		var c Clamp
		if c.Input, err = f.node("input"); err != nil {
			return nil, err
		}
		if c.Min, err = f.float("min"); err != nil {
			return nil, err
		}
		if c.Max, err = f.float("max"); err != nil {
			return nil, err
		}
		return c, nil
	case ns + "y_clamped_gradient":
		var g YClampedGradient
		if g.FromY, err = f.int("from_y"); err != nil {
			return nil, err
		}
		if g.ToY, err = f.int("to_y"); err != nil {
			return nil, err
		}
		if g.FromValue, err = f.float("from_value"); err != nil {
			return nil, err
		}
		if g.ToValue, err = f.float("to_value"); err != nil {
			return nil, err
		}
		return g, nil
	case ns + "shifted_noise":
		var s ShiftedNoise
		if s.ID, err = f.str("noise"); err != nil {
			return nil, err
		}
		if s.XZScale, err = f.float("xz_scale"); err != nil {
			return nil, err
		}
		if s.YScale, err = f.float("y_scale"); err != nil {
			return nil, err
		}
		if s.ShiftX, err = f.node("shift_x"); err != nil {
			return nil, err
		}
		if s.ShiftY, err = f.node("shift_y"); err != nil {
			return nil, err
		}
		if s.ShiftZ, err = f.node("shift_z"); err != nil {
			return nil, err
		}
		return s, nil
	case ns + "spline":
		raw, err := f.raw("spline")
		if err != nil {
			return nil, err
		}
		s, err := decodeSpline(raw, path+".spline")
		if err != nil {
			return nil, err
		}
		return SplineFunc{Spline: s}, nil
	case ns + "blend_alpha":
		return BlendAlpha{}, nil
	case ns + "blend_offset":
		return BlendOffset{}, nil
	case ns + "range_choice":
		var r RangeChoice
		if r.Input, err = f.node("input"); err != nil {
			return nil, err
		}
		if r.MinInclusive, err = f.float("min_inclusive"); err != nil {
			return nil, err
		}
		if r.MaxExclusive, err = f.float("max_exclusive"); err != nil {
			return nil, err
		}
		if r.WhenInRange, err = f.node("when_in_range"); err != nil {
			return nil, err
		}
		if r.WhenOutOfRange, err = f.node("when_out_of_range"); err != nil {
			return nil, err
		}
		return r, nil
	case ns + "shift_a", ns + "shift_b":
		s := Shift{Axis: ShiftA}
		if typ == ns+"shift_b" {
			s.Axis = ShiftB
		}
		if s.ID, err = f.str("argument"); err != nil {
			return nil, err
		}
		return s, nil
	case ns + "weird_scaled_sampler":
		var w WeirdScaled
		mapper, err := f.str("rarity_value_mapper")
		if err != nil {
			return nil, err
		}
		w.Mapper = RarityMapper(mapper)
		if w.ID, err = f.str("noise"); err != nil {
			return nil, err
		}
		if w.Input, err = f.node("input"); err != nil {
			return nil, err
		}
		return w, nil
	}
	return nil, fmt.Errorf("density: %s: unknown type %q", path, typ)
}

func decodeSpline(data []byte, path string) (Spline, error) {
	var wire struct {
		Coordinate json.RawMessage `json:"coordinate"`
		Points     []struct {
			Location   float32         `json:"location"`
			Value      json.RawMessage `json:"value"`
			Derivative float32         `json:"derivative"`
		} `json:"points"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return Spline{}, fmt.Errorf("density: %s: %w", path, err)
	}
	coord, err := decodeNode(wire.Coordinate, path+".coordinate")
	if err != nil {
		return Spline{}, err
	}
	s := Spline{Coordinate: coord, Points: make([]SplinePoint, len(wire.Points))}
	for i, p := range wire.Points {
		pt := SplinePoint{Location: p.Location, Derivative: p.Derivative}
		v := bytes.TrimSpace(p.Value)
		if len(v) > 0 && v[0] == '{' {
			nested, err := decodeSpline(v, fmt.Sprintf("%s.points[%d].value", path, i))
			if err != nil {
				return Spline{}, err
			}
			pt.Nested = &nested
		} else if err := json.Unmarshal(v, &pt.Value); err != nil {
			return Spline{}, fmt.Errorf("density: %s.points[%d].value: %w", path, i, err)
		}
		s.Points[i] = pt
	}
	return s, nil
}
