// pkg/eligibility/scalar.go
package eligibility

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the concrete type held by a Scalar.
type Kind int

const (
	KindInvalid Kind = iota
	KindNumber
	KindString
	KindBool
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindSet:
		return "set"
	default:
		return "invalid"
	}
}

// Scalar is a closed tagged value: number, string, boolean, or string-set.
// Profile attributes and rule values are Scalars so operator dispatch stays
// exhaustive and type mismatches surface as Undecided instead of panics.
type Scalar struct {
	kind Kind
	num  float64
	str  string
	b    bool
	set  []string
}

func Number(v float64) Scalar { return Scalar{kind: KindNumber, num: v} }
func Str(v string) Scalar     { return Scalar{kind: KindString, str: v} }
func Bool(v bool) Scalar      { return Scalar{kind: KindBool, b: v} }
func Set(vals ...string) Scalar {
	return Scalar{kind: KindSet, set: append([]string(nil), vals...)}
}

func (s Scalar) Kind() Kind { return s.kind }

// Truthy reports the boolean coercion of the value: non-zero numbers,
// non-empty strings, true booleans and non-empty sets are truthy.
func (s Scalar) Truthy() bool {
	switch s.kind {
	case KindNumber:
		return s.num != 0
	case KindString:
		return s.str != ""
	case KindBool:
		return s.b
	case KindSet:
		return len(s.set) > 0
	default:
		return false
	}
}

func (s Scalar) String() string {
	switch s.kind {
	case KindNumber:
		return strconv.FormatFloat(s.num, 'f', -1, 64)
	case KindString:
		return s.str
	case KindBool:
		return strconv.FormatBool(s.b)
	case KindSet:
		return "[" + strings.Join(s.set, ", ") + "]"
	default:
		return "<invalid>"
	}
}

// ScalarFromInterface converts a decoded JSON value into a Scalar.
// Nested objects and mixed arrays are rejected.
func ScalarFromInterface(raw interface{}) (Scalar, error) {
	switch v := raw.(type) {
	case bool:
		return Bool(v), nil
	case float64:
		return Number(v), nil
	case int:
		return Number(float64(v)), nil
	case int64:
		return Number(float64(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Scalar{}, fmt.Errorf("invalid number %q: %w", v.String(), err)
		}
		return Number(f), nil
	case string:
		return Str(v), nil
	case []interface{}:
		vals := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return Scalar{}, fmt.Errorf("set values must be strings, got %T", item)
			}
			vals = append(vals, str)
		}
		return Set(vals...), nil
	case []string:
		return Set(v...), nil
	case nil:
		return Scalar{}, fmt.Errorf("null is not a valid attribute value")
	default:
		return Scalar{}, fmt.Errorf("unsupported attribute value type %T", raw)
	}
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	v, err := ScalarFromInterface(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindNumber:
		return json.Marshal(s.num)
	case KindString:
		return json.Marshal(s.str)
	case KindBool:
		return json.Marshal(s.b)
	case KindSet:
		return json.Marshal(s.set)
	default:
		return []byte("null"), nil
	}
}

// Profile maps attribute names to typed values. It is read-only during
// evaluation; the engine never mutates it.
type Profile map[string]Scalar

func (p Profile) Get(attribute string) (Scalar, bool) {
	v, ok := p[attribute]
	return v, ok
}

// Operand is the right-hand side of a criterion: a single Scalar or a list
// of Scalars (membership sets and between bounds).
type Operand struct {
	scalar Scalar
	list   []Scalar
	isList bool
}

func Value(s Scalar) Operand { return Operand{scalar: s} }
func ValueList(vals ...Scalar) Operand {
	return Operand{list: append([]Scalar(nil), vals...), isList: true}
}

func (o Operand) IsList() bool   { return o.isList }
func (o Operand) Scalar() Scalar { return o.scalar }
func (o Operand) List() []Scalar { return append([]Scalar(nil), o.list...) }

// IsZero reports whether the operand was never set (missing "value" field).
func (o Operand) IsZero() bool {
	return !o.isList && o.scalar.kind == KindInvalid
}

func (o Operand) String() string {
	if !o.isList {
		return o.scalar.String()
	}
	parts := make([]string, len(o.list))
	for i, v := range o.list {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (o *Operand) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty operand")
	}
	switch trimmed[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		list := make([]Scalar, len(raw))
		for i, item := range raw {
			if err := json.Unmarshal(item, &list[i]); err != nil {
				return err
			}
		}
		*o = Operand{list: list, isList: true}
		return nil
	case '{':
		// Legacy between bounds: {"min": x, "max": y}.
		var bounds struct {
			Min *Scalar `json:"min"`
			Max *Scalar `json:"max"`
		}
		if err := json.Unmarshal(trimmed, &bounds); err != nil {
			return err
		}
		if bounds.Min == nil || bounds.Max == nil {
			return fmt.Errorf("object operand requires min and max")
		}
		*o = Operand{list: []Scalar{*bounds.Min, *bounds.Max}, isList: true}
		return nil
	default:
		var s Scalar
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*o = Operand{scalar: s}
		return nil
	}
}

func (o Operand) MarshalJSON() ([]byte, error) {
	if o.isList {
		return json.Marshal(o.list)
	}
	return json.Marshal(o.scalar)
}
