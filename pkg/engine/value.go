package engine

import (
	"fmt"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindString is a textual value.
	KindString Kind = iota + 1
	// KindBool is a boolean value.
	KindBool
	// KindNumber is a numeric value stored as float64.
	KindNumber
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	default:
		return "invalid"
	}
}

// Value is a configuration value: a string, a boolean or a number.
// The zero Value is invalid.
type Value struct {
	kind Kind
	s    string
	b    bool
	n    float64
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{kind: KindString, s: s}
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// NumberValue returns a numeric Value.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// ValueOf converts a Go value into a Value. Strings, booleans and every
// integer and float kind are accepted; anything else yields an
// *UnsupportedValueError.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		if !x.IsValid() {
			return Value{}, &UnsupportedValueError{Value: v}
		}
		return x, nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return NumberValue(float64(x)), nil
	case int8:
		return NumberValue(float64(x)), nil
	case int16:
		return NumberValue(float64(x)), nil
	case int32:
		return NumberValue(float64(x)), nil
	case int64:
		return NumberValue(float64(x)), nil
	case uint:
		return NumberValue(float64(x)), nil
	case uint8:
		return NumberValue(float64(x)), nil
	case uint16:
		return NumberValue(float64(x)), nil
	case uint32:
		return NumberValue(float64(x)), nil
	case uint64:
		return NumberValue(float64(x)), nil
	case float32:
		return NumberValue(float64(x)), nil
	case float64:
		return NumberValue(x), nil
	default:
		return Value{}, &UnsupportedValueError{Value: v}
	}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds one of the three variants.
func (v Value) IsValid() bool { return v.kind != 0 }

// Str returns the string variant and whether v holds one.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Bool returns the boolean variant and whether v holds one.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Number returns the numeric variant and whether v holds one.
func (v Value) Number() (float64, bool) { return v.n, v.kind == KindNumber }

// Interface returns the held value as a plain Go value (string, bool or float64).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	default:
		return nil
	}
}

// String renders the value as text.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	default:
		return "<invalid>"
	}
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("engine.Value{%s: %s}", v.kind, v.String())
}

// coerce converts v to the requested kind. Strings parse into booleans and
// numbers, numbers format into strings. Boolean to number (and back) is
// never allowed.
func coerce(v Value, to Kind) (Value, bool) {
	if v.kind == to {
		return v, true
	}
	switch to {
	case KindBool:
		if v.kind == KindString {
			b, err := strconv.ParseBool(v.s)
			if err != nil {
				return Value{}, false
			}
			return BoolValue(b), true
		}
	case KindNumber:
		if v.kind == KindString {
			n, err := strconv.ParseFloat(v.s, 64)
			if err != nil {
				return Value{}, false
			}
			return NumberValue(n), true
		}
	case KindString:
		if v.kind == KindNumber || v.kind == KindBool {
			return StringValue(v.String()), true
		}
	}
	return Value{}, false
}
