package thing

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind discriminates the scalar shapes a property can carry.
type ValueKind int

const (
	KindNumber ValueKind = iota
	KindBoolean
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a typed property scalar.
//
// Properties only ever carry numbers, booleans or enum strings, so a
// small tagged union beats interface{} plumbing: every consumer knows
// exactly which shapes can appear and the zero value is a usable
// number 0.
type Value struct {
	kind ValueKind
	num  float64
	b    bool
	str  string
}

func NumberValue(f float64) Value { return Value{kind: KindNumber, num: f} }
func BooleanValue(b bool) Value { return Value{kind: KindBoolean, b: b} }
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func (v Value) Kind() ValueKind { return v.kind }
func (v Value) Number() float64 { return v.num }
func (v Value) Boolean() bool   { return v.b }
func (v Value) Str() string     { return v.str }

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	return v == other
}

// Interface returns the value as its natural Go scalar, for callers
// that hand values to encoding or storage layers.
func (v Value) Interface() any {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindString:
		return v.str
	default:
		return v.num
	}
}

// MarshalJSON encodes the value as a bare JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) String() string {
	return fmt.Sprintf("%v", v.Interface())
}

// IsNumeric reports whether a raw appliance reading is usable as a
// number.
//
// Numbers always are. Strings count only when every byte is a decimal
// digit, which deliberately rejects the adapter's sentinel strings
// ("-", "--", "M", "N/A") and anything with a decimal point; device
// clients are expected to hand back parsed floats for real readings,
// so a string here is almost always a sentinel.
func IsNumeric(raw any) bool {
	switch v := raw.(type) {
	case float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case string:
		if v == "" {
			return false
		}
		for _, r := range v {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// numericValue converts a raw reading already vetted by IsNumeric into
// a number Value.
func numericValue(raw any) Value {
	switch v := raw.(type) {
	case float64:
		return NumberValue(v)
	case float32:
		return NumberValue(float64(v))
	case int:
		return NumberValue(float64(v))
	case int8:
		return NumberValue(float64(v))
	case int16:
		return NumberValue(float64(v))
	case int32:
		return NumberValue(float64(v))
	case int64:
		return NumberValue(float64(v))
	case uint:
		return NumberValue(float64(v))
	case uint8:
		return NumberValue(float64(v))
	case uint16:
		return NumberValue(float64(v))
	case uint32:
		return NumberValue(float64(v))
	case uint64:
		return NumberValue(float64(v))
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return NumberValue(f)
	default:
		return NumberValue(0)
	}
}
