package geom

import "strconv"

// ValueKind identifies which variant a Value holds.
type ValueKind uint8

const (
	// KindNone is the kind of the zero Value, which holds no variant.
	KindNone ValueKind = iota
	// KindString marks a Value holding a string.
	KindString
	// KindNumber marks a Value holding a float64.
	KindNumber
	// KindBool marks a Value holding a bool.
	KindBool
)

// Value is a feature attribute value: a string, a number, or a boolean.
// The variant is tracked explicitly rather than through interface boxing so
// that comparisons and filter evaluation never depend on dynamic types.
//
// The zero Value holds no variant; it reports KindNone and compares equal
// only to another zero Value.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// StringValue returns a Value holding the string s.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue returns a Value holding the number n.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue returns a Value holding the boolean b.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// Kind returns the variant the Value holds.
func (v Value) Kind() ValueKind { return v.kind }

// AsString returns the string variant. The second result is false when the
// Value holds a different variant.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric variant. The second result is false when the
// Value holds a different variant.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean variant. The second result is false when the
// Value holds a different variant.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// Equal reports whether two Values hold the same variant with the same
// content. Values of different kinds are never equal; in particular the
// number 1 and the string "1" differ.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	default:
		return true
	}
}

// String renders the Value for logs and error messages.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "<none>"
	}
}

// Properties maps attribute names to values for one feature.
type Properties map[string]Value

// Get returns the value stored under key and whether it exists.
func (p Properties) Get(key string) (Value, bool) {
	v, ok := p[key]
	return v, ok
}

// Has reports whether key exists in the property set.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}
