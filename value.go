package mediaremote

import (
	"fmt"
	"time"
)

// Kind identifies the native type a Value was decoded from.
type Kind int

const (
	KindUnsupported Kind = iota
	KindString
	KindInt
	KindUint
	KindFloat
	KindBool
	KindTime
	KindData
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindData:
		return "data"
	default:
		return "unsupported"
	}
}

// Value is one entry of the now-playing info dictionary. The dictionary
// mixes strings, numbers, booleans, dates and raw image data under
// framework-defined keys, so every entry carries its decoded kind. Values
// decoded from a native type the package does not recognize have
// KindUnsupported; they keep their key in the dictionary but expose no
// payload.
type Value struct {
	kind Kind
	str  string
	i    int64
	u    uint64
	f    float64
	b    bool
	t    time.Time
	data []byte
}

// StringValue returns a Value of KindString.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// IntValue returns a Value of KindInt.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// UintValue returns a Value of KindUint.
func UintValue(u uint64) Value { return Value{kind: KindUint, u: u} }

// FloatValue returns a Value of KindFloat.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue returns a Value of KindBool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// TimeValue returns a Value of KindTime.
func TimeValue(t time.Time) Value { return Value{kind: KindTime, t: t} }

// DataValue returns a Value of KindData holding raw bytes.
func DataValue(d []byte) Value { return Value{kind: KindData, data: d} }

// UnsupportedValue returns a Value for a native type with no decoding rule.
func UnsupportedValue() Value { return Value{kind: KindUnsupported} }

// Kind reports the decoded kind of the value.
func (v Value) Kind() Kind { return v.kind }

// String returns the string payload of a KindString value.
func (v Value) String() (string, bool) {
	return v.str, v.kind == KindString
}

// Int returns the signed payload of a KindInt value.
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == KindInt
}

// Uint returns the unsigned payload of a KindUint value.
func (v Value) Uint() (uint64, bool) {
	return v.u, v.kind == KindUint
}

// Bool returns the payload of a KindBool value.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Time returns the payload of a KindTime value.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindTime
}

// Data returns the raw bytes of a KindData value.
func (v Value) Data() ([]byte, bool) {
	return v.data, v.kind == KindData
}

// Float64 returns the value as a float64 for any numeric kind. Date values
// convert to seconds since the Unix epoch.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindUint:
		return float64(v.u), true
	case KindTime:
		return float64(v.t.UnixNano()) / float64(time.Second), true
	default:
		return 0, false
	}
}

// GoString renders the value for debugging.
func (v Value) GoString() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindUint:
		return fmt.Sprintf("%d", v.u)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindData:
		return fmt.Sprintf("[%d bytes of data]", len(v.data))
	default:
		return "unsupported"
	}
}
