package types

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Value is a single typed cell. The zero Value is Null.
//
// Value is comparable with ==, but float payloads follow IEEE rules there,
// so use Equal for semantic comparison.
type Value struct {
	typ Type
	i   int64
	f   float64
	s   string
}

// Null returns the Null value.
func Null() Value { return Value{} }

func Int32(v int32) Value     { return Value{typ: Int32Type, i: int64(v)} }
func Int64(v int64) Value     { return Value{typ: Int64Type, i: v} }
func Float32(v float32) Value { return Value{typ: Float32Type, f: float64(v)} }
func Float64(v float64) Value { return Value{typ: Float64Type, f: v} }
func String(v string) Value   { return Value{typ: StringType, s: v} }

func Bool(v bool) Value {
	if v {
		return Value{typ: BoolType, i: 1}
	}
	return Value{typ: BoolType}
}

// Date builds a Date from days since the Unix epoch.
func Date(days int32) Value { return Value{typ: DateType, i: int64(days)} }

// DateTime builds a DateTime from milliseconds since the Unix epoch.
func DateTime(millis int64) Value { return Value{typ: DateTimeType, i: millis} }

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Value {
	return Date(int32(t.UTC().Unix() / 86400))
}

// DateTimeOf converts t to millisecond precision.
func DateTimeOf(t time.Time) Value {
	return DateTime(t.UnixMilli())
}

func (v Value) Type() Type   { return v.typ }
func (v Value) IsNull() bool { return v.typ == NullType }

// Int returns the integer payload of Int32, Int64, Date and DateTime values.
func (v Value) Int() (int64, bool) {
	if v.typ.IsInteger() {
		return v.i, true
	}
	return 0, false
}

// Float returns any numeric payload widened to float64.
func (v Value) Float() (float64, bool) {
	switch v.typ {
	case Int32Type, Int64Type:
		return float64(v.i), true
	case Float32Type, Float64Type:
		return v.f, true
	default:
		return 0, false
	}
}

func (v Value) Str() (string, bool) {
	return v.s, v.typ == StringType
}

func (v Value) Boolean() (bool, bool) {
	return v.i != 0, v.typ == BoolType
}

// Time converts Date and DateTime values to a UTC time.Time.
func (v Value) Time() (time.Time, bool) {
	switch v.typ {
	case DateType:
		return time.Unix(v.i*86400, 0).UTC(), true
	case DateTimeType:
		return time.UnixMilli(v.i).UTC(), true
	default:
		return time.Time{}, false
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.typ {
	case NullType:
		return "NULL"
	case Int32Type, Int64Type:
		return strconv.FormatInt(v.i, 10)
	case Float32Type:
		return strconv.FormatFloat(v.f, 'f', -1, 32)
	case Float64Type:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case StringType:
		return v.s
	case BoolType:
		return strconv.FormatBool(v.i != 0)
	case DateType:
		t, _ := v.Time()
		return t.Format(time.DateOnly)
	case DateTimeType:
		t, _ := v.Time()
		return t.Format("2006-01-02T15:04:05.000Z07:00")
	default:
		return "?"
	}
}

// Key returns a canonical encoding used for hashing group and join keys.
// Whole numbers encode the same regardless of their numeric type, so
// Int32(1), Int64(1) and Float64(1) share a key.
func (v Value) Key() string {
	switch v.typ {
	case NullType:
		return "\x00"
	case Int32Type, Int64Type:
		return "n" + strconv.FormatInt(v.i, 10)
	case Float32Type, Float64Type:
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1<<63 {
			return "n" + strconv.FormatInt(int64(v.f), 10)
		}
		return "f" + strconv.FormatFloat(v.f, 'g', -1, 64)
	case StringType:
		return "s" + v.s
	case BoolType:
		return "b" + strconv.FormatInt(v.i, 10)
	case DateType:
		return "d" + strconv.FormatInt(v.i, 10)
	case DateTimeType:
		return "t" + strconv.FormatInt(v.i, 10)
	default:
		return "?"
	}
}

// KeyOf builds a composite key. Each component is length-prefixed so that
// no two distinct tuples collide.
func KeyOf(vals ...Value) string {
	var b strings.Builder
	for _, v := range vals {
		k := v.Key()
		b.WriteString(strconv.Itoa(len(k)))
		b.WriteByte(':')
		b.WriteString(k)
	}
	return b.String()
}

// MarshalJSON encodes the value as its natural JSON form. Dates and
// non-finite floats, which JSON cannot express, become strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case NullType:
		return []byte("null"), nil
	case Int32Type, Int64Type:
		return json.Marshal(v.i)
	case Float32Type, Float64Type:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
		return json.Marshal(v.f)
	case StringType:
		return json.Marshal(v.s)
	case BoolType:
		return json.Marshal(v.i != 0)
	default:
		return json.Marshal(v.String())
	}
}
