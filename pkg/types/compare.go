package types

import (
	"cmp"
	"math"
)

// family groups types whose values are mutually comparable.
func family(t Type) int {
	switch t {
	case NullType:
		return 0
	case Int32Type, Int64Type, Float32Type, Float64Type:
		return 1
	case StringType:
		return 2
	case BoolType:
		return 3
	case DateType:
		return 4
	case DateTimeType:
		return 5
	default:
		return 6
	}
}

// Comparable reports whether a and b are both non-null and of the same
// family, e.g. any two numerics or two strings.
func Comparable(a, b Value) bool {
	return !a.IsNull() && !b.IsNull() && family(a.typ) == family(b.typ)
}

// Compare returns a total order over values: Null sorts before everything,
// numerics compare by magnitude across widths, and values of unrelated
// families order by family. NaN sorts before every other number.
func Compare(a, b Value) int {
	fa, fb := family(a.typ), family(b.typ)
	if fa != fb {
		return cmp.Compare(fa, fb)
	}

	switch fa {
	case 0:
		return 0
	case 1:
		aInt := a.typ == Int32Type || a.typ == Int64Type
		bInt := b.typ == Int32Type || b.typ == Int64Type
		if aInt && bInt {
			return cmp.Compare(a.i, b.i)
		}
		af, _ := a.Float()
		bf, _ := b.Float()
		return cmp.Compare(af, bf)
	case 2:
		return cmp.Compare(a.s, b.s)
	default:
		return cmp.Compare(a.i, b.i)
	}
}

// Equal reports semantic equality. Null equals Null and NaN equals NaN here;
// callers that need SQL semantics check IsNull first.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

// IsNaN reports whether v is a NaN float.
func (v Value) IsNaN() bool {
	return (v.typ == Float32Type || v.typ == Float64Type) && math.IsNaN(v.f)
}
