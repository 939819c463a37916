package types

import "strings"

// Row is one tuple of values in schema order.
type Row []Value

// Record is a row addressed by column name.
type Record map[string]Value

// Clone returns a copy that shares no backing array with r.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Equal reports whether both rows have the same length and pairwise Equal values.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if !Equal(r[i], other[i]) {
			return false
		}
	}
	return true
}

// Key returns the composite key of the whole row.
func (r Row) Key() string {
	return KeyOf(r...)
}

func (r Row) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = v.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
