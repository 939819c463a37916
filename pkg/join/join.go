// Package join provides the equi-join machinery behind join views: a hash
// index over composite keys and the probe that pairs left rows with right rows.
package join

import "livedb/pkg/types"

// Kind selects how unmatched left rows are treated.
type Kind int

const (
	// Inner emits only left rows that have at least one match.
	Inner Kind = iota
	// Left also emits unmatched left rows, padded with Null on the right.
	Left
)

func (k Kind) String() string {
	switch k {
	case Inner:
		return "INNER"
	case Left:
		return "LEFT"
	default:
		return "UNKNOWN"
	}
}

// Key builds the composite key of row over cols. It reports false when any
// key value is Null, since Null never equals anything in a join.
func Key(row types.Row, cols []int) (string, bool) {
	vals := make([]types.Value, len(cols))
	for i, c := range cols {
		if row[c].IsNull() {
			return "", false
		}
		vals[i] = row[c]
	}
	return types.KeyOf(vals...), true
}

// Index maps composite keys to the positions of the rows holding them.
type Index struct {
	cols    []int
	buckets map[string][]int
	rows    int
}

// NewIndex hashes rows on cols. Rows with a Null key are left out.
func NewIndex(rows []types.Row, cols []int) *Index {
	idx := &Index{
		cols:    cols,
		buckets: make(map[string][]int, len(rows)),
		rows:    len(rows),
	}
	for i, row := range rows {
		if k, ok := Key(row, cols); ok {
			idx.buckets[k] = append(idx.buckets[k], i)
		}
	}
	return idx
}

// Lookup returns the positions of rows whose key equals key, in ascending order.
func (idx *Index) Lookup(key string) []int {
	return idx.buckets[key]
}

// Keys returns the number of distinct non-null keys.
func (idx *Index) Keys() int {
	return len(idx.buckets)
}

// Rows returns the number of rows the index was built over, Null keys included.
func (idx *Index) Rows() int {
	return idx.rows
}

// Match pairs a left row with a right row. Right is -1 for a padded left row.
type Match struct {
	Left  int
	Right int
}

// Probe joins left against the index. Matches are emitted in left order and,
// for one left row, in right order.
func (idx *Index) Probe(left []types.Row, cols []int, kind Kind) []Match {
	out := make([]Match, 0, len(left))
	for i, row := range left {
		var hits []int
		if k, ok := Key(row, cols); ok {
			hits = idx.buckets[k]
		}
		if len(hits) == 0 {
			if kind == Left {
				out = append(out, Match{Left: i, Right: -1})
			}
			continue
		}
		for _, r := range hits {
			out = append(out, Match{Left: i, Right: r})
		}
	}
	return out
}

// Run hashes right on rightCols and probes it with left on leftCols.
func Run(kind Kind, left, right []types.Row, leftCols, rightCols []int) []Match {
	return NewIndex(right, rightCols).Probe(left, leftCols, kind)
}
