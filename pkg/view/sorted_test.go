package view

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"livedb/pkg/dberror"
	"livedb/pkg/types"
)

func ids(t *testing.T, v View) []int64 {
	t.Helper()
	var out []int64
	for _, row := range viewRows(t, v) {
		id, _ := row[0].Int()
		out = append(out, id)
	}
	return out
}

func TestSortedNullPlacement(t *testing.T) {
	tbl := newScores(t)
	fill(t, tbl,
		score(1, "a", types.Float64(30), types.Null()),
		score(2, "b", types.Null(), types.Null()),
		score(3, "c", types.Float64(10), types.Null()),
		score(4, "d", types.Float64(30), types.Null()),
	)

	tests := []struct {
		name string
		key  SortKey
		want []int64
	}{
		{"asc nulls last", SortKey{Column: "score"}, []int64{3, 1, 4, 2}},
		{"asc nulls first", SortKey{Column: "score", Nulls: NullsFirst}, []int64{2, 3, 1, 4}},
		{"desc nulls last", SortKey{Column: "score", Order: Desc}, []int64{1, 4, 3, 2}},
		{"desc nulls first", SortKey{Column: "score", Order: Desc, Nulls: NullsFirst}, []int64{2, 1, 4, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSorted(tbl, "s", []SortKey{tt.key})
			require.NoError(t, err)
			defer s.Close()
			require.Equal(t, tt.want, ids(t, s))
		})
	}
}

func TestSortedErrors(t *testing.T) {
	tbl := newScores(t)
	_, err := NewSorted(tbl, "s", nil)
	require.ErrorIs(t, err, dberror.ErrSchemaViolation)
	_, err = NewSorted(tbl, "s", []SortKey{{Column: "nope"}})
	require.ErrorIs(t, err, dberror.ErrColumnNotFound)
}

func TestSortedTailBatch(t *testing.T) {
	tbl := newScores(t)
	fill(t, tbl,
		score(1, "a", types.Float64(50), types.Null()),
		score(2, "b", types.Float64(10), types.Null()),
	)
	s, err := NewSorted(tbl, "s", []SortKey{{Column: "score"}})
	require.NoError(t, err)

	_, err = tbl.AppendRows([]types.Row{
		score(3, "c", types.Float64(30), types.Null()),
		score(4, "d", types.Float64(5), types.Null()),
		score(5, "e", types.Float64(50), types.Null()),
	})
	require.NoError(t, err)
	require.Equal(t, []int64{4, 2, 3, 1, 5}, ids(t, s))

	p, err := s.ParentIndex(0)
	require.NoError(t, err)
	require.Equal(t, 3, p)
}

// wantSorted orders the table the way the view under test should: score
// descending with Nulls first, then team ascending with Nulls last, then
// table index.
func wantSorted(rows []types.Row) []types.Row {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	nullsCmp := func(a, b types.Value, first bool) (int, bool) {
		an, bn := a.IsNull(), b.IsNull()
		switch {
		case an && bn:
			return 0, true
		case an == first && (an || bn):
			return -1, true
		case an || bn:
			return 1, true
		}
		return 0, false
	}
	slices.SortFunc(idx, func(i, j int) int {
		a, b := rows[i], rows[j]
		if c, done := nullsCmp(a[2], b[2], true); done {
			if c != 0 {
				return c
			}
		} else if c := types.Compare(b[2], a[2]); c != 0 {
			return c
		}
		if c, done := nullsCmp(a[3], b[3], false); done {
			if c != 0 {
				return c
			}
		} else if c := types.Compare(a[3], b[3]); c != 0 {
			return c
		}
		return cmp.Compare(i, j)
	})
	out := make([]types.Row, len(idx))
	for k, i := range idx {
		out[k] = rows[i]
	}
	return out
}

func TestSortedStaysOrdered(t *testing.T) {
	keys := []SortKey{
		{Column: "score", Order: Desc, Nulls: NullsFirst},
		{Column: "team"},
	}
	for name, opts := range configs() {
		t.Run(name, func(t *testing.T) {
			tbl := newScores(t, opts...)
			s, err := NewSorted(tbl, "s", keys)
			require.NoError(t, err)

			rng := rand.New(rand.NewPCG(3, 5))
			var id int64
			for step := 0; step < 400; step++ {
				mutate(t, tbl, rng, &id)
				if step%10 == 0 {
					requireRows(t, wantSorted(tableRows(t, tbl)), viewRows(t, s))
				}
			}
			require.NoError(t, s.Refresh())
			requireRows(t, wantSorted(tableRows(t, tbl)), viewRows(t, s))
		})
	}
}
