package view

import (
	"math/rand/v2"
	"testing"

	"github.com/RoaringBitmap/roaring"
	"github.com/stretchr/testify/require"

	"livedb/pkg/dberror"
	"livedb/pkg/expr"
	"livedb/pkg/types"
)

func TestFilterExpr(t *testing.T) {
	tbl := newScores(t)
	fill(t, tbl,
		score(1, "a", types.Float64(70), types.String("x")),
		score(2, "b", types.Float64(20), types.String("x")),
		score(3, "c", types.Float64(90), types.Null()),
		score(4, "d", types.Float64(55), types.String("y")),
	)

	f, err := NewFilterExpr(tbl, "good", "score >= 50 AND team IS NOT NULL")
	require.NoError(t, err)

	requireRows(t, []types.Row{
		score(1, "a", types.Float64(70), types.String("x")),
		score(4, "d", types.Float64(55), types.String("y")),
	}, viewRows(t, f))

	p, err := f.ParentIndex(1)
	require.NoError(t, err)
	require.Equal(t, 3, p)

	bm, err := f.Matches()
	require.NoError(t, err)
	require.True(t, bm.Equals(roaring.BitmapOf(0, 3)))
}

func TestFilterErrors(t *testing.T) {
	tbl := newScores(t)

	_, err := NewFilterExpr(tbl, "bad", "score >=")
	require.ErrorIs(t, err, dberror.ErrInvalidExpression)

	_, err = NewFilterExpr(tbl, "bad", "age > 3")
	require.ErrorIs(t, err, dberror.ErrColumnNotFound)
}

func TestFilterShiftsOnMiddleEdits(t *testing.T) {
	tbl := newScores(t)
	fill(t, tbl,
		score(1, "a", types.Float64(70), types.Null()),
		score(2, "b", types.Float64(10), types.Null()),
		score(3, "c", types.Float64(80), types.Null()),
	)
	f, err := NewFilterExpr(tbl, "hi", "score > 50")
	require.NoError(t, err)

	require.NoError(t, tbl.InsertRow(0, score(0, "z", types.Float64(5), types.Null())))
	bm, err := f.Matches()
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 3}, bm.ToArray())

	_, err = tbl.DeleteRow(1)
	require.NoError(t, err)
	bm, err = f.Matches()
	require.NoError(t, err)
	require.Equal(t, []uint32{2}, bm.ToArray())

	require.NoError(t, tbl.SetValue(1, "score", types.Float64(99)))
	bm, err = f.Matches()
	require.NoError(t, err)
	require.Equal(t, []uint32{1, 2}, bm.ToArray())

	_, err = tbl.DeleteRows(roaring.BitmapOf(0, 2))
	require.NoError(t, err)
	requireRows(t, []types.Row{score(2, "b", types.Float64(99), types.Null())}, viewRows(t, f))
}

// TestFilterMatchesRecompute checks that after any sequence of mutations
// the view holds exactly the matching rows, in table order.
func TestFilterMatchesRecompute(t *testing.T) {
	for name, opts := range configs() {
		t.Run(name, func(t *testing.T) {
			tbl := newScores(t, opts...)
			pred, err := expr.CompileString("score >= 40 OR team == 'a'", tbl.Schema())
			require.NoError(t, err)
			f, err := NewFilter(tbl, "f", pred)
			require.NoError(t, err)

			rng := rand.New(rand.NewPCG(7, 11))
			var id int64
			for step := 0; step < 400; step++ {
				mutate(t, tbl, rng, &id)
				if step%10 != 0 {
					continue
				}
				var want []types.Row
				for _, row := range tableRows(t, tbl) {
					if pred(row) {
						want = append(want, row)
					}
				}
				requireRows(t, want, viewRows(t, f))
			}
		})
	}
}
