package view

import (
	"fmt"
	"testing"

	"livedb/pkg/aggregation"
	"livedb/pkg/schema"
	"livedb/pkg/storage/sequence"
	"livedb/pkg/table"
	"livedb/pkg/types"
)

// Helper function to create a table with size rows spread over five teams
func createBenchmarkTable(b *testing.B, size int, kind sequence.Kind) *table.Table {
	b.Helper()
	tbl, err := table.New("bench", schema.MustNew(
		schema.Column{Name: "id", Type: types.Int64Type},
		schema.Column{Name: "name", Type: types.StringType},
		schema.Column{Name: "score", Type: types.Float64Type, Nullable: true},
		schema.Column{Name: "team", Type: types.StringType, Nullable: true},
	), table.WithStorage(kind))
	if err != nil {
		b.Fatal(err)
	}

	teams := []string{"A", "B", "C", "D", "E"}
	rows := make([]types.Row, size)
	for i := range rows {
		rows[i] = types.Row{
			types.Int64(int64(i)),
			types.String("n"),
			types.Float64(float64(i % 100)),
			types.String(teams[i%len(teams)]),
		}
	}
	if _, err := tbl.AppendRows(rows); err != nil {
		b.Fatal(err)
	}
	return tbl
}

// BenchmarkSortedMiddleInsert measures one middle insert propagated to a
// sorted view.
func BenchmarkSortedMiddleInsert(b *testing.B) {
	for _, kind := range []sequence.Kind{sequence.Array, sequence.Tiered} {
		for _, size := range []int{1_000, 10_000} {
			b.Run(fmt.Sprintf("%s/%d", kind, size), func(b *testing.B) {
				tbl := createBenchmarkTable(b, size, kind)
				if _, err := NewSorted(tbl, "s", []SortKey{{Column: "score"}}); err != nil {
					b.Fatal(err)
				}
				row := types.Row{types.Int64(-1), types.String("x"), types.Float64(50), types.Null()}

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if err := tbl.InsertRow(size/2, row); err != nil {
						b.Fatal(err)
					}
					if _, err := tbl.DeleteRow(size / 2); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// BenchmarkAggregateUpdate measures a single-cell update flowing into a
// grouped aggregate with an exact percentile.
func BenchmarkAggregateUpdate(b *testing.B) {
	tbl := createBenchmarkTable(b, 10_000, sequence.Array)
	specs := []aggregation.Spec{
		{Column: "score", Func: aggregation.Of(aggregation.Sum)},
		{Column: "score", Func: aggregation.Of(aggregation.Max)},
		{Column: "score", Func: aggregation.Of(aggregation.Median)},
	}
	if _, err := NewAggregate(tbl, "agg", []string{"team"}, specs); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := tbl.SetValue(i%10_000, "score", types.Float64(float64(i%97))); err != nil {
			b.Fatal(err)
		}
	}
}
