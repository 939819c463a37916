package aggregation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livedb/pkg/dberror"
	"livedb/pkg/types"
)

// ============================================================================
// Function parsing
// ============================================================================

func TestParseFunc(t *testing.T) {
	tests := []struct {
		in   string
		want Func
	}{
		{"sum", Of(Sum)},
		{"COUNT", Of(Count)},
		{"avg", Of(Avg)},
		{"mean", Of(Avg)},
		{"min", Of(Min)},
		{"Max", Of(Max)},
		{"median", Of(Median)},
		{"p95", Func{Op: Percentile, P: 0.95}},
		{"p0", Func{Op: Percentile, P: 0}},
		{"percentile(0.25)", Func{Op: Percentile, P: 0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFunc(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFuncErrors(t *testing.T) {
	_, err := ParseFunc("percentile(1.5)")
	require.True(t, errors.Is(err, dberror.ErrInvalidPercentile))

	_, err = ParseFunc("p101")
	require.True(t, errors.Is(err, dberror.ErrInvalidPercentile))

	_, err = ParseFunc("stddev")
	require.True(t, errors.Is(err, dberror.ErrSchemaViolation))
}

func TestPercentileOfRange(t *testing.T) {
	for _, p := range []float64{-0.1, 1.01, math.NaN()} {
		_, err := PercentileOf(p)
		assert.True(t, errors.Is(err, dberror.ErrInvalidPercentile), "p=%v", p)
	}
	for _, p := range []float64{0, 0.5, 1} {
		_, err := PercentileOf(p)
		assert.NoError(t, err, "p=%v", p)
	}
}

func TestResultType(t *testing.T) {
	assert.Equal(t, types.Int64Type, Of(Count).ResultType())
	for _, op := range []AggregateOp{Sum, Avg, Min, Max, Median, Percentile} {
		assert.Equal(t, types.Float64Type, Of(op).ResultType(), op.String())
	}
}

// ============================================================================
// Percentiles
// ============================================================================

func filled(vals ...float64) *GroupState {
	g := NewGroupState(true)
	for _, v := range vals {
		g.Add(v)
	}
	return g
}

func TestPercentileInterpolation(t *testing.T) {
	g := filled(50, 10, 40, 20, 30)

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{0.25, 20},
		{0.5, 30},
		{0.9, 46},
		{0.95, 48},
		{1, 50},
	}
	for _, tt := range tests {
		got, ok := g.Percentile(tt.p)
		require.True(t, ok)
		assert.InDelta(t, tt.want, got, 1e-9, "p=%v", tt.p)
	}

	med := g.Result(Of(Median))
	f, _ := med.Float()
	assert.InDelta(t, 30.0, f, 1e-9)
}

func TestPercentileSingleAndEmpty(t *testing.T) {
	g := filled(7)
	for _, p := range []float64{0, 0.3, 1} {
		got, ok := g.Percentile(p)
		require.True(t, ok)
		assert.Equal(t, 7.0, got)
	}

	empty := NewGroupState(true)
	assert.True(t, empty.Result(Of(Median)).IsNull())
	assert.True(t, empty.Result(Func{Op: Percentile, P: 0.9}).IsNull())
}

func TestPercentileAfterRemove(t *testing.T) {
	g := filled(10, 20, 30, 40, 50)
	g.Remove(50)
	g.Remove(10)

	got, ok := g.Percentile(0.5)
	require.True(t, ok)
	assert.InDelta(t, 30.0, got, 1e-9)
	assert.Equal(t, []float64{20, 30, 40}, g.Values())
}

// ============================================================================
// Running state
// ============================================================================

func TestSumIsExactAcrossRemovals(t *testing.T) {
	g := NewGroupState(false)
	g.Add(0.1)
	g.Add(0.2)
	g.Add(1e15)
	g.Remove(1e15)

	assert.Equal(t, 0.3, g.Sum())
	avg, ok := g.Avg()
	require.True(t, ok)
	assert.Equal(t, 0.15, avg)
}

func TestEmptyResults(t *testing.T) {
	g := NewGroupState(false)

	assert.Equal(t, types.Int64(0), g.Result(Of(Count)))
	assert.Equal(t, types.Float64(0), g.Result(Of(Sum)))
	for _, op := range []AggregateOp{Avg, Min, Max} {
		assert.True(t, g.Result(Of(op)).IsNull(), op.String())
	}
}

func TestMinMaxGoStaleOnRemove(t *testing.T) {
	g := NewGroupState(false)
	for _, v := range []float64{3, 1, 2} {
		g.Add(v)
	}
	g.Remove(1)
	require.True(t, g.Stale())

	g.Rescan([]float64{3, 2})
	require.False(t, g.Stale())
	lo, _ := g.Min()
	hi, _ := g.Max()
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 3.0, hi)
}

func TestTrackedMinMaxNeverStale(t *testing.T) {
	g := filled(3, 1, 2)
	g.Remove(1)
	g.Remove(3)

	assert.False(t, g.Stale())
	lo, _ := g.Min()
	hi, _ := g.Max()
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 2.0, hi)
}

func TestNonFiniteValues(t *testing.T) {
	g := NewGroupState(true)
	g.Add(1)
	g.Add(math.Inf(1))
	assert.True(t, math.IsInf(g.Sum(), 1))

	g.Add(math.Inf(-1))
	assert.True(t, math.IsNaN(g.Sum()))

	g.Remove(math.Inf(-1))
	g.Remove(math.Inf(1))
	assert.Equal(t, 1.0, g.Sum())

	g.Add(math.NaN())
	assert.True(t, math.IsNaN(g.Sum()))
	assert.Equal(t, 2, g.Count())

	// NaN stays out of the order statistics.
	hi, _ := g.Max()
	assert.Equal(t, 1.0, hi)
	assert.Equal(t, []float64{1}, g.Values())

	g.Remove(math.NaN())
	assert.Equal(t, 1.0, g.Sum())
}
