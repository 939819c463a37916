package aggregation

import (
	"math"

	"github.com/shopspring/decimal"

	"livedb/pkg/types"
)

// GroupState is the running statistics of one source column within one group.
//
// The sum is kept as an exact decimal, so removing a value undoes adding it
// bit for bit, and NaN and infinities are counted separately because a
// decimal cannot hold them. Extrema are maintained by comparison on add; a
// removal that takes away the current min or max marks it stale until the
// owner supplies the group's remaining values through Rescan. When the state
// tracks values, the sorted array makes both extrema and percentiles exact
// and nothing ever goes stale.
type GroupState struct {
	count   int
	numeric int
	nan     int
	posInf  int
	negInf  int
	sum     decimal.Decimal

	min, max           float64
	minStale, maxStale bool

	track  bool
	values []float64
}

// NewGroupState returns an empty state. trackValues enables the sorted value
// array required by Median and Percentile.
func NewGroupState(trackValues bool) *GroupState {
	return &GroupState{track: trackValues}
}

// Count is the number of non-null values added and not removed.
func (g *GroupState) Count() int { return g.count }

// Stale reports whether an extremum must be recomputed with Rescan.
func (g *GroupState) Stale() bool { return g.minStale || g.maxStale }

// Add folds a non-null value into the state.
func (g *GroupState) Add(v float64) {
	g.count++
	switch {
	case math.IsNaN(v):
		g.nan++
		return
	case math.IsInf(v, 1):
		g.posInf++
	case math.IsInf(v, -1):
		g.negInf++
	default:
		g.sum = g.sum.Add(decimal.NewFromFloat(v))
	}

	g.numeric++
	if g.track {
		g.values = insertSorted(g.values, v)
	}
	if g.numeric == 1 {
		g.min, g.max = v, v
		g.minStale, g.maxStale = false, false
		return
	}
	if !g.minStale && v < g.min {
		g.min = v
	}
	if !g.maxStale && v > g.max {
		g.max = v
	}
}

// Remove takes back a value previously passed to Add.
func (g *GroupState) Remove(v float64) {
	g.count--
	switch {
	case math.IsNaN(v):
		g.nan--
		return
	case math.IsInf(v, 1):
		g.posInf--
	case math.IsInf(v, -1):
		g.negInf--
	default:
		g.sum = g.sum.Sub(decimal.NewFromFloat(v))
	}

	g.numeric--
	if g.track {
		g.values, _ = removeSorted(g.values, v)
	}

	switch {
	case g.numeric == 0:
		g.min, g.max = 0, 0
		g.minStale, g.maxStale = false, false
	case g.track:
		g.min, g.max = g.values[0], g.values[len(g.values)-1]
	default:
		if v == g.min {
			g.minStale = true
		}
		if v == g.max {
			g.maxStale = true
		}
	}
}

// Rescan recomputes stale extrema from the group's current values. NaNs in
// values are ignored.
func (g *GroupState) Rescan(values []float64) {
	first := true
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if first {
			g.min, g.max = v, v
			first = false
			continue
		}
		g.min = math.Min(g.min, v)
		g.max = math.Max(g.max, v)
	}
	g.minStale, g.maxStale = false, false
}

// Sum returns the sum of all values. NaN wins over everything, and opposing
// infinities cancel to NaN.
func (g *GroupState) Sum() float64 {
	switch {
	case g.nan > 0 || (g.posInf > 0 && g.negInf > 0):
		return math.NaN()
	case g.posInf > 0:
		return math.Inf(1)
	case g.negInf > 0:
		return math.Inf(-1)
	}
	f, _ := g.sum.Float64()
	return f
}

// Avg returns the mean, or false when the state is empty.
func (g *GroupState) Avg() (float64, bool) {
	if g.count == 0 {
		return 0, false
	}
	if g.nan > 0 || g.posInf > 0 || g.negInf > 0 {
		return g.Sum() / float64(g.count), true
	}
	f, _ := g.sum.Div(decimal.NewFromInt(int64(g.count))).Float64()
	return f, true
}

// Min returns the smallest non-NaN value, or false when there is none.
func (g *GroupState) Min() (float64, bool) {
	return g.min, g.numeric > 0
}

// Max returns the largest non-NaN value, or false when there is none.
func (g *GroupState) Max() (float64, bool) {
	return g.max, g.numeric > 0
}

// Percentile interpolates linearly between neighbouring ranks of the sorted
// values. It returns false when the state holds no values or does not track
// them.
func (g *GroupState) Percentile(p float64) (float64, bool) {
	return interpolate(g.values, p)
}

// Values returns the tracked sorted values. The slice must not be modified.
func (g *GroupState) Values() []float64 {
	return g.values
}

// Result evaluates f over the state as a typed Value. Empty states yield
// Null for everything except Count (0) and Sum (0).
func (g *GroupState) Result(f Func) types.Value {
	switch f.Op {
	case Count:
		return types.Int64(int64(g.count))
	case Sum:
		return types.Float64(g.Sum())
	case Avg:
		return fromOK(g.Avg())
	case Min:
		return fromOK(g.Min())
	case Max:
		return fromOK(g.Max())
	case Median, Percentile:
		return fromOK(g.Percentile(f.Fraction()))
	default:
		return types.Null()
	}
}

func fromOK(v float64, ok bool) types.Value {
	if !ok {
		return types.Null()
	}
	return types.Float64(v)
}
