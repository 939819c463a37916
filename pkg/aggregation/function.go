// Package aggregation holds the per-group running statistics behind
// aggregate views: exact sums, counts, extrema, and exact percentiles over a
// maintained sorted array.
package aggregation

import (
	"fmt"
	"strconv"
	"strings"

	"livedb/pkg/dberror"
	"livedb/pkg/types"
)

// AggregateOp represents the type of aggregation operation to perform
type AggregateOp int

const (
	Sum AggregateOp = iota
	Count
	Avg
	Min
	Max
	Median
	Percentile
)

// String returns a string representation of the aggregation operation
func (op AggregateOp) String() string {
	switch op {
	case Sum:
		return "SUM"
	case Count:
		return "COUNT"
	case Avg:
		return "AVG"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	case Median:
		return "MEDIAN"
	case Percentile:
		return "PERCENTILE"
	default:
		return "UNKNOWN"
	}
}

// Func is an aggregate function. P is only meaningful for Percentile.
type Func struct {
	Op AggregateOp
	P  float64
}

// Of returns the Func for a parameterless op.
func Of(op AggregateOp) Func {
	return Func{Op: op}
}

// PercentileOf returns a Percentile Func, rejecting p outside [0, 1].
func PercentileOf(p float64) (Func, error) {
	f := Func{Op: Percentile, P: p}
	if err := f.Validate(); err != nil {
		return Func{}, err
	}
	return f, nil
}

// Validate checks the percentile range.
func (f Func) Validate() error {
	if f.Op == Percentile && !(f.P >= 0 && f.P <= 1) {
		return dberror.InvalidPercentile(f.P)
	}
	return nil
}

// Fraction returns the percentile this function computes, or -1 for
// functions that are not order statistics.
func (f Func) Fraction() float64 {
	switch f.Op {
	case Median:
		return 0.5
	case Percentile:
		return f.P
	default:
		return -1
	}
}

// NeedsValues reports whether the function requires the sorted value array.
func (f Func) NeedsValues() bool {
	return f.Op == Median || f.Op == Percentile
}

// ResultType is the type of the function's output column.
func (f Func) ResultType() types.Type {
	if f.Op == Count {
		return types.Int64Type
	}
	return types.Float64Type
}

// AcceptsNonNumeric reports whether the function can read a non-numeric column.
func (f Func) AcceptsNonNumeric() bool {
	return f.Op == Count
}

func (f Func) String() string {
	if f.Op == Percentile {
		return fmt.Sprintf("PERCENTILE(%s)", strconv.FormatFloat(f.P, 'f', -1, 64))
	}
	return f.Op.String()
}

// ParseFunc parses a function name such as "sum", "median", "p95" or
// "percentile(0.9)". Names are case-insensitive.
func ParseFunc(name string) (Func, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	switch s {
	case "sum":
		return Of(Sum), nil
	case "count":
		return Of(Count), nil
	case "avg", "mean":
		return Of(Avg), nil
	case "min":
		return Of(Min), nil
	case "max":
		return Of(Max), nil
	case "median", "med":
		return Of(Median), nil
	}

	if rest, ok := strings.CutPrefix(s, "percentile("); ok && strings.HasSuffix(rest, ")") {
		p, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(rest, ")")), 64)
		if err != nil {
			return Func{}, dberror.InvalidPercentile(-1).WithDetail("cannot parse %q", name)
		}
		return PercentileOf(p)
	}

	if rest, ok := strings.CutPrefix(s, "p"); ok && rest != "" {
		n, err := strconv.Atoi(rest)
		if err == nil {
			return PercentileOf(float64(n) / 100)
		}
	}

	return Func{}, dberror.SchemaViolation("unknown aggregate function %q", name).
		WithHint("use sum, count, avg, min, max, median, pNN or percentile(x)")
}

// Spec requests one output column: Func applied to Column, named Name.
type Spec struct {
	Name   string
	Column string
	Func   Func
}
