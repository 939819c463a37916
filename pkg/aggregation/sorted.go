package aggregation

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// insertSorted inserts v keeping s ascending. Equal values go after existing ones.
func insertSorted[T constraints.Ordered](s []T, v T) []T {
	i, found := slices.BinarySearch(s, v)
	for found && i < len(s) && s[i] == v {
		i++
	}
	return slices.Insert(s, i, v)
}

// removeSorted removes one occurrence of v and reports whether it was present.
func removeSorted[T constraints.Ordered](s []T, v T) ([]T, bool) {
	i, found := slices.BinarySearch(s, v)
	if !found {
		return s, false
	}
	return slices.Delete(s, i, i+1), true
}

// interpolate computes PERCENTILE_CONT over an ascending slice. It returns
// false for an empty slice.
func interpolate[T constraints.Integer | constraints.Float](sorted []T, p float64) (float64, bool) {
	n := len(sorted)
	if n == 0 {
		return 0, false
	}
	if n == 1 {
		return float64(sorted[0]), true
	}

	idx := p * float64(n-1)
	lo := int(idx)
	if lo >= n-1 {
		return float64(sorted[n-1]), true
	}
	frac := idx - float64(lo)
	a, b := float64(sorted[lo]), float64(sorted[lo+1])
	return a + (b-a)*frac, true
}
