// Package analysis derives hot-path findings and sample statistics from
// registry reports.
package analysis

import (
	"errors"
	"math"
	"slices"
)

var (
	// ErrEmptySample indicates a percentile was requested over no values.
	ErrEmptySample = errors.New("analysis: percentile of empty sample")

	// ErrInvalidPercentile indicates p is not a number.
	ErrInvalidPercentile = errors.New("analysis: invalid percentile")
)

// Percentile returns the p-th percentile of values using linear
// interpolation between closest ranks: index = p/100 * (n-1).
//
// values need not be sorted; a sorted copy is used and values is left
// untouched. p <= 0 yields the minimum and p >= 100 the maximum.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySample
	}
	if math.IsNaN(p) {
		return 0, ErrInvalidPercentile
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileSorted(sorted, p), nil
}

// percentileSorted is Percentile over an ascending, non-empty slice.
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 1:
		return sorted[0]
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}

	index := p / 100 * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	frac := index - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}

// Percentiles computes several percentiles with a single sort.
// The result is indexed like ps.
func Percentiles(values []float64, ps ...float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, ErrEmptySample
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	out := make([]float64, len(ps))
	for i, p := range ps {
		if math.IsNaN(p) {
			return nil, ErrInvalidPercentile
		}
		out[i] = percentileSorted(sorted, p)
	}
	return out, nil
}
