package calc

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// DESCRIPTIVE STATISTICS
// Empty input returns zero rather than NaN so callers never leak NaN.
// =============================================================================

// Mean calculates the arithmetic mean.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the population standard deviation.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.PopStdDev(data, nil)
}

// Median returns the middle value, averaging the two middle values for even lengths.
// The input is not modified.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// CoefficientOfVariation returns σ/|μ|. ok is false when the mean is
// (numerically) zero while the series still varies.
func CoefficientOfVariation(data []float64) (cv float64, ok bool) {
	sd := StdDev(data)
	if sd == 0 {
		return 0, true
	}
	mu := math.Abs(Mean(data))
	if mu <= Epsilon {
		return 0, false
	}
	return sd / mu, true
}

// RelativeChange returns (current - base) / |base|. A zero base yields the
// sign of the change.
func RelativeChange(base, current float64) float64 {
	if math.Abs(base) <= Epsilon {
		switch {
		case current > Epsilon:
			return 1
		case current < -Epsilon:
			return -1
		default:
			return 0
		}
	}
	return (current - base) / math.Abs(base)
}

// HalfAverages splits a chronological series into an older and a recent half
// and returns each half's mean. Odd lengths drop the middle element.
func HalfAverages(chronological []float64) (older, recent float64, ok bool) {
	n := len(chronological)
	if n < 2 {
		return 0, 0, false
	}
	half := n / 2
	return Mean(chronological[:half]), Mean(chronological[n-half:]), true
}

// CAGR calculates compound annual growth between two positive values.
//
// FORMULA: (End / Start)^(1/years) - 1
func CAGR(start, end float64, years int) (float64, bool) {
	if start <= 0 || end <= 0 || years <= 0 {
		return 0, false
	}
	return math.Pow(end/start, 1.0/float64(years)) - 1, true
}
