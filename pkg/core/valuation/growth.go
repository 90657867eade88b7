package valuation

import (
	"fmt"
	"math"

	"intrinsic_valuation/pkg/core/calc"
	"intrinsic_valuation/pkg/models"
)

// Growth estimation policy.
const (
	DefaultGrowthRate  = 0.10
	MaxPlausibleGrowth = 0.50
)

// EstimateGrowthRate compounds a chronological series from its first to its
// last value. Unusable history falls back to DefaultGrowthRate with
// UsedDefault set and the reason recorded.
func EstimateGrowthRate(chronological []float64) models.GrowthEstimate {
	fallback := func(reason string) models.GrowthEstimate {
		return models.GrowthEstimate{Rate: DefaultGrowthRate, UsedDefault: true, Reason: reason}
	}

	n := len(chronological)
	if n < 2 {
		return fallback("fewer than 2 data points")
	}
	start, end := chronological[0], chronological[n-1]
	if start <= 0 || end <= 0 {
		return fallback("non-positive starting or ending value")
	}

	g, ok := calc.CAGR(start, end, n-1)
	if !ok || !calc.IsFinite(g) {
		return fallback("growth rate could not be computed")
	}
	if math.Abs(g) > MaxPlausibleGrowth {
		return fallback(fmt.Sprintf("historical growth of %.1f%% is implausible", g*100))
	}
	return models.GrowthEstimate{Rate: g}
}
