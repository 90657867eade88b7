// Package quality scores business quality: historical ROIC against the cost
// of capital, and the heuristic economic-moat signals derived from statements.
package quality

// =============================================================================
// POLICY THRESHOLDS
// These are calibration choices, not physical law. Recalibrate here; the
// branching logic in roic.go and moat.go only refers to these names.
// =============================================================================

// Tax handling for NOPAT.
const (
	DefaultTaxRate      = 0.21
	MaxEffectiveTaxRate = 0.50
)

// ROIC trend: relative change of the recent-half average over the older half.
const TrendChangeThreshold = 0.10

// ROIC-vs-WACC moat classification.
const (
	WideMoatSpread        = 0.08
	WideMoatConsistency   = 0.70
	NarrowMoatSpread      = 0.02
	NarrowMoatConsistency = 0.50

	// Absolute ROIC fallbacks when no WACC is available.
	WideMoatAbsoluteROIC   = 0.20
	NarrowMoatAbsoluteROIC = 0.12
)

// Brand power: high and steady gross margins.
const (
	BrandMinGrossMargin       = 0.40
	BrandMaxGrossMarginStdDev = 0.05
)

// Scale: capital-efficient revenue generation with high returns.
const (
	ScaleMinAssetTurnover = 1.0
	ScaleMinROIC          = 0.15
)

// Switching costs: dependable revenue growth and growing deferred revenue.
const (
	SwitchingMinPositiveGrowthShare   = 0.80
	SwitchingMinDeferredRevenueGrowth = 0.10
	MinGrowthObservations             = 2
)

// Patents / IP: heavy R&D supported by premium margins.
const (
	PatentsMinRDIntensity = 0.08
	PatentsMinGrossMargin = 0.50
)

// Business stability from the dispersion of YoY revenue growth.
const (
	StableMaxGrowthStdDev   = 0.10
	CyclicalMaxGrowthStdDev = 0.25
)

// Moat strength scoring.
const (
	SourcesForStrengthBonus = 3
	MaxStrengthScore        = 2
)
