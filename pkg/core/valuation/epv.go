package valuation

import (
	"fmt"
	"math"
	"sort"

	"intrinsic_valuation/pkg/core/calc"
	"intrinsic_valuation/pkg/core/quality"
	"intrinsic_valuation/pkg/core/validate"
	"intrinsic_valuation/pkg/models"
)

// EPV policy thresholds.
const (
	DefaultCapexRevenuePercentage    = 0.03
	DefaultCapexDepreciationMultiple = 1.0

	// VolatilityCeiling stands in for the coefficient of variation when
	// earnings swing around a zero mean.
	VolatilityCeiling = 1.0

	HighVolatility       = 0.30
	MinReliablePeriods   = 3
	AdjustmentShareLimit = 0.25

	MinTypicalCostOfCapital = 0.05
	MaxTypicalCostOfCapital = 0.20

	HighConfidenceQuality     = 75.0
	HighConfidenceConsistency = 0.7
	MediumConfidenceQuality   = 50.0
)

// Quality score deductions.
const (
	maxVolatilityPenalty    = 50.0
	negativeEarningsPenalty = 20.0
	shortHistoryPenalty     = 10.0
	lowConfidenceAdjPenalty = 5.0
	maxLowConfidencePenalty = 15.0
	mediumQualityPenalty    = 10.0
	lowQualityPenalty       = 20.0
)

// =============================================================================
// STAGE 1: NORMALIZATION
// =============================================================================

// normalizationWindow returns the most recent `period` entries, newest first.
func normalizationWindow(history []models.HistoricalEarnings, period int) []models.HistoricalEarnings {
	sorted := make([]models.HistoricalEarnings, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date > sorted[j].Date
		}
		return sorted[i].Year > sorted[j].Year
	})
	if period > len(sorted) {
		period = len(sorted)
	}
	return sorted[:period]
}

// earningsVolatility is the population coefficient of variation of net income.
func earningsVolatility(values []float64) float64 {
	cv, ok := calc.CoefficientOfVariation(values)
	if !ok {
		return VolatilityCeiling
	}
	return cv
}

// QualityScore grades the earnings base from 0 to 100.
//
// FORMULA: 100 - min(50, volatility × 100) - 20 (any loss) - 10 (< 3 periods)
// - 5 per low-confidence adjustment (max 15) - 10 / 20 (medium / low quality)
func QualityScore(volatility float64, anyNegative bool, periods int, adjustments []models.EarningsAdjustment, eq models.EarningsQuality) float64 {
	score := 100 - math.Min(maxVolatilityPenalty, volatility*100)
	if anyNegative {
		score -= negativeEarningsPenalty
	}
	if periods < MinReliablePeriods {
		score -= shortHistoryPenalty
	}

	low := 0.0
	for _, adj := range adjustments {
		if adj.Confidence == models.ConfidenceLow {
			low += lowConfidenceAdjPenalty
		}
	}
	score -= math.Min(maxLowConfidencePenalty, low)

	switch eq {
	case models.EarningsQualityMedium:
		score -= mediumQualityPenalty
	case models.EarningsQualityLow:
		score -= lowQualityPenalty
	}

	return math.Max(0, math.Min(100, score))
}

// NormalizeEarnings derives sustainable earnings from the history.
// period must already be clamped to [1, len(history)].
func NormalizeEarnings(in models.EPVInputs, period int) (normalized float64, summary models.EarningsNormalization) {
	window := normalizationWindow(in.HistoricalEarnings, period)

	values := make([]float64, len(window))
	anyNegative := false
	for i, e := range window {
		values[i] = e.NetIncome
		if e.NetIncome < 0 {
			anyNegative = true
		}
	}

	var base float64
	switch in.NormalizationMethod {
	case models.NormalizeAverage:
		base = calc.Mean(values)
	case models.NormalizeMedian:
		base = calc.Median(values)
	case models.NormalizeLatest:
		if len(values) > 0 {
			base = values[0]
		}
	case models.NormalizeManual:
		if in.ManualNormalizedEarnings != nil {
			base = *in.ManualNormalizedEarnings
		}
	}

	var adjustments float64
	for _, adj := range in.EarningsAdjustments {
		adjustments += adj.Amount
	}

	// Oldest first for the trend.
	chronological := make([]float64, len(values))
	for i, v := range values {
		chronological[len(values)-1-i] = v
	}

	volatility := earningsVolatility(values)
	summary = models.EarningsNormalization{
		Method:           in.NormalizationMethod,
		BaseEarnings:     base,
		TotalAdjustments: adjustments,
		Volatility:       volatility,
		Trend:            quality.ClassifyTrend(chronological),
		PeriodsUsed:      len(window),
		QualityScore:     QualityScore(volatility, anyNegative, len(window), in.EarningsAdjustments, in.EarningsQuality),
	}
	return base + adjustments, summary
}

// =============================================================================
// STAGE 2: MAINTENANCE CAPEX
// =============================================================================

// MaintenanceCapex estimates the reinvestment needed to sustain current
// earnings. It returns zero unless the capex deduction is switched on.
func MaintenanceCapex(in models.EPVInputs, period int) float64 {
	capex := in.MaintenanceCapexAnalysis
	if !capex.IncludeMaintenanceCapex {
		return 0
	}

	window := normalizationWindow(in.HistoricalEarnings, period)
	var latest models.HistoricalEarnings
	if len(window) > 0 {
		latest = window[0]
	}

	switch capex.Method {
	case models.CapexManual:
		return capex.ManualAmount
	case models.CapexRevenuePercentage:
		pct := capex.RevenuePercentage
		if pct == 0 {
			pct = DefaultCapexRevenuePercentage
		}
		return latest.Revenue * pct
	case models.CapexDepreciationMultiple:
		mult := capex.DepreciationMultiple
		if mult == 0 {
			mult = DefaultCapexDepreciationMultiple
		}
		return latest.Depreciation * mult
	}
	return 0
}

// =============================================================================
// STAGE 5: MOAT AND CONFIDENCE
// =============================================================================

// moatFromPosition stands in for the statement-based analysis when only the
// qualitative competitive position is known.
func moatFromPosition(in models.EPVInputs) models.MoatAnalysis {
	strength := models.MoatNone
	switch in.CompetitivePosition {
	case models.PositionDominant:
		strength = models.MoatWide
	case models.PositionStrong:
		strength = models.MoatNarrow
	}

	stability := in.BusinessStability
	if stability == "" {
		stability = models.StabilityCyclical
	}

	return models.MoatAnalysis{
		HasEconomicMoat:     strength != models.MoatNone,
		MoatStrength:        strength,
		MoatSources:         []models.MoatSource{},
		MoatSustainability:  models.SustainabilityStable,
		CompetitivePressure: quality.PressureFor(stability),
		BusinessStability:   stability,
	}
}

// ConfidenceLevel combines earnings quality, ROIC consistency, business
// stability and moat strength. roic may be nil.
func ConfidenceLevel(qualityScore float64, roic *models.ROICAnalysis, moat models.MoatAnalysis) models.Confidence {
	consistent := roic != nil && roic.Consistency >= HighConfidenceConsistency
	switch {
	case qualityScore >= HighConfidenceQuality && consistent &&
		moat.BusinessStability == models.StabilityStable && moat.MoatStrength != models.MoatNone:
		return models.ConfidenceHigh
	case qualityScore >= MediumConfidenceQuality && moat.BusinessStability != models.StabilityVolatile:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// =============================================================================
// EARNINGS POWER VALUE
// =============================================================================

// CalculateEPVIntrinsicValue values the business as a no-growth perpetuity of
// its normalized, capex-adjusted earnings.
//
// FORMULA: EPV = (Normalized Earnings - Maintenance Capex) / Cost of Capital
func CalculateEPVIntrinsicValue(in models.EPVInputs) (*models.EPVResult, error) {
	check := validate.ValidateEPVInputs(in)
	if !check.IsValid {
		return nil, &ValidationError{Messages: check.Errors}
	}
	period := check.NormalizationPeriod

	normalized, summary := NormalizeEarnings(in, period)
	capex := MaintenanceCapex(in, period)
	adjusted := normalized - capex

	breakdown := CostOfCapital(in.CostOfCapital)
	coc := breakdown.Rate
	if err := requireFinite("earnings power value", adjusted, coc); err != nil {
		return nil, err
	}
	total, err := calc.CapitalizedValue(adjusted, coc)
	if err != nil {
		return nil, domainErr("earnings power value", err)
	}
	if err := requireFinite("earnings power value", total, total/in.SharesOutstanding); err != nil {
		return nil, err
	}

	res := &models.EPVResult{
		NormalizedEarnings:     normalized,
		MaintenanceCapex:       capex,
		AdjustedEarnings:       adjusted,
		CostOfCapital:          coc,
		CostOfCapitalBreakdown: breakdown,
		EPVTotalValue:          total,
		EPVPerShare:            total / in.SharesOutstanding,
		SharesOutstanding:      in.SharesOutstanding,
		EarningsNormalization:  summary,
	}

	if in.Financials != nil {
		waccIn := waccInputsFor(in.CostOfCapital)
		roic := quality.AnalyzeROIC(*in.Financials, waccIn)
		res.ROICAnalysis = &roic
		res.MoatAnalysis = quality.CalculateMoatFromFinancials(*in.Financials, &models.MoatOverrides{
			BusinessStability: in.BusinessStability,
			WACC:              waccIn,
		})
	} else {
		res.MoatAnalysis = moatFromPosition(in)
	}
	res.ConfidenceLevel = ConfidenceLevel(summary.QualityScore, res.ROICAnalysis, res.MoatAnalysis)

	switch {
	case in.CurrentPrice > 0:
		res.EarningsYield = adjusted / in.SharesOutstanding / in.CurrentPrice
	case total != 0:
		res.EarningsYield = adjusted / total
	}

	res.Warnings = epvWarnings(check.Warnings, in, res)
	return res, nil
}

func epvWarnings(validation []string, in models.EPVInputs, res *models.EPVResult) []models.Warning {
	out := make([]models.Warning, 0, len(validation)+4)
	add := func(sev models.Severity, format string, args ...interface{}) {
		out = append(out, models.Warning{Message: fmt.Sprintf(format, args...), Severity: sev})
	}

	for _, w := range validation {
		add(models.SeverityWarning, "%s", w)
	}

	norm := res.EarningsNormalization
	if norm.Volatility > HighVolatility {
		add(models.SeverityWarning, "Earnings show high cyclicality - EPV may overstate or understate intrinsic value")
	}
	for _, e := range normalizationWindow(in.HistoricalEarnings, norm.PeriodsUsed) {
		if e.NetIncome < 0 {
			add(models.SeverityCritical, "Negative earnings in the normalization period")
			break
		}
	}
	if norm.PeriodsUsed < MinReliablePeriods {
		add(models.SeverityInfo, "Fewer than %d periods of earnings history - normalization is less reliable", MinReliablePeriods)
	}
	if norm.Trend == models.TrendDeclining {
		add(models.SeverityWarning, "Earnings are trending down - normalized earnings may be overstated")
	}
	if math.Abs(norm.TotalAdjustments) > AdjustmentShareLimit*math.Abs(norm.BaseEarnings) {
		add(models.SeverityWarning, "Earnings adjustments exceed 25%% of base earnings")
	}
	if res.AdjustedEarnings <= 0 {
		add(models.SeverityCritical, "Adjusted earnings are not positive - EPV is not meaningful")
	}
	if res.CostOfCapital < MinTypicalCostOfCapital || res.CostOfCapital > MaxTypicalCostOfCapital {
		add(models.SeverityWarning, "Cost of capital of %.1f%% is outside the typical 5%%-20%% range", res.CostOfCapital*100)
	}
	if res.MoatAnalysis.MoatStrength == models.MoatNone && res.MoatAnalysis.CompetitivePressure == models.PressureHigh {
		add(models.SeverityInfo, "No economic moat under high competitive pressure - earnings power may erode")
	}

	return out
}
