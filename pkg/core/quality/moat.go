package quality

import (
	"sort"

	"intrinsic_valuation/pkg/core/calc"
	"intrinsic_valuation/pkg/models"
)

// canonicalSources fixes the order in which sources are reported.
var canonicalSources = []models.MoatSource{
	models.SourceBrand,
	models.SourcePatents,
	models.SourceNetworkEffects,
	models.SourceSwitchingCosts,
	models.SourceScale,
	models.SourceLocation,
}

// =============================================================================
// SIGNALS
// =============================================================================

// sortedIncome returns a copy of the income statements ordered by date ascending.
func sortedIncome(fin models.Financials) []models.IncomeStatement {
	out := make([]models.IncomeStatement, len(fin.IncomeStatements))
	copy(out, fin.IncomeStatements)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func sortedBalance(fin models.Financials) []models.BalanceSheet {
	out := make([]models.BalanceSheet, len(fin.BalanceSheets))
	copy(out, fin.BalanceSheets)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// grossProfit falls back to revenue minus cost of revenue when gross profit
// is not reported.
func grossProfit(is models.IncomeStatement) float64 {
	if is.GrossProfit != 0 || is.CostOfRevenue == 0 {
		return is.GrossProfit
	}
	return is.Revenue - is.CostOfRevenue
}

// revenueGrowth returns the year-over-year revenue growth rates of a
// chronological series, skipping pairs whose prior revenue is not positive.
func revenueGrowth(income []models.IncomeStatement) []float64 {
	var growth []float64
	for i := 1; i < len(income); i++ {
		prev := income[i-1].Revenue
		if prev <= 0 {
			continue
		}
		growth = append(growth, (income[i].Revenue-prev)/prev)
	}
	return growth
}

// deferredRevenueCAGR compounds deferred revenue between the first and last
// balance sheets that report a positive balance.
func deferredRevenueCAGR(sheets []models.BalanceSheet) float64 {
	first, last := -1, -1
	for i, bs := range sheets {
		if bs.DeferredRevenue <= 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 || last <= first {
		return 0
	}

	years := yearOf(sheets[last].Date) - yearOf(sheets[first].Date)
	if years <= 0 {
		years = last - first
	}
	g, ok := calc.CAGR(sheets[first].DeferredRevenue, sheets[last].DeferredRevenue, years)
	if !ok {
		return 0
	}
	return g
}

// ComputeMoatSignals derives the raw ratios the moat heuristics consume.
func ComputeMoatSignals(fin models.Financials, roic models.ROICAnalysis) models.MoatSignals {
	income := sortedIncome(fin)
	sheets := sortedBalance(fin)

	assets := make(map[string]float64, len(sheets))
	for _, bs := range sheets {
		assets[bs.Date] = bs.TotalAssets
	}

	var margins, turnover, rd []float64
	for _, is := range income {
		if is.Revenue <= 0 {
			continue
		}
		margins = append(margins, grossProfit(is)/is.Revenue)
		rd = append(rd, is.ResearchAndDevelopment/is.Revenue)
		if ta, ok := assets[is.Date]; ok && ta > 0 {
			turnover = append(turnover, is.Revenue/ta)
		}
	}

	growth := revenueGrowth(income)
	positive := 0
	for _, g := range growth {
		if g > 0 {
			positive++
		}
	}

	signals := models.MoatSignals{
		AverageGrossMargin:        calc.Mean(margins),
		GrossMarginStdDev:         calc.StdDev(margins),
		AverageAssetTurnover:      calc.Mean(turnover),
		AverageROIC:               roic.AverageROIC,
		RevenueGrowthStdDev:       calc.StdDev(growth),
		DeferredRevenueGrowth:     deferredRevenueCAGR(sheets),
		AverageRDIntensity:        calc.Mean(rd),
		RevenueGrowthObservations: len(growth),
	}
	if len(growth) > 0 {
		signals.PositiveGrowthShare = float64(positive) / float64(len(growth))
	}
	return signals
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// DetectMoatSources applies the signal thresholds. Network effects and
// location cannot be read from statements and only arrive through overrides.
func DetectMoatSources(s models.MoatSignals) []models.MoatSource {
	sources := []models.MoatSource{}

	if s.AverageGrossMargin >= BrandMinGrossMargin && s.GrossMarginStdDev <= BrandMaxGrossMarginStdDev {
		sources = append(sources, models.SourceBrand)
	}
	if s.AverageRDIntensity >= PatentsMinRDIntensity && s.AverageGrossMargin >= PatentsMinGrossMargin {
		sources = append(sources, models.SourcePatents)
	}
	if s.RevenueGrowthObservations >= MinGrowthObservations &&
		s.PositiveGrowthShare >= SwitchingMinPositiveGrowthShare &&
		s.DeferredRevenueGrowth >= SwitchingMinDeferredRevenueGrowth {
		sources = append(sources, models.SourceSwitchingCosts)
	}
	if s.AverageAssetTurnover >= ScaleMinAssetTurnover && s.AverageROIC >= ScaleMinROIC {
		sources = append(sources, models.SourceScale)
	}

	return sources
}

// ClassifyStability buckets the dispersion of YoY revenue growth. Too little
// history is treated as cyclical.
func ClassifyStability(s models.MoatSignals) models.BusinessStability {
	if s.RevenueGrowthObservations < MinGrowthObservations {
		return models.StabilityCyclical
	}
	switch {
	case s.RevenueGrowthStdDev <= StableMaxGrowthStdDev:
		return models.StabilityStable
	case s.RevenueGrowthStdDev <= CyclicalMaxGrowthStdDev:
		return models.StabilityCyclical
	default:
		return models.StabilityVolatile
	}
}

// PressureFor maps business stability to competitive pressure.
func PressureFor(stability models.BusinessStability) models.CompetitivePressure {
	switch stability {
	case models.StabilityStable:
		return models.PressureLow
	case models.StabilityVolatile:
		return models.PressureHigh
	default:
		return models.PressureMedium
	}
}

// SustainabilityFor maps the ROIC trend to moat sustainability.
func SustainabilityFor(trend models.Trend) models.MoatSustainability {
	switch trend {
	case models.TrendImproving:
		return models.SustainabilityStrengthening
	case models.TrendDeclining:
		return models.SustainabilityDeclining
	default:
		return models.SustainabilityStable
	}
}

// MoatStrengthFor scores the ROIC class and the breadth of sources.
//
// FORMULA: score = class (wide 2, narrow 1) + 1 if sources ≥ 3, capped at 2
// (capped at 1 with no sources)
func MoatStrengthFor(roicClass models.MoatStrength, sourceCount int) models.MoatStrength {
	score := 0
	switch roicClass {
	case models.MoatWide:
		score = 2
	case models.MoatNarrow:
		score = 1
	}
	if sourceCount >= SourcesForStrengthBonus {
		score++
	}
	if score > MaxStrengthScore {
		score = MaxStrengthScore
	}
	if sourceCount == 0 && score > 1 {
		score = 1
	}

	switch score {
	case 2:
		return models.MoatWide
	case 1:
		return models.MoatNarrow
	default:
		return models.MoatNone
	}
}

// applySourceOverrides adds and removes sources, then re-emits them in
// canonical order without duplicates.
func applySourceOverrides(sources []models.MoatSource, add, remove []models.MoatSource) []models.MoatSource {
	set := make(map[models.MoatSource]bool, len(sources)+len(add))
	for _, s := range sources {
		set[s] = true
	}
	for _, s := range add {
		set[s] = true
	}
	for _, s := range remove {
		delete(set, s)
	}

	out := []models.MoatSource{}
	for _, s := range canonicalSources {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}

// CalculateMoatFromFinancials assesses the economic moat from statements.
// overrides is optional; its WACC (when set) feeds the ROIC classification.
func CalculateMoatFromFinancials(fin models.Financials, overrides *models.MoatOverrides) models.MoatAnalysis {
	if overrides == nil {
		overrides = &models.MoatOverrides{}
	}

	roic := AnalyzeROIC(fin, overrides.WACC)
	signals := ComputeMoatSignals(fin, roic)

	sources := applySourceOverrides(DetectMoatSources(signals), overrides.AddSources, overrides.RemoveSources)

	stability := ClassifyStability(signals)
	if overrides.BusinessStability != "" {
		stability = overrides.BusinessStability
	}

	strength := MoatStrengthFor(roic.MoatClassification, len(sources))
	if overrides.MoatStrength != "" {
		strength = overrides.MoatStrength
	}

	return models.MoatAnalysis{
		HasEconomicMoat:     strength != models.MoatNone,
		MoatStrength:        strength,
		MoatSources:         sources,
		MoatSustainability:  SustainabilityFor(roic.Trend),
		CompetitivePressure: PressureFor(stability),
		BusinessStability:   stability,
		Signals:             &signals,
	}
}
