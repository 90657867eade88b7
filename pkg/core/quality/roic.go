package quality

import (
	"math"
	"sort"
	"strconv"

	"intrinsic_valuation/pkg/core/calc"
	"intrinsic_valuation/pkg/models"
)

// =============================================================================
// NOPAT / INVESTED CAPITAL
// =============================================================================

// CalculateNOPAT computes Net Operating Profit After Tax.
//
// FORMULA: NOPAT = Operating Income × (1 - T)
func CalculateNOPAT(operatingIncome, taxRate float64) float64 {
	return operatingIncome * (1 - taxRate)
}

// CalculateInvestedCapital computes operating capital employed.
//
// FORMULA: IC = Total Assets - Cash - Current Liabilities + Short-Term Debt
//
// Short-term debt is added back because it is financing, not an operating liability.
func CalculateInvestedCapital(totalAssets, cash, currentLiabilities, shortTermDebt float64) float64 {
	return totalAssets - cash - currentLiabilities + shortTermDebt
}

// CalculateWACC computes the weighted average cost of capital with a CAPM cost
// of equity. It mirrors the EPV cost-of-capital stage but is parameterised
// independently so the ROIC analyzer can be used on its own.
func CalculateWACC(in models.WACCInputs) float64 {
	ke := calc.CostOfEquityCAPM(in.RiskFreeRate, in.Beta, in.MarketRiskPremium)
	return calc.WACC(in.CostOfDebt, in.TaxRate, in.WeightOfDebt, ke, in.WeightOfEquity)
}

// effectiveTaxRate prefers the reported rate and falls back to the WACC tax
// rate, then DefaultTaxRate.
func effectiveTaxRate(is models.IncomeStatement, wacc *models.WACCInputs) float64 {
	if is.IncomeBeforeTax > 0 {
		rate := is.IncomeTaxExpense / is.IncomeBeforeTax
		if rate >= 0 && rate <= MaxEffectiveTaxRate {
			return rate
		}
	}
	if wacc != nil && wacc.TaxRate > 0 && wacc.TaxRate < 1 {
		return wacc.TaxRate
	}
	return DefaultTaxRate
}

// yearOf extracts the year from an ISO date, returning 0 when it cannot.
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

// =============================================================================
// HISTORICAL ROIC
// =============================================================================

// HistoricalROIC computes ROIC for every period that has both an income
// statement and a balance sheet with the same date. Periods with
// non-positive invested capital are skipped, not zero-filled.
// The result is ordered by date ascending.
func HistoricalROIC(fin models.Financials, wacc *models.WACCInputs) []models.ROICResult {
	sheets := make(map[string]models.BalanceSheet, len(fin.BalanceSheets))
	for _, bs := range fin.BalanceSheets {
		sheets[bs.Date] = bs
	}

	var waccRate *float64
	if wacc != nil {
		w := CalculateWACC(*wacc)
		waccRate = &w
	}

	results := make([]models.ROICResult, 0, len(fin.IncomeStatements))
	for _, is := range fin.IncomeStatements {
		bs, ok := sheets[is.Date]
		if !ok {
			continue
		}
		ic := CalculateInvestedCapital(bs.TotalAssets, bs.CashAndEquivalents, bs.CurrentLiabilities, bs.ShortTermDebt)
		if ic <= 0 {
			continue
		}
		nopat := CalculateNOPAT(is.OperatingIncome, effectiveTaxRate(is, wacc))
		roic := nopat / ic
		if !calc.IsFinite(roic) {
			continue
		}

		res := models.ROICResult{
			Year:            yearOf(is.Date),
			Date:            is.Date,
			ROIC:            roic,
			NOPAT:           nopat,
			InvestedCapital: ic,
		}
		if waccRate != nil {
			w := *waccRate
			spread := roic - w
			res.WACC = &w
			res.Spread = &spread
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results
}

// =============================================================================
// AGGREGATION
// =============================================================================

// ClassifyTrend compares the recent-half average against the older-half
// average of a chronological series.
func ClassifyTrend(chronological []float64) models.Trend {
	older, recent, ok := calc.HalfAverages(chronological)
	if !ok {
		return models.TrendStable
	}
	change := calc.RelativeChange(older, recent)
	switch {
	case change > TrendChangeThreshold:
		return models.TrendImproving
	case change < -TrendChangeThreshold:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// Consistency scores how steady a series is.
//
// FORMULA: max(0, 1 - σ/|μ|)
//
// A single observation, or identical observations, score exactly 1.
func Consistency(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if allEqual(values) {
		return 1
	}
	cv, ok := calc.CoefficientOfVariation(values)
	if !ok {
		return 0
	}
	return math.Max(0, 1-cv)
}

func allEqual(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// ClassifyMoat maps ROIC level and stability to a moat class. With a WACC the
// spread decides; without one the absolute ROIC thresholds apply.
func ClassifyMoat(averageROIC, consistency float64, wacc *float64) models.MoatStrength {
	if wacc != nil {
		spread := averageROIC - *wacc
		switch {
		case spread > WideMoatSpread && consistency > WideMoatConsistency:
			return models.MoatWide
		case spread > NarrowMoatSpread && consistency > NarrowMoatConsistency:
			return models.MoatNarrow
		default:
			return models.MoatNone
		}
	}
	switch {
	case averageROIC > WideMoatAbsoluteROIC && consistency > WideMoatConsistency:
		return models.MoatWide
	case averageROIC > NarrowMoatAbsoluteROIC && consistency > NarrowMoatConsistency:
		return models.MoatNarrow
	default:
		return models.MoatNone
	}
}

// AnalyzeROIC builds the historical ROIC profile. waccInputs is optional.
func AnalyzeROIC(fin models.Financials, waccInputs *models.WACCInputs) models.ROICAnalysis {
	history := HistoricalROIC(fin, waccInputs)

	analysis := models.ROICAnalysis{
		HistoricalROIC:     history,
		Trend:              models.TrendStable,
		MoatClassification: models.MoatNone,
	}
	if waccInputs != nil {
		w := CalculateWACC(*waccInputs)
		analysis.WACC = &w
	}
	if len(history) == 0 {
		return analysis
	}

	values := make([]float64, len(history))
	for i, r := range history {
		values[i] = r.ROIC
	}

	analysis.AverageROIC = calc.Mean(values)
	analysis.MedianROIC = calc.Median(values)
	analysis.Trend = ClassifyTrend(values)
	analysis.Consistency = Consistency(values)
	analysis.MoatClassification = ClassifyMoat(analysis.AverageROIC, analysis.Consistency, analysis.WACC)
	if analysis.WACC != nil {
		spread := analysis.AverageROIC - *analysis.WACC
		analysis.Spread = &spread
	}

	return analysis
}
