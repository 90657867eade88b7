package validate

import (
	"math"

	"intrinsic_valuation/pkg/models"
)

// BenfordDistribution is the expected frequency of leading digits 1-9.
var BenfordDistribution = [10]float64{
	0, 0.30103, 0.17609, 0.12494, 0.09691, 0.07918, 0.06695, 0.05799, 0.05115, 0.04576,
}

const (
	// MinBenfordSample is the smallest sample the digit test is run on.
	MinBenfordSample = 50

	BenfordMediumMAD = 0.010
	BenfordHighMAD   = 0.015
)

// BenfordResult holds the leading digit distribution of a sample.
type BenfordResult struct {
	DigitCounts [10]int `json:"digit_counts"`
	TotalCount  int     `json:"total_count"`
	MAD         float64 `json:"mad"` // mean absolute deviation from Benford
	Flagged     bool    `json:"flagged"`
	Level       string  `json:"level"`
}

// leadingDigit returns the first significant digit of |v|, or 0 for zero and
// non-finite values.
func leadingDigit(v float64) int {
	v = math.Abs(v)
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	d := int(v / math.Pow(10, math.Floor(math.Log10(v))))
	// Guard against rounding at exact powers of ten.
	if d < 1 {
		d = 1
	} else if d > 9 {
		d = 9
	}
	return d
}

// AnalyzeBenfordsLaw performs first-digit analysis. Values below 10 carry
// too little scale information and are ignored.
//
// MAD thresholds: ≤ 0.010 low risk, ≤ 0.015 medium risk, above that high risk.
func AnalyzeBenfordsLaw(values []float64) BenfordResult {
	var res BenfordResult
	for _, v := range values {
		if math.Abs(v) < 10 {
			continue
		}
		if d := leadingDigit(v); d > 0 {
			res.DigitCounts[d]++
			res.TotalCount++
		}
	}

	if res.TotalCount == 0 {
		res.Level = "insufficient data"
		return res
	}

	sumDiff := 0.0
	for d := 1; d <= 9; d++ {
		actual := float64(res.DigitCounts[d]) / float64(res.TotalCount)
		sumDiff += math.Abs(actual - BenfordDistribution[d])
	}
	res.MAD = sumDiff / 9

	switch {
	case res.MAD > BenfordHighMAD:
		res.Level = "high risk"
		res.Flagged = true
	case res.MAD > BenfordMediumMAD:
		res.Level = "medium risk"
	default:
		res.Level = "low risk"
	}
	return res
}

// statementValues collects every reported figure of the bundle.
func statementValues(fin models.Financials) []float64 {
	var values []float64
	for _, is := range fin.IncomeStatements {
		values = append(values,
			is.Revenue, is.CostOfRevenue, is.GrossProfit, is.OperatingIncome, is.NetIncome,
			is.IncomeBeforeTax, is.IncomeTaxExpense, is.InterestExpense,
			is.ResearchAndDevelopment, is.SellingGeneralAdministrative, is.Depreciation,
		)
	}
	for _, bs := range fin.BalanceSheets {
		values = append(values,
			bs.TotalAssets, bs.TotalCurrentAssets, bs.CashAndEquivalents, bs.Goodwill,
			bs.IntangibleAssets, bs.TotalLiabilities, bs.CurrentLiabilities, bs.ShortTermDebt,
			bs.LongTermDebt, bs.DeferredRevenue, bs.TotalEquity,
		)
	}
	for _, cf := range fin.CashFlows {
		values = append(values,
			cf.OperatingCashFlow, cf.CapitalExpenditure, cf.Depreciation, cf.DividendsPaid, cf.FreeCashFlow,
		)
	}
	return values
}
