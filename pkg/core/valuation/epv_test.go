package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrinsic_valuation/pkg/models"
)

func ptr(v float64) *float64 { return &v }

func earningsHistory(netIncome ...float64) []models.HistoricalEarnings {
	years := []string{"2019-12-31", "2020-12-31", "2021-12-31", "2022-12-31", "2023-12-31", "2024-12-31"}
	out := make([]models.HistoricalEarnings, len(netIncome))
	for i, ni := range netIncome {
		out[i] = models.HistoricalEarnings{
			Year:            2019 + i,
			Date:            years[i],
			NetIncome:       ni,
			OperatingIncome: ni * 1.3,
			Revenue:         1000 + 100*float64(i),
			Depreciation:    40,
		}
	}
	return out
}

func baseEPVInputs() models.EPVInputs {
	return models.EPVInputs{
		HistoricalEarnings:  earningsHistory(100, 110, 120),
		NormalizationMethod: models.NormalizeAverage,
		NormalizationPeriod: 3,
		CostOfCapital:       models.CostOfCapitalInputs{Method: models.CostOfCapitalManual, ManualRate: 0.10},
		SharesOutstanding:   10,
		EarningsQuality:     models.EarningsQualityHigh,
		BusinessStability:   models.StabilityStable,
		CompetitivePosition: models.PositionStrong,
	}
}

// steadyFinancials has identical ROIC every year and steady revenue growth.
func steadyFinancials() *models.Financials {
	dates := []string{"2020-12-31", "2021-12-31", "2022-12-31", "2023-12-31"}
	fin := &models.Financials{Ticker: "STDY"}
	for i, d := range dates {
		rev := 1000 + 100*float64(i)
		fin.IncomeStatements = append(fin.IncomeStatements, models.IncomeStatement{
			Date: d, Revenue: rev, GrossProfit: rev * 0.6, OperatingIncome: 300,
			NetIncome: 220, IncomeBeforeTax: 300, IncomeTaxExpense: 63, ResearchAndDevelopment: rev * 0.1,
		})
		fin.BalanceSheets = append(fin.BalanceSheets, models.BalanceSheet{
			Date: d, TotalAssets: 1000, CashAndEquivalents: 100, CurrentLiabilities: 200,
			TotalLiabilities: 400, TotalEquity: 600,
		})
	}
	return fin
}

func TestEPVBasic(t *testing.T) {
	res, err := CalculateEPVIntrinsicValue(baseEPVInputs())
	require.NoError(t, err)

	assert.InDelta(t, 110.0, res.NormalizedEarnings, 1e-9)
	assert.Equal(t, 0.0, res.MaintenanceCapex)
	assert.InDelta(t, 110.0, res.AdjustedEarnings, 1e-9)
	assert.Equal(t, 0.10, res.CostOfCapital)
	assert.InDelta(t, 1100.0, res.EPVTotalValue, 1e-9)
	assert.InDelta(t, 110.0, res.EPVPerShare, 1e-9)
	assert.Equal(t, 3, res.EarningsNormalization.PeriodsUsed)
	assert.Equal(t, models.TrendImproving, res.EarningsNormalization.Trend)
	assert.InDelta(t, 0.10, res.EarningsYield, 1e-12, "implied yield equals the cost of capital")

	assert.Equal(t, models.MoatNarrow, res.MoatAnalysis.MoatStrength)
	assert.Equal(t, models.PressureLow, res.MoatAnalysis.CompetitivePressure)
	assert.Nil(t, res.ROICAnalysis)
}

func TestEPVNormalizationMethods(t *testing.T) {
	cases := []struct {
		name   string
		method models.NormalizationMethod
		manual *float64
		period int
		want   float64
	}{
		{"average of window", models.NormalizeAverage, nil, 3, 290.0 / 3},
		{"median", models.NormalizeMedian, nil, 4, 95},
		{"latest", models.NormalizeLatest, nil, 4, 80},
		{"manual", models.NormalizeManual, ptr(250), 4, 250},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := baseEPVInputs()
			// out of order on purpose
			in.HistoricalEarnings = earningsHistory(90, 100, 110, 80)
			in.HistoricalEarnings[0], in.HistoricalEarnings[3] = in.HistoricalEarnings[3], in.HistoricalEarnings[0]
			in.NormalizationMethod = tc.method
			in.ManualNormalizedEarnings = tc.manual
			in.NormalizationPeriod = tc.period

			res, err := CalculateEPVIntrinsicValue(in)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, res.EarningsNormalization.BaseEarnings, 1e-9)
		})
	}
}

func TestEPVAdjustmentsAndCapex(t *testing.T) {
	in := baseEPVInputs()
	in.EarningsAdjustments = []models.EarningsAdjustment{
		{Description: "litigation", Amount: 15, Category: models.AdjustmentOneTime, Confidence: models.ConfidenceHigh},
		{Description: "asset sale gain", Amount: -5, Category: models.AdjustmentNonRecurring, Confidence: models.ConfidenceMedium},
	}
	in.MaintenanceCapexAnalysis = models.MaintenanceCapexAnalysis{
		Method:                  models.CapexRevenuePercentage,
		IncludeMaintenanceCapex: true,
	}

	res, err := CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, res.NormalizedEarnings, 1e-9)
	assert.InDelta(t, 10.0, res.EarningsNormalization.TotalAdjustments, 1e-9)
	// 3% of the latest revenue (1200)
	assert.InDelta(t, 36.0, res.MaintenanceCapex, 1e-9)
	assert.InDelta(t, 84.0, res.AdjustedEarnings, 1e-9)

	in.MaintenanceCapexAnalysis = models.MaintenanceCapexAnalysis{Method: models.CapexDepreciationMultiple, IncludeMaintenanceCapex: true}
	res, err = CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, res.MaintenanceCapex, 1e-9)

	in.MaintenanceCapexAnalysis = models.MaintenanceCapexAnalysis{Method: models.CapexManual, ManualAmount: 25}
	res, err = CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.MaintenanceCapex, "excluded capex is not deducted")
}

func TestEPVCostOfCapitalMethods(t *testing.T) {
	in := baseEPVInputs()
	in.CostOfCapital = models.CostOfCapitalInputs{
		Method: models.CostOfCapitalWACC, RiskFreeRate: 0.04, Beta: 1.2, MarketRiskPremium: 0.05,
		CostOfDebt: 0.06, TaxRate: 0.25, WeightOfEquity: 0.7, WeightOfDebt: 0.3,
	}
	res, err := CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)
	assert.InDelta(t, 0.0835, res.CostOfCapital, 1e-12)
	assert.InDelta(t, 0.10, res.CostOfCapitalBreakdown.CostOfEquity, 1e-12)
	assert.InDelta(t, 0.045, res.CostOfCapitalBreakdown.AfterTaxCostOfDebt, 1e-12)

	in.CostOfCapital.Method = models.CostOfCapitalCAPM
	res, err = CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, res.CostOfCapital, 1e-12)
}

func TestEPVMonotonicity(t *testing.T) {
	prev := 0.0
	for i, coc := range []float64{0.06, 0.08, 0.10, 0.12, 0.15, 0.20} {
		in := baseEPVInputs()
		in.CostOfCapital.ManualRate = coc
		res, err := CalculateEPVIntrinsicValue(in)
		require.NoError(t, err)
		if i > 0 {
			assert.Less(t, res.EPVPerShare, prev, "coc %.2f", coc)
		}
		prev = res.EPVPerShare
	}

	prev = 0
	for i, manual := range []float64{50, 100, 150, 300} {
		in := baseEPVInputs()
		in.NormalizationMethod = models.NormalizeManual
		in.ManualNormalizedEarnings = ptr(manual)
		res, err := CalculateEPVIntrinsicValue(in)
		require.NoError(t, err)
		if i > 0 {
			assert.Greater(t, res.EPVPerShare, prev, "earnings %.0f", manual)
		}
		prev = res.EPVPerShare
	}
}

func TestEPVErrors(t *testing.T) {
	in := baseEPVInputs()
	in.HistoricalEarnings = nil
	_, err := CalculateEPVIntrinsicValue(in)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Historical earnings are required")

	in = baseEPVInputs()
	in.CostOfCapital = models.CostOfCapitalInputs{Method: models.CostOfCapitalCAPM}
	_, err = CalculateEPVIntrinsicValue(in)
	require.ErrorIs(t, err, ErrDomain)
}

func TestEPVPeriodClamped(t *testing.T) {
	in := baseEPVInputs()
	in.NormalizationPeriod = 10
	res, err := CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)
	assert.Equal(t, 3, res.EarningsNormalization.PeriodsUsed)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, "Normalization period 10 exceeds available history; using 3", res.Warnings[0].Message)
}

func TestEPVWarnings(t *testing.T) {
	in := baseEPVInputs()
	in.HistoricalEarnings = earningsHistory(120, -40)
	in.NormalizationPeriod = 2
	in.CompetitivePosition = models.PositionWeak
	in.BusinessStability = models.StabilityVolatile
	in.CostOfCapital.ManualRate = 0.25

	res, err := CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)

	var messages []string
	severity := map[string]models.Severity{}
	for _, w := range res.Warnings {
		messages = append(messages, w.Message)
		severity[w.Message] = w.Severity
	}
	assert.Equal(t, []string{
		"Earnings show high cyclicality - EPV may overstate or understate intrinsic value",
		"Negative earnings in the normalization period",
		"Fewer than 3 periods of earnings history - normalization is less reliable",
		"Earnings are trending down - normalized earnings may be overstated",
		"Cost of capital of 25.0% is outside the typical 5%-20% range",
		"No economic moat under high competitive pressure - earnings power may erode",
	}, messages)
	assert.Equal(t, models.SeverityCritical, severity["Negative earnings in the normalization period"])
	assert.Equal(t, models.SeverityInfo, severity["Fewer than 3 periods of earnings history - normalization is less reliable"])
	assert.Equal(t, models.ConfidenceLow, res.ConfidenceLevel)
}

func TestQualityScore(t *testing.T) {
	assert.Equal(t, 100.0, QualityScore(0, false, 5, nil, models.EarningsQualityHigh))

	low := models.EarningsAdjustment{Confidence: models.ConfidenceLow}
	adjs := []models.EarningsAdjustment{low, low, low, low}
	// 100 - 20 - 20 - 10 - 15 - 20
	assert.InDelta(t, 15.0, QualityScore(0.2, true, 2, adjs, models.EarningsQualityLow), 1e-9)
	assert.Equal(t, 0.0, QualityScore(5, true, 1, adjs, models.EarningsQualityLow))
	assert.InDelta(t, 40.0, QualityScore(VolatilityCeiling, false, 5, nil, models.EarningsQualityMedium), 1e-9)
}

func TestEPVWithFinancials(t *testing.T) {
	in := baseEPVInputs()
	in.HistoricalEarnings = earningsHistory(200, 200, 200, 200)
	in.NormalizationPeriod = 4
	in.BusinessStability = ""
	in.Financials = steadyFinancials()

	res, err := CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)

	require.NotNil(t, res.ROICAnalysis)
	require.NotNil(t, res.ROICAnalysis.WACC)
	assert.InDelta(t, 0.10, *res.ROICAnalysis.WACC, 1e-12)
	assert.Equal(t, 1.0, res.ROICAnalysis.Consistency)
	assert.Equal(t, models.MoatWide, res.MoatAnalysis.MoatStrength)
	assert.Equal(t, models.StabilityStable, res.MoatAnalysis.BusinessStability)
	assert.Equal(t, 100.0, res.EarningsNormalization.QualityScore)
	assert.Equal(t, models.ConfidenceHigh, res.ConfidenceLevel)
}

func TestConfidenceLevel(t *testing.T) {
	stableWide := models.MoatAnalysis{MoatStrength: models.MoatWide, BusinessStability: models.StabilityStable}
	consistent := &models.ROICAnalysis{Consistency: 0.8}

	assert.Equal(t, models.ConfidenceHigh, ConfidenceLevel(80, consistent, stableWide))
	assert.Equal(t, models.ConfidenceMedium, ConfidenceLevel(80, nil, stableWide))
	assert.Equal(t, models.ConfidenceMedium, ConfidenceLevel(60, consistent, stableWide))
	assert.Equal(t, models.ConfidenceLow, ConfidenceLevel(40, consistent, stableWide))
	assert.Equal(t, models.ConfidenceLow, ConfidenceLevel(90, consistent,
		models.MoatAnalysis{MoatStrength: models.MoatWide, BusinessStability: models.StabilityVolatile}))
}

func TestEPVEarningsYieldWithPrice(t *testing.T) {
	in := baseEPVInputs()
	in.CurrentPrice = 88
	res, err := CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)
	assert.InDelta(t, 11.0/88.0, res.EarningsYield, 1e-12)
}

func TestEPVIsIdempotent(t *testing.T) {
	in := baseEPVInputs()
	in.Financials = steadyFinancials()
	a, err := CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)
	b, err := CalculateEPVIntrinsicValue(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
