package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrinsic_valuation/pkg/models"
)

// steadyCompany has identical ROIC every year, high and stable margins,
// heavy R&D and growing deferred revenue.
func steadyCompany() models.Financials {
	dates := []string{"2020-12-31", "2021-12-31", "2022-12-31", "2023-12-31"}
	revenue := []float64{1000, 1100, 1200, 1300}
	deferred := []float64{100, 115, 130, 150}

	var fin models.Financials
	fin.Ticker = "STDY"
	// newest first on purpose; every consumer re-sorts
	for i := len(dates) - 1; i >= 0; i-- {
		fin.IncomeStatements = append(fin.IncomeStatements, models.IncomeStatement{
			Date:                   dates[i],
			Revenue:                revenue[i],
			GrossProfit:            revenue[i] * 0.6,
			OperatingIncome:        300,
			NetIncome:              220,
			IncomeBeforeTax:        300,
			IncomeTaxExpense:       63,
			ResearchAndDevelopment: revenue[i] * 0.1,
		})
		fin.BalanceSheets = append(fin.BalanceSheets, models.BalanceSheet{
			Date:               dates[i],
			TotalAssets:        1000,
			CashAndEquivalents: 100,
			CurrentLiabilities: 200,
			DeferredRevenue:    deferred[i],
			TotalLiabilities:   400,
			TotalEquity:        600,
		})
	}
	return fin
}

// churningCompany has thin margins, erratic revenue and low returns.
func churningCompany() models.Financials {
	dates := []string{"2020-12-31", "2021-12-31", "2022-12-31", "2023-12-31"}
	revenue := []float64{1000, 1500, 900, 1400}

	var fin models.Financials
	for i := range dates {
		fin.IncomeStatements = append(fin.IncomeStatements, models.IncomeStatement{
			Date:            dates[i],
			Revenue:         revenue[i],
			GrossProfit:     revenue[i] * 0.2,
			OperatingIncome: 20,
			IncomeBeforeTax: 20,
		})
		fin.BalanceSheets = append(fin.BalanceSheets, models.BalanceSheet{
			Date:               dates[i],
			TotalAssets:        2000,
			CashAndEquivalents: 50,
			CurrentLiabilities: 300,
		})
	}
	return fin
}

func TestNOPATAndInvestedCapital(t *testing.T) {
	assert.InDelta(t, 79.0, CalculateNOPAT(100, 0.21), 1e-9)
	assert.InDelta(t, 750.0, CalculateInvestedCapital(1000, 100, 200, 50), 1e-9)
}

func TestCalculateWACC(t *testing.T) {
	// Ke = 4% + 1.0 * 6% = 10%; WACC = 0.8*10% + 0.2*5%*(1-20%) = 8.8%
	w := CalculateWACC(models.WACCInputs{
		RiskFreeRate: 0.04, Beta: 1.0, MarketRiskPremium: 0.06,
		CostOfDebt: 0.05, TaxRate: 0.20, WeightOfEquity: 0.8, WeightOfDebt: 0.2,
	})
	assert.InDelta(t, 0.088, w, 1e-12)
}

func TestHistoricalROIC(t *testing.T) {
	fin := models.Financials{
		IncomeStatements: []models.IncomeStatement{
			{Date: "2022-12-31", OperatingIncome: 200, IncomeBeforeTax: 200, IncomeTaxExpense: 50},
			{Date: "2021-12-31", OperatingIncome: 100},
			{Date: "2020-12-31", OperatingIncome: 100},
			{Date: "2019-12-31", OperatingIncome: 100},
		},
		BalanceSheets: []models.BalanceSheet{
			{Date: "2022-12-31", TotalAssets: 1000},
			{Date: "2021-12-31", TotalAssets: 1000, CurrentLiabilities: 1200},
			{Date: "2020-12-31", TotalAssets: 1000},
		},
	}
	wacc := &models.WACCInputs{RiskFreeRate: 0.05, TaxRate: 0.30, WeightOfEquity: 1}

	got := HistoricalROIC(fin, wacc)
	require.Len(t, got, 2, "non-positive invested capital and unmatched periods are skipped")

	assert.Equal(t, "2020-12-31", got[0].Date)
	assert.Equal(t, 2020, got[0].Year)
	// no reported tax: falls back to the WACC tax rate
	assert.InDelta(t, 0.07, got[0].ROIC, 1e-12)

	assert.Equal(t, "2022-12-31", got[1].Date)
	// effective rate 25%
	assert.InDelta(t, 0.15, got[1].ROIC, 1e-12)
	require.NotNil(t, got[1].Spread)
	assert.InDelta(t, 0.10, *got[1].Spread, 1e-12)
	assert.InDelta(t, 0.05, *got[1].WACC, 1e-12)

	plain := HistoricalROIC(models.Financials{
		IncomeStatements: []models.IncomeStatement{{Date: "2020-12-31", OperatingIncome: 100}},
		BalanceSheets:    []models.BalanceSheet{{Date: "2020-12-31", TotalAssets: 1000}},
	}, nil)
	require.Len(t, plain, 1)
	assert.InDelta(t, 0.079, plain[0].ROIC, 1e-12, "default tax rate applies")
	assert.Nil(t, plain[0].Spread)
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		name   string
		series []float64
		want   models.Trend
	}{
		{"improving beyond ten percent", []float64{0.10, 0.12}, models.TrendImproving},
		{"inside band", []float64{0.10, 0.105}, models.TrendStable},
		{"declining beyond ten percent", []float64{0.10, 0.10, 0.08, 0.08}, models.TrendDeclining},
		{"middle element ignored", []float64{0.10, 5.0, 0.10}, models.TrendStable},
		{"single period", []float64{0.10}, models.TrendStable},
		{"empty", nil, models.TrendStable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyTrend(tc.series))
		})
	}
}

func TestConsistencyBounds(t *testing.T) {
	series := [][]float64{
		{0.15},
		{0.15, 0.15, 0.15},
		{0.1, 0.2, 0.3},
		{0.01, 0.5, -0.2, 0.9},
		{-0.1, 0.1},
		{-0.3, -0.2, -0.25},
		{0.33, 0.34},
	}
	for _, s := range series {
		c := Consistency(s)
		assert.GreaterOrEqual(t, c, 0.0, "%v", s)
		assert.LessOrEqual(t, c, 1.0, "%v", s)
		if allEqual(s) {
			assert.Equal(t, 1.0, c, "%v", s)
		} else {
			assert.Less(t, c, 1.0, "%v", s)
		}
	}

	assert.Equal(t, 0.0, Consistency(nil))
	assert.Equal(t, 0.0, Consistency([]float64{-0.1, 0.1}), "zero mean with spread")
}

func TestClassifyMoat(t *testing.T) {
	wacc := 0.08
	assert.Equal(t, models.MoatWide, ClassifyMoat(0.20, 0.8, &wacc))
	assert.Equal(t, models.MoatNarrow, ClassifyMoat(0.20, 0.6, &wacc))
	assert.Equal(t, models.MoatNarrow, ClassifyMoat(0.11, 0.9, &wacc))
	assert.Equal(t, models.MoatNone, ClassifyMoat(0.09, 0.9, &wacc))

	assert.Equal(t, models.MoatWide, ClassifyMoat(0.25, 0.8, nil))
	assert.Equal(t, models.MoatNarrow, ClassifyMoat(0.15, 0.6, nil))
	assert.Equal(t, models.MoatNone, ClassifyMoat(0.15, 0.4, nil))
}

func TestAnalyzeROIC(t *testing.T) {
	a := AnalyzeROIC(steadyCompany(), nil)
	require.Len(t, a.HistoricalROIC, 4)
	assert.Equal(t, "2020-12-31", a.HistoricalROIC[0].Date)
	assert.InDelta(t, 237.0/700.0, a.AverageROIC, 1e-9)
	assert.InDelta(t, a.AverageROIC, a.MedianROIC, 1e-12)
	assert.Equal(t, 1.0, a.Consistency)
	assert.Equal(t, models.TrendStable, a.Trend)
	assert.Equal(t, models.MoatWide, a.MoatClassification)
	assert.Nil(t, a.WACC)

	wacc := &models.WACCInputs{RiskFreeRate: 0.04, Beta: 1, MarketRiskPremium: 0.05, WeightOfEquity: 1}
	withWACC := AnalyzeROIC(steadyCompany(), wacc)
	require.NotNil(t, withWACC.Spread)
	assert.InDelta(t, withWACC.AverageROIC-0.09, *withWACC.Spread, 1e-12)

	empty := AnalyzeROIC(models.Financials{}, nil)
	assert.Empty(t, empty.HistoricalROIC)
	assert.Equal(t, models.MoatNone, empty.MoatClassification)
	assert.Equal(t, models.TrendStable, empty.Trend)
	assert.Equal(t, 0.0, empty.Consistency)
}

func TestAnalyzeROICIsDeterministic(t *testing.T) {
	fin := churningCompany()
	assert.Equal(t, AnalyzeROIC(fin, nil), AnalyzeROIC(fin, nil))
}
