package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intrinsic_valuation/pkg/models"
)

func TestComputeMoatSignals(t *testing.T) {
	fin := steadyCompany()
	s := ComputeMoatSignals(fin, AnalyzeROIC(fin, nil))

	assert.InDelta(t, 0.6, s.AverageGrossMargin, 1e-9)
	assert.InDelta(t, 0.0, s.GrossMarginStdDev, 1e-9)
	assert.InDelta(t, 1.15, s.AverageAssetTurnover, 1e-9)
	assert.InDelta(t, 0.1, s.AverageRDIntensity, 1e-9)
	assert.Equal(t, 3, s.RevenueGrowthObservations)
	assert.Equal(t, 1.0, s.PositiveGrowthShare)
	// 100 -> 150 over three years
	assert.InDelta(t, 0.1447, s.DeferredRevenueGrowth, 1e-4)
}

func TestGrossProfitFallback(t *testing.T) {
	fin := models.Financials{IncomeStatements: []models.IncomeStatement{
		{Date: "2023-12-31", Revenue: 1000, CostOfRevenue: 550},
	}}
	s := ComputeMoatSignals(fin, models.ROICAnalysis{})
	assert.InDelta(t, 0.45, s.AverageGrossMargin, 1e-12)
}

func TestDetectMoatSources(t *testing.T) {
	cases := []struct {
		name    string
		signals models.MoatSignals
		want    []models.MoatSource
	}{
		{
			name:    "brand needs steady margins",
			signals: models.MoatSignals{AverageGrossMargin: 0.45, GrossMarginStdDev: 0.04},
			want:    []models.MoatSource{models.SourceBrand},
		},
		{
			name:    "volatile margins are not a brand",
			signals: models.MoatSignals{AverageGrossMargin: 0.45, GrossMarginStdDev: 0.06},
			want:    []models.MoatSource{},
		},
		{
			name:    "patents",
			signals: models.MoatSignals{AverageGrossMargin: 0.55, GrossMarginStdDev: 0.2, AverageRDIntensity: 0.08},
			want:    []models.MoatSource{models.SourcePatents},
		},
		{
			name: "switching costs",
			signals: models.MoatSignals{
				PositiveGrowthShare: 0.8, RevenueGrowthObservations: 5, DeferredRevenueGrowth: 0.12,
			},
			want: []models.MoatSource{models.SourceSwitchingCosts},
		},
		{
			name: "switching costs need two observations",
			signals: models.MoatSignals{
				PositiveGrowthShare: 1, RevenueGrowthObservations: 1, DeferredRevenueGrowth: 0.5,
			},
			want: []models.MoatSource{},
		},
		{
			name:    "scale",
			signals: models.MoatSignals{AverageAssetTurnover: 1.0, AverageROIC: 0.15},
			want:    []models.MoatSource{models.SourceScale},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectMoatSources(tc.signals))
		})
	}
}

func TestClassifyStability(t *testing.T) {
	assert.Equal(t, models.StabilityStable, ClassifyStability(models.MoatSignals{RevenueGrowthObservations: 3, RevenueGrowthStdDev: 0.10}))
	assert.Equal(t, models.StabilityCyclical, ClassifyStability(models.MoatSignals{RevenueGrowthObservations: 3, RevenueGrowthStdDev: 0.25}))
	assert.Equal(t, models.StabilityVolatile, ClassifyStability(models.MoatSignals{RevenueGrowthObservations: 3, RevenueGrowthStdDev: 0.26}))
	assert.Equal(t, models.StabilityCyclical, ClassifyStability(models.MoatSignals{RevenueGrowthObservations: 1}))

	assert.Equal(t, models.PressureLow, PressureFor(models.StabilityStable))
	assert.Equal(t, models.PressureMedium, PressureFor(models.StabilityCyclical))
	assert.Equal(t, models.PressureHigh, PressureFor(models.StabilityVolatile))
}

func TestMoatStrengthFor(t *testing.T) {
	cases := []struct {
		class   models.MoatStrength
		sources int
		want    models.MoatStrength
	}{
		{models.MoatWide, 4, models.MoatWide},
		{models.MoatWide, 1, models.MoatWide},
		{models.MoatWide, 0, models.MoatNarrow},
		{models.MoatNarrow, 3, models.MoatWide},
		{models.MoatNarrow, 2, models.MoatNarrow},
		{models.MoatNone, 3, models.MoatNarrow},
		{models.MoatNone, 2, models.MoatNone},
		{models.MoatNone, 0, models.MoatNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, MoatStrengthFor(tc.class, tc.sources), "%s with %d sources", tc.class, tc.sources)
	}
}

func TestCalculateMoatFromFinancials(t *testing.T) {
	t.Run("steady compounder", func(t *testing.T) {
		m := CalculateMoatFromFinancials(steadyCompany(), nil)

		assert.True(t, m.HasEconomicMoat)
		assert.Equal(t, models.MoatWide, m.MoatStrength)
		assert.Equal(t, []models.MoatSource{
			models.SourceBrand, models.SourcePatents, models.SourceSwitchingCosts, models.SourceScale,
		}, m.MoatSources)
		assert.Equal(t, models.StabilityStable, m.BusinessStability)
		assert.Equal(t, models.PressureLow, m.CompetitivePressure)
		assert.Equal(t, models.SustainabilityStable, m.MoatSustainability)
		require.NotNil(t, m.Signals)
	})

	t.Run("churning business", func(t *testing.T) {
		m := CalculateMoatFromFinancials(churningCompany(), nil)

		assert.False(t, m.HasEconomicMoat)
		assert.Equal(t, models.MoatNone, m.MoatStrength)
		assert.Empty(t, m.MoatSources)
		assert.Equal(t, models.StabilityVolatile, m.BusinessStability)
		assert.Equal(t, models.PressureHigh, m.CompetitivePressure)
	})

	t.Run("overrides", func(t *testing.T) {
		m := CalculateMoatFromFinancials(steadyCompany(), &models.MoatOverrides{
			AddSources:        []models.MoatSource{models.SourceLocation, models.SourceNetworkEffects, models.SourceBrand},
			RemoveSources:     []models.MoatSource{models.SourcePatents},
			BusinessStability: models.StabilityCyclical,
		})

		assert.Equal(t, []models.MoatSource{
			models.SourceBrand, models.SourceNetworkEffects, models.SourceSwitchingCosts,
			models.SourceScale, models.SourceLocation,
		}, m.MoatSources)
		assert.Equal(t, models.StabilityCyclical, m.BusinessStability)
		assert.Equal(t, models.PressureMedium, m.CompetitivePressure)

		forced := CalculateMoatFromFinancials(churningCompany(), &models.MoatOverrides{MoatStrength: models.MoatNarrow})
		assert.True(t, forced.HasEconomicMoat)
		assert.Equal(t, models.MoatNarrow, forced.MoatStrength)
	})

	t.Run("empty statements", func(t *testing.T) {
		m := CalculateMoatFromFinancials(models.Financials{}, nil)
		assert.Equal(t, models.MoatNone, m.MoatStrength)
		assert.Equal(t, models.StabilityCyclical, m.BusinessStability)
		assert.NotNil(t, m.MoatSources)
	})
}
