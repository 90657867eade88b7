package models

type MoatStrength string

const (
	MoatNone   MoatStrength = "none"
	MoatNarrow MoatStrength = "narrow"
	MoatWide   MoatStrength = "wide"
)

type MoatSource string

const (
	SourceBrand          MoatSource = "brand"
	SourcePatents        MoatSource = "patents"
	SourceNetworkEffects MoatSource = "network_effects"
	SourceSwitchingCosts MoatSource = "switching_costs"
	SourceScale          MoatSource = "scale"
	SourceLocation       MoatSource = "location"
)

type MoatSustainability string

const (
	SustainabilityDeclining     MoatSustainability = "declining"
	SustainabilityStable        MoatSustainability = "stable"
	SustainabilityStrengthening MoatSustainability = "strengthening"
)

type CompetitivePressure string

const (
	PressureHigh   CompetitivePressure = "high"
	PressureMedium CompetitivePressure = "medium"
	PressureLow    CompetitivePressure = "low"
)

// WACCInputs parameterises the cost of capital independently of EPV.
type WACCInputs struct {
	RiskFreeRate      float64 `json:"risk_free_rate"`
	Beta              float64 `json:"beta"`
	MarketRiskPremium float64 `json:"market_risk_premium"`
	CostOfDebt        float64 `json:"cost_of_debt"` // pre-tax
	TaxRate           float64 `json:"tax_rate"`
	WeightOfEquity    float64 `json:"weight_of_equity"`
	WeightOfDebt      float64 `json:"weight_of_debt"`
}

// ROICResult is the return on invested capital for one period.
type ROICResult struct {
	Year            int      `json:"year"`
	Date            string   `json:"date"`
	ROIC            float64  `json:"roic"`
	NOPAT           float64  `json:"nopat"`
	InvestedCapital float64  `json:"invested_capital"`
	WACC            *float64 `json:"wacc,omitempty"`
	Spread          *float64 `json:"spread,omitempty"`
}

// ROICAnalysis aggregates per-period ROIC, ordered by statement date ascending.
type ROICAnalysis struct {
	HistoricalROIC     []ROICResult `json:"historical_roic"`
	AverageROIC        float64      `json:"average_roic"`
	MedianROIC         float64      `json:"median_roic"`
	Trend              Trend        `json:"trend"`
	Consistency        float64      `json:"consistency"`
	MoatClassification MoatStrength `json:"moat_classification"`
	WACC               *float64     `json:"wacc,omitempty"`
	Spread             *float64     `json:"spread,omitempty"`
}

// MoatSignals are the raw ratios behind the moat heuristics.
type MoatSignals struct {
	AverageGrossMargin        float64 `json:"average_gross_margin"`
	GrossMarginStdDev         float64 `json:"gross_margin_std_dev"`
	AverageAssetTurnover      float64 `json:"average_asset_turnover"`
	AverageROIC               float64 `json:"average_roic"`
	PositiveGrowthShare       float64 `json:"positive_growth_share"`
	RevenueGrowthStdDev       float64 `json:"revenue_growth_std_dev"`
	DeferredRevenueGrowth     float64 `json:"deferred_revenue_growth"`
	AverageRDIntensity        float64 `json:"average_rd_intensity"`
	RevenueGrowthObservations int     `json:"revenue_growth_observations"`
}

// MoatAnalysis is the economic moat assessment.
type MoatAnalysis struct {
	HasEconomicMoat     bool                `json:"has_economic_moat"`
	MoatStrength        MoatStrength        `json:"moat_strength"`
	MoatSources         []MoatSource        `json:"moat_sources"`
	MoatSustainability  MoatSustainability  `json:"moat_sustainability"`
	CompetitivePressure CompetitivePressure `json:"competitive_pressure"`
	BusinessStability   BusinessStability   `json:"business_stability"`
	Signals             *MoatSignals        `json:"signals,omitempty"`
}

// MoatOverrides lets an analyst correct the heuristics.
type MoatOverrides struct {
	AddSources        []MoatSource      `json:"add_sources,omitempty"`
	RemoveSources     []MoatSource      `json:"remove_sources,omitempty"`
	MoatStrength      MoatStrength      `json:"moat_strength,omitempty"`
	BusinessStability BusinessStability `json:"business_stability,omitempty"`
	WACC              *WACCInputs       `json:"wacc,omitempty"`
}

// ImpliedMetrics are assumptions back-solved from one reporting period.
type ImpliedMetrics struct {
	Date                string  `json:"date"`
	EffectiveTaxRate    float64 `json:"effective_tax_rate"`    // tax expense / income before tax
	ImpliedInterestRate float64 `json:"implied_interest_rate"` // interest expense / total debt
	CapexPercentRevenue float64 `json:"capex_percent_revenue"` // |capex| / revenue
	DepreciationToCapex float64 `json:"depreciation_to_capex"` // depreciation / |capex|
}
