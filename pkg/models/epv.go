package models

// NormalizationMethod selects how base earnings are derived from history.
type NormalizationMethod string

const (
	NormalizeAverage NormalizationMethod = "average"
	NormalizeMedian  NormalizationMethod = "median"
	NormalizeLatest  NormalizationMethod = "latest"
	NormalizeManual  NormalizationMethod = "manual"
)

// CostOfCapitalMethod selects the discount rate derivation.
type CostOfCapitalMethod string

const (
	CostOfCapitalWACC   CostOfCapitalMethod = "wacc"
	CostOfCapitalCAPM   CostOfCapitalMethod = "capm"
	CostOfCapitalManual CostOfCapitalMethod = "manual"
)

// MaintenanceCapexMethod selects how maintenance capex is estimated.
type MaintenanceCapexMethod string

const (
	CapexManual               MaintenanceCapexMethod = "manual"
	CapexRevenuePercentage    MaintenanceCapexMethod = "revenue_percentage"
	CapexDepreciationMultiple MaintenanceCapexMethod = "depreciation_multiple"
)

type EarningsQuality string

const (
	EarningsQualityHigh   EarningsQuality = "high"
	EarningsQualityMedium EarningsQuality = "medium"
	EarningsQualityLow    EarningsQuality = "low"
)

type BusinessStability string

const (
	StabilityStable   BusinessStability = "stable"
	StabilityCyclical BusinessStability = "cyclical"
	StabilityVolatile BusinessStability = "volatile"
)

type CompetitivePosition string

const (
	PositionDominant CompetitivePosition = "dominant"
	PositionStrong   CompetitivePosition = "strong"
	PositionAverage  CompetitivePosition = "average"
	PositionWeak     CompetitivePosition = "weak"
)

type AdjustmentCategory string

const (
	AdjustmentOneTime      AdjustmentCategory = "one_time"
	AdjustmentNonRecurring AdjustmentCategory = "non_recurring"
	AdjustmentAccounting   AdjustmentCategory = "accounting"
	AdjustmentCyclical     AdjustmentCategory = "cyclical"
	AdjustmentOther        AdjustmentCategory = "other"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Trend classifies the direction of a series.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// HistoricalEarnings is one period of the EPV earnings series.
type HistoricalEarnings struct {
	Year            int     `json:"year"`
	Date            string  `json:"date"`
	NetIncome       float64 `json:"net_income"`
	OperatingIncome float64 `json:"operating_income"`
	Revenue         float64 `json:"revenue"`
	Depreciation    float64 `json:"depreciation,omitempty"`
}

// EarningsAdjustment is a signed normalization adjustment, applied in order.
type EarningsAdjustment struct {
	Description string             `json:"description"`
	Amount      float64            `json:"amount"`
	Reason      string             `json:"reason,omitempty"`
	Category    AdjustmentCategory `json:"category"`
	Confidence  Confidence         `json:"confidence"`
}

type MaintenanceCapexAnalysis struct {
	Method                  MaintenanceCapexMethod `json:"method"`
	ManualAmount            float64                `json:"manual_amount,omitempty"`
	RevenuePercentage       float64                `json:"revenue_percentage,omitempty"`    // default 0.03
	DepreciationMultiple    float64                `json:"depreciation_multiple,omitempty"` // default 1.0
	IncludeMaintenanceCapex bool                   `json:"include_maintenance_capex"`
}

// CostOfCapitalInputs carries the components for every cost-of-capital method.
type CostOfCapitalInputs struct {
	Method            CostOfCapitalMethod `json:"method"`
	RiskFreeRate      float64             `json:"risk_free_rate,omitempty"`
	Beta              float64             `json:"beta,omitempty"`
	MarketRiskPremium float64             `json:"market_risk_premium,omitempty"`
	CostOfDebt        float64             `json:"cost_of_debt,omitempty"` // pre-tax
	TaxRate           float64             `json:"tax_rate,omitempty"`
	WeightOfEquity    float64             `json:"weight_of_equity,omitempty"`
	WeightOfDebt      float64             `json:"weight_of_debt,omitempty"`
	ManualRate        float64             `json:"manual_rate,omitempty"`
}

// EPVInputs drives the Earnings Power Value engine.
type EPVInputs struct {
	HistoricalEarnings       []HistoricalEarnings     `json:"historical_earnings"`
	NormalizationMethod      NormalizationMethod      `json:"normalization_method"`
	ManualNormalizedEarnings *float64                 `json:"manual_normalized_earnings,omitempty"`
	NormalizationPeriod      int                      `json:"normalization_period"`
	EarningsAdjustments      []EarningsAdjustment     `json:"earnings_adjustments,omitempty"`
	MaintenanceCapexAnalysis MaintenanceCapexAnalysis `json:"maintenance_capex_analysis"`
	CostOfCapital            CostOfCapitalInputs      `json:"cost_of_capital"`
	SharesOutstanding        float64                  `json:"shares_outstanding"`
	CurrentPrice             float64                  `json:"current_price,omitempty"`
	EarningsQuality          EarningsQuality          `json:"earnings_quality,omitempty"`
	BusinessStability        BusinessStability        `json:"business_stability,omitempty"`
	CompetitivePosition      CompetitivePosition      `json:"competitive_position,omitempty"`
	Financials               *Financials              `json:"financials,omitempty"`
}

// CostOfCapitalBreakdown records how the discount rate was reached.
type CostOfCapitalBreakdown struct {
	Method             CostOfCapitalMethod `json:"method"`
	CostOfEquity       float64             `json:"cost_of_equity"`
	AfterTaxCostOfDebt float64             `json:"after_tax_cost_of_debt"`
	WeightOfEquity     float64             `json:"weight_of_equity"`
	WeightOfDebt       float64             `json:"weight_of_debt"`
	Rate               float64             `json:"rate"`
}

// EarningsNormalization summarises stage 1 of the EPV pipeline.
type EarningsNormalization struct {
	Method           NormalizationMethod `json:"method"`
	BaseEarnings     float64             `json:"base_earnings"`
	TotalAdjustments float64             `json:"total_adjustments"`
	QualityScore     float64             `json:"quality_score"`
	Volatility       float64             `json:"volatility"`
	Trend            Trend               `json:"trend"`
	PeriodsUsed      int                 `json:"periods_used"`
}

// Warning is a non-blocking data-quality advisory.
type Warning struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// EPVResult is the Earnings Power Value output.
type EPVResult struct {
	NormalizedEarnings     float64                `json:"normalized_earnings"`
	MaintenanceCapex       float64                `json:"maintenance_capex"`
	AdjustedEarnings       float64                `json:"adjusted_earnings"`
	CostOfCapital          float64                `json:"cost_of_capital"`
	CostOfCapitalBreakdown CostOfCapitalBreakdown `json:"cost_of_capital_breakdown"`
	EPVTotalValue          float64                `json:"epv_total_value"`
	EPVPerShare            float64                `json:"epv_per_share"`
	SharesOutstanding      float64                `json:"shares_outstanding"`
	EarningsNormalization  EarningsNormalization  `json:"earnings_normalization"`
	ROICAnalysis           *ROICAnalysis          `json:"roic_analysis,omitempty"`
	MoatAnalysis           MoatAnalysis           `json:"moat_analysis"`
	ConfidenceLevel        Confidence             `json:"confidence_level"`
	Warnings               []Warning              `json:"warnings"`
	EarningsYield          float64                `json:"earnings_yield"`
}
