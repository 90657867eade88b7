package models

// DDMModelType selects the dividend discount variant.
type DDMModelType string

const (
	DDMGordon     DDMModelType = "gordon"
	DDMZero       DDMModelType = "zero"
	DDMTwoStage   DDMModelType = "two-stage"
	DDMMultiStage DDMModelType = "multi-stage"
)

// GrowthPhase is one stage of a multi-stage growth path. The last phase of a
// sequence is the perpetual phase and its Years are ignored.
type GrowthPhase struct {
	GrowthRate  float64 `json:"growth_rate"`
	Years       int     `json:"years"`
	Description string  `json:"description,omitempty"`
}

// DDMInputs is keyed by ModelType; only the fields of the selected variant are read.
type DDMInputs struct {
	ModelType         DDMModelType `json:"model_type"`
	CurrentDividend   float64      `json:"current_dividend"` // D0, per share
	SharesOutstanding float64      `json:"shares_outstanding"`
	RequiredReturn    float64      `json:"required_return"`

	// gordon
	GordonGrowthRate float64 `json:"gordon_growth_rate,omitempty"`

	// two-stage
	HighGrowthRate   float64 `json:"high_growth_rate,omitempty"`
	HighGrowthYears  int     `json:"high_growth_years,omitempty"`
	StableGrowthRate float64 `json:"stable_growth_rate,omitempty"`

	// multi-stage
	GrowthPhases []GrowthPhase `json:"growth_phases,omitempty"`
}

// DividendProjection is one projected year. PresentValue = Dividend / DiscountFactor.
type DividendProjection struct {
	Year           int     `json:"year"`
	Dividend       float64 `json:"dividend"`
	PresentValue   float64 `json:"present_value"`
	GrowthRate     float64 `json:"growth_rate"`
	DiscountFactor float64 `json:"discount_factor"`
}

// DDMResult holds the output of a dividend discount valuation.
type DDMResult struct {
	IntrinsicValue         float64              `json:"intrinsic_value"`
	IntrinsicValuePerShare float64              `json:"intrinsic_value_per_share"`
	CurrentDividendYield   float64              `json:"current_dividend_yield"`
	ForwardDividendYield   float64              `json:"forward_dividend_yield"`
	DividendProjections    []DividendProjection `json:"dividend_projections"`
	TerminalValue          *float64             `json:"terminal_value,omitempty"`
	TerminalValuePV        *float64             `json:"terminal_value_pv,omitempty"`
	ModelType              DDMModelType         `json:"model_type"`
	TotalPVOfDividends     float64              `json:"total_pv_of_dividends"`
	YearsProjected         int                  `json:"years_projected"`
	Warnings               []string             `json:"warnings,omitempty"`
}
