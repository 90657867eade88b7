package models

// DCFInputs drives a single-growth free cash flow projection with a Gordon terminal value.
type DCFInputs struct {
	BaseFreeCashFlow   float64 `json:"base_free_cash_flow"`
	GrowthRate         float64 `json:"growth_rate"`
	ProjectionYears    int     `json:"projection_years"`
	TerminalGrowthRate float64 `json:"terminal_growth_rate"`
	DiscountRate       float64 `json:"discount_rate"`
	NetDebt            float64 `json:"net_debt"`
	SharesOutstanding  float64 `json:"shares_outstanding"`
}

type CashFlowProjection struct {
	Year           int     `json:"year"`
	FreeCashFlow   float64 `json:"free_cash_flow"`
	PresentValue   float64 `json:"present_value"`
	GrowthRate     float64 `json:"growth_rate"`
	DiscountFactor float64 `json:"discount_factor"`
}

type DCFResult struct {
	EnterpriseValue        float64              `json:"enterprise_value"`
	EquityValue            float64              `json:"equity_value"`
	IntrinsicValuePerShare float64              `json:"intrinsic_value_per_share"`
	Projections            []CashFlowProjection `json:"projections"`
	PVOfCashFlows          float64              `json:"pv_of_cash_flows"`
	TerminalValue          float64              `json:"terminal_value"`
	TerminalValuePV        float64              `json:"terminal_value_pv"`
	TerminalValueShare     float64              `json:"terminal_value_share"`
	Warnings               []string             `json:"warnings,omitempty"`
}

// GrowthEstimate is a historical growth rate. UsedDefault marks the policy
// fallback taken when the history is unusable.
type GrowthEstimate struct {
	Rate        float64 `json:"rate"`
	UsedDefault bool    `json:"used_default"`
	Reason      string  `json:"reason,omitempty"`
}
