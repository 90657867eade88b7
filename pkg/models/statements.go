package models

// =============================================================================
// STATEMENT RECORDS
// Supplied by the data-source collaborator. Ordering is never trusted: every
// consumer re-sorts by Date (ISO-8601 "YYYY-MM-DD", which sorts lexically).
// =============================================================================

// DateLayout is the expected layout of statement dates.
const DateLayout = "2006-01-02"

// IncomeStatement is one reporting period of the income statement.
type IncomeStatement struct {
	Date                         string  `json:"date"`
	Revenue                      float64 `json:"revenue"`
	CostOfRevenue                float64 `json:"cost_of_revenue"`
	GrossProfit                  float64 `json:"gross_profit"`
	OperatingIncome              float64 `json:"operating_income"`
	NetIncome                    float64 `json:"net_income"`
	IncomeBeforeTax              float64 `json:"income_before_tax"`
	IncomeTaxExpense             float64 `json:"income_tax_expense"`
	InterestExpense              float64 `json:"interest_expense"`
	ResearchAndDevelopment       float64 `json:"research_and_development"`
	SellingGeneralAdministrative float64 `json:"selling_general_administrative"`
	Depreciation                 float64 `json:"depreciation"`
}

// BalanceSheet is one reporting period of the balance sheet.
type BalanceSheet struct {
	Date               string  `json:"date"`
	TotalAssets        float64 `json:"total_assets"`
	TotalCurrentAssets float64 `json:"total_current_assets"`
	CashAndEquivalents float64 `json:"cash_and_equivalents"`
	Goodwill           float64 `json:"goodwill"`
	IntangibleAssets   float64 `json:"intangible_assets"`
	TotalLiabilities   float64 `json:"total_liabilities"`
	CurrentLiabilities float64 `json:"current_liabilities"`
	ShortTermDebt      float64 `json:"short_term_debt"`
	LongTermDebt       float64 `json:"long_term_debt"`
	DeferredRevenue    float64 `json:"deferred_revenue"`
	TotalEquity        float64 `json:"total_equity"`
}

// CashFlowStatement is one reporting period of the cash flow statement.
// CapitalExpenditure and DividendsPaid may be reported with either sign.
type CashFlowStatement struct {
	Date               string  `json:"date"`
	OperatingCashFlow  float64 `json:"operating_cash_flow"`
	CapitalExpenditure float64 `json:"capital_expenditure"`
	Depreciation       float64 `json:"depreciation"`
	DividendsPaid      float64 `json:"dividends_paid"`
	FreeCashFlow       float64 `json:"free_cash_flow"`
}

// Financials is the multi-period statement bundle for one company.
type Financials struct {
	Ticker           string              `json:"ticker,omitempty"`
	IncomeStatements []IncomeStatement   `json:"income_statements"`
	BalanceSheets    []BalanceSheet      `json:"balance_sheets"`
	CashFlows        []CashFlowStatement `json:"cash_flows"`
}
