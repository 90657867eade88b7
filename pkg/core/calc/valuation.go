// Package calc provides deterministic financial calculations shared by the
// valuation engines: cost of capital, discounting and perpetuity formulas.
package calc

import (
	"errors"
	"math"
)

// Epsilon is the smallest spread the perpetuity formulas accept as a divisor.
const Epsilon = 1e-9

// ErrNonConvergentPerpetuity is returned when the discount rate does not
// exceed the growth rate, so the perpetuity has no finite value.
var ErrNonConvergentPerpetuity = errors.New("discount rate must exceed growth rate")

// ErrNonPositiveRate is returned when a capitalisation rate is zero or negative.
var ErrNonPositiveRate = errors.New("rate must be positive")

// ErrNonFinite is returned when a formula overflows or meets NaN.
var ErrNonFinite = errors.New("result is not a finite number")

// =============================================================================
// COST OF CAPITAL
// =============================================================================

// CostOfEquityCAPM calculates required return on equity using CAPM.
//
// FORMULA: r_e = r_f + β × MRP
//
// Where:
//   - r_f = Risk-free rate (10-year Treasury)
//   - β = Equity beta (market sensitivity)
//   - MRP = Market Risk Premium (expected market return - risk-free rate)
func CostOfEquityCAPM(riskFreeRate, beta, marketRiskPremium float64) float64 {
	return riskFreeRate + beta*marketRiskPremium
}

// AfterTaxCostOfDebt applies the interest tax shield.
//
// FORMULA: r_d × (1 - T)
func AfterTaxCostOfDebt(costOfDebt, taxRate float64) float64 {
	return costOfDebt * (1 - taxRate)
}

// WACC calculates Weighted Average Cost of Capital.
//
// FORMULA: WACC = r_e × (E/V) + r_d × (1 - T) × (D/V)
//
// Where:
//   - r_d = Cost of debt (pre-tax yield on debt)
//   - T = Corporate tax rate
//   - D/V = Debt weight in capital structure
//   - r_e = Cost of equity (from CAPM)
//   - E/V = Equity weight in capital structure
func WACC(costOfDebt, taxRate, debtWeight, costOfEquity, equityWeight float64) float64 {
	afterTaxDebtCost := AfterTaxCostOfDebt(costOfDebt, taxRate) * debtWeight
	equityCost := costOfEquity * equityWeight
	return afterTaxDebtCost + equityCost
}

// =============================================================================
// DISCOUNTING
// =============================================================================

// DiscountFactor returns the compounding divisor for period t.
//
// FORMULA: DF_t = (1 + r)^t
func DiscountFactor(discountRate float64, periods int) float64 {
	return math.Pow(1+discountRate, float64(periods))
}

// PresentValue calculates PV of a single cash flow.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow / DiscountFactor(discountRate, periods)
}

// PresentValueOfCashFlows calculates PV of a series of cash flows.
//
// FORMULA: PV = Σ [ CF_t / (1 + r)^t ]
//
// Cash flows are assumed to be at end of each period (ordinary annuity).
func PresentValueOfCashFlows(cashFlows []float64, discountRate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += PresentValue(cf, discountRate, t+1)
	}
	return pv
}

// CompoundGrowth projects an amount forward geometrically.
//
// FORMULA: X_t = X_0 × (1 + g)^t
func CompoundGrowth(amount, growthRate float64, periods int) float64 {
	return amount * math.Pow(1+growthRate, float64(periods))
}

// =============================================================================
// PERPETUITIES
// =============================================================================

// TerminalValueGordonGrowth calculates terminal value using Gordon Growth Model.
//
// FORMULA: TV = CF_{t+1} / (r - g)
//
// Where:
//   - CF_{t+1} = Next period's cash flow (after forecast horizon)
//   - r = Discount rate (WACC or cost of equity)
//   - g = Long-run growth rate (must be < r)
func TerminalValueGordonGrowth(nextPeriodCF, discountRate, growthRate float64) (float64, error) {
	if !(discountRate-growthRate > Epsilon) {
		return 0, ErrNonConvergentPerpetuity
	}
	return nextPeriodCF / (discountRate - growthRate), nil
}

// CapitalizedValue values a flat perpetuity.
//
// FORMULA: V = CF / r
func CapitalizedValue(cashFlow, rate float64) (float64, error) {
	if !(rate > Epsilon) {
		return 0, ErrNonPositiveRate
	}
	return cashFlow / rate, nil
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
