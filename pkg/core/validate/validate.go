// Package validate implements the input-sanity layer that runs before any
// valuation engine. Every function is total: it never panics and always
// returns a Result, even for nil slices or zero-valued inputs.
package validate

import (
	"fmt"
	"math"
	"time"

	"intrinsic_valuation/pkg/models"
)

// Result separates blocking errors from informational warnings.
type Result struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	// NormalizationPeriod is the clamped EPV window (zero for other models).
	NormalizationPeriod int `json:"normalization_period,omitempty"`
}

func newResult() *Result {
	return &Result{IsValid: true, Errors: []string{}, Warnings: []string{}}
}

func (r *Result) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.IsValid = false
}

func (r *Result) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// finite guards every numeric input; NaN and ±Inf are rejected outright.
func (r *Result) finite(field string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.errorf("%s must be a finite number", field)
		return false
	}
	return true
}

// isISODate reports whether s parses as YYYY-MM-DD.
func isISODate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

// =============================================================================
// STATEMENT CHECKS
// =============================================================================

// BalanceTolerance is the relative gap allowed in Assets = Liabilities + Equity.
const BalanceTolerance = 0.01

// BalanceCheck verifies Assets = Liabilities + Equity.
type BalanceCheck struct {
	Date             string
	TotalAssets      float64
	TotalLiabilities float64
	TotalEquity      float64
	ComputedAssets   float64 // L + E
	Difference       float64
	IsBalanced       bool
	Tolerance        float64
}

// CheckBalanceEquation validates A = L + E within an absolute tolerance.
func CheckBalanceEquation(assets, liabilities, equity, tolerance float64) *BalanceCheck {
	computed := liabilities + equity
	diff := assets - computed

	return &BalanceCheck{
		TotalAssets:      assets,
		TotalLiabilities: liabilities,
		TotalEquity:      equity,
		ComputedAssets:   computed,
		Difference:       diff,
		IsBalanced:       math.Abs(diff) <= tolerance,
		Tolerance:        tolerance,
	}
}

// ValidateFinancials checks statement bundles handed over by the data-source
// collaborator. Problems here never block a valuation on their own.
func ValidateFinancials(fin models.Financials) *Result {
	res := newResult()

	if len(fin.IncomeStatements) == 0 && len(fin.BalanceSheets) == 0 && len(fin.CashFlows) == 0 {
		res.warnf("No financial statements supplied")
		return res
	}

	seen := map[string]bool{}
	for _, is := range fin.IncomeStatements {
		if !isISODate(is.Date) {
			res.warnf("Income statement date %q is not in YYYY-MM-DD format", is.Date)
		}
		if seen[is.Date] {
			res.warnf("Duplicate income statement for %s", is.Date)
		}
		seen[is.Date] = true
		if is.Revenue < 0 {
			res.warnf("Negative revenue reported for %s", is.Date)
		}
	}

	for _, bs := range fin.BalanceSheets {
		if !isISODate(bs.Date) {
			res.warnf("Balance sheet date %q is not in YYYY-MM-DD format", bs.Date)
		}
		if bs.TotalEquity == 0 && bs.TotalLiabilities == 0 {
			continue
		}
		tol := math.Max(math.Abs(bs.TotalAssets)*BalanceTolerance, 1)
		check := CheckBalanceEquation(bs.TotalAssets, bs.TotalLiabilities, bs.TotalEquity, tol)
		if !check.IsBalanced {
			res.warnf("Balance sheet for %s does not balance (assets - liabilities - equity = %.2f)", bs.Date, check.Difference)
		}
	}

	for _, cf := range fin.CashFlows {
		if !isISODate(cf.Date) {
			res.warnf("Cash flow date %q is not in YYYY-MM-DD format", cf.Date)
		}
	}

	if benford := AnalyzeBenfordsLaw(statementValues(fin)); benford.TotalCount >= MinBenfordSample && benford.Flagged {
		res.warnf("Leading digits of reported figures deviate from Benford's law (MAD %.4f)", benford.MAD)
	}

	return res
}
