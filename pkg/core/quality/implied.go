package quality

import (
	"math"

	"intrinsic_valuation/pkg/models"
)

// CalculateImpliedMetrics back-solves technical assumptions from the latest
// income statement and the balance sheet and cash flow of the same date.
// Ratios whose denominator is missing are left at zero.
func CalculateImpliedMetrics(fin models.Financials) models.ImpliedMetrics {
	income := sortedIncome(fin)
	if len(income) == 0 {
		return models.ImpliedMetrics{}
	}
	is := income[len(income)-1]
	m := models.ImpliedMetrics{Date: is.Date}

	if is.IncomeBeforeTax > 0 {
		m.EffectiveTaxRate = math.Abs(is.IncomeTaxExpense) / is.IncomeBeforeTax
	}

	for _, bs := range fin.BalanceSheets {
		if bs.Date != is.Date {
			continue
		}
		if debt := bs.ShortTermDebt + bs.LongTermDebt; debt > 0 {
			m.ImpliedInterestRate = math.Abs(is.InterestExpense) / debt
		}
	}

	for _, cf := range fin.CashFlows {
		if cf.Date != is.Date {
			continue
		}
		capex := math.Abs(cf.CapitalExpenditure)
		if is.Revenue > 0 {
			m.CapexPercentRevenue = capex / is.Revenue
		}
		depreciation := cf.Depreciation
		if depreciation == 0 {
			depreciation = is.Depreciation
		}
		if capex > 0 {
			m.DepreciationToCapex = depreciation / capex
		}
	}

	return m
}
