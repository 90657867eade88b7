package valuation

import (
	"intrinsic_valuation/pkg/core/calc"
	"intrinsic_valuation/pkg/models"
)

// CostOfCapital derives the EPV discount rate.
//
//   - wacc:   Ke × We + Kd × (1 - t) × Wd, with Ke = rf + β × MRP
//   - capm:   Ke
//   - manual: the supplied rate
func CostOfCapital(in models.CostOfCapitalInputs) models.CostOfCapitalBreakdown {
	out := models.CostOfCapitalBreakdown{Method: in.Method}

	switch in.Method {
	case models.CostOfCapitalWACC:
		ke := calc.CostOfEquityCAPM(in.RiskFreeRate, in.Beta, in.MarketRiskPremium)
		out.CostOfEquity = ke
		out.AfterTaxCostOfDebt = calc.AfterTaxCostOfDebt(in.CostOfDebt, in.TaxRate)
		out.WeightOfEquity = in.WeightOfEquity
		out.WeightOfDebt = in.WeightOfDebt
		out.Rate = calc.WACC(in.CostOfDebt, in.TaxRate, in.WeightOfDebt, ke, in.WeightOfEquity)

	case models.CostOfCapitalCAPM:
		ke := calc.CostOfEquityCAPM(in.RiskFreeRate, in.Beta, in.MarketRiskPremium)
		out.CostOfEquity = ke
		out.WeightOfEquity = 1
		out.Rate = ke

	case models.CostOfCapitalManual:
		out.WeightOfEquity = 1
		out.Rate = in.ManualRate
	}

	return out
}

// waccInputsFor restates the cost-of-capital block for the ROIC analyzer so
// that quality.CalculateWACC reproduces the same rate.
func waccInputsFor(in models.CostOfCapitalInputs) *models.WACCInputs {
	switch in.Method {
	case models.CostOfCapitalWACC:
		return &models.WACCInputs{
			RiskFreeRate:      in.RiskFreeRate,
			Beta:              in.Beta,
			MarketRiskPremium: in.MarketRiskPremium,
			CostOfDebt:        in.CostOfDebt,
			TaxRate:           in.TaxRate,
			WeightOfEquity:    in.WeightOfEquity,
			WeightOfDebt:      in.WeightOfDebt,
		}
	case models.CostOfCapitalCAPM:
		return &models.WACCInputs{
			RiskFreeRate:      in.RiskFreeRate,
			Beta:              in.Beta,
			MarketRiskPremium: in.MarketRiskPremium,
			TaxRate:           in.TaxRate,
			WeightOfEquity:    1,
		}
	case models.CostOfCapitalManual:
		// Zero beta makes CAPM collapse to the manual rate.
		return &models.WACCInputs{RiskFreeRate: in.ManualRate, TaxRate: in.TaxRate, WeightOfEquity: 1}
	}
	return nil
}
