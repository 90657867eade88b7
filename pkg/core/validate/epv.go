package validate

import (
	"math"

	"intrinsic_valuation/pkg/models"
)

// WeightTolerance is the allowed gap between WACC weights and 1.
const WeightTolerance = 0.01

// ValidateEPVInputs checks the earnings series and the pipeline settings.
// An out-of-range normalization period is clamped, not rejected; the clamped
// value is returned in Result.NormalizationPeriod.
func ValidateEPVInputs(in models.EPVInputs) *Result {
	res := newResult()

	n := len(in.HistoricalEarnings)
	if n == 0 {
		res.errorf("Historical earnings are required")
	}
	for _, e := range in.HistoricalEarnings {
		res.finite("Net income", e.NetIncome)
		res.finite("Revenue", e.Revenue)
		res.finite("Operating income", e.OperatingIncome)
		res.finite("Depreciation", e.Depreciation)
		if !isISODate(e.Date) {
			res.warnf("Earnings date %q is not in YYYY-MM-DD format", e.Date)
		}
	}

	period := in.NormalizationPeriod
	if n > 0 {
		switch {
		case period < 1:
			res.warnf("Normalization period %d is below 1; using 1", period)
			period = 1
		case period > n:
			res.warnf("Normalization period %d exceeds available history; using %d", period, n)
			period = n
		}
		res.NormalizationPeriod = period
	}

	switch in.NormalizationMethod {
	case models.NormalizeAverage, models.NormalizeMedian, models.NormalizeLatest:
	case models.NormalizeManual:
		if in.ManualNormalizedEarnings == nil {
			res.errorf("Manual normalization requires manual normalized earnings")
		} else {
			res.finite("Manual normalized earnings", *in.ManualNormalizedEarnings)
		}
	default:
		res.errorf("Unknown normalization method %q", in.NormalizationMethod)
	}

	for _, adj := range in.EarningsAdjustments {
		res.finite("Earnings adjustment", adj.Amount)
	}

	if res.finite("Shares outstanding", in.SharesOutstanding) && in.SharesOutstanding <= 0 {
		res.errorf("Shares outstanding must be greater than zero")
	}
	res.finite("Current price", in.CurrentPrice)

	capex := in.MaintenanceCapexAnalysis
	switch capex.Method {
	case models.CapexManual:
		if res.finite("Maintenance capex", capex.ManualAmount) && capex.ManualAmount < 0 {
			res.errorf("Manual maintenance capex cannot be negative")
		}
	case models.CapexRevenuePercentage:
		if res.finite("Maintenance capex revenue percentage", capex.RevenuePercentage) &&
			(capex.RevenuePercentage < 0 || capex.RevenuePercentage > 1) {
			res.errorf("Maintenance capex revenue percentage must be between 0 and 1")
		}
	case models.CapexDepreciationMultiple:
		if res.finite("Depreciation multiple", capex.DepreciationMultiple) && capex.DepreciationMultiple < 0 {
			res.errorf("Depreciation multiple cannot be negative")
		}
	case "":
		if capex.IncludeMaintenanceCapex {
			res.errorf("Maintenance capex method is required when maintenance capex is included")
		}
	default:
		res.errorf("Unknown maintenance capex method %q", capex.Method)
	}

	coc := in.CostOfCapital
	switch coc.Method {
	case models.CostOfCapitalManual:
		if res.finite("Manual cost of capital", coc.ManualRate) && coc.ManualRate <= 0 {
			res.errorf("Manual cost of capital must be greater than zero")
		}
	case models.CostOfCapitalCAPM:
		res.finite("Risk-free rate", coc.RiskFreeRate)
		res.finite("Beta", coc.Beta)
		res.finite("Market risk premium", coc.MarketRiskPremium)
	case models.CostOfCapitalWACC:
		res.finite("Risk-free rate", coc.RiskFreeRate)
		res.finite("Beta", coc.Beta)
		res.finite("Market risk premium", coc.MarketRiskPremium)
		res.finite("Cost of debt", coc.CostOfDebt)
		we := res.finite("Weight of equity", coc.WeightOfEquity)
		wd := res.finite("Weight of debt", coc.WeightOfDebt)
		switch {
		case !we || !wd:
		case coc.WeightOfEquity < 0 || coc.WeightOfDebt < 0:
			res.errorf("Capital structure weights cannot be negative")
		case math.Abs(coc.WeightOfEquity+coc.WeightOfDebt-1) > WeightTolerance:
			res.warnf("Equity and debt weights sum to %.2f rather than 1", coc.WeightOfEquity+coc.WeightOfDebt)
		}
		if res.finite("Tax rate", coc.TaxRate) && (coc.TaxRate < 0 || coc.TaxRate >= 1) {
			res.errorf("Tax rate must be in [0, 1)")
		}
	default:
		res.errorf("Unknown cost of capital method %q", coc.Method)
	}

	return res
}
