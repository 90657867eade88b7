package validate

import (
	"intrinsic_valuation/pkg/models"
)

// Bounds for the DCF projection horizon.
const (
	MinProjectionYears  = 1
	MaxProjectionYears  = 15
	MaxProjectionGrowth = 0.25
)

// ValidateDCFInputs checks a free cash flow projection.
func ValidateDCFInputs(in models.DCFInputs) *Result {
	res := newResult()

	if res.finite("Shares outstanding", in.SharesOutstanding) && in.SharesOutstanding <= 0 {
		res.errorf("Shares outstanding must be greater than zero")
	}
	r := in.DiscountRate
	if res.finite("Discount rate", r) && r <= 0 {
		res.errorf("Discount rate must be greater than zero")
	}
	if res.finite("Terminal growth rate", in.TerminalGrowthRate) && in.TerminalGrowthRate >= r {
		res.errorf("Terminal growth rate must be less than discount rate")
	}
	if in.ProjectionYears < MinProjectionYears || in.ProjectionYears > MaxProjectionYears {
		res.errorf("Projection years must be between %d and %d", MinProjectionYears, MaxProjectionYears)
	}
	if res.finite("Growth rate", in.GrowthRate) && in.GrowthRate > MaxProjectionGrowth {
		res.warnf("Projection growth above 25%% is aggressive")
	}
	if res.finite("Base free cash flow", in.BaseFreeCashFlow) && in.BaseFreeCashFlow <= 0 {
		res.warnf("Base free cash flow is not positive - DCF value will not be meaningful")
	}
	res.finite("Net debt", in.NetDebt)

	return res
}

// ValidateNAVInputs checks an asset-based valuation.
func ValidateNAVInputs(in models.NAVInputs) *Result {
	res := newResult()

	if res.finite("Shares outstanding", in.SharesOutstanding) && in.SharesOutstanding <= 0 {
		res.errorf("Shares outstanding must be greater than zero")
	}
	if res.finite("Total assets", in.TotalAssets) && in.TotalAssets < 0 {
		res.errorf("Total assets cannot be negative")
	}
	if res.finite("Total liabilities", in.TotalLiabilities) && in.TotalLiabilities > in.TotalAssets {
		res.warnf("Liabilities exceed assets - net asset value is negative")
	}
	res.finite("Goodwill", in.Goodwill)
	res.finite("Intangible assets", in.IntangibleAssets)
	for _, adj := range in.AssetAdjustments {
		res.finite("Asset adjustment", adj.Amount)
	}

	return res
}
