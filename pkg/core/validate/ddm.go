package validate

import (
	"intrinsic_valuation/pkg/models"
)

// Thresholds for DDM warnings.
const (
	MaxReasonableRequiredReturn = 0.50
	MaxSustainableGrowth        = 0.15
	MinReasonableGrowth         = -0.10
	MaxHighGrowthYears          = 10
	MinGrowthPhases             = 2
)

// ValidateDDMInputs checks the common dividend fields and the fields of the
// selected variant.
func ValidateDDMInputs(in models.DDMInputs) *Result {
	res := newResult()

	if res.finite("Current dividend", in.CurrentDividend) {
		if in.CurrentDividend < 0 {
			res.errorf("Current dividend cannot be negative")
		} else if in.CurrentDividend == 0 {
			res.warnf("Current dividend is zero - the model will value the stock at zero")
		}
	}
	if res.finite("Shares outstanding", in.SharesOutstanding) && in.SharesOutstanding <= 0 {
		res.errorf("Shares outstanding must be greater than zero")
	}
	r := in.RequiredReturn
	if res.finite("Required return", r) {
		if r <= 0 {
			res.errorf("Required return must be greater than zero")
		} else if r > MaxReasonableRequiredReturn {
			res.warnf("Required return above 50%% is unusually high")
		}
	}

	switch in.ModelType {
	case models.DDMGordon:
		g := in.GordonGrowthRate
		if !res.finite("Gordon growth rate", g) {
			break
		}
		if g >= r {
			res.errorf("Gordon growth rate must be less than required return")
		}
		if g > MaxSustainableGrowth {
			res.warnf("Growth above 15%% is unlikely to be sustainable in perpetuity")
		}
		if g < MinReasonableGrowth {
			res.warnf("Growth below -10%% implies a shrinking dividend in perpetuity")
		}

	case models.DDMZero:
		// no variant fields

	case models.DDMTwoStage:
		gh, gs := in.HighGrowthRate, in.StableGrowthRate
		if !res.finite("High growth rate", gh) || !res.finite("Stable growth rate", gs) {
			break
		}
		if gs >= r {
			res.errorf("Stable growth rate must be less than required return")
		}
		if gh < gs {
			res.warnf("High growth rate is below the stable growth rate")
		}
		if in.HighGrowthYears < 0 {
			res.errorf("High growth years cannot be negative")
		} else if in.HighGrowthYears > MaxHighGrowthYears {
			res.warnf("High growth period longer than 10 years is rarely sustainable")
		}

	case models.DDMMultiStage:
		phases := in.GrowthPhases
		if len(phases) < MinGrowthPhases {
			res.errorf("Multi-stage model requires at least 2 growth phases")
			break
		}
		for i, p := range phases {
			if !res.finite("Growth phase rate", p.GrowthRate) {
				continue
			}
			if i < len(phases)-1 && p.Years < 0 {
				res.errorf("Growth phase %d has negative years", i+1)
			}
		}
		if terminal := phases[len(phases)-1].GrowthRate; terminal >= r {
			res.errorf("Terminal phase growth rate must be less than required return")
		}

	default:
		res.errorf("Unknown DDM model type %q", in.ModelType)
	}

	return res
}
