package valuation

import (
	"intrinsic_valuation/pkg/core/calc"
	"intrinsic_valuation/pkg/core/validate"
	"intrinsic_valuation/pkg/models"
)

// Display horizon for dividend projections.
const (
	MinDisplayYears     = 10
	MaxDisplayYears     = 15
	DisplayPaddingYears = 5

	// HighTerminalShare flags valuations dominated by the terminal value.
	HighTerminalShare = 0.75
)

// displayHorizon is clamp(yearsProjected + 5, 10, 15).
func displayHorizon(yearsProjected int) int {
	h := yearsProjected + DisplayPaddingYears
	if h < MinDisplayYears {
		return MinDisplayYears
	}
	if h > MaxDisplayYears {
		return MaxDisplayYears
	}
	return h
}

// dividendSchedule compounds D0 year by year with growthFor(t) and discounts
// each dividend at (1+r)^t.
func dividendSchedule(d0, r float64, years int, growthFor func(year int) float64) []models.DividendProjection {
	out := make([]models.DividendProjection, 0, years)
	d := d0
	for t := 1; t <= years; t++ {
		g := growthFor(t)
		d *= 1 + g
		df := calc.DiscountFactor(r, t)
		out = append(out, models.DividendProjection{
			Year:           t,
			Dividend:       d,
			PresentValue:   d / df,
			GrowthRate:     g,
			DiscountFactor: df,
		})
	}
	return out
}

func sumPV(schedule []models.DividendProjection, years int) float64 {
	var pv float64
	for _, p := range schedule[:years] {
		pv += p.PresentValue
	}
	return pv
}

// =============================================================================
// DIVIDEND DISCOUNT MODEL
// =============================================================================

// CalculateDDM values a share as the present value of its future dividends.
//
// Variants:
//   - gordon:      V = D0 × (1+g) / (r - g)
//   - zero:        V = D0 / r
//   - two-stage:   V = Σ_{t=1..N} D0(1+gh)^t / (1+r)^t + [D_N(1+gs) / (r-gs)] / (1+r)^N
//   - multi-stage: finite phases compound in sequence, the last phase is a perpetuity
//
// Inputs are validated first; an invalid input returns *ValidationError and
// nothing is computed.
func CalculateDDM(in models.DDMInputs) (*models.DDMResult, error) {
	check := validate.ValidateDDMInputs(in)
	if !check.IsValid {
		return nil, &ValidationError{Messages: check.Errors}
	}

	var (
		res *models.DDMResult
		err error
	)
	switch in.ModelType {
	case models.DDMGordon:
		res, err = gordonDDM(in)
	case models.DDMZero:
		res, err = zeroGrowthDDM(in)
	case models.DDMTwoStage:
		res, err = twoStageDDM(in)
	case models.DDMMultiStage:
		res, err = multiStageDDM(in)
	}
	if err != nil {
		return nil, err
	}

	res.ModelType = in.ModelType
	res.IntrinsicValue = res.IntrinsicValuePerShare * in.SharesOutstanding
	if err := requireFinite("dividend discount model", res.IntrinsicValuePerShare, res.IntrinsicValue); err != nil {
		return nil, err
	}
	if res.IntrinsicValuePerShare != 0 {
		res.CurrentDividendYield = in.CurrentDividend / res.IntrinsicValuePerShare
		if len(res.DividendProjections) > 0 {
			res.ForwardDividendYield = res.DividendProjections[0].Dividend / res.IntrinsicValuePerShare
		}
	}

	res.Warnings = append(append([]string{}, check.Warnings...), res.Warnings...)
	return res, nil
}

func gordonDDM(in models.DDMInputs) (*models.DDMResult, error) {
	r, g := in.RequiredReturn, in.GordonGrowthRate
	d1 := in.CurrentDividend * (1 + g)

	value, err := calc.TerminalValueGordonGrowth(d1, r, g)
	if err != nil {
		return nil, domainErr("gordon growth DDM", err)
	}

	return &models.DDMResult{
		IntrinsicValuePerShare: value,
		TotalPVOfDividends:     value,
		DividendProjections: dividendSchedule(in.CurrentDividend, r, displayHorizon(0),
			func(int) float64 { return g }),
	}, nil
}

func zeroGrowthDDM(in models.DDMInputs) (*models.DDMResult, error) {
	value, err := calc.CapitalizedValue(in.CurrentDividend, in.RequiredReturn)
	if err != nil {
		return nil, domainErr("zero growth DDM", err)
	}

	return &models.DDMResult{
		IntrinsicValuePerShare: value,
		TotalPVOfDividends:     value,
		DividendProjections: dividendSchedule(in.CurrentDividend, in.RequiredReturn, displayHorizon(0),
			func(int) float64 { return 0 }),
	}, nil
}

func twoStageDDM(in models.DDMInputs) (*models.DDMResult, error) {
	r, n := in.RequiredReturn, in.HighGrowthYears
	gh, gs := in.HighGrowthRate, in.StableGrowthRate

	growthFor := func(t int) float64 {
		if t <= n {
			return gh
		}
		return gs
	}
	return stagedResult(in.CurrentDividend, r, n, gs, growthFor, "two-stage DDM")
}

func multiStageDDM(in models.DDMInputs) (*models.DDMResult, error) {
	phases := in.GrowthPhases
	if len(phases) < validate.MinGrowthPhases {
		return nil, &ValidationError{Messages: []string{"Multi-stage model requires at least 2 growth phases"}}
	}

	finite := phases[:len(phases)-1]
	terminal := phases[len(phases)-1].GrowthRate

	// Phase boundaries by cumulative year index.
	ends := make([]int, len(finite))
	total := 0
	for i, p := range finite {
		total += p.Years
		ends[i] = total
	}
	growthFor := func(t int) float64 {
		for i, end := range ends {
			if t <= end {
				return finite[i].GrowthRate
			}
		}
		return terminal
	}

	return stagedResult(in.CurrentDividend, in.RequiredReturn, total, terminal, growthFor, "multi-stage DDM")
}

// stagedResult discounts the explicit years and adds a Gordon terminal value
// at the end of year n.
func stagedResult(d0, r float64, n int, terminalGrowth float64, growthFor func(int) float64, op string) (*models.DDMResult, error) {
	horizon := displayHorizon(n)
	schedule := dividendSchedule(d0, r, max(horizon, n), growthFor)

	explicitPV := sumPV(schedule, n)
	dN := d0
	if n > 0 {
		dN = schedule[n-1].Dividend
	}

	tv, err := calc.TerminalValueGordonGrowth(dN*(1+terminalGrowth), r, terminalGrowth)
	if err != nil {
		return nil, domainErr(op, err)
	}
	tvPV := calc.PresentValue(tv, r, n)
	perShare := explicitPV + tvPV

	res := &models.DDMResult{
		IntrinsicValuePerShare: perShare,
		TotalPVOfDividends:     explicitPV,
		TerminalValue:          &tv,
		TerminalValuePV:        &tvPV,
		YearsProjected:         n,
		DividendProjections:    schedule[:horizon],
	}
	if perShare > 0 && tvPV/perShare > HighTerminalShare {
		res.Warnings = append(res.Warnings, "Terminal value accounts for more than 75% of the valuation")
	}
	return res, nil
}
