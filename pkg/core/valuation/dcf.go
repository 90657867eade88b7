package valuation

import (
	"errors"
	"math"
	"sort"

	"intrinsic_valuation/pkg/core/calc"
	"intrinsic_valuation/pkg/core/validate"
	"intrinsic_valuation/pkg/models"
)

// DefaultProjectionYears is used when DCFInputs.ProjectionYears is zero.
const DefaultProjectionYears = 5

// ErrNoCashFlows is returned when statements carry no cash flow periods.
var ErrNoCashFlows = errors.New("no cash flow statements")

// CalculateDCF performs a single-growth free cash flow valuation with a
// Gordon terminal value.
//
// FORMULA:
//
//	FCF_t = FCF_0 × (1 + g)^t,  t = 1..N
//	TV    = FCF_N × (1 + g_t) / (r - g_t)
//	EV    = Σ FCF_t / (1 + r)^t + TV / (1 + r)^N
//	Equity = EV - Net Debt
func CalculateDCF(in models.DCFInputs) (*models.DCFResult, error) {
	if in.ProjectionYears == 0 {
		in.ProjectionYears = DefaultProjectionYears
	}
	check := validate.ValidateDCFInputs(in)
	if !check.IsValid {
		return nil, &ValidationError{Messages: check.Errors}
	}

	r, n := in.DiscountRate, in.ProjectionYears
	res := &models.DCFResult{
		Projections: make([]models.CashFlowProjection, 0, n),
		Warnings:    append([]string{}, check.Warnings...),
	}

	fcf := in.BaseFreeCashFlow
	for t := 1; t <= n; t++ {
		fcf *= 1 + in.GrowthRate
		df := calc.DiscountFactor(r, t)
		pv := fcf / df
		res.PVOfCashFlows += pv
		res.Projections = append(res.Projections, models.CashFlowProjection{
			Year:           t,
			FreeCashFlow:   fcf,
			PresentValue:   pv,
			GrowthRate:     in.GrowthRate,
			DiscountFactor: df,
		})
	}

	tv, err := calc.TerminalValueGordonGrowth(fcf*(1+in.TerminalGrowthRate), r, in.TerminalGrowthRate)
	if err != nil {
		return nil, domainErr("discounted cash flow", err)
	}
	res.TerminalValue = tv
	res.TerminalValuePV = calc.PresentValue(tv, r, n)

	res.EnterpriseValue = res.PVOfCashFlows + res.TerminalValuePV
	res.EquityValue = res.EnterpriseValue - in.NetDebt
	res.IntrinsicValuePerShare = res.EquityValue / in.SharesOutstanding
	if err := requireFinite("discounted cash flow", res.EnterpriseValue, res.EquityValue, res.IntrinsicValuePerShare); err != nil {
		return nil, err
	}
	if res.EnterpriseValue != 0 {
		res.TerminalValueShare = res.TerminalValuePV / res.EnterpriseValue
	}

	if math.Abs(res.TerminalValueShare) > HighTerminalShare {
		res.Warnings = append(res.Warnings, "Terminal value accounts for more than 75% of enterprise value")
	}
	if res.EquityValue < 0 {
		res.Warnings = append(res.Warnings, "Net debt exceeds enterprise value - equity value is negative")
	}

	return res, nil
}

// freeCashFlow prefers the reported figure and otherwise derives
// operating cash flow less capital expenditure.
func freeCashFlow(cf models.CashFlowStatement) float64 {
	if cf.FreeCashFlow != 0 {
		return cf.FreeCashFlow
	}
	return cf.OperatingCashFlow - math.Abs(cf.CapitalExpenditure)
}

// DCFInputsFromFinancials builds DCF inputs from statements: the latest free
// cash flow as the base, historical FCF growth, and net debt from the latest
// balance sheet.
func DCFInputsFromFinancials(fin models.Financials, discountRate, terminalGrowth, sharesOutstanding float64) (models.DCFInputs, models.GrowthEstimate, error) {
	if len(fin.CashFlows) == 0 {
		return models.DCFInputs{}, models.GrowthEstimate{}, ErrNoCashFlows
	}

	flows := make([]models.CashFlowStatement, len(fin.CashFlows))
	copy(flows, fin.CashFlows)
	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Date < flows[j].Date })

	series := make([]float64, len(flows))
	for i, cf := range flows {
		series[i] = freeCashFlow(cf)
	}
	growth := EstimateGrowthRate(series)

	var netDebt float64
	if bs, ok := latestBalanceSheet(fin); ok {
		netDebt = bs.ShortTermDebt + bs.LongTermDebt - bs.CashAndEquivalents
	}

	return models.DCFInputs{
		BaseFreeCashFlow:   series[len(series)-1],
		GrowthRate:         growth.Rate,
		ProjectionYears:    DefaultProjectionYears,
		TerminalGrowthRate: terminalGrowth,
		DiscountRate:       discountRate,
		NetDebt:            netDebt,
		SharesOutstanding:  sharesOutstanding,
	}, growth, nil
}
