package valuation

import (
	"errors"
	"math"

	"golang.org/x/sync/errgroup"

	"intrinsic_valuation/pkg/core/calc"
	"intrinsic_valuation/pkg/models"
)

// DefaultWorkers bounds concurrent evaluations of a sensitivity table.
const DefaultWorkers = 4

var (
	// DefaultRateOffsets shift growth and discount rates.
	DefaultRateOffsets = []float64{-0.02, -0.01, 0, 0.01, 0.02}

	// DefaultLevelOffsets scale a level (earnings, assets, liabilities).
	DefaultLevelOffsets = []float64{-0.20, -0.10, 0, 0.10, 0.20}

	// DefaultCapexMultipliers scale maintenance capex.
	DefaultCapexMultipliers = []float64{0.5, 0.75, 1.0, 1.25, 1.5}
)

// ErrMissingResult is returned when EPV sensitivity has no base result.
var ErrMissingResult = errors.New("base EPV result is required")

// SensitivityOptions configures an Analyzer. Nil grids use the defaults.
type SensitivityOptions struct {
	GrowthOffsets    []float64
	DiscountOffsets  []float64
	LevelOffsets     []float64
	CapexMultipliers []float64
	Workers          int
}

// Analyzer re-runs the engines over offset grids.
type Analyzer struct {
	opts SensitivityOptions
}

// NewAnalyzer fills missing options with defaults.
func NewAnalyzer(opts SensitivityOptions) *Analyzer {
	if len(opts.GrowthOffsets) == 0 {
		opts.GrowthOffsets = DefaultRateOffsets
	}
	if len(opts.DiscountOffsets) == 0 {
		opts.DiscountOffsets = DefaultRateOffsets
	}
	if len(opts.LevelOffsets) == 0 {
		opts.LevelOffsets = DefaultLevelOffsets
	}
	if len(opts.CapexMultipliers) == 0 {
		opts.CapexMultipliers = DefaultCapexMultipliers
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Analyzer{opts: opts}
}

// Options returns the effective grids, defaults included.
func (a *Analyzer) Options() SensitivityOptions {
	return SensitivityOptions{
		GrowthOffsets:    append([]float64{}, a.opts.GrowthOffsets...),
		DiscountOffsets:  append([]float64{}, a.opts.DiscountOffsets...),
		LevelOffsets:     append([]float64{}, a.opts.LevelOffsets...),
		CapexMultipliers: append([]float64{}, a.opts.CapexMultipliers...),
		Workers:          a.opts.Workers,
	}
}

// =============================================================================
// GRID EVALUATION
// =============================================================================

// evalFunc values the model at one (growth, discount) offset pair.
type evalFunc func(growthOffset, discountOffset float64) (float64, error)

// axis maps an offset to the perturbed parameter it produces.
type axis func(offset float64) float64

// evaluation is the outcome of one grid point. ok is false when the
// perturbed input left the model's domain.
type evaluation struct {
	value float64
	ok    bool
}

func safeEval(eval evalFunc, g, d float64) evaluation {
	v, err := eval(g, d)
	if err != nil || !calc.IsFinite(v) {
		return evaluation{}
	}
	return evaluation{value: v, ok: true}
}

func percentChange(base, v float64) float64 {
	if math.Abs(base) <= calc.Epsilon {
		return 0
	}
	return (v - base) / math.Abs(base)
}

func (a *Analyzer) point(base, offset, param float64, e evaluation) models.SensitivityPoint {
	p := models.SensitivityPoint{Offset: offset, ParameterValue: param}
	if e.ok {
		p.Value = e.value
		p.PercentChange = percentChange(base, e.value)
		p.Computable = true
	}
	return p
}

// table evaluates both sweeps and the full matrix on a bounded pool. Each
// job writes only its own pre-indexed slot.
func (a *Analyzer) table(base float64, gOff, dOff []float64, gAxis, dAxis axis, eval evalFunc) models.SensitivityTable {
	growthSweep := make([]evaluation, len(gOff))
	discountSweep := make([]evaluation, len(dOff))
	matrix := make([][]evaluation, len(gOff))
	for i := range matrix {
		matrix[i] = make([]evaluation, len(dOff))
	}

	var g errgroup.Group
	g.SetLimit(a.opts.Workers)
	for i, gOffset := range gOff {
		i, gOffset := i, gOffset
		g.Go(func() error {
			growthSweep[i] = safeEval(eval, gOffset, 0)
			return nil
		})
	}
	for j, dOffset := range dOff {
		j, dOffset := j, dOffset
		g.Go(func() error {
			discountSweep[j] = safeEval(eval, 0, dOffset)
			return nil
		})
	}
	for i, gOffset := range gOff {
		for j, dOffset := range dOff {
			i, gOffset, j, dOffset := i, gOffset, j, dOffset
			g.Go(func() error {
				matrix[i][j] = safeEval(eval, gOffset, dOffset)
				return nil
			})
		}
	}
	_ = g.Wait()

	out := models.SensitivityTable{
		BaseValue:       base,
		GrowthOffsets:   append([]float64{}, gOff...),
		DiscountOffsets: append([]float64{}, dOff...),
		GrowthSweep:     make([]models.SensitivityPoint, len(gOff)),
		DiscountSweep:   make([]models.SensitivityPoint, len(dOff)),
		Matrix:          make([][]models.SensitivityCell, len(gOff)),
	}
	for i, off := range gOff {
		out.GrowthSweep[i] = a.point(base, off, gAxis(off), growthSweep[i])
	}
	for j, off := range dOff {
		out.DiscountSweep[j] = a.point(base, off, dAxis(off), discountSweep[j])
	}
	for i, gO := range gOff {
		out.Matrix[i] = make([]models.SensitivityCell, len(dOff))
		for j, dO := range dOff {
			cell := models.SensitivityCell{GrowthRate: gAxis(gO), DiscountRate: dAxis(dO)}
			if e := matrix[i][j]; e.ok {
				cell.Value = e.value
				cell.Computable = true
			}
			out.Matrix[i][j] = cell
		}
	}
	return out
}

// =============================================================================
// DDM
// =============================================================================

// shiftDDM moves every growth rate of the variant by dg and the required
// return by dr. A zero-growth model becomes Gordon growth at dg.
func shiftDDM(in models.DDMInputs, dg, dr float64) models.DDMInputs {
	out := in
	out.RequiredReturn += dr
	switch in.ModelType {
	case models.DDMGordon:
		out.GordonGrowthRate += dg
	case models.DDMZero:
		if dg != 0 {
			out.ModelType = models.DDMGordon
			out.GordonGrowthRate = dg
		}
	case models.DDMTwoStage:
		out.HighGrowthRate += dg
		out.StableGrowthRate += dg
	case models.DDMMultiStage:
		out.GrowthPhases = make([]models.GrowthPhase, len(in.GrowthPhases))
		for i, p := range in.GrowthPhases {
			p.GrowthRate += dg
			out.GrowthPhases[i] = p
		}
	}
	return out
}

// perpetualGrowth is the long-run growth rate the DDM variant settles on.
func perpetualGrowth(in models.DDMInputs) float64 {
	switch in.ModelType {
	case models.DDMGordon:
		return in.GordonGrowthRate
	case models.DDMTwoStage:
		return in.StableGrowthRate
	case models.DDMMultiStage:
		if n := len(in.GrowthPhases); n > 0 {
			return in.GrowthPhases[n-1].GrowthRate
		}
	}
	return 0
}

// DDM sweeps growth and required return around the base dividend model.
func (a *Analyzer) DDM(in models.DDMInputs) (*models.DDMSensitivity, error) {
	base, err := CalculateDDM(in)
	if err != nil {
		return nil, err
	}

	eval := func(dg, dr float64) (float64, error) {
		res, err := CalculateDDM(shiftDDM(in, dg, dr))
		if err != nil {
			return 0, err
		}
		return res.IntrinsicValuePerShare, nil
	}
	gAxis := func(off float64) float64 { return perpetualGrowth(shiftDDM(in, off, 0)) }
	dAxis := func(off float64) float64 { return in.RequiredReturn + off }

	return &models.DDMSensitivity{
		ModelType:        in.ModelType,
		SensitivityTable: a.table(base.IntrinsicValuePerShare, a.opts.GrowthOffsets, a.opts.DiscountOffsets, gAxis, dAxis, eval),
	}, nil
}

// CalculateDDMSensitivity runs the DDM sweep over the given grids. Empty
// grids fall back to the ±2% defaults.
func CalculateDDMSensitivity(in models.DDMInputs, growthGrid, discountGrid []float64) (*models.DDMSensitivity, error) {
	return NewAnalyzer(SensitivityOptions{GrowthOffsets: growthGrid, DiscountOffsets: discountGrid}).DDM(in)
}

// =============================================================================
// EPV
// =============================================================================

// EPV sweeps the earnings level against the cost of capital, and maintenance
// capex on its own, re-running the valuation stage of a finished result.
func (a *Analyzer) EPV(res *models.EPVResult) (*models.EPVSensitivity, error) {
	if res == nil {
		return nil, ErrMissingResult
	}
	if res.SharesOutstanding <= 0 {
		return nil, &ValidationError{Messages: []string{"Shares outstanding must be greater than zero"}}
	}
	if res.CostOfCapital <= calc.Epsilon {
		return nil, &DomainError{Op: "EPV sensitivity", Reason: calc.ErrNonPositiveRate.Error()}
	}

	value := func(earnings, capex, coc float64) (float64, error) {
		total, err := calc.CapitalizedValue(earnings-capex, coc)
		if err != nil {
			return 0, err
		}
		return total / res.SharesOutstanding, nil
	}

	eval := func(level, dr float64) (float64, error) {
		return value(res.NormalizedEarnings*(1+level), res.MaintenanceCapex, res.CostOfCapital+dr)
	}
	gAxis := func(off float64) float64 { return res.NormalizedEarnings * (1 + off) }
	dAxis := func(off float64) float64 { return res.CostOfCapital + off }

	out := &models.EPVSensitivity{
		SensitivityTable: a.table(res.EPVPerShare, a.opts.LevelOffsets, a.opts.DiscountOffsets, gAxis, dAxis, eval),
		CapexSweep:       make([]models.SensitivityPoint, len(a.opts.CapexMultipliers)),
	}
	for i, k := range a.opts.CapexMultipliers {
		capex := res.MaintenanceCapex * k
		e := evaluation{}
		if v, err := value(res.NormalizedEarnings, capex, res.CostOfCapital); err == nil && calc.IsFinite(v) {
			e = evaluation{value: v, ok: true}
		}
		out.CapexSweep[i] = a.point(res.EPVPerShare, k-1, capex, e)
	}
	return out, nil
}

// CalculateEPVSensitivity runs the EPV sweeps with default grids.
func CalculateEPVSensitivity(res *models.EPVResult) (*models.EPVSensitivity, error) {
	return NewAnalyzer(SensitivityOptions{}).EPV(res)
}

// =============================================================================
// DCF
// =============================================================================

// DCF sweeps projection growth against the discount rate.
func (a *Analyzer) DCF(in models.DCFInputs) (*models.DCFSensitivity, error) {
	base, err := CalculateDCF(in)
	if err != nil {
		return nil, err
	}

	eval := func(dg, dr float64) (float64, error) {
		shifted := in
		shifted.GrowthRate += dg
		shifted.DiscountRate += dr
		res, err := CalculateDCF(shifted)
		if err != nil {
			return 0, err
		}
		return res.IntrinsicValuePerShare, nil
	}
	gAxis := func(off float64) float64 { return in.GrowthRate + off }
	dAxis := func(off float64) float64 { return in.DiscountRate + off }

	return &models.DCFSensitivity{
		SensitivityTable: a.table(base.IntrinsicValuePerShare, a.opts.GrowthOffsets, a.opts.DiscountOffsets, gAxis, dAxis, eval),
	}, nil
}

// CalculateDCFSensitivity runs the DCF sweep over the given grids.
func CalculateDCFSensitivity(in models.DCFInputs, growthGrid, discountGrid []float64) (*models.DCFSensitivity, error) {
	return NewAnalyzer(SensitivityOptions{GrowthOffsets: growthGrid, DiscountOffsets: discountGrid}).DCF(in)
}

// =============================================================================
// NAV
// =============================================================================

// NAV sweeps the asset level against the liability level.
func (a *Analyzer) NAV(in models.NAVInputs) (*models.NAVSensitivity, error) {
	base, err := CalculateNAV(in)
	if err != nil {
		return nil, err
	}

	eval := func(da, dl float64) (float64, error) {
		shifted := in
		shifted.TotalAssets *= 1 + da
		shifted.TotalLiabilities *= 1 + dl
		res, err := CalculateNAV(shifted)
		if err != nil {
			return 0, err
		}
		return res.NAVPerShare, nil
	}
	gAxis := func(off float64) float64 { return in.TotalAssets * (1 + off) }
	dAxis := func(off float64) float64 { return in.TotalLiabilities * (1 + off) }

	return &models.NAVSensitivity{
		SensitivityTable: a.table(base.NAVPerShare, a.opts.LevelOffsets, a.opts.LevelOffsets, gAxis, dAxis, eval),
	}, nil
}

// CalculateNAVSensitivity runs the NAV sweep over the given level grid.
func CalculateNAVSensitivity(in models.NAVInputs, levelGrid []float64) (*models.NAVSensitivity, error) {
	return NewAnalyzer(SensitivityOptions{LevelOffsets: levelGrid}).NAV(in)
}
