package valuation

import (
	"errors"
	"fmt"

	"intrinsic_valuation/pkg/core/validate"
	"intrinsic_valuation/pkg/models"
)

// CalculatorKind names a valuation model.
type CalculatorKind string

const (
	KindDCF CalculatorKind = "dcf"
	KindDDM CalculatorKind = "ddm"
	KindEPV CalculatorKind = "epv"
	KindNAV CalculatorKind = "nav"
)

// Kinds lists every calculator in display order.
var Kinds = []CalculatorKind{KindDCF, KindDDM, KindEPV, KindNAV}

// ErrUnknownKind is returned for a kind with no calculator.
var ErrUnknownKind = errors.New("unknown calculator kind")

// ParseKind maps a name to its kind.
func ParseKind(s string) (CalculatorKind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Request carries the inputs for exactly one kind; only the field matching
// Kind is read.
type Request struct {
	Kind CalculatorKind    `json:"kind"`
	DCF  *models.DCFInputs `json:"dcf,omitempty"`
	DDM  *models.DDMInputs `json:"ddm,omitempty"`
	EPV  *models.EPVInputs `json:"epv,omitempty"`
	NAV  *models.NAVInputs `json:"nav,omitempty"`
}

// Response carries exactly one typed result.
type Response struct {
	Kind CalculatorKind    `json:"kind"`
	DCF  *models.DCFResult `json:"dcf,omitempty"`
	DDM  *models.DDMResult `json:"ddm,omitempty"`
	EPV  *models.EPVResult `json:"epv,omitempty"`
	NAV  *models.NAVResult `json:"nav,omitempty"`
}

// PerShare is the headline intrinsic value per share.
func (r Response) PerShare() float64 {
	switch {
	case r.DCF != nil:
		return r.DCF.IntrinsicValuePerShare
	case r.DDM != nil:
		return r.DDM.IntrinsicValuePerShare
	case r.EPV != nil:
		return r.EPV.EPVPerShare
	case r.NAV != nil:
		return r.NAV.NAVPerShare
	}
	return 0
}

// Warnings flattens the result's warnings to plain messages.
func (r Response) Warnings() []string {
	switch {
	case r.DCF != nil:
		return r.DCF.Warnings
	case r.DDM != nil:
		return r.DDM.Warnings
	case r.NAV != nil:
		return r.NAV.Warnings
	case r.EPV != nil:
		out := make([]string, len(r.EPV.Warnings))
		for i, w := range r.EPV.Warnings {
			out[i] = w.Message
		}
		return out
	}
	return nil
}

// SensitivityResponse carries exactly one typed sensitivity table.
type SensitivityResponse struct {
	Kind CalculatorKind         `json:"kind"`
	DCF  *models.DCFSensitivity `json:"dcf,omitempty"`
	DDM  *models.DDMSensitivity `json:"ddm,omitempty"`
	EPV  *models.EPVSensitivity `json:"epv,omitempty"`
	NAV  *models.NAVSensitivity `json:"nav,omitempty"`
}

// Table returns the shared growth x discount table.
func (r SensitivityResponse) Table() *models.SensitivityTable {
	switch {
	case r.DCF != nil:
		return &r.DCF.SensitivityTable
	case r.DDM != nil:
		return &r.DDM.SensitivityTable
	case r.EPV != nil:
		return &r.EPV.SensitivityTable
	case r.NAV != nil:
		return &r.NAV.SensitivityTable
	}
	return nil
}

func missing(kind CalculatorKind) error {
	return &ValidationError{Messages: []string{fmt.Sprintf("Request has no %s inputs", kind)}}
}

// =============================================================================
// DISPATCH TABLES
// =============================================================================

type (
	calculatorFunc  func(Request) (Response, error)
	sensitivityFunc func(*Analyzer, Request) (SensitivityResponse, error)
	validatorFunc   func(Request) (*validate.Result, error)
)

var calculators = map[CalculatorKind]calculatorFunc{
	KindDCF: func(req Request) (Response, error) {
		if req.DCF == nil {
			return Response{}, missing(KindDCF)
		}
		res, err := CalculateDCF(*req.DCF)
		return Response{Kind: KindDCF, DCF: res}, err
	},
	KindDDM: func(req Request) (Response, error) {
		if req.DDM == nil {
			return Response{}, missing(KindDDM)
		}
		res, err := CalculateDDM(*req.DDM)
		return Response{Kind: KindDDM, DDM: res}, err
	},
	KindEPV: func(req Request) (Response, error) {
		if req.EPV == nil {
			return Response{}, missing(KindEPV)
		}
		res, err := CalculateEPVIntrinsicValue(*req.EPV)
		return Response{Kind: KindEPV, EPV: res}, err
	},
	KindNAV: func(req Request) (Response, error) {
		if req.NAV == nil {
			return Response{}, missing(KindNAV)
		}
		res, err := CalculateNAV(*req.NAV)
		return Response{Kind: KindNAV, NAV: res}, err
	},
}

var sensitivities = map[CalculatorKind]sensitivityFunc{
	KindDCF: func(a *Analyzer, req Request) (SensitivityResponse, error) {
		if req.DCF == nil {
			return SensitivityResponse{}, missing(KindDCF)
		}
		s, err := a.DCF(*req.DCF)
		return SensitivityResponse{Kind: KindDCF, DCF: s}, err
	},
	KindDDM: func(a *Analyzer, req Request) (SensitivityResponse, error) {
		if req.DDM == nil {
			return SensitivityResponse{}, missing(KindDDM)
		}
		s, err := a.DDM(*req.DDM)
		return SensitivityResponse{Kind: KindDDM, DDM: s}, err
	},
	KindEPV: func(a *Analyzer, req Request) (SensitivityResponse, error) {
		if req.EPV == nil {
			return SensitivityResponse{}, missing(KindEPV)
		}
		base, err := CalculateEPVIntrinsicValue(*req.EPV)
		if err != nil {
			return SensitivityResponse{}, err
		}
		s, err := a.EPV(base)
		return SensitivityResponse{Kind: KindEPV, EPV: s}, err
	},
	KindNAV: func(a *Analyzer, req Request) (SensitivityResponse, error) {
		if req.NAV == nil {
			return SensitivityResponse{}, missing(KindNAV)
		}
		s, err := a.NAV(*req.NAV)
		return SensitivityResponse{Kind: KindNAV, NAV: s}, err
	},
}

var validators = map[CalculatorKind]validatorFunc{
	KindDCF: func(req Request) (*validate.Result, error) {
		if req.DCF == nil {
			return nil, missing(KindDCF)
		}
		in := *req.DCF
		if in.ProjectionYears == 0 {
			in.ProjectionYears = DefaultProjectionYears
		}
		return validate.ValidateDCFInputs(in), nil
	},
	KindDDM: func(req Request) (*validate.Result, error) {
		if req.DDM == nil {
			return nil, missing(KindDDM)
		}
		return validate.ValidateDDMInputs(*req.DDM), nil
	},
	KindEPV: func(req Request) (*validate.Result, error) {
		if req.EPV == nil {
			return nil, missing(KindEPV)
		}
		return validate.ValidateEPVInputs(*req.EPV), nil
	},
	KindNAV: func(req Request) (*validate.Result, error) {
		if req.NAV == nil {
			return nil, missing(KindNAV)
		}
		return validate.ValidateNAVInputs(*req.NAV), nil
	},
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Run routes the request to the calculator for its kind.
func Run(req Request) (Response, error) {
	fn, ok := calculators[req.Kind]
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
	return fn(req)
}

// RunSensitivity routes the request to the analyzer method for its kind.
func (a *Analyzer) RunSensitivity(req Request) (SensitivityResponse, error) {
	fn, ok := sensitivities[req.Kind]
	if !ok {
		return SensitivityResponse{}, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
	return fn(a, req)
}

// Validate runs only the validation layer for the request's kind.
func Validate(req Request) (*validate.Result, error) {
	fn, ok := validators[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
	}
	return fn(req)
}
