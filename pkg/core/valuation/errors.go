// Package valuation holds the intrinsic value engines (DDM, EPV, DCF, NAV),
// the sensitivity analyzer that re-runs them on perturbed inputs, and the
// calculator dispatch that routes a typed request to its engine.
//
// Every engine validates first and refuses to compute on invalid input.
// Engines are pure: no I/O, no logging, no shared state.
package valuation

import (
	"errors"
	"fmt"
	"strings"

	"intrinsic_valuation/pkg/core/calc"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid valuation inputs")

	// ErrDomain matches every *DomainError.
	ErrDomain = errors.New("formula outside its domain")
)

// ValidationError carries the blocking messages from the validation layer.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DomainError is raised when a formula would divide by zero (or close to it)
// even though validation passed.
type DomainError struct {
	Op     string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

func domainErr(op string, err error) error {
	return &DomainError{Op: op, Reason: err.Error()}
}

// requireFinite fails with a *DomainError when any value overflowed or
// picked up NaN.
func requireFinite(op string, values ...float64) error {
	for _, v := range values {
		if !calc.IsFinite(v) {
			return domainErr(op, calc.ErrNonFinite)
		}
	}
	return nil
}
