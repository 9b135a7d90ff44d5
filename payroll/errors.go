/*
errors.go - Centralized error types for the payroll engine

ERROR CATEGORIES:
  1. Input errors - negative salary, negative days, NaN, bad period
  2. Rules errors - a bracket table or rate set that cannot be used

Clamping is NOT an error: negative taxable income becomes zero, and a
negative gross or net pay becomes zero with a Warning on the result.

USAGE:
  if errors.Is(err, payroll.ErrInvalidInput) {
      // caller may re-invoke with corrected input
  }
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned when a calculation input is out of range.
	ErrInvalidInput = errors.New("invalid payroll input")

	// ErrInvalidRules is returned when a rules set fails validation.
	ErrInvalidRules = errors.New("invalid payroll rules")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// RulesError describes why a rules set was rejected.
type RulesError struct {
	Rule   string
	Reason string
}

func (e *RulesError) Error() string {
	return fmt.Sprintf("invalid rule %s: %s", e.Rule, e.Reason)
}

func (e *RulesError) Unwrap() error {
	return ErrInvalidRules
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidRules)
}
