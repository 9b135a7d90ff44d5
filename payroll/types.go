/*
Package payroll provides the Algerian payroll calculation engine.

PURPOSE:
  This package turns an employee's base salary, the attendance facts of a
  pay period and the operator's manual adjustments into a payslip
  breakdown: gross pay, CNAS contributions, IRG withholding, net pay and
  total employer cost. It has no I/O and no state between calls.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A decimal quantity with a unit (DZD or hours)
  - Rounding: every currency result is rounded half-up to the whole dinar

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal, never float64, inside the pipeline
  2. Immutability: Every value type is copied, never mutated in place
  3. Fail fast: Invalid input is rejected at the boundary (see errors.go)

USAGE:
  calc, _ := payroll.NewCalculator(payroll.DefaultRules())
  result, err := calc.Calculate(payroll.Input{
      Period:   payroll.PayPeriod{Year: 2025, Month: time.March},
      Employee: payroll.EmployeeBaseline{BaseSalaryMonthly: payroll.DZD(50000)},
  })

SEE ALSO:
  - rules.go: Statutory rates and the IRG bracket table
  - calculator.go: The full pipeline
  - model.go: Input and output shapes
*/
package payroll

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDZD   Unit = "DZD"
	UnitHours Unit = "hours"
)

var half = decimal.New(5, -1)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(value), Unit: unit}
}

// DZD is shorthand for an amount in Algerian dinars.
func DZD(value float64) Amount { return NewAmount(value, UnitDZD) }

// Hours is shorthand for a duration expressed in hours.
func Hours(value float64) Amount { return NewAmount(value, UnitHours) }

// ParseAmount converts an untrusted float into an Amount. NaN, infinities
// and negative values are rejected with a ValidationError naming field.
func ParseAmount(field string, value float64, unit Unit) (Amount, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Amount{}, &ValidationError{Field: field, Reason: "must be a finite number"}
	}
	if value < 0 {
		return Amount{}, &ValidationError{Field: field, Reason: fmt.Sprintf("must not be negative (got %v)", value)}
	}
	return NewAmount(value, unit), nil
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Div(s decimal.Decimal) Amount { return Amount{Value: a.Value.Div(s), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Round returns the amount rounded half-up to an integer. decimal's own
// Round goes half away from zero, which differs for negative halves.
func (a Amount) Round() Amount {
	return Amount{Value: roundHalfUp(a.Value), Unit: a.Unit}
}

// Float64 is for serialization at the API edge only.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

func (a Amount) String() string {
	return a.Value.String() + " " + string(a.Unit)
}

func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Add(half).Floor()
}

func zeroDZD() Amount { return Amount{Value: decimal.Zero, Unit: UnitDZD} }
