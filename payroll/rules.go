/*
rules.go - Statutory rates and the IRG bracket table

PURPOSE:
  Single source of truth for every constant the pipeline uses. A Rules
  value is immutable once handed to a Calculator; changing legislation
  means building a new Rules (see factory/ for loading one from a file).

CANONICAL VALUES (DefaultRules):
  CNAS employee share:      9% of gross pay
  CNAS employer share:     26% of gross pay
  Standard month:          173.33 hours, 22 working days
  Overtime multiplier:     1.5

IRG (progressive, on taxable income t = gross - CNAS employee):
  t <= 30 000               0
  30 000 < t <= 120 000     (t - 30 000) x 20%
  120 000 < t <= 360 000    18 000 + (t - 120 000) x 30%
  t > 360 000               90 000 + (t - 360 000) x 35%

  The table is stored as marginal brackets (floor, rate). The fixed part
  of each band is the sum of the bands below it, so the function is
  continuous at every floor by construction.

SEE ALSO:
  - deductions.go: Applies the CNAS rates and IRG
  - gross.go: Uses hourly rate, working days and overtime multiplier
*/
package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	DefaultWorkingDaysPerMonth = 22
)

// Bracket is one marginal band: Rate applies to the part of taxable
// income above Floor, up to the next bracket's Floor.
type Bracket struct {
	Floor decimal.Decimal
	Rate  decimal.Decimal
}

// Rules holds the rates and constants of one legislation.
type Rules struct {
	CNASEmployeeRate     decimal.Decimal
	CNASEmployerRate     decimal.Decimal
	IRGBrackets          []Bracket
	StandardMonthlyHours decimal.Decimal
	WorkingDaysPerMonth  int
	OvertimeMultiplier   decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		CNASEmployeeRate: MustParseDecimal("0.09"),
		CNASEmployerRate: MustParseDecimal("0.26"),
		IRGBrackets: []Bracket{
			{Floor: decimal.Zero, Rate: decimal.Zero},
			{Floor: decimal.NewFromInt(30000), Rate: MustParseDecimal("0.20")},
			{Floor: decimal.NewFromInt(120000), Rate: MustParseDecimal("0.30")},
			{Floor: decimal.NewFromInt(360000), Rate: MustParseDecimal("0.35")},
		},
		StandardMonthlyHours: MustParseDecimal("173.33"),
		WorkingDaysPerMonth:  DefaultWorkingDaysPerMonth,
		OvertimeMultiplier:   MustParseDecimal("1.5"),
	}
}

// Clone returns a deep copy so the bracket slice is never shared.
func (r Rules) Clone() Rules {
	out := r
	out.IRGBrackets = append([]Bracket(nil), r.IRGBrackets...)
	return out
}

func (r Rules) Validate() error {
	one := decimal.NewFromInt(1)
	rate := func(name string, v decimal.Decimal) error {
		if v.IsNegative() || v.GreaterThanOrEqual(one) {
			return &RulesError{Rule: name, Reason: fmt.Sprintf("rate %s outside [0, 1)", v)}
		}
		return nil
	}

	if err := rate("cnas.employee_rate", r.CNASEmployeeRate); err != nil {
		return err
	}
	if err := rate("cnas.employer_rate", r.CNASEmployerRate); err != nil {
		return err
	}
	if len(r.IRGBrackets) == 0 {
		return &RulesError{Rule: "irg.brackets", Reason: "table is empty"}
	}
	if !r.IRGBrackets[0].Floor.IsZero() {
		return &RulesError{Rule: "irg.brackets[0]", Reason: "first floor must be 0"}
	}
	for i, b := range r.IRGBrackets {
		name := fmt.Sprintf("irg.brackets[%d]", i)
		if err := rate(name, b.Rate); err != nil {
			return err
		}
		if i > 0 && !b.Floor.GreaterThan(r.IRGBrackets[i-1].Floor) {
			return &RulesError{Rule: name, Reason: "floors must be strictly ascending"}
		}
	}
	if !r.StandardMonthlyHours.IsPositive() {
		return &RulesError{Rule: "standard_monthly_hours", Reason: "must be positive"}
	}
	if r.WorkingDaysPerMonth <= 0 {
		return &RulesError{Rule: "working_days_per_month", Reason: "must be positive"}
	}
	if r.OvertimeMultiplier.LessThan(one) {
		return &RulesError{Rule: "overtime_multiplier", Reason: "must be at least 1"}
	}
	return nil
}

// =============================================================================
// LOOKUPS
// =============================================================================

// IRG returns the income tax due on a monthly taxable income.
// Negative income is treated as zero.
func (r Rules) IRG(taxable Amount) Amount {
	t := decimal.Max(taxable.Value, decimal.Zero)
	tax := decimal.Zero
	for i, b := range r.IRGBrackets {
		if !t.GreaterThan(b.Floor) {
			break
		}
		upper := t
		if i+1 < len(r.IRGBrackets) {
			upper = decimal.Min(t, r.IRGBrackets[i+1].Floor)
		}
		tax = tax.Add(upper.Sub(b.Floor).Mul(b.Rate))
	}
	return Amount{Value: roundHalfUp(tax), Unit: UnitDZD}
}

// HourlyRate is the base salary over the standard month, rounded.
func (r Rules) HourlyRate(base Amount) Amount {
	return Amount{Value: roundHalfUp(base.Value.Div(r.StandardMonthlyHours)), Unit: UnitDZD}
}

// BracketRow is a display form of one band with its fixed part resolved.
type BracketRow struct {
	Floor   decimal.Decimal
	Ceiling *decimal.Decimal // nil for the top band
	Rate    decimal.Decimal
	BaseTax decimal.Decimal // tax due at Floor
}

// BracketTable lists the bands in the "fixed + rate over floor" form used
// on published IRG schedules.
func (r Rules) BracketTable() []BracketRow {
	rows := make([]BracketRow, len(r.IRGBrackets))
	base := decimal.Zero
	for i, b := range r.IRGBrackets {
		rows[i] = BracketRow{Floor: b.Floor, Rate: b.Rate, BaseTax: base}
		if i+1 < len(r.IRGBrackets) {
			ceiling := r.IRGBrackets[i+1].Floor
			rows[i].Ceiling = &ceiling
			base = base.Add(ceiling.Sub(b.Floor).Mul(b.Rate))
		}
	}
	return rows
}
