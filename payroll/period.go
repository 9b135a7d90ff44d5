package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// PAY PERIOD - One calendar month
// =============================================================================

// PayPeriod identifies the month a payslip is computed for.
// Once a payslip is finalized its period never changes.
type PayPeriod struct {
	Year  int
	Month time.Month
}

func NewPayPeriod(year int, month time.Month) (PayPeriod, error) {
	p := PayPeriod{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return PayPeriod{}, err
	}
	return p, nil
}

// ParsePayPeriod parses "YYYY-MM".
func ParsePayPeriod(s string) (PayPeriod, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return PayPeriod{}, &ValidationError{Field: "period", Reason: fmt.Sprintf("%q is not YYYY-MM", s)}
	}
	return PayPeriod{Year: t.Year(), Month: t.Month()}, nil
}

func (p PayPeriod) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return &ValidationError{Field: "period.month", Reason: fmt.Sprintf("must be 1-12 (got %d)", int(p.Month))}
	}
	if p.Year < 1 || p.Year > 9999 {
		return &ValidationError{Field: "period.year", Reason: fmt.Sprintf("out of range (got %d)", p.Year)}
	}
	return nil
}

// Start returns the first day of the period at midnight UTC.
func (p PayPeriod) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period at midnight UTC.
func (p PayPeriod) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Contains reports whether the calendar date of t falls in the period.
func (p PayPeriod) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// WorkingDays counts Sunday through Thursday, the Algerian work week.
// Public holidays are not subtracted.
func (p PayPeriod) WorkingDays() int {
	n := 0
	for d := p.Start(); !d.After(p.End()); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Friday && wd != time.Saturday {
			n++
		}
	}
	return n
}

func (p PayPeriod) Next() PayPeriod {
	s := p.Start().AddDate(0, 1, 0)
	return PayPeriod{Year: s.Year(), Month: s.Month()}
}

func (p PayPeriod) Previous() PayPeriod {
	s := p.Start().AddDate(0, -1, 0)
	return PayPeriod{Year: s.Year(), Month: s.Month()}
}

func (p PayPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
