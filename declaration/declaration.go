/*
Package declaration aggregates a month of payslips into the statutory
declarations an employer files: CNAS contributions and withheld IRG.

LIFECYCLE:
  ┌───────┐  Submit   ┌───────────┐  MarkValidated  ┌───────────┐
  │ draft │ ────────▶ │ submitted │ ──────────────▶ │ validated │
  └───────┘           └───────────┘                 └───────────┘

  Only forward moves are allowed. Anything else is ErrInvalidTransition.

DUE DATE:
  The 30th of the month following the period, or the last day of that
  month when it is shorter (February).

CONTRIBUTIONS:
  cnas: employee = sum(cnasEmployee), employer = sum(cnasEmployer)
  irg:  employee = sum(irg),          employer = 0
  total = employee + employer
*/
package declaration

import (
	"errors"
	"fmt"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

var (
	ErrUnsupportedKind   = errors.New("unsupported declaration kind")
	ErrPeriodMismatch    = errors.New("payslip period does not match declaration period")
	ErrInvalidTransition = errors.New("invalid declaration status transition")
)

type Kind string

const (
	KindCNAS Kind = "cnas"
	KindIRG  Kind = "irg"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCNAS, KindIRG:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusValidated Status = "validated"
)

// DueDayOfMonth is the filing deadline in the month after the period.
const DueDayOfMonth = 30

// Declaration is one filing for one kind and one period.
type Declaration struct {
	Kind                 Kind
	Period               payroll.PayPeriod
	TotalEmployees       int
	TotalGross           payroll.Amount
	EmployeeContribution payroll.Amount
	EmployerContribution payroll.Amount
	TotalContribution    payroll.Amount
	DueDate              time.Time
	Status               Status

	SubmittedAt *time.Time
	ValidatedAt *time.Time
}

// DueDate returns the filing deadline for period.
func DueDate(period payroll.PayPeriod) time.Time {
	next := period.Next()
	day := DueDayOfMonth
	if last := next.End().Day(); last < day {
		day = last
	}
	return time.Date(next.Year, next.Month, day, 0, 0, 0, 0, time.UTC)
}

// Build aggregates calcs into a draft declaration. Every calculation must
// belong to period. Employees are counted once even with several payslips;
// a payslip without an employee id counts as its own employee.
func Build(kind Kind, period payroll.PayPeriod, calcs []payroll.Calculation) (Declaration, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Declaration{}, err
	}
	if err := period.Validate(); err != nil {
		return Declaration{}, err
	}

	gross := payroll.NewAmountFromInt(0, payroll.UnitDZD)
	employee := gross
	employer := gross
	employees := make(map[string]struct{}, len(calcs))
	unnamed := 0

	for i, c := range calcs {
		if c.Period != period {
			return Declaration{}, fmt.Errorf("%w: payslip %d is for %s, declaration is for %s", ErrPeriodMismatch, i, c.Period, period)
		}
		if c.EmployeeID == "" {
			unnamed++
		} else {
			employees[c.EmployeeID] = struct{}{}
		}
		b := c.Breakdown
		gross = gross.Add(b.GrossPay)
		switch kind {
		case KindCNAS:
			employee = employee.Add(b.CNASEmployee)
			employer = employer.Add(b.CNASEmployer)
		case KindIRG:
			employee = employee.Add(b.IRG)
		}
	}

	return Declaration{
		Kind:                 kind,
		Period:               period,
		TotalEmployees:       len(employees) + unnamed,
		TotalGross:           gross,
		EmployeeContribution: employee,
		EmployerContribution: employer,
		TotalContribution:    employee.Add(employer),
		DueDate:              DueDate(period),
		Status:               StatusDraft,
	}, nil
}

// Submit moves a draft to submitted.
func (d *Declaration) Submit(at time.Time) error {
	if d.Status != StatusDraft {
		return fmt.Errorf("%w: can only submit a draft, current status: %s", ErrInvalidTransition, d.Status)
	}
	d.Status = StatusSubmitted
	d.SubmittedAt = &at
	return nil
}

// MarkValidated records acceptance of a submitted declaration.
func (d *Declaration) MarkValidated(at time.Time) error {
	if d.Status != StatusSubmitted {
		return fmt.Errorf("%w: can only validate a submitted declaration, current status: %s", ErrInvalidTransition, d.Status)
	}
	d.Status = StatusValidated
	d.ValidatedAt = &at
	return nil
}

// Overdue reports whether the declaration is still unsubmitted after its
// due date.
func (d Declaration) Overdue(now time.Time) bool {
	return d.Status == StatusDraft && now.After(d.DueDate.AddDate(0, 0, 1))
}
