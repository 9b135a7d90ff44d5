/*
Package attendance reduces daily attendance records to the per-period
facts the payroll pipeline reads.

REDUCTION (records inside the period only):
  daysWorked    = count(status in {present, late})
  daysAbsent    = count(status == absent)
  lateCount     = count(status == late)
  overtimeHours = sum(max(0, hoursWorked - 8)) over every record

  A half_day record counts as neither worked nor absent, but hours beyond
  the standard day still count as overtime.

DATA QUALITY:
  Bad records (unknown status, negative hours, missing date) are rejected.
  Suspicious but usable data is kept and reported as a payroll.Warning:
    - records dated outside the period (ignored)
    - two records on the same day (both counted)
    - more worked + absent days than the period has working days
*/
package attendance

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/warp/payroll-engine/payroll"
)

// StandardDayHours is the length of a normal working day. Hours above it
// are overtime.
const StandardDayHours = 8

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusHalfDay:
		return true
	}
	return false
}

// Worked reports whether the status counts as a day worked.
func (s Status) Worked() bool {
	return s == StatusPresent || s == StatusLate
}

// Record is one day of attendance for one employee.
type Record struct {
	EmployeeID  string
	Date        time.Time
	Status      Status
	HoursWorked payroll.Amount
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate accepts a plain calendar date or a full timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &payroll.ValidationError{Field: "attendance.date", Reason: fmt.Sprintf("%q is not a date", s)}
}

// NewRecord builds a validated record from wire values.
func NewRecord(date, status string, hoursWorked float64) (Record, error) {
	d, err := ParseDate(date)
	if err != nil {
		return Record{}, err
	}
	if math.IsNaN(hoursWorked) || math.IsInf(hoursWorked, 0) {
		return Record{}, &payroll.ValidationError{Field: "attendance.hours_worked", Reason: "must be a finite number"}
	}
	r := Record{
		Date:        d,
		Status:      Status(strings.ToLower(strings.TrimSpace(status))),
		HoursWorked: payroll.Hours(hoursWorked),
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

func (r Record) Validate() error {
	switch {
	case r.Date.IsZero():
		return &payroll.ValidationError{Field: "attendance.date", Reason: "is required"}
	case !r.Status.Valid():
		return &payroll.ValidationError{Field: "attendance.status", Reason: fmt.Sprintf("unknown status %q", r.Status)}
	case r.HoursWorked.IsNegative():
		return &payroll.ValidationError{Field: "attendance.hours_worked", Reason: "must not be negative"}
	}
	return nil
}

// Overtime returns the hours worked beyond the standard day.
func (r Record) Overtime() payroll.Amount {
	extra := r.HoursWorked.Sub(payroll.Hours(StandardDayHours))
	if !extra.IsPositive() {
		return payroll.Hours(0)
	}
	return payroll.Amount{Value: extra.Value, Unit: payroll.UnitHours}
}

// Day returns the calendar day of the record as "2006-01-02".
func (r Record) Day() string {
	return r.Date.Format("2006-01-02")
}
