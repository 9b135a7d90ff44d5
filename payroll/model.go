package payroll

import "fmt"

// =============================================================================
// INPUTS
// =============================================================================

// EmployeeBaseline is the part of the employee record the engine reads.
type EmployeeBaseline struct {
	ID                string
	BaseSalaryMonthly Amount
}

func (e EmployeeBaseline) Validate() error {
	if e.BaseSalaryMonthly.IsNegative() {
		return &ValidationError{Field: "employee.base_salary", Reason: "must not be negative"}
	}
	return nil
}

// AttendanceFacts is the per-period reduction of daily attendance records.
// The attendance package derives it; callers may also build it by hand.
type AttendanceFacts struct {
	DaysWorked    int
	DaysAbsent    int
	OvertimeHours Amount
	LateCount     int
}

func (f AttendanceFacts) Validate() error {
	switch {
	case f.DaysWorked < 0:
		return &ValidationError{Field: "attendance.days_worked", Reason: "must not be negative"}
	case f.DaysAbsent < 0:
		return &ValidationError{Field: "attendance.days_absent", Reason: "must not be negative"}
	case f.LateCount < 0:
		return &ValidationError{Field: "attendance.late_count", Reason: "must not be negative"}
	case f.OvertimeHours.IsNegative():
		return &ValidationError{Field: "attendance.overtime_hours", Reason: "must not be negative"}
	}
	return nil
}

// Adjustments are the operator-entered values of a payslip.
//
// OvertimeHours and AbsenceDays override the attendance facts when set.
// A nil override means the attendance facts are used as-is.
type Adjustments struct {
	TransportPremium   Amount
	PerformancePremium Amount
	BasketPremium      Amount
	OtherDeductions    Amount
	OvertimeHours      *Amount
	AbsenceDays        *int
}

func (a Adjustments) Validate() error {
	fields := []struct {
		name  string
		value Amount
	}{
		{"adjustments.transport_premium", a.TransportPremium},
		{"adjustments.performance_premium", a.PerformancePremium},
		{"adjustments.basket_premium", a.BasketPremium},
		{"adjustments.other_deductions", a.OtherDeductions},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return &ValidationError{Field: f.name, Reason: "must not be negative"}
		}
	}
	if a.OvertimeHours != nil && a.OvertimeHours.IsNegative() {
		return &ValidationError{Field: "adjustments.overtime_hours", Reason: "must not be negative"}
	}
	if a.AbsenceDays != nil && *a.AbsenceDays < 0 {
		return &ValidationError{Field: "adjustments.absence_days", Reason: fmt.Sprintf("must not be negative (got %d)", *a.AbsenceDays)}
	}
	return nil
}

// WithPremiums returns a copy with the three premiums replaced.
func (a Adjustments) WithPremiums(transport, performance, basket Amount) Adjustments {
	a.TransportPremium = transport
	a.PerformancePremium = performance
	a.BasketPremium = basket
	return a
}

// Input is everything one calculation needs.
type Input struct {
	Period      PayPeriod
	Employee    EmployeeBaseline
	Facts       AttendanceFacts
	Adjustments Adjustments
}

func (in Input) Validate() error {
	if err := in.Period.Validate(); err != nil {
		return err
	}
	if err := in.Employee.Validate(); err != nil {
		return err
	}
	if err := in.Facts.Validate(); err != nil {
		return err
	}
	return in.Adjustments.Validate()
}

// =============================================================================
// OUTPUTS
// =============================================================================

// PayslipBreakdown is the monetary result of one calculation. Deductions
// are stored as positive magnitudes.
type PayslipBreakdown struct {
	BaseSalary        Amount
	TotalPremiums     Amount
	OvertimePay       Amount
	AbsenceDeduction  Amount
	GrossPay          Amount
	CNASEmployee      Amount
	CNASEmployer      Amount
	IRG               Amount
	OtherDeductions   Amount
	NetPay            Amount
	EmployerTotalCost Amount
}

type WarningCode string

const (
	WarnGrossClamped       WarningCode = "gross_clamped"
	WarnNetClamped         WarningCode = "net_clamped"
	WarnAttendanceOverflow WarningCode = "attendance_exceeds_period"
	WarnDuplicateDay       WarningCode = "duplicate_attendance_day"
	WarnOutsidePeriod      WarningCode = "records_outside_period"
)

// Warning is a data-quality signal. It never stops a calculation.
type Warning struct {
	Code    WarningCode
	Message string
}

// Calculation is the outcome of Calculator.Calculate.
type Calculation struct {
	Period        PayPeriod
	EmployeeID    string
	HourlyRate    Amount
	OvertimeHours Amount
	DaysAbsent    int
	TaxableIncome Amount
	Breakdown     PayslipBreakdown
	Warnings      []Warning
}

// Clamped reports whether gross or net pay had to be floored at zero.
func (c Calculation) Clamped() bool {
	for _, w := range c.Warnings {
		if w.Code == WarnGrossClamped || w.Code == WarnNetClamped {
			return true
		}
	}
	return false
}
