package payroll

import "github.com/shopspring/decimal"

// GrossPay is the output of the gross pay assembler.
type GrossPay struct {
	HourlyRate       Amount
	OvertimeHours    Amount
	DaysAbsent       int
	OvertimePay      Amount
	TotalPremiums    Amount
	AbsenceDeduction Amount
	GrossPay         Amount

	// Clamped is set when absences exceeded what the month pays.
	Clamped bool
}

// AssembleGross combines base salary, premiums, overtime and absences.
//
//	overtimePay      = round(hours x hourlyRate x multiplier)
//	totalPremiums    = transport + performance + basket + overtimePay
//	absenceDeduction = round(base / workingDays x daysAbsent)
//	grossPay         = max(0, base + totalPremiums - absenceDeduction)
//
// Overrides in adj take precedence over facts. Absence is never inferred:
// with no facts and no override, nothing is deducted.
func (r Rules) AssembleGross(emp EmployeeBaseline, adj Adjustments, facts AttendanceFacts) GrossPay {
	base := emp.BaseSalaryMonthly
	hourly := r.HourlyRate(base)

	overtimeHours := facts.OvertimeHours
	if adj.OvertimeHours != nil {
		overtimeHours = *adj.OvertimeHours
	}
	if overtimeHours.Unit == "" {
		overtimeHours = Amount{Value: decimal.Zero, Unit: UnitHours}
	}
	daysAbsent := facts.DaysAbsent
	if adj.AbsenceDays != nil {
		daysAbsent = *adj.AbsenceDays
	}

	overtimePay := Amount{
		Value: roundHalfUp(overtimeHours.Value.Mul(hourly.Value).Mul(r.OvertimeMultiplier)),
		Unit:  UnitDZD,
	}

	premiums := zeroDZD().
		Add(adj.TransportPremium).
		Add(adj.PerformancePremium).
		Add(adj.BasketPremium).
		Add(overtimePay)

	absence := zeroDZD()
	if daysAbsent > 0 {
		absence = base.
			Mul(decimal.NewFromInt(int64(daysAbsent))).
			Div(decimal.NewFromInt(int64(r.WorkingDaysPerMonth))).
			Round()
	}

	gross := zeroDZD().Add(base).Add(premiums).Sub(absence)
	clamped := gross.IsNegative()
	if clamped {
		gross = zeroDZD()
	}

	return GrossPay{
		HourlyRate:       hourly,
		OvertimeHours:    overtimeHours,
		DaysAbsent:       daysAbsent,
		OvertimePay:      overtimePay,
		TotalPremiums:    premiums,
		AbsenceDeduction: absence,
		GrossPay:         gross,
		Clamped:          clamped,
	}
}
