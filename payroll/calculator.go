/*
calculator.go - The payroll pipeline

PIPELINE:
  Input -> validate -> AssembleGross -> ComputeDeductions -> ResolveNet
        -> Calculation{Breakdown, Warnings}

  Every stage is a pure method on Rules. The Calculator just fixes the
  Rules value and strings the stages together, so two calls with the same
  Input always return the same Calculation.

CONSERVATION (when no warning of kind *_clamped is present):
  netPay + cnasEmployee + irg + otherDeductions == grossPay
  employerTotalCost == grossPay + cnasEmployer           (always)

CONCURRENCY:
  A Calculator holds no mutable state. It is safe to share between
  goroutines computing different employees or periods.
*/
package payroll

import "fmt"

// Calculator runs the pipeline against a fixed Rules value.
type Calculator struct {
	rules Rules
}

// NewCalculator validates rules and takes a private copy of them.
func NewCalculator(rules Rules) (*Calculator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{rules: rules.Clone()}, nil
}

// Rules returns a copy of the rules in use.
func (c *Calculator) Rules() Rules {
	return c.rules.Clone()
}

// Calculate computes one payslip. Invalid input is rejected with a
// *ValidationError; clamping is reported through Calculation.Warnings.
func (c *Calculator) Calculate(in Input) (Calculation, error) {
	if err := in.Validate(); err != nil {
		return Calculation{}, err
	}

	gross := c.rules.AssembleGross(in.Employee, in.Adjustments, in.Facts)
	deductions := c.rules.ComputeDeductions(gross.GrossPay)
	other := zeroDZD().Add(in.Adjustments.OtherDeductions)
	net := c.rules.ResolveNet(gross.GrossPay, deductions, other)

	var warnings []Warning
	if gross.Clamped {
		warnings = append(warnings, Warning{
			Code:    WarnGrossClamped,
			Message: fmt.Sprintf("absence deduction %s exceeds base salary plus premiums; gross pay set to 0", gross.AbsenceDeduction.Value),
		})
	}
	if net.Clamped {
		warnings = append(warnings, Warning{
			Code:    WarnNetClamped,
			Message: fmt.Sprintf("other deductions %s exceed pay after withholding; net pay set to 0", other.Value),
		})
	}

	return Calculation{
		Period:        in.Period,
		EmployeeID:    in.Employee.ID,
		HourlyRate:    gross.HourlyRate,
		OvertimeHours: gross.OvertimeHours,
		DaysAbsent:    gross.DaysAbsent,
		TaxableIncome: deductions.TaxableIncome,
		Breakdown: PayslipBreakdown{
			BaseSalary:        zeroDZD().Add(in.Employee.BaseSalaryMonthly),
			TotalPremiums:     gross.TotalPremiums,
			OvertimePay:       gross.OvertimePay,
			AbsenceDeduction:  gross.AbsenceDeduction,
			GrossPay:          gross.GrossPay,
			CNASEmployee:      deductions.CNASEmployee,
			CNASEmployer:      deductions.CNASEmployer,
			IRG:               deductions.IRG,
			OtherDeductions:   other,
			NetPay:            net.NetPay,
			EmployerTotalCost: net.EmployerTotalCost,
		},
		Warnings: warnings,
	}, nil
}
