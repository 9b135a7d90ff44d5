package payroll

import "github.com/shopspring/decimal"

// Deductions holds the statutory withholdings computed from gross pay.
type Deductions struct {
	CNASEmployee  Amount
	CNASEmployer  Amount
	TaxableIncome Amount
	IRG           Amount
}

// ComputeDeductions applies both CNAS shares to gross pay, then IRG to
// gross pay net of the employee share. All results are >= 0 for gross >= 0.
func (r Rules) ComputeDeductions(gross Amount) Deductions {
	g := decimal.Max(gross.Value, decimal.Zero)

	employee := Amount{Value: roundHalfUp(g.Mul(r.CNASEmployeeRate)), Unit: UnitDZD}
	employer := Amount{Value: roundHalfUp(g.Mul(r.CNASEmployerRate)), Unit: UnitDZD}
	taxable := Amount{Value: decimal.Max(g.Sub(employee.Value), decimal.Zero), Unit: UnitDZD}

	return Deductions{
		CNASEmployee:  employee,
		CNASEmployer:  employer,
		TaxableIncome: taxable,
		IRG:           r.IRG(taxable),
	}
}
