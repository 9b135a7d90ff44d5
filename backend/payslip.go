package backend

import (
	"fmt"

	"github.com/warp/payroll-engine/payroll"
)

// PayslipRequest is the body of POST /payslips/generate.
//
// The field names and meanings are the backend's:
//
//	heures_supp  overtime PAY in DZD, already multiplied (hours x rate x 1.5)
//	retenues     other deductions plus the absence deduction
//
// The backend recomputes gross and net from these.
type PayslipRequest struct {
	EmployeeID     ID      `json:"employee_id"`
	Month          int     `json:"month"`
	Year           int     `json:"year"`
	PrimeTransport float64 `json:"prime_transport"`
	PrimeRendement float64 `json:"prime_rendement"`
	PrimePanier    float64 `json:"prime_panier,omitempty"`
	HeuresSupp     float64 `json:"heures_supp"`
	Retenues       float64 `json:"retenues"`
}

// PayslipRequestFrom builds the handoff body for a calculation. The
// premiums come from adj because the breakdown only keeps their total.
func PayslipRequestFrom(employeeID ID, adj payroll.Adjustments, calc payroll.Calculation) (PayslipRequest, error) {
	if employeeID == "" {
		return PayslipRequest{}, &payroll.ValidationError{Field: "employee_id", Reason: "is required"}
	}
	if calc.EmployeeID != "" && calc.EmployeeID != string(employeeID) {
		return PayslipRequest{}, &payroll.ValidationError{
			Field:  "employee_id",
			Reason: fmt.Sprintf("calculation is for %s, not %s", calc.EmployeeID, employeeID),
		}
	}
	b := calc.Breakdown
	return PayslipRequest{
		EmployeeID:     employeeID,
		Month:          int(calc.Period.Month),
		Year:           calc.Period.Year,
		PrimeTransport: adj.TransportPremium.Float64(),
		PrimeRendement: adj.PerformancePremium.Float64(),
		PrimePanier:    adj.BasketPremium.Float64(),
		HeuresSupp:     b.OvertimePay.Float64(),
		Retenues:       b.OtherDeductions.Add(b.AbsenceDeduction).Float64(),
	}, nil
}

// GeneratedPayslip is what the backend returns after creating a payslip.
type GeneratedPayslip struct {
	ID         ID     `json:"id"`
	EmployeeID ID     `json:"employee_id"`
	Status     string `json:"status,omitempty"`
}
