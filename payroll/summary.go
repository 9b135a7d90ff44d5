package payroll

import "github.com/shopspring/decimal"

// Summary aggregates the payslips of a period, as shown on the payslip
// list: totals per column, head count and average net pay.
type Summary struct {
	Count                int
	TotalBase            Amount
	TotalPremiums        Amount
	TotalGross           Amount
	TotalCNASEmployee    Amount
	TotalCNASEmployer    Amount
	TotalIRG             Amount
	TotalOtherDeductions Amount
	TotalNet             Amount
	TotalEmployerCost    Amount
	AverageNet           Amount
}

func Summarize(calcs []Calculation) Summary {
	s := Summary{
		Count:                len(calcs),
		TotalBase:            zeroDZD(),
		TotalPremiums:        zeroDZD(),
		TotalGross:           zeroDZD(),
		TotalCNASEmployee:    zeroDZD(),
		TotalCNASEmployer:    zeroDZD(),
		TotalIRG:             zeroDZD(),
		TotalOtherDeductions: zeroDZD(),
		TotalNet:             zeroDZD(),
		TotalEmployerCost:    zeroDZD(),
		AverageNet:           zeroDZD(),
	}
	for _, c := range calcs {
		b := c.Breakdown
		s.TotalBase = s.TotalBase.Add(b.BaseSalary)
		s.TotalPremiums = s.TotalPremiums.Add(b.TotalPremiums)
		s.TotalGross = s.TotalGross.Add(b.GrossPay)
		s.TotalCNASEmployee = s.TotalCNASEmployee.Add(b.CNASEmployee)
		s.TotalCNASEmployer = s.TotalCNASEmployer.Add(b.CNASEmployer)
		s.TotalIRG = s.TotalIRG.Add(b.IRG)
		s.TotalOtherDeductions = s.TotalOtherDeductions.Add(b.OtherDeductions)
		s.TotalNet = s.TotalNet.Add(b.NetPay)
		s.TotalEmployerCost = s.TotalEmployerCost.Add(b.EmployerTotalCost)
	}
	if s.Count > 0 {
		s.AverageNet = s.TotalNet.Div(decimal.NewFromInt(int64(s.Count))).Round()
	}
	return s
}
