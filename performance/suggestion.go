package performance

import "github.com/warp/payroll-engine/payroll"

// Premium amounts proposed alongside a good score, by base salary.
const (
	TransportHighSalary = 60000
	TransportHigh       = 5000
	TransportStandard   = 3000
	BasketHighSalary    = 50000
	BasketHigh          = 2000
	BasketStandard      = 1500
)

// StandardPerformanceRate is the share of base salary proposed as the
// performance premium by StandardPremiums.
var StandardPerformanceRate = payroll.MustParseDecimal("0.05")

// PremiumSuggestion is a premium set an operator may copy onto a payslip.
type PremiumSuggestion struct {
	Transport   payroll.Amount
	Performance payroll.Amount
	Basket      payroll.Amount
}

// PremiumSuggestion returns the premiums to propose, or false when the
// score is below the good band and nothing should be pre-filled.
func (a Assessment) PremiumSuggestion() (PremiumSuggestion, bool) {
	if a.RawScore < GoodScore {
		return PremiumSuggestion{}, false
	}
	return salaryTiers(a.baseSalary, a.SuggestedBonus), true
}

// StandardPremiums returns the preset premiums for an employee without
// looking at attendance: the salary tiers for transport and basket and
// 5% of base salary as the performance premium.
func StandardPremiums(employee payroll.EmployeeBaseline) PremiumSuggestion {
	base := employee.BaseSalaryMonthly
	return salaryTiers(base, base.Mul(StandardPerformanceRate).Round())
}

// StandardPremiums returns the preset for the assessed employee.
func (a Assessment) StandardPremiums() PremiumSuggestion {
	return StandardPremiums(payroll.EmployeeBaseline{BaseSalaryMonthly: a.baseSalary})
}

func salaryTiers(base, performance payroll.Amount) PremiumSuggestion {
	s := PremiumSuggestion{
		Transport:   payroll.NewAmountFromInt(TransportStandard, payroll.UnitDZD),
		Performance: performance,
		Basket:      payroll.NewAmountFromInt(BasketStandard, payroll.UnitDZD),
	}
	if base.GreaterThan(payroll.NewAmountFromInt(TransportHighSalary, payroll.UnitDZD)) {
		s.Transport = payroll.NewAmountFromInt(TransportHigh, payroll.UnitDZD)
	}
	if base.GreaterThan(payroll.NewAmountFromInt(BasketHighSalary, payroll.UnitDZD)) {
		s.Basket = payroll.NewAmountFromInt(BasketHigh, payroll.UnitDZD)
	}
	return s
}

// Apply copies the suggested premiums onto adj. Other fields are kept.
func (s PremiumSuggestion) Apply(adj payroll.Adjustments) payroll.Adjustments {
	return adj.WithPremiums(s.Transport, s.Performance, s.Basket)
}
