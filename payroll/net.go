package payroll

type NetPay struct {
	NetPay            Amount
	EmployerTotalCost Amount
	Clamped           bool
}

// ResolveNet derives what the employee is paid and what the employer spends.
// A net pay below zero means other deductions were misconfigured; it is
// floored at zero and Clamped is set.
func (r Rules) ResolveNet(gross Amount, d Deductions, other Amount) NetPay {
	net := zeroDZD().Add(gross).Sub(d.CNASEmployee).Sub(d.IRG).Sub(other)
	clamped := net.IsNegative()
	if clamped {
		net = zeroDZD()
	}
	return NetPay{
		NetPay:            net,
		EmployerTotalCost: zeroDZD().Add(gross).Add(d.CNASEmployer),
		Clamped:           clamped,
	}
}
