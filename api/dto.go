/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Money crosses the
  boundary as plain JSON numbers in DZD; inside the engine it is always a
  decimal payroll.Amount. The conversion happens here and nowhere else.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Inputs:
    PeriodDTO, EmployeeDTO, FactsDTO, AdjustmentsDTO, CalculateRequest

  Results:
    CalculationDTO, BreakdownDTO, SummaryDTO, AttendanceSummaryDTO,
    AssessmentDTO, DeclarationDTO, RulesDTO

VALIDATION:
  DTOs only convert. Range checks (negative amounts, month 1-12) are done
  by the payroll types they convert into, so an HTTP client gets exactly
  the errors a library caller would.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rules.go: RulesDocument, also the PUT /api/rules body
*/
package api

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/backend"
	"github.com/warp/payroll-engine/declaration"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/performance"
)

// =============================================================================
// INPUT TYPES
// =============================================================================

// PeriodDTO is {"year": 2025, "month": 3} or the string "2025-03".
type PeriodDTO struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (p *PeriodDTO) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		period, err := payroll.ParsePayPeriod(s)
		if err != nil {
			return err
		}
		*p = periodDTO(period)
		return nil
	}
	type plain PeriodDTO
	return json.Unmarshal(b, (*plain)(p))
}

func (p PeriodDTO) toPeriod() (payroll.PayPeriod, error) {
	return payroll.NewPayPeriod(p.Year, time.Month(p.Month))
}

func periodDTO(p payroll.PayPeriod) PeriodDTO {
	return PeriodDTO{Year: p.Year, Month: int(p.Month)}
}

type EmployeeDTO struct {
	ID         string  `json:"id"`
	BaseSalary float64 `json:"base_salary"`
}

func (e EmployeeDTO) toBaseline() (payroll.EmployeeBaseline, error) {
	base, err := payroll.ParseAmount("employee.base_salary", e.BaseSalary, payroll.UnitDZD)
	if err != nil {
		return payroll.EmployeeBaseline{}, err
	}
	return payroll.EmployeeBaseline{ID: e.ID, BaseSalaryMonthly: base}, nil
}

type FactsDTO struct {
	DaysWorked    int     `json:"days_worked"`
	DaysAbsent    int     `json:"days_absent"`
	OvertimeHours float64 `json:"overtime_hours"`
	LateCount     int     `json:"late_count"`
}

func (f FactsDTO) toFacts() (payroll.AttendanceFacts, error) {
	hours, err := payroll.ParseAmount("attendance.overtime_hours", f.OvertimeHours, payroll.UnitHours)
	if err != nil {
		return payroll.AttendanceFacts{}, err
	}
	facts := payroll.AttendanceFacts{
		DaysWorked:    f.DaysWorked,
		DaysAbsent:    f.DaysAbsent,
		OvertimeHours: hours,
		LateCount:     f.LateCount,
	}
	return facts, facts.Validate()
}

func factsDTO(f payroll.AttendanceFacts) FactsDTO {
	return FactsDTO{
		DaysWorked:    f.DaysWorked,
		DaysAbsent:    f.DaysAbsent,
		OvertimeHours: f.OvertimeHours.Float64(),
		LateCount:     f.LateCount,
	}
}

// AdjustmentsDTO carries the operator-entered values. overtime_hours and
// absence_days override attendance when present.
type AdjustmentsDTO struct {
	TransportPremium   float64  `json:"transport_premium"`
	PerformancePremium float64  `json:"performance_premium"`
	BasketPremium      float64  `json:"basket_premium"`
	OtherDeductions    float64  `json:"other_deductions"`
	OvertimeHours      *float64 `json:"overtime_hours,omitempty"`
	AbsenceDays        *int     `json:"absence_days,omitempty"`
}

func (a AdjustmentsDTO) toAdjustments() (payroll.Adjustments, error) {
	var adj payroll.Adjustments
	fields := []struct {
		name  string
		value float64
		dst   *payroll.Amount
	}{
		{"adjustments.transport_premium", a.TransportPremium, &adj.TransportPremium},
		{"adjustments.performance_premium", a.PerformancePremium, &adj.PerformancePremium},
		{"adjustments.basket_premium", a.BasketPremium, &adj.BasketPremium},
		{"adjustments.other_deductions", a.OtherDeductions, &adj.OtherDeductions},
	}
	for _, f := range fields {
		v, err := payroll.ParseAmount(f.name, f.value, payroll.UnitDZD)
		if err != nil {
			return payroll.Adjustments{}, err
		}
		*f.dst = v
	}
	if a.OvertimeHours != nil {
		h, err := payroll.ParseAmount("adjustments.overtime_hours", *a.OvertimeHours, payroll.UnitHours)
		if err != nil {
			return payroll.Adjustments{}, err
		}
		adj.OvertimeHours = &h
	}
	if a.AbsenceDays != nil {
		days := *a.AbsenceDays
		adj.AbsenceDays = &days
	}
	return adj, adj.Validate()
}

// CalculateRequest is one payslip to compute.
type CalculateRequest struct {
	Period      PeriodDTO      `json:"period"`
	Employee    EmployeeDTO    `json:"employee"`
	Facts       FactsDTO       `json:"attendance"`
	Adjustments AdjustmentsDTO `json:"adjustments"`
}

func (r CalculateRequest) toInput() (payroll.Input, error) {
	period, err := r.Period.toPeriod()
	if err != nil {
		return payroll.Input{}, err
	}
	emp, err := r.Employee.toBaseline()
	if err != nil {
		return payroll.Input{}, err
	}
	facts, err := r.Facts.toFacts()
	if err != nil {
		return payroll.Input{}, err
	}
	adj, err := r.Adjustments.toAdjustments()
	if err != nil {
		return payroll.Input{}, err
	}
	return payroll.Input{Period: period, Employee: emp, Facts: facts, Adjustments: adj}, nil
}

type SummaryRequest struct {
	Payslips []CalculateRequest `json:"payslips"`
}

// AttendanceFactsRequest accepts records as a bare array or under "data",
// the same shapes the HR backend returns.
type AttendanceFactsRequest struct {
	Period  PeriodDTO       `json:"period"`
	Records json.RawMessage `json:"records"`
}

type AssessRequest struct {
	Employee EmployeeDTO `json:"employee"`
	Facts    FactsDTO    `json:"attendance"`
}

// PreviewRequest runs the whole flow for one employee without the backend.
// The handoff body is only built when employee.id is set.
type PreviewRequest struct {
	Period          PeriodDTO       `json:"period"`
	Employee        EmployeeDTO     `json:"employee"`
	Records         json.RawMessage `json:"records"`
	Adjustments     AdjustmentsDTO  `json:"adjustments"`
	ApplySuggestion bool            `json:"apply_suggestion"`
}

// DeclarationRequest builds a declaration. Status may be draft (the
// default), submitted or validated; the timestamps are the request time.
type DeclarationRequest struct {
	Kind     string             `json:"kind"`
	Period   PeriodDTO          `json:"period"`
	Status   string             `json:"status,omitempty"`
	Payslips []CalculateRequest `json:"payslips"`
}

// GeneratePayslipRequest is the body of POST /api/employees/{id}/payslips.
type GeneratePayslipRequest struct {
	Period          PeriodDTO      `json:"period"`
	Adjustments     AdjustmentsDTO `json:"adjustments"`
	ApplySuggestion bool           `json:"apply_suggestion"`
	IdempotencyKey  string         `json:"idempotency_key,omitempty"`
}

// =============================================================================
// RESULT TYPES
// =============================================================================

type BreakdownDTO struct {
	BaseSalary        float64 `json:"base_salary"`
	TotalPremiums     float64 `json:"total_premiums"`
	OvertimePay       float64 `json:"overtime_pay"`
	AbsenceDeduction  float64 `json:"absence_deduction"`
	GrossPay          float64 `json:"gross_pay"`
	CNASEmployee      float64 `json:"cnas_employee"`
	CNASEmployer      float64 `json:"cnas_employer"`
	IRG               float64 `json:"irg"`
	OtherDeductions   float64 `json:"other_deductions"`
	NetPay            float64 `json:"net_pay"`
	EmployerTotalCost float64 `json:"employer_total_cost"`
}

type WarningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func warningDTOs(ws []payroll.Warning) []WarningDTO {
	out := make([]WarningDTO, len(ws))
	for i, w := range ws {
		out[i] = WarningDTO{Code: string(w.Code), Message: w.Message}
	}
	return out
}

type CalculationDTO struct {
	Period        string       `json:"period"`
	EmployeeID    string       `json:"employee_id,omitempty"`
	HourlyRate    float64      `json:"hourly_rate"`
	OvertimeHours float64      `json:"overtime_hours"`
	DaysAbsent    int          `json:"days_absent"`
	TaxableIncome float64      `json:"taxable_income"`
	Breakdown     BreakdownDTO `json:"breakdown"`
	Warnings      []WarningDTO `json:"warnings"`
}

func calculationDTO(c payroll.Calculation) CalculationDTO {
	b := c.Breakdown
	return CalculationDTO{
		Period:        c.Period.String(),
		EmployeeID:    c.EmployeeID,
		HourlyRate:    c.HourlyRate.Float64(),
		OvertimeHours: c.OvertimeHours.Float64(),
		DaysAbsent:    c.DaysAbsent,
		TaxableIncome: c.TaxableIncome.Float64(),
		Breakdown: BreakdownDTO{
			BaseSalary:        b.BaseSalary.Float64(),
			TotalPremiums:     b.TotalPremiums.Float64(),
			OvertimePay:       b.OvertimePay.Float64(),
			AbsenceDeduction:  b.AbsenceDeduction.Float64(),
			GrossPay:          b.GrossPay.Float64(),
			CNASEmployee:      b.CNASEmployee.Float64(),
			CNASEmployer:      b.CNASEmployer.Float64(),
			IRG:               b.IRG.Float64(),
			OtherDeductions:   b.OtherDeductions.Float64(),
			NetPay:            b.NetPay.Float64(),
			EmployerTotalCost: b.EmployerTotalCost.Float64(),
		},
		Warnings: warningDTOs(c.Warnings),
	}
}

type SummaryDTO struct {
	Count                int     `json:"count"`
	TotalBase            float64 `json:"total_base"`
	TotalPremiums        float64 `json:"total_premiums"`
	TotalGross           float64 `json:"total_gross"`
	TotalCNASEmployee    float64 `json:"total_cnas_employee"`
	TotalCNASEmployer    float64 `json:"total_cnas_employer"`
	TotalIRG             float64 `json:"total_irg"`
	TotalOtherDeductions float64 `json:"total_other_deductions"`
	TotalNet             float64 `json:"total_net"`
	TotalEmployerCost    float64 `json:"total_employer_cost"`
	AverageNet           float64 `json:"average_net"`
}

func summaryDTO(s payroll.Summary) SummaryDTO {
	return SummaryDTO{
		Count:                s.Count,
		TotalBase:            s.TotalBase.Float64(),
		TotalPremiums:        s.TotalPremiums.Float64(),
		TotalGross:           s.TotalGross.Float64(),
		TotalCNASEmployee:    s.TotalCNASEmployee.Float64(),
		TotalCNASEmployer:    s.TotalCNASEmployer.Float64(),
		TotalIRG:             s.TotalIRG.Float64(),
		TotalOtherDeductions: s.TotalOtherDeductions.Float64(),
		TotalNet:             s.TotalNet.Float64(),
		TotalEmployerCost:    s.TotalEmployerCost.Float64(),
		AverageNet:           s.AverageNet.Float64(),
	}
}

type AttendanceSummaryDTO struct {
	Facts      FactsDTO     `json:"facts"`
	Considered int          `json:"considered"`
	Ignored    int          `json:"ignored"`
	Warnings   []WarningDTO `json:"warnings"`
}

func attendanceSummaryDTO(s attendance.Summary) AttendanceSummaryDTO {
	return AttendanceSummaryDTO{
		Facts:      factsDTO(s.Facts),
		Considered: s.Considered,
		Ignored:    s.Ignored,
		Warnings:   warningDTOs(s.Warnings),
	}
}

type SuggestionDTO struct {
	TransportPremium   float64 `json:"transport_premium"`
	PerformancePremium float64 `json:"performance_premium"`
	BasketPremium      float64 `json:"basket_premium"`
}

type AssessmentDTO struct {
	Score           int            `json:"score"`
	PresenceRate    float64        `json:"presence_rate"`
	SuggestedBonus  float64        `json:"suggested_bonus"`
	RiskLevel       string         `json:"risk_level"`
	Anomalies       []string       `json:"anomalies"`
	Recommendations []string       `json:"recommendations"`
	Insights        []string       `json:"insights"`
	Suggestion      *SuggestionDTO `json:"suggestion,omitempty"`
	Standard        SuggestionDTO  `json:"standard_premiums"`
}

func assessmentDTO(a performance.Assessment) AssessmentDTO {
	dto := AssessmentDTO{
		Score:           a.Score,
		PresenceRate:    a.PresenceRate,
		SuggestedBonus:  a.SuggestedBonus.Float64(),
		RiskLevel:       string(a.RiskLevel),
		Anomalies:       nonNil(a.Anomalies),
		Recommendations: nonNil(a.Recommendations),
		Insights:        nonNil(a.Insights),
		Standard:        suggestionDTO(a.StandardPremiums()),
	}
	if s, ok := a.PremiumSuggestion(); ok {
		sd := suggestionDTO(s)
		dto.Suggestion = &sd
	}
	return dto
}

func suggestionDTO(s performance.PremiumSuggestion) SuggestionDTO {
	return SuggestionDTO{
		TransportPremium:   s.Transport.Float64(),
		PerformancePremium: s.Performance.Float64(),
		BasketPremium:      s.Basket.Float64(),
	}
}

type PreviewResponse struct {
	Attendance  AttendanceSummaryDTO    `json:"attendance"`
	Assessment  AssessmentDTO           `json:"assessment"`
	Calculation CalculationDTO          `json:"calculation"`
	Handoff     *backend.PayslipRequest `json:"handoff,omitempty"`
}

type GeneratePayslipResponse struct {
	Payslip     backend.GeneratedPayslip `json:"payslip"`
	Attendance  AttendanceSummaryDTO     `json:"attendance"`
	Calculation CalculationDTO           `json:"calculation"`
	Assessment  AssessmentDTO            `json:"assessment"`
	Sent        backend.PayslipRequest   `json:"sent"`
}

type DeclarationDTO struct {
	Kind                 string    `json:"kind"`
	Period               PeriodDTO `json:"period"`
	TotalEmployees       int       `json:"total_employees"`
	TotalGross           float64   `json:"total_gross"`
	EmployeeContribution float64   `json:"employee_contribution"`
	EmployerContribution float64   `json:"employer_contribution"`
	TotalContribution    float64   `json:"total_contribution"`
	DueDate              string    `json:"due_date"`
	Status               string    `json:"status"`
	SubmittedAt          *string   `json:"submitted_at,omitempty"`
	ValidatedAt          *string   `json:"validated_at,omitempty"`
	Overdue              bool      `json:"overdue"`
}

func declarationDTO(d declaration.Declaration, now time.Time) DeclarationDTO {
	return DeclarationDTO{
		Kind:                 string(d.Kind),
		Period:               periodDTO(d.Period),
		TotalEmployees:       d.TotalEmployees,
		TotalGross:           d.TotalGross.Float64(),
		EmployeeContribution: d.EmployeeContribution.Float64(),
		EmployerContribution: d.EmployerContribution.Float64(),
		TotalContribution:    d.TotalContribution.Float64(),
		DueDate:              d.DueDate.Format("2006-01-02"),
		Status:               string(d.Status),
		SubmittedAt:          timestamp(d.SubmittedAt),
		ValidatedAt:          timestamp(d.ValidatedAt),
		Overdue:              d.Overdue(now),
	}
}

func timestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

type BracketRowDTO struct {
	Floor   float64  `json:"floor"`
	Ceiling *float64 `json:"ceiling"`
	Rate    float64  `json:"rate"`
	BaseTax float64  `json:"base_tax"`
}

// RulesDTO is the active rules set plus its IRG table in display form.
type RulesDTO struct {
	Rules    factory.RulesDocument `json:"rules"`
	Brackets []BracketRowDTO       `json:"brackets"`
}

func rulesDTO(f *factory.RulesFactory, rules payroll.Rules) RulesDTO {
	rows := rules.BracketTable()
	out := RulesDTO{Rules: f.ToDocument(rules), Brackets: make([]BracketRowDTO, len(rows))}
	for i, row := range rows {
		out.Brackets[i] = BracketRowDTO{
			Floor:   row.Floor.InexactFloat64(),
			Rate:    row.Rate.InexactFloat64(),
			BaseTax: row.BaseTax.InexactFloat64(),
		}
		if row.Ceiling != nil {
			c := row.Ceiling.InexactFloat64()
			out.Brackets[i].Ceiling = &c
		}
	}
	return out
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
