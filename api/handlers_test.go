/*
handlers_test.go - Tests for API handlers

Tests for:
- Stateless calculation, summary, attendance, scoring and preview
- Rules inspection and replacement
- Declarations
- Backend-proxied payslip generation against a fake HR backend
*/
package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/backend"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestHandler(t *testing.T, loader *backend.Loader) (*Handler, *chi.Mux) {
	t.Helper()
	calc, err := payroll.NewCalculator(payroll.DefaultRules())
	require.NoError(t, err)
	h := NewHandler(calc, loader, nil)
	h.now = func() time.Time { return time.Date(2025, time.April, 10, 9, 0, 0, 0, time.UTC) }
	return h, NewRouter(h, RouterOptions{})
}

func do(t *testing.T, router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const scenarioA = `{"period": {"year": 2025, "month": 3}, "employee": {"id": "emp-a", "base_salary": 50000}}`

const scenarioB = `{
	"period": {"year": 2025, "month": 3},
	"employee": {"id": "emp-b", "base_salary": 80000},
	"attendance": {"days_worked": 20, "days_absent": 2},
	"adjustments": {"transport_premium": 5000}
}`

// presentDays builds one present record per Sunday-to-Thursday day of
// March 2025.
func presentDays() string {
	var rows []string
	for d := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC); d.Month() == time.March; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Friday || d.Weekday() == time.Saturday {
			continue
		}
		rows = append(rows, fmt.Sprintf(`{"date": %q, "status": "present", "hours_worked": 8}`, d.Format("2006-01-02")))
	}
	return "[" + strings.Join(rows, ",") + "]"
}

// =============================================================================
// CALCULATION
// =============================================================================

func TestCalculate_ScenarioA(t *testing.T) {
	// GIVEN: 50 000 DZD base, nothing else
	_, router := newTestHandler(t, nil)

	// WHEN: Posting it
	rec := do(t, router, http.MethodPost, "/api/payroll/calculate", scenarioA)

	// THEN: The breakdown matches the statutory computation
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decode[CalculationDTO](t, rec)
	assert.Equal(t, "2025-03", got.Period)
	assert.Equal(t, "emp-a", got.EmployeeID)
	assert.Equal(t, 288.0, got.HourlyRate)
	assert.Equal(t, 45500.0, got.TaxableIncome)
	assert.Equal(t, 50000.0, got.Breakdown.GrossPay)
	assert.Equal(t, 4500.0, got.Breakdown.CNASEmployee)
	assert.Equal(t, 3100.0, got.Breakdown.IRG)
	assert.Equal(t, 42400.0, got.Breakdown.NetPay)
	assert.Equal(t, 63000.0, got.Breakdown.EmployerTotalCost)
	assert.Empty(t, got.Warnings)
}

func TestCalculate_ReportsClamping(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodPost, "/api/payroll/calculate",
		`{"period": {"year": 2025, "month": 3}, "employee": {"base_salary": 10000}, "adjustments": {"absence_days": 30}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[CalculationDTO](t, rec)
	assert.Equal(t, 0.0, got.Breakdown.GrossPay)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, string(payroll.WarnGrossClamped), got.Warnings[0].Code)
}

func TestCalculate_RejectsInvalidInput(t *testing.T) {
	_, router := newTestHandler(t, nil)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"negative salary", `{"period": {"year": 2025, "month": 3}, "employee": {"base_salary": -1}}`, "employee.base_salary"},
		{"month 13", `{"period": {"year": 2025, "month": 13}, "employee": {"base_salary": 1000}}`, "period.month"},
		{"negative premium", `{"period": {"year": 2025, "month": 3}, "employee": {"base_salary": 1000}, "adjustments": {"basket_premium": -5}}`, "adjustments.basket_premium"},
		{"negative absence override", `{"period": {"year": 2025, "month": 3}, "employee": {"base_salary": 1000}, "adjustments": {"absence_days": -1}}`, "adjustments.absence_days"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/payroll/calculate", tc.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			got := decode[struct {
				Code    string            `json:"code"`
				Details map[string]string `json:"details"`
			}](t, rec)
			assert.Equal(t, "invalid_input", got.Code)
			assert.Equal(t, tc.field, got.Details["field"])
		})
	}
}

func TestCalculate_PeriodAsString(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodPost, "/api/payroll/calculate", `{"period": "2025-03", "employee": {"base_salary": 50000}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-03", decode[CalculationDTO](t, rec).Period)

	rec = do(t, router, http.MethodPost, "/api/payroll/calculate", `{"period": "March", "employee": {"base_salary": 50000}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculate_MalformedBody(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodPost, "/api/payroll/calculate", `{"period": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Invalid request body", got.Error)
}

func TestSummary_TotalsScenariosAandB(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodPost, "/api/payroll/summary", `{"payslips": [`+scenarioA+`,`+scenarioB+`]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[struct {
		Payslips []CalculationDTO `json:"payslips"`
		Summary  SummaryDTO       `json:"summary"`
	}](t, rec)
	require.Len(t, got.Payslips, 2)
	assert.Equal(t, 62586.0, got.Payslips[1].Breakdown.NetPay)
	assert.Equal(t, 2, got.Summary.Count)
	assert.Equal(t, 127727.0, got.Summary.TotalGross)
	assert.Equal(t, 11246.0, got.Summary.TotalIRG)
	assert.Equal(t, 104986.0, got.Summary.TotalNet)
	assert.Equal(t, 52493.0, got.Summary.AverageNet)
	assert.Equal(t, 160936.0, got.Summary.TotalEmployerCost)
}

// =============================================================================
// ATTENDANCE, SCORING AND PREVIEW
// =============================================================================

func TestAttendanceFacts_AcceptsEnvelope(t *testing.T) {
	// GIVEN: Records wrapped the way the backend returns them
	_, router := newTestHandler(t, nil)
	body := `{"period": {"year": 2025, "month": 3}, "records": {"data": [
		{"id": 1, "date": "2025-03-02", "status": "present", "hours_worked": "10.5"},
		{"id": 2, "date": "2025-03-03", "status": "absent"},
		{"id": 3, "date": "2025-03-04", "status": "late", "hours_worked": 8},
		{"id": 4, "date": "2025-04-01", "status": "present", "hours_worked": 8}
	]}}`

	// WHEN: Reducing them
	rec := do(t, router, http.MethodPost, "/api/attendance/facts", body)

	// THEN: April is ignored with a warning
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[AttendanceSummaryDTO](t, rec)
	assert.Equal(t, FactsDTO{DaysWorked: 2, DaysAbsent: 1, OvertimeHours: 2.5, LateCount: 1}, got.Facts)
	assert.Equal(t, 3, got.Considered)
	assert.Equal(t, 1, got.Ignored)
	require.Len(t, got.Warnings, 1)
	assert.Equal(t, string(payroll.WarnOutsidePeriod), got.Warnings[0].Code)
}

func TestAttendanceFacts_RejectsUnknownStatus(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodPost, "/api/attendance/facts",
		`{"period": {"year": 2025, "month": 3}, "records": [{"date": "2025-03-02", "status": "vacation"}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssess_PerfectAttendance(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodPost, "/api/performance/assess",
		`{"employee": {"base_salary": 50000}, "attendance": {"days_worked": 22}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[AssessmentDTO](t, rec)
	assert.Equal(t, 80, got.Score)
	assert.Equal(t, "low", got.RiskLevel)
	assert.Equal(t, 4000.0, got.SuggestedBonus)
	assert.Empty(t, got.Anomalies)
	require.NotNil(t, got.Suggestion)
	assert.Equal(t, SuggestionDTO{TransportPremium: 3000, PerformancePremium: 4000, BasketPremium: 1500}, *got.Suggestion)
	assert.Equal(t, SuggestionDTO{TransportPremium: 3000, PerformancePremium: 2500, BasketPremium: 1500}, got.Standard)
}

func TestPreview_AppliesSuggestionAndBuildsHandoff(t *testing.T) {
	// GIVEN: A full month of presence for a 50 000 DZD employee
	_, router := newTestHandler(t, nil)
	body := `{
		"period": {"year": 2025, "month": 3},
		"employee": {"id": "12", "base_salary": 50000},
		"records": ` + presentDays() + `,
		"apply_suggestion": true
	}`

	// WHEN: Previewing with the suggestion applied
	rec := do(t, router, http.MethodPost, "/api/payslips/preview", body)

	// THEN: The suggested premiums flow into gross and into the handoff
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[PreviewResponse](t, rec)

	assert.Equal(t, 22, got.Attendance.Facts.DaysWorked)
	assert.Equal(t, 80, got.Assessment.Score)
	assert.Equal(t, 8500.0, got.Calculation.Breakdown.TotalPremiums)
	assert.Equal(t, 58500.0, got.Calculation.Breakdown.GrossPay)
	assert.Equal(t, 5265.0, got.Calculation.Breakdown.CNASEmployee)
	assert.Equal(t, 4647.0, got.Calculation.Breakdown.IRG)
	assert.Equal(t, 48588.0, got.Calculation.Breakdown.NetPay)

	require.NotNil(t, got.Handoff)
	assert.Equal(t, backend.ID("12"), got.Handoff.EmployeeID)
	assert.Equal(t, 3, got.Handoff.Month)
	assert.Equal(t, 2025, got.Handoff.Year)
	assert.Equal(t, 3000.0, got.Handoff.PrimeTransport)
	assert.Equal(t, 4000.0, got.Handoff.PrimeRendement)
	assert.Equal(t, 1500.0, got.Handoff.PrimePanier)
	assert.Equal(t, 0.0, got.Handoff.Retenues)
}

func TestPreview_WithoutSuggestionOrID(t *testing.T) {
	_, router := newTestHandler(t, nil)
	body := `{"period": {"year": 2025, "month": 3}, "employee": {"base_salary": 50000}, "records": ` + presentDays() + `}`

	rec := do(t, router, http.MethodPost, "/api/payslips/preview", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[PreviewResponse](t, rec)
	assert.Equal(t, 50000.0, got.Calculation.Breakdown.GrossPay)
	assert.NotNil(t, got.Assessment.Suggestion)
	assert.Nil(t, got.Handoff)
}

// =============================================================================
// RULES
// =============================================================================

func TestGetRules_ListsBracketTable(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodGet, "/api/rules", "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[RulesDTO](t, rec)
	require.Len(t, got.Brackets, 4)
	assert.Equal(t, []float64{0, 0, 18000, 90000}, []float64{
		got.Brackets[0].BaseTax, got.Brackets[1].BaseTax, got.Brackets[2].BaseTax, got.Brackets[3].BaseTax,
	})
	assert.Nil(t, got.Brackets[3].Ceiling)
	require.NotNil(t, got.Rules.CNAS)
	assert.Equal(t, 0.09, *got.Rules.CNAS.EmployeeRate)
}

func TestPutRules_ReplacesActiveRules(t *testing.T) {
	// GIVEN: A YAML document raising the employee CNAS rate to 10%
	h, router := newTestHandler(t, nil)

	// WHEN: Replacing the rules
	rec := do(t, router, http.MethodPut, "/api/rules", "cnas:\n  employee_rate: 0.10\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: Later calculations use them
	assert.True(t, h.Calculator().Rules().CNASEmployeeRate.Equal(payroll.MustParseDecimal("0.1")))
	calc := decode[CalculationDTO](t, do(t, router, http.MethodPost, "/api/payroll/calculate", scenarioA))
	assert.Equal(t, 5000.0, calc.Breakdown.CNASEmployee)
}

func TestPutRules_InvalidKeepsCurrentRules(t *testing.T) {
	h, router := newTestHandler(t, nil)

	for _, body := range []string{
		"cnas:\n  employee_rate: 1.5\n",
		"irg:\n  brackets:\n    - {floor: 30000, rate: 0.2}\n    - {floor: 0, rate: 0}\n",
		"cnass: {}\n",
	} {
		rec := do(t, router, http.MethodPut, "/api/rules", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.True(t, h.Calculator().Rules().CNASEmployeeRate.Equal(payroll.MustParseDecimal("0.09")))
}

// =============================================================================
// DECLARATIONS
// =============================================================================

func TestCreateDeclaration_CNAS(t *testing.T) {
	_, router := newTestHandler(t, nil)
	body := `{"kind": "CNAS", "period": {"year": 2025, "month": 3}, "payslips": [` + scenarioA + `,` + scenarioB + `]}`

	rec := do(t, router, http.MethodPost, "/api/declarations", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[DeclarationDTO](t, rec)
	assert.Equal(t, "cnas", got.Kind)
	assert.Equal(t, 2, got.TotalEmployees)
	assert.Equal(t, 127727.0, got.TotalGross)
	assert.Equal(t, 11495.0, got.EmployeeContribution)
	assert.Equal(t, 33209.0, got.EmployerContribution)
	assert.Equal(t, 44704.0, got.TotalContribution)
	assert.Equal(t, "2025-04-30", got.DueDate)
	assert.Equal(t, "draft", got.Status)
	assert.Nil(t, got.SubmittedAt)
	assert.False(t, got.Overdue)
}

func TestCreateDeclaration_AlreadySubmitted(t *testing.T) {
	_, router := newTestHandler(t, nil)
	body := `{"kind": "irg", "status": "validated", "period": {"year": 2025, "month": 3}, "payslips": [` + scenarioA + `]}`

	rec := do(t, router, http.MethodPost, "/api/declarations", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[DeclarationDTO](t, rec)
	assert.Equal(t, "validated", got.Status)
	assert.Equal(t, 3100.0, got.TotalContribution)
	require.NotNil(t, got.SubmittedAt)
	assert.Equal(t, "2025-04-10T09:00:00Z", *got.SubmittedAt)
	require.NotNil(t, got.ValidatedAt)
}

func TestCreateDeclaration_Rejects(t *testing.T) {
	_, router := newTestHandler(t, nil)

	cases := map[string]string{
		"unsupported kind": `{"kind": "cacobatph", "period": {"year": 2025, "month": 3}, "payslips": []}`,
		"period mismatch":  `{"kind": "cnas", "period": {"year": 2025, "month": 4}, "payslips": [` + scenarioA + `]}`,
		"unknown status":   `{"kind": "cnas", "status": "paid", "period": {"year": 2025, "month": 3}, "payslips": []}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/declarations", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

// =============================================================================
// BACKEND-PROXIED ROUTES
// =============================================================================

const token = "tok-123"

type fakeBackend struct {
	*httptest.Server
	sent    []backend.PayslipRequest
	headers []http.Header
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	mux := http.NewServeMux()

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				io.WriteString(w, `{"message": "Unauthenticated."}`)
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success": true, "data": {"token": "`+token+`", "user": {"id": 1, "name": "RH"}}}`)
	})
	mux.HandleFunc("GET /api/employees", authed(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data": [{"id": 7, "first_name": "Amina", "last_name": "Belkacem", "salaire_base": "50000.00"}]}`)
	}))
	mux.HandleFunc("GET /api/employees/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "7":
			io.WriteString(w, `{"data": {"id": 7, "first_name": "Amina", "last_name": "Belkacem", "salaire_base": "50000.00"}}`)
		case "8":
			io.WriteString(w, `{"data": {"id": 8, "first_name": "Karim", "last_name": "Haddad", "salaire_base": 80000}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"message": "Employee not found"}`)
		}
	}))
	mux.HandleFunc("GET /api/attendances", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("employee_id") == "8" {
			io.WriteString(w, `{"data": [{"id": 9, "employee_id": 8, "date": "2025-03-02", "status": "vacation", "hours_worked": 8}]}`)
			return
		}
		io.WriteString(w, `{"data": [
			{"id": 1, "employee_id": 7, "date": "2025-03-02", "status": "present", "hours_worked": "10.00"},
			{"id": 2, "employee_id": 7, "date": "2025-03-03", "status": "absent", "hours_worked": null},
			{"id": 3, "employee_id": 7, "date": "2025-03-04", "status": "late", "hours_worked": 8}
		]}`)
	}))
	mux.HandleFunc("POST /api/payslips/generate", authed(func(w http.ResponseWriter, r *http.Request) {
		var req backend.PayslipRequest
		body, _ := io.ReadAll(r.Body)
		if !assert.NoError(t, json.Unmarshal(body, &req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fb.sent = append(fb.sent, req)
		fb.headers = append(fb.headers, r.Header.Clone())
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"data": {"id": 501, "employee_id": 7, "status": "draft"}}`)
	}))

	fb.Server = httptest.NewServer(mux)
	t.Cleanup(fb.Close)
	return fb
}

func newBackendHandler(t *testing.T) (*fakeBackend, *chi.Mux) {
	t.Helper()
	fb := newFakeBackend(t)
	client, err := backend.NewClient(fb.URL + "/api")
	require.NoError(t, err)
	_, router := newTestHandler(t, backend.NewLoader(client))
	return fb, router
}

func TestGeneratePayslip_HandsOffToBackend(t *testing.T) {
	// GIVEN: Employee 7 with 2h overtime and one absence in March
	fb, router := newBackendHandler(t)

	// WHEN: Generating the payslip
	rec := do(t, router, http.MethodPost, "/api/employees/7/payslips",
		`{"period": {"year": 2025, "month": 3}, "adjustments": {"transport_premium": 3000}, "idempotency_key": "key-1"}`,
		"Authorization", "Bearer "+token)

	// THEN: The backend receives overtime pay and the absence in retenues
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[GeneratePayslipResponse](t, rec)
	assert.Equal(t, backend.ID("501"), got.Payslip.ID)
	assert.Equal(t, 2, got.Attendance.Facts.DaysWorked)
	assert.Equal(t, 864.0, got.Calculation.Breakdown.OvertimePay)
	assert.Equal(t, 2273.0, got.Calculation.Breakdown.AbsenceDeduction)
	assert.Equal(t, 51591.0, got.Calculation.Breakdown.GrossPay)

	require.Len(t, fb.sent, 1)
	sent := fb.sent[0]
	assert.Equal(t, backend.ID("7"), sent.EmployeeID)
	assert.Equal(t, 3000.0, sent.PrimeTransport)
	assert.Equal(t, 864.0, sent.HeuresSupp)
	assert.Equal(t, 2273.0, sent.Retenues)
	assert.Equal(t, "key-1", fb.headers[0].Get("Idempotency-Key"))
	assert.Equal(t, sent, got.Sent)
}

func TestGeneratePayslip_Errors(t *testing.T) {
	_, router := newBackendHandler(t)
	period := `{"period": {"year": 2025, "month": 3}}`

	rec := do(t, router, http.MethodPost, "/api/employees/7/payslips", period)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing token")

	rec = do(t, router, http.MethodPost, "/api/employees/7/payslips", period, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "token refused by backend")

	rec = do(t, router, http.MethodPost, "/api/employees/99/payslips", period, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown employee")

	rec = do(t, router, http.MethodPost, "/api/employees/7/payslips", `{"period": {"year": 2025, "month": 0}}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "invalid period")
}

func TestGeneratePayslip_BackendDown(t *testing.T) {
	fb, router := newBackendHandler(t)
	fb.Close()

	rec := do(t, router, http.MethodPost, "/api/employees/7/payslips",
		`{"period": {"year": 2025, "month": 3}}`, "Authorization", "Bearer "+token)

	assert.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
}

func TestGeneratePayslip_MalformedBackendAttendance(t *testing.T) {
	// GIVEN: The backend holds an attendance row with an unknown status
	fb, router := newBackendHandler(t)

	// WHEN: Generating employee 8's payslip from a valid request
	rec := do(t, router, http.MethodPost, "/api/employees/8/payslips",
		`{"period": {"year": 2025, "month": 3}}`, "Authorization", "Bearer "+token)

	// THEN: The failure is reported as the backend's, and nothing is handed off
	assert.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "invalid_input")
	assert.Empty(t, fb.sent)
}

func TestLoginAndListEmployees(t *testing.T) {
	_, router := newBackendHandler(t)

	rec := do(t, router, http.MethodPost, "/api/auth/login", `{"email": "rh@example.dz", "password": "secret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[struct {
		Token string `json:"token"`
	}](t, rec)
	assert.Equal(t, token, login.Token)

	rec = do(t, router, http.MethodGet, "/api/employees", "", "Authorization", "Bearer "+login.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[struct {
		Employees []backend.Employee `json:"employees"`
	}](t, rec)
	require.Len(t, list.Employees, 1)
	assert.Equal(t, "Amina Belkacem", list.Employees[0].FullName())
}

func TestBackendRoutes_WithoutBackend(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodPost, "/api/employees/7/payslips", `{}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "backend": false}`, rec.Body.String())
}

func TestBodyLimit(t *testing.T) {
	calc, err := payroll.NewCalculator(payroll.DefaultRules())
	require.NoError(t, err)
	router := NewRouter(NewHandler(calc, nil, nil), RouterOptions{MaxBodyBytes: 64})

	body := bytes.Repeat([]byte("x"), 256)
	rec := do(t, router, http.MethodPut, "/api/rules", string(body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
