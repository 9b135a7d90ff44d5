/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the payroll, attendance,
  performance and declaration packages.

ENDPOINTS:
  Rules:
    GET    /api/rules                     Active rules and IRG table
    PUT    /api/rules                     Replace the rules (YAML or JSON)

  Calculation (stateless):
    POST   /api/payroll/calculate         One payslip
    POST   /api/payroll/summary           Payslips of a period plus totals
    POST   /api/attendance/facts          Reduce daily records to facts
    POST   /api/performance/assess        Score attendance facts
    POST   /api/payslips/preview          Records -> facts -> score -> payslip
    POST   /api/declarations              Build a CNAS or IRG declaration,
                                          optionally already submitted

  Backend (needs BACKEND_URL and a bearer token):
    POST   /api/auth/login                Exchange credentials for a token
    GET    /api/employees                 Employees from the HR backend
    POST   /api/employees/{id}/payslips   Compute and hand off a payslip

ARCHITECTURE:
  Handler struct holds all dependencies:
  - calc: The active Calculator, swapped under a lock on PUT /api/rules
  - Rules: YAML/JSON to Rules conversion
  - Loader: Backend access, nil when no backend is configured

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid rules, unsupported declaration kind
  - 401: Missing bearer token, or the backend refused it
  - 404: Employee not found in the backend
  - 502: The backend failed
  - 503: No backend configured
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/warp/payroll-engine/attendance"
	"github.com/warp/payroll-engine/backend"
	"github.com/warp/payroll-engine/declaration"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/performance"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Rules  *factory.RulesFactory
	Loader *backend.Loader
	Logger *slog.Logger

	// now is replaced in tests
	now func() time.Time

	mu   sync.RWMutex
	calc *payroll.Calculator
}

// NewHandler creates a handler computing with calc. loader may be nil.
func NewHandler(calc *payroll.Calculator, loader *backend.Loader, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		Rules:  factory.NewRulesFactory(),
		Loader: loader,
		Logger: logger,
		now:    time.Now,
		calc:   calc,
	}
}

// Calculator returns the calculator in use. In-flight requests keep the
// one they started with when the rules are replaced.
func (h *Handler) Calculator() *payroll.Calculator {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.calc
}

// SetRules validates rules and makes them active.
func (h *Handler) SetRules(rules payroll.Rules) error {
	calc, err := payroll.NewCalculator(rules)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.calc = calc
	h.mu.Unlock()
	return nil
}

// =============================================================================
// HEALTH & RULES
// =============================================================================

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"backend": h.Loader != nil,
	})
}

// GetRules returns the active rules.
// GET /api/rules
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rulesDTO(h.Rules, h.Calculator().Rules()))
}

// PutRules replaces the active rules. Omitted fields take the canonical
// defaults, not the current values.
// PUT /api/rules
func (h *Handler) PutRules(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	rules, err := h.Rules.ParseRules(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rules", err)
		return
	}
	if err := h.SetRules(rules); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rules", err)
		return
	}
	h.Logger.InfoContext(r.Context(), "payroll rules replaced", "irg_brackets", len(rules.IRGBrackets))
	writeJSON(w, http.StatusOK, rulesDTO(h.Rules, rules))
}

// =============================================================================
// CALCULATION ENDPOINTS
// =============================================================================

// Calculate computes one payslip.
// POST /api/payroll/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.Calculator().Calculate(in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logClamped(r, result)
	writeJSON(w, http.StatusOK, calculationDTO(result))
}

// Summary computes several payslips and their totals.
// POST /api/payroll/summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	results, err := h.calculateAll(req.Payslips)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dtos := make([]CalculationDTO, len(results))
	for i, c := range results {
		h.logClamped(r, c)
		dtos[i] = calculationDTO(c)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payslips": dtos,
		"summary":  summaryDTO(payroll.Summarize(results)),
	})
}

// AttendanceFacts reduces daily records to the facts of one period.
// POST /api/attendance/facts
func (h *Handler) AttendanceFacts(w http.ResponseWriter, r *http.Request) {
	var req AttendanceFactsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	period, err := req.Period.toPeriod()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	summary, err := summarizeRecords(period, req.Records)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attendanceSummaryDTO(summary))
}

// Assess scores attendance facts.
// POST /api/performance/assess
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	emp, err := req.Employee.toBaseline()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	facts, err := req.Facts.toFacts()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	assessment, err := performance.Assess(facts, emp)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assessmentDTO(assessment))
}

// Preview runs records through attendance, scoring and calculation, and
// shows the body that would be handed to the backend. Nothing is sent.
// POST /api/payslips/preview
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	period, err := req.Period.toPeriod()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	emp, err := req.Employee.toBaseline()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	adj, err := req.Adjustments.toAdjustments()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	summary, err := summarizeRecords(period, req.Records)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	in := payroll.Input{Period: period, Employee: emp, Facts: summary.Facts, Adjustments: adj}
	result, err := h.run(in, req.ApplySuggestion)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := PreviewResponse{
		Attendance:  attendanceSummaryDTO(summary),
		Assessment:  assessmentDTO(result.assessment),
		Calculation: calculationDTO(result.calculation),
	}
	if emp.ID != "" {
		handoff, err := backend.PayslipRequestFrom(backend.ID(emp.ID), result.adjustments, result.calculation)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.Handoff = &handoff
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateDeclaration aggregates payslips into a draft declaration.
// POST /api/declarations
func (h *Handler) CreateDeclaration(w http.ResponseWriter, r *http.Request) {
	var req DeclarationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	kind, err := declaration.ParseKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	period, err := req.Period.toPeriod()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	results, err := h.calculateAll(req.Payslips)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	decl, err := declaration.Build(kind, period, results)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := advance(&decl, req.Status, h.now()); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, declarationDTO(decl, h.now()))
}

// advance walks a fresh draft forward to the requested status.
func advance(d *declaration.Declaration, target string, at time.Time) error {
	switch declaration.Status(strings.ToLower(strings.TrimSpace(target))) {
	case "", declaration.StatusDraft:
		return nil
	case declaration.StatusSubmitted:
		return d.Submit(at)
	case declaration.StatusValidated:
		if err := d.Submit(at); err != nil {
			return err
		}
		return d.MarkValidated(at)
	}
	return &payroll.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown declaration status %q", target)}
}

// =============================================================================
// BACKEND ENDPOINTS
// =============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a backend token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := h.Loader.Client.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": sess.Token, "user": sess.User})
}

// ListEmployees proxies the backend employee list.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	employees, err := h.Loader.Client.ListEmployees(r.Context(), sess)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": employees})
}

// GeneratePayslip loads the employee and attendance from the backend,
// computes the payslip, and asks the backend to create it.
// POST /api/employees/{id}/payslips
func (h *Handler) GeneratePayslip(w http.ResponseWriter, r *http.Request) {
	if !h.requireBackend(w) {
		return
	}
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}
	employeeID := backend.ID(chi.URLParam(r, "id"))

	var req GeneratePayslipRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	period, err := req.Period.toPeriod()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	adj, err := req.Adjustments.toAdjustments()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	prepared, err := h.Loader.Prepare(ctx, sess, employeeID, period)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	in := prepared.Input
	in.Adjustments = adj
	result, err := h.run(in, req.ApplySuggestion)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logClamped(r, result.calculation)

	body, err := backend.PayslipRequestFrom(employeeID, result.adjustments, result.calculation)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	key := req.IdempotencyKey
	if key == "" {
		key = r.Header.Get("Idempotency-Key")
	}
	payslip, err := h.Loader.Client.GeneratePayslip(ctx, sess, body, key)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.Logger.InfoContext(ctx, "payslip handed off",
		"employee_id", string(employeeID),
		"period", period.String(),
		"payslip_id", string(payslip.ID),
		"net_pay", result.calculation.Breakdown.NetPay.Float64(),
	)
	writeJSON(w, http.StatusCreated, GeneratePayslipResponse{
		Payslip:     payslip,
		Attendance:  attendanceSummaryDTO(prepared.Attendance),
		Assessment:  assessmentDTO(result.assessment),
		Calculation: calculationDTO(result.calculation),
		Sent:        body,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

type runResult struct {
	assessment  performance.Assessment
	adjustments payroll.Adjustments
	calculation payroll.Calculation
}

// run scores the facts of in, optionally copies the suggested premiums
// onto its adjustments, and calculates.
func (h *Handler) run(in payroll.Input, applySuggestion bool) (runResult, error) {
	assessment, err := performance.Assess(in.Facts, in.Employee)
	if err != nil {
		return runResult{}, err
	}
	if applySuggestion {
		if s, ok := assessment.PremiumSuggestion(); ok {
			in.Adjustments = s.Apply(in.Adjustments)
		}
	}
	calc, err := h.Calculator().Calculate(in)
	if err != nil {
		return runResult{}, err
	}
	return runResult{assessment: assessment, adjustments: in.Adjustments, calculation: calc}, nil
}

// calculateAll computes every payslip with the same calculator, so one
// request never mixes two rules sets.
func (h *Handler) calculateAll(reqs []CalculateRequest) ([]payroll.Calculation, error) {
	calc := h.Calculator()
	results := make([]payroll.Calculation, 0, len(reqs))
	for _, req := range reqs {
		in, err := req.toInput()
		if err != nil {
			return nil, err
		}
		c, err := calc.Calculate(in)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, nil
}

func summarizeRecords(period payroll.PayPeriod, raw json.RawMessage) (attendance.Summary, error) {
	rows, err := backend.DecodeList[backend.AttendanceRecord](raw)
	if err != nil {
		return attendance.Summary{}, &payroll.ValidationError{Field: "records", Reason: err.Error()}
	}
	records, err := backend.ToRecords(rows)
	if err != nil {
		return attendance.Summary{}, err
	}
	return attendance.Summarize(period, records)
}

func (h *Handler) logClamped(r *http.Request, c payroll.Calculation) {
	for _, warn := range c.Warnings {
		h.Logger.WarnContext(r.Context(), "payroll warning",
			"employee_id", c.EmployeeID,
			"period", c.Period.String(),
			"code", string(warn.Code),
		)
	}
}

func (h *Handler) requireBackend(w http.ResponseWriter) bool {
	if h.Loader == nil {
		writeError(w, http.StatusServiceUnavailable, "No backend configured", nil)
		return false
	}
	return true
}

// sessionFrom takes the caller's bearer token and forwards it unchanged.
func sessionFrom(w http.ResponseWriter, r *http.Request) (backend.Session, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
		return backend.Session{}, false
	}
	return backend.Session{Token: token}, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", err)
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// fail maps a domain or backend error to a status code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *payroll.ValidationError
	switch {
	case isBackendError(err) && !errors.Is(err, backend.ErrEmployeeNotFound):
		h.Logger.ErrorContext(r.Context(), "backend failure", "error", err)
		writeError(w, http.StatusBadGateway, "Backend request failed", err)
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid input",
			Code:    "invalid_input",
			Details: map[string]string{"field": vErr.Field, "reason": vErr.Reason},
		})
	case payroll.IsClientError(err),
		errors.Is(err, declaration.ErrUnsupportedKind),
		errors.Is(err, declaration.ErrPeriodMismatch):
		writeError(w, http.StatusBadRequest, "Invalid input", err)
	case errors.Is(err, backend.ErrLoginFailed), errors.Is(err, backend.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized", err)
	case errors.Is(err, backend.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, "Employee not found", err)
	default:
		h.Logger.ErrorContext(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func isBackendError(err error) bool {
	return errors.Is(err, backend.ErrBackend) || errors.Is(err, backend.ErrNotFound)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
