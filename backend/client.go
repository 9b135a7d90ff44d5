/*
Package backend is a client for the HR backend that owns employees,
attendance and payslips.

SESSION:
  There is no global token. Login returns a Session and every
  authenticated call takes one, so two operators can share a Client.

  sess, err := c.Login(ctx, "rh@example.dz", "secret")
  emps, err := c.ListEmployees(ctx, sess)

RESPONSES:
  List endpoints may answer with an array or a {"data": ...} envelope;
  see envelope.go. Non-2xx answers become *StatusError, which unwraps to
  ErrUnauthorized (401) or ErrNotFound (404).

IDEMPOTENCY:
  GeneratePayslip sends an Idempotency-Key header (a fresh UUID unless
  the caller provides one) so a retried request does not create two
  payslips on backends that honour it.
*/
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "http://localhost:8000/api"
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 8 << 20
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *slog.Logger
	newKey  func() string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout on a copy of the current client, so
// a shared client passed to WithHTTPClient is left alone.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithIdempotencyKeys replaces the UUID generator for Idempotency-Key.
func WithIdempotencyKeys(next func() string) Option {
	return func(c *Client) { c.newKey = next }
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.New(slog.DiscardHandler),
		newKey:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// =============================================================================
// ENDPOINTS
// =============================================================================

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	} `json:"data"`
}

// Login exchanges credentials for a Session.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	raw, err := c.do(ctx, http.MethodPost, "/auth/login", nil, nil, body, nil)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusUnprocessableEntity) {
			return Session{}, fmt.Errorf("%w: %s", ErrLoginFailed, se.Message)
		}
		return Session{}, err
	}
	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Session{}, malformed(fmt.Errorf("decoding login response: %w", err))
	}
	if resp.Data.Token == "" {
		return Session{}, fmt.Errorf("%w: %s", ErrLoginFailed, resp.Message)
	}
	return Session{Token: resp.Data.Token, User: resp.Data.User}, nil
}

// ListEmployees returns every employee visible to the session.
func (c *Client) ListEmployees(ctx context.Context, sess Session) ([]Employee, error) {
	raw, err := c.do(ctx, http.MethodGet, "/employees", url.Values{"all": {"true"}}, &sess, nil, nil)
	if err != nil {
		return nil, err
	}
	employees, err := DecodeList[Employee](raw)
	return employees, malformed(err)
}

func (c *Client) GetEmployee(ctx context.Context, sess Session, id ID) (Employee, error) {
	raw, err := c.do(ctx, http.MethodGet, "/employees/"+url.PathEscape(string(id)), nil, &sess, nil, nil)
	if err != nil {
		return Employee{}, err
	}
	emp, err := DecodeOne[Employee](raw)
	return emp, malformed(err)
}

// ListAttendances returns the raw attendance rows of one employee.
func (c *Client) ListAttendances(ctx context.Context, sess Session, employeeID ID) ([]AttendanceRecord, error) {
	raw, err := c.do(ctx, http.MethodGet, "/attendances", url.Values{"employee_id": {string(employeeID)}}, &sess, nil, nil)
	if err != nil {
		return nil, err
	}
	rows, err := DecodeList[AttendanceRecord](raw)
	return rows, malformed(err)
}

// GeneratePayslip asks the backend to create a payslip. An empty key gets
// a generated one.
func (c *Client) GeneratePayslip(ctx context.Context, sess Session, req PayslipRequest, idempotencyKey string) (GeneratedPayslip, error) {
	if idempotencyKey == "" {
		idempotencyKey = c.newKey()
	}
	headers := http.Header{"Idempotency-Key": {idempotencyKey}}
	raw, err := c.do(ctx, http.MethodPost, "/payslips/generate", nil, &sess, req, headers)
	if err != nil {
		return GeneratedPayslip{}, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return GeneratedPayslip{EmployeeID: req.EmployeeID}, nil
	}
	payslip, err := DecodeOne[GeneratedPayslip](raw)
	return payslip, malformed(err)
}

// =============================================================================
// TRANSPORT
// =============================================================================

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, sess *Session, body any, headers http.Header) ([]byte, error) {
	// path is already escaped; Path and RawPath must agree for String().
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", path, err)
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + unescaped
	u.RawPath = c.baseURL.EscapedPath() + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		if !sess.Valid() {
			return nil, fmt.Errorf("%w: no session token", ErrUnauthorized)
		}
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrBackend, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrBackend, err)
	}
	c.logger.DebugContext(ctx, "backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			se.Message = eb.Message
			if se.Message == "" {
				se.Message = eb.Error
			}
		}
		return nil, se
	}
	return raw, nil
}
