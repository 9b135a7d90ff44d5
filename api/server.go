/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:   Unique ID per request for tracing
  2. Logger:      httplog request logging (ECS JSON)
  3. Recoverer:   Panic recovery (500 instead of crash)
  4. CORS:        Cross-origin requests for the HR frontend
  5. BodyLimit:   Caps POST/PUT bodies

ROUTE GROUPS:
  /health               Liveness
  /api/rules            Rules inspection and replacement
  /api/payroll/*        Stateless calculation
  /api/attendance/*     Attendance reduction
  /api/performance/*    Scoring
  /api/payslips/*       Preview of the full flow
  /api/declarations     CNAS / IRG declarations
  /api/auth, /api/employees   Backend-proxied operations

SECURITY NOTE:
  The engine holds no credentials. Backend routes forward the caller's
  bearer token and the backend decides what it may see.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// DefaultMaxBodyBytes caps request bodies when RouterOptions leaves it 0.
const DefaultMaxBodyBytes = 1 << 20

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	if opts.Logger == nil {
		opts.Logger = h.Logger
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !allowsAny(opts.AllowedOrigins),
		MaxAge:           300,
	}))
	r.Use(bodyLimit(opts.MaxBodyBytes))

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/rules", h.GetRules)
		r.Put("/rules", h.PutRules)

		r.Route("/payroll", func(r chi.Router) {
			r.Post("/calculate", h.Calculate)
			r.Post("/summary", h.Summary)
		})

		r.Post("/attendance/facts", h.AttendanceFacts)
		r.Post("/performance/assess", h.Assess)
		r.Post("/payslips/preview", h.Preview)
		r.Post("/declarations", h.CreateDeclaration)

		// Backend routes
		r.Post("/auth/login", h.Login)
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/{id}/payslips", h.GeneratePayslip)
		})
	})

	return r
}

func bodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
