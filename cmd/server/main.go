/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env file, then environment, then flags)
  2. Build the structured logger
  3. Load payroll rules (RULES_FILE or the canonical rules)
  4. Connect the HR backend client, if BACKEND_URL is set
  5. Configure HTTP router and start the rules reloader
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr         Listen address, overrides APP_ADDR
  -rules        Rules file, overrides RULES_FILE
  -env-file     .env file to load (default: .env)
  -print-rules  Print the active rules as YAML and exit

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the rules reloader
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Exit

ENVIRONMENT:
  APP_ADDR, APP_ENV, LOG_LEVEL, RULES_FILE, RULES_RELOAD_INTERVAL,
  BACKEND_URL, BACKEND_TIMEOUT, CORS_ORIGINS. See config/config.go.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: Configuration keys and defaults
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/backend"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/payroll"
)

const version = "v1.0.0"

func main() {
	// Flags
	addr := flag.String("addr", "", "listen address (overrides APP_ADDR)")
	rulesFile := flag.String("rules", "", "payroll rules file (overrides RULES_FILE)")
	envFile := flag.String("env-file", ".env", ".env file to load")
	printRules := flag.Bool("print-rules", false, "print the active rules as YAML and exit")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.App.Addr = *addr
	}
	if *rulesFile != "" {
		cfg.Rules.File = *rulesFile
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Rules
	rulesFactory := factory.NewRulesFactory()
	rules := payroll.DefaultRules()
	if cfg.Rules.File != "" {
		rules, err = rulesFactory.LoadFile(cfg.Rules.File)
		if err != nil {
			logger.Error("failed to load rules", "path", cfg.Rules.File, "error", err)
			os.Exit(1)
		}
	}
	if *printRules {
		out, err := rulesFactory.Marshal(rules)
		if err != nil {
			logger.Error("failed to render rules", "error", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}
	calc, err := payroll.NewCalculator(rules)
	if err != nil {
		logger.Error("invalid rules", "error", err)
		os.Exit(1)
	}

	// Backend
	var loader *backend.Loader
	if cfg.Backend.URL != "" {
		client, err := backend.NewClient(cfg.Backend.URL,
			backend.WithTimeout(cfg.Backend.Timeout),
			backend.WithLogger(logger.With(slog.String("component", "backend"))),
		)
		if err != nil {
			logger.Error("invalid backend configuration", "error", err)
			os.Exit(1)
		}
		loader = backend.NewLoader(client)
	}

	// Initialize handler
	handler := api.NewHandler(calc, loader, logger)

	reloader := api.NewRulesReloader(handler, cfg.Rules.File, cfg.Rules.ReloadInterval)
	reloader.Start()

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// Create server
	server := &http.Server{
		Addr:         cfg.App.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			"addr", cfg.App.Addr,
			"rules_file", cfg.Rules.File,
			"backend_url", cfg.Backend.URL,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	reloader.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newLogger builds the ECS-formatted JSON logger shared by the request
// logger and the application. Development keeps every attribute.
func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLevel(cfg.App.LogLevel)
	logFormat := httplog.SchemaECS.Concise(cfg.App.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "payroll-engine"),
		slog.String("version", version),
		slog.String("env", cfg.App.Env),
	)
}
