package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Rules   RulesConfig
	Backend BackendConfig
	CORS    CORSConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Addr     string
	Env      string
	LogLevel string
}

// RulesConfig points at an optional rules document. Empty means the
// canonical rules. A zero ReloadInterval disables reloading.
type RulesConfig struct {
	File           string
	ReloadInterval time.Duration
}

// BackendConfig locates the HR backend that owns employees, attendance
// and payslips. An empty URL runs the engine without a backend.
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads the environment, after loading the given .env files (".env"
// when none are given). Missing .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}

	timeout, err := getEnvDuration("BACKEND_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	reload, err := getEnvDuration("RULES_RELOAD_INTERVAL", 0)
	if err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Addr:     getEnv("APP_ADDR", ":8080"),
			Env:      getEnv("APP_ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Rules: RulesConfig{
			File:           getEnv("RULES_FILE", ""),
			ReloadInterval: reload,
		},
		Backend: BackendConfig{
			URL:     backendURL(getEnv("BACKEND_URL", "")),
			Timeout: timeout,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ORIGINS", []string{"*"}),
		},
	}
	return config, config.Validate()
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.App.Addr) == "" {
		return fmt.Errorf("APP_ADDR must not be empty")
	}
	if _, err := ParseLevel(c.App.LogLevel); err != nil {
		return err
	}
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid BACKEND_URL %q", c.Backend.URL)
		}
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Rules.ReloadInterval < 0 {
		return fmt.Errorf("RULES_RELOAD_INTERVAL must not be negative")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// ParseLevel maps LOG_LEVEL values to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}

// backendURL maps the explicit "none" and "off" values to no backend.
func backendURL(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return ""
	}
	return strings.TrimSpace(s)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
