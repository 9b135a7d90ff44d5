package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"APP_ADDR", "APP_ENV", "LOG_LEVEL", "RULES_FILE", "BACKEND_URL", "BACKEND_TIMEOUT", "CORS_ORIGINS", "RULES_RELOAD_INTERVAL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Addr)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Empty(t, cfg.Backend.URL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Rules.File)
	assert.Zero(t, cfg.Rules.ReloadInterval)
	assert.False(t, cfg.App.IsProduction())
}

func TestLoad_EnvironmentAndDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is present, even empty
	os.Unsetenv("RULES_FILE")
	os.Unsetenv("BACKEND_TIMEOUT")

	// GIVEN: A .env file and one variable already set in the environment
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RULES_FILE=/etc/payroll/rules.yaml\nBACKEND_TIMEOUT=3s\n"), 0o600))
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://hr.example.dz")
	t.Setenv("APP_ENV", "production")

	// WHEN: Loading
	cfg, err := config.Load(envFile)
	require.NoError(t, err)

	// THEN: Both sources are visible
	assert.Equal(t, "/etc/payroll/rules.yaml", cfg.Rules.File)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, []string{"http://localhost:5173", "https://hr.example.dz"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.App.IsProduction())
}

func TestLoad_BackendDisabled(t *testing.T) {
	for _, value := range []string{"", "none", "OFF", " off "} {
		t.Run("value="+value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("BACKEND_URL", value)

			cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
			require.NoError(t, err)
			assert.Empty(t, cfg.Backend.URL)
		})
	}

	clearEnv(t)
	t.Setenv("BACKEND_URL", "http://localhost:8000/api")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", cfg.Backend.URL)
}

func TestLoad_TimeoutInSeconds(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_TIMEOUT", "15")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
}

func TestLoad_RulesReloadInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("RULES_RELOAD_INTERVAL", "1m")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.Rules.ReloadInterval)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string][2]string{
		"bad level":       {"LOG_LEVEL", "loud"},
		"bad url":         {"BACKEND_URL", "localhost:8000"},
		"bad timeout":     {"BACKEND_TIMEOUT", "soon"},
		"negative reload": {"RULES_RELOAD_INTERVAL", "-5s"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			_, err := config.Load(filepath.Join(t.TempDir(), "absent.env"))
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := config.ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = config.ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
