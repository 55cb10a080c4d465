package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("REFRESH_LOOKAHEAD", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8000/v1", cfg.Backend.BaseURL)
	assert.Equal(t, "ws://localhost:8000/ws", cfg.Backend.WebSocketURL)
	assert.Equal(t, defaultProfileURL, cfg.Backend.ProfileURL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshLookahead)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_AllowedOriginsAndBackend(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("FRONTEND_URL", "https://sounds.example.com")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://sounds.example.com",
		"http://localhost:5173",
		"https://a.example.com",
		"https://b.example.com",
	}, cfg.AllowedOrigins)
	assert.Equal(t, "https://api.example.com/v1", cfg.Backend.BaseURL)
	assert.Equal(t, "wss://api.example.com/ws", cfg.Backend.WebSocketURL)
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfig_InvalidBackendURL(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("BACKEND_URL", "not a url")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestGetEnvAsDuration_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, GetEnvAsDuration("SOME_DURATION", time.Minute))

	t.Setenv("SOME_DURATION", "90s")
	assert.Equal(t, 90*time.Second, GetEnvAsDuration("SOME_DURATION", time.Minute))
}

func TestGetEnvAsInt_FallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "ten")
	assert.Equal(t, 3, GetEnvAsInt("SOME_INT", 3))
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dashboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9090\"\nlog-level: debug\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("BACKEND_URL", "")
	// Setenv registers cleanup so values written by the overlay are restored.
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, os.Unsetenv("PORT"))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over file")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	require.Error(t, err)
}
