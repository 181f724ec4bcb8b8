package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, StorageRedis, cfg.StorageBackend)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouterBaseURL)
	assert.Empty(t, cfg.OpenRouterModels)
	assert.Equal(t, 30*time.Second, cfg.AttemptTimeout)
	assert.Equal(t, 3*time.Minute, cfg.TurnTimeout)
	assert.False(t, cfg.HasOpenRouterKey())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_BACKEND", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("OPENROUTER_API_KEY", "sk-or-123")
	t.Setenv("OPENROUTER_MODELS", "a/b:free,c/d")
	t.Setenv("ATTEMPT_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, StorageSQLite, cfg.StorageBackend)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.True(t, cfg.HasOpenRouterKey())
	assert.Equal(t, []string{"a/b:free", "c/d"}, cfg.OpenRouterModels)
	assert.Equal(t, 5*time.Second, cfg.AttemptTimeout)
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_BACKEND", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TURN_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestHasOpenRouterKey_Placeholder(t *testing.T) {
	cfg := &Config{OpenRouterAPIKey: "YOUR_OPENROUTER_API_KEY_HERE"}
	assert.False(t, cfg.HasOpenRouterKey())

	cfg.OpenRouterAPIKey = "  "
	assert.False(t, cfg.HasOpenRouterKey())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
