package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// placeholderAPIKey is the value shipped in example env files; it counts as unset.
const placeholderAPIKey = "YOUR_OPENROUTER_API_KEY_HERE"

// Storage backends
const (
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level

	StorageBackend string        `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	SQLitePath     string        `env:"SQLITE_PATH" envDefault:"data/sessions.db"`
	WorldsFile     string        `env:"WORLDS_FILE"`

	OpenRouterAPIKey  string   `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string   `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModels  []string `env:"OPENROUTER_MODELS" envSeparator:","`
	HTTPReferer       string   `env:"HTTP_REFERER" envDefault:"http://localhost:8000"`
	XTitle            string   `env:"X_TITLE" envDefault:"Text RPG Adventure"`

	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest"`

	AttemptTimeout time.Duration `env:"ATTEMPT_TIMEOUT" envDefault:"30s"`
	TurnTimeout    time.Duration `env:"TURN_TIMEOUT" envDefault:"3m"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
// Missing provider keys are allowed; turns then fail fast as not configured.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q (supported: %s, %s)", c.StorageBackend, StorageRedis, StorageSQLite)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative")
	}
	return nil
}

// HasOpenRouterKey reports whether a real OpenRouter key was provided.
func (c *Config) HasOpenRouterKey() bool {
	key := strings.TrimSpace(c.OpenRouterAPIKey)
	return key != "" && key != placeholderAPIKey
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
