package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/adventure-engine/internal/config"
	"github.com/jwebster45206/adventure-engine/internal/game"
	"github.com/jwebster45206/adventure-engine/internal/handlers"
	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/middleware"
	"github.com/jwebster45206/adventure-engine/internal/services"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Adventure Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage", cfg.StorageBackend)

	catalog, err := loadCatalog(cfg)
	if err != nil {
		logger.WithError(log, err).Error("Failed to load world catalog", "file", cfg.WorldsFile)
		os.Exit(1)
	}

	candidates := completionCandidates(cfg, log)
	gateway := services.NewGateway(candidates, cfg.AttemptTimeout, log)
	if !gateway.Configured() {
		log.Warn("No completion provider configured; turns will fail until OPENROUTER_API_KEY or ANTHROPIC_API_KEY is set")
	} else {
		log.Info("Completion candidates ready", "models", gateway.Candidates())
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	var (
		store  storage.SessionStore
		locker storage.Locker
	)
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		sqliteStore, err := storage.NewSQLiteStorage(cfg.SQLitePath, cfg.SessionTTL, log)
		if err != nil {
			logger.WithError(log, err).Error("Failed to open SQLite storage", "path", cfg.SQLitePath)
			os.Exit(1)
		}
		if n, err := sqliteStore.PurgeExpired(storageCtx); err != nil {
			log.Warn("Failed to purge expired sessions", "error", err)
		} else if n > 0 {
			log.Info("Purged expired sessions", "count", n)
		}
		store = sqliteStore
		locker = storage.NewLocalLocker()
	default:
		redisStore, err := storage.NewRedisStorage(cfg.RedisURL, cfg.SessionTTL, log)
		if err != nil {
			logger.WithError(log, err).Error("Invalid Redis configuration")
			os.Exit(1)
		}
		if err := redisStore.WaitForConnection(storageCtx); err != nil {
			logger.WithError(log, err).Error("Failed to connect to storage")
			os.Exit(1)
		}
		store = redisStore
		locker = storage.NewRedisLocker(redisStore.Client(), cfg.TurnTimeout, log)
	}

	if err := store.Ping(storageCtx); err != nil {
		logger.WithError(log, err).Error("Failed to connect to storage")
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	engine := game.NewEngine(store, locker, catalog, gateway, nil, log).
		WithTimeouts(game.DefaultLockWait, cfg.TurnTimeout)

	mux := handlers.NewRouter(engine, catalog, store, gateway, log)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// turns may wait on several provider attempts
		WriteTimeout: cfg.TurnTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Close storage connection
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

func loadCatalog(cfg *config.Config) (*world.Catalog, error) {
	if cfg.WorldsFile == "" {
		return world.Default()
	}
	catalog, err := world.Load(cfg.WorldsFile)
	if err != nil {
		return nil, err
	}
	return catalog, catalog.Validate()
}

// completionCandidates lists OpenRouter models first, then Anthropic when keyed.
func completionCandidates(cfg *config.Config, log *slog.Logger) []services.Completer {
	var candidates []services.Completer

	if cfg.HasOpenRouterKey() {
		models := cfg.OpenRouterModels
		if len(models) == 0 {
			models = services.DefaultOpenRouterModels
		}
		candidates = append(candidates, services.NewOpenRouterCandidates(services.OpenRouterConfig{
			APIKey:  cfg.OpenRouterAPIKey,
			BaseURL: cfg.OpenRouterBaseURL,
			Referer: cfg.HTTPReferer,
			Title:   cfg.XTitle,
		}, models)...)
	} else if cfg.OpenRouterAPIKey != "" {
		log.Warn("OPENROUTER_API_KEY is still the placeholder value; ignoring it")
	}

	if cfg.AnthropicAPIKey != "" {
		candidates = append(candidates, services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel))
	}
	return candidates
}
