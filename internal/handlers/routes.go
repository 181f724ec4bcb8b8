package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/adventure-engine/internal/metrics"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

// NewRouter registers every API route on a fresh ServeMux.
func NewRouter(g GameService, catalog *world.Catalog, store storage.SessionStore, provider ProviderStatus, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	gameHandler := NewGameHandler(g, logger)
	mux.HandleFunc("POST /api/v1/start_game", gameHandler.StartGame)
	mux.HandleFunc("POST /api/v1/make_choice", gameHandler.MakeChoice)
	mux.HandleFunc("GET /api/v1/sessions/{id}", gameHandler.GetSession)

	mux.Handle("GET /api/v1/worlds", NewWorldsHandler(catalog, logger))
	mux.Handle("/health", NewHealthHandler(store, provider, logger))
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}
