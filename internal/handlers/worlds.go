package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/adventure-engine/pkg/turn"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

type WorldsHandler struct {
	catalog *world.Catalog
	logger  *slog.Logger
}

func NewWorldsHandler(catalog *world.Catalog, logger *slog.Logger) *WorldsHandler {
	return &WorldsHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ServeHTTP handles GET /api/v1/worlds
func (h *WorldsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	worlds := h.catalog.Worlds()
	out := make([]turn.WorldSummary, 0, len(worlds))
	for _, wd := range worlds {
		summary := turn.WorldSummary{
			ID:      wd.ID,
			Name:    wd.Name,
			Lore:    wd.Lore,
			Rating:  wd.Rating,
			Classes: make([]turn.ClassSummary, 0, len(wd.Classes)),
		}
		for _, cl := range wd.Classes {
			stats := make(map[string]int, len(cl.Stats))
			for k, v := range cl.Stats {
				stats[string(k)] = v
			}
			summary.Classes = append(summary.Classes, turn.ClassSummary{ID: cl.ID, Name: cl.Name, Stats: stats})
		}
		out = append(out, summary)
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		h.logger.Error("Failed to encode worlds response", "error", err)
	}
}
