package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/internal/game"
	"github.com/jwebster45206/adventure-engine/internal/services"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/turn"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// GameService is the engine surface the HTTP layer needs.
type GameService interface {
	StartGame(ctx context.Context, req turn.StartRequest) (*turn.StartResponse, error)
	ProcessTurn(ctx context.Context, req turn.ChoiceRequest) (*turn.Response, error)
	Session(ctx context.Context, id uuid.UUID) (*state.Session, error)
}

// maxBodyBytes caps request bodies; player input is short.
const maxBodyBytes = 64 << 10

type GameHandler struct {
	game   GameService
	logger *slog.Logger
}

func NewGameHandler(g GameService, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		game:   g,
		logger: logger,
	}
}

// StartGame handles POST /api/v1/start_game
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req turn.StartRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("Invalid start request", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if strings.TrimSpace(req.WorldID) == "" {
		h.writeError(w, http.StatusBadRequest, "world_id is required")
		return
	}

	resp, err := h.game.StartGame(r.Context(), req)
	if err != nil {
		if errors.Is(err, game.ErrUnknownWorld) {
			h.writeError(w, http.StatusBadRequest, "Unknown world: "+req.WorldID)
			return
		}
		h.logger.Error("Failed to start game", "error", err, "world_id", req.WorldID)
		h.writeError(w, http.StatusInternalServerError, "Failed to start game")
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode start response", "error", err)
	}
}

// MakeChoice handles POST /api/v1/make_choice
func (h *GameHandler) MakeChoice(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req turn.ChoiceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("Invalid choice request", "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.SessionID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if strings.TrimSpace(req.ChoiceID) == "" {
		h.writeError(w, http.StatusBadRequest, "choice_id is required")
		return
	}
	if strings.EqualFold(req.ChoiceID, state.CustomActionID) && strings.TrimSpace(req.ChoiceText) == "" {
		h.writeError(w, http.StatusBadRequest, "choice_text is required for a custom action")
		return
	}

	resp, err := h.game.ProcessTurn(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrSessionNotFound):
			h.writeError(w, http.StatusNotFound, "Invalid session ID: "+req.SessionID.String())
		case errors.Is(err, game.ErrInvalidChoice):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, game.ErrSessionBusy):
			h.writeError(w, http.StatusConflict, "This session is already processing a turn")
		case errors.Is(err, services.ErrNotConfigured):
			h.logger.Error("Completion provider not configured", "session_id", req.SessionID.String())
			h.writeError(w, http.StatusServiceUnavailable, "The story provider is not configured")
		default:
			h.logger.Error("Failed to process turn", "error", err, "session_id", req.SessionID.String())
			h.writeError(w, http.StatusInternalServerError, "Failed to process turn")
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode turn response", "error", err)
	}
}

// GetSession handles GET /api/v1/sessions/{id}
func (h *GameHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	s, err := h.game.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, game.ErrSessionNotFound) {
			h.writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to load session", "error", err, "session_id", id.String())
		h.writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(s); err != nil {
		h.logger.Error("Failed to encode session", "error", err)
	}
}

func (h *GameHandler) writeError(w http.ResponseWriter, status int, msg string) {
	writeError(w, h.logger, status, msg)
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
