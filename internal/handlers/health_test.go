package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jwebster45206/adventure-engine/internal/services"
	"github.com/jwebster45206/adventure-engine/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	logger := testLogger()

	tests := []struct {
		name               string
		setupStore         func() storage.SessionStore
		candidates         []services.Completer
		expectedStatus     int
		expectedHealth     string
		expectedStorage    string
		expectedCompletion string
	}{
		{
			name: "all healthy",
			setupStore: func() storage.SessionStore {
				store := storage.NewMockStorage()
				store.SetPingSuccess()
				return store
			},
			candidates:         []services.Completer{services.NewMockCompleter("m", "")},
			expectedStatus:     http.StatusOK,
			expectedHealth:     "healthy",
			expectedStorage:    "healthy",
			expectedCompletion: "configured",
		},
		{
			name: "unhealthy storage",
			setupStore: func() storage.SessionStore {
				store := storage.NewMockStorage()
				store.SetPingError(errors.New("connection failed"))
				return store
			},
			candidates:         []services.Completer{services.NewMockCompleter("m", "")},
			expectedStatus:     http.StatusServiceUnavailable,
			expectedHealth:     "degraded",
			expectedStorage:    "unhealthy",
			expectedCompletion: "configured",
		},
		{
			name: "provider not configured is still healthy",
			setupStore: func() storage.SessionStore {
				return storage.NewMockStorage()
			},
			expectedStatus:     http.StatusOK,
			expectedHealth:     "healthy",
			expectedStorage:    "healthy",
			expectedCompletion: "not_configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := services.NewGateway(tt.candidates, 0, logger)
			handler := NewHealthHandler(tt.setupStore(), gw, logger)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", ct)
			}

			var response HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("Expected health status %s, got %s", tt.expectedHealth, response.Status)
			}
			if response.Service != "adventure-engine" {
				t.Errorf("Expected service adventure-engine, got %s", response.Service)
			}
			if response.Components["storage"] != tt.expectedStorage {
				t.Errorf("Expected storage status %s, got %v", tt.expectedStorage, response.Components["storage"])
			}

			completion, ok := response.Components["completion"].(map[string]interface{})
			if !ok {
				t.Fatalf("Expected completion component, got %v", response.Components["completion"])
			}
			if completion["status"] != tt.expectedCompletion {
				t.Errorf("Expected completion status %s, got %v", tt.expectedCompletion, completion["status"])
			}
			if response.Timestamp.IsZero() {
				t.Error("Expected timestamp to be set")
			}
		})
	}
}
