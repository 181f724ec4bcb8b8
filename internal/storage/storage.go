package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

var (
	// ErrNotFound is returned when no session exists for an id.
	ErrNotFound = errors.New("session not found")

	// ErrConflict is returned when a concurrent writer kept winning an optimistic update.
	ErrConflict = errors.New("session was modified concurrently")
)

// SessionStore persists game sessions.
type SessionStore interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Create stores a new session under a freshly generated id and returns it.
	Create(ctx context.Context, s *state.Session) (*state.Session, error)

	// Load returns the session or ErrNotFound.
	Load(ctx context.Context, id uuid.UUID) (*state.Session, error)

	// Save applies u atomically and returns the updated session, or ErrNotFound.
	Save(ctx context.Context, id uuid.UUID, u state.Update) (*state.Session, error)

	// Delete removes a session, or returns ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}
