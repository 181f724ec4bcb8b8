package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// MockStorage is an in-memory SessionStore for testing
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID][]byte
	pingError error
	loadError error
	saveError error

	// SaveErrorAfter fails every Save after this many have succeeded (0 disables)
	SaveErrorAfter int

	SaveCalls []state.Update
}

// Ensure MockStorage implements SessionStore interface
var _ SessionStore = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID][]byte),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetLoadError makes Load fail with err
func (m *MockStorage) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadError = err
}

// SetSaveError makes Save fail with err
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// Create stores a copy of s under a new id
func (m *MockStorage) Create(ctx context.Context, s *state.Session) (*state.Session, error) {
	if s == nil {
		return nil, errors.New("session cannot be nil")
	}
	created := *s
	created.ID = uuid.New()
	now := time.Now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	data, err := json.Marshal(&created)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[created.ID] = data
	return decodeSession(data)
}

// Load returns a copy of the stored session
func (m *MockStorage) Load(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadError != nil {
		return nil, m.loadError
	}
	data, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return decodeSession(data)
}

// Save applies u to the stored session
func (m *MockStorage) Save(ctx context.Context, id uuid.UUID, u state.Update) (*state.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = append(m.SaveCalls, u)
	if m.saveError != nil {
		return nil, m.saveError
	}
	if m.SaveErrorAfter > 0 && len(m.SaveCalls) > m.SaveErrorAfter {
		return nil, errors.New("mock save failure")
	}

	data, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s, err := decodeSession(data)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(u); err != nil {
		return nil, err
	}
	updated, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	m.sessions[id] = updated
	return decodeSession(updated)
}

// Delete removes a stored session
func (m *MockStorage) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Saves returns how many times Save was called
func (m *MockStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.SaveCalls)
}

func decodeSession(data []byte) (*state.Session, error) {
	var s state.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
