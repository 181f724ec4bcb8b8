package services

import (
	"context"
	"sync"
)

// MockCompleter is a mock implementation of Completer for testing
type MockCompleter struct {
	NameValue    string
	Response     string
	Err          error
	CompleteFunc func(ctx context.Context, prompt string) (string, error)

	// Track calls for testing
	CompleteCalls []string

	mu sync.Mutex // protects all fields above
}

// NewMockCompleter creates a mock that returns response.
func NewMockCompleter(name, response string) *MockCompleter {
	return &MockCompleter{
		NameValue:     name,
		Response:      response,
		CompleteCalls: make([]string, 0),
	}
}

// NewFailingCompleter creates a mock that always returns err.
func NewFailingCompleter(name string, err error) *MockCompleter {
	return &MockCompleter{
		NameValue:     name,
		Err:           err,
		CompleteCalls: make([]string, 0),
	}
}

func (m *MockCompleter) Name() string {
	return m.NameValue
}

// Complete mocks a single completion attempt.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, prompt)
	fn, resp, err := m.CompleteFunc, m.Response, m.Err
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	if err != nil {
		return "", err
	}
	return resp, nil
}

// SetResponse changes the scripted response.
func (m *MockCompleter) SetResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Response = response
	m.Err = nil
}

// SetError makes subsequent calls fail.
func (m *MockCompleter) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// Calls returns the number of Complete calls so far.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CompleteCalls)
}

// LastPrompt returns the most recent prompt, or "" if never called.
func (m *MockCompleter) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CompleteCalls) == 0 {
		return ""
	}
	return m.CompleteCalls[len(m.CompleteCalls)-1]
}
