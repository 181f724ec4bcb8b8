package services

import (
	"context"
	"errors"
)

var (
	// ErrProvidersExhausted is returned when every candidate model failed.
	ErrProvidersExhausted = errors.New("all completion providers failed")

	// ErrNotConfigured is returned when no candidate has credentials.
	ErrNotConfigured = errors.New("completion provider is not configured")

	// ErrEmptyCompletion marks a response with no usable text.
	ErrEmptyCompletion = errors.New("completion contained no content")
)

// Completer makes a single completion attempt against one model.
// Implementations must not retry internally.
type Completer interface {
	// Name identifies the candidate in logs and metrics.
	Name() string

	// Complete sends prompt as a single user message and returns the raw text.
	Complete(ctx context.Context, prompt string) (string, error)
}
