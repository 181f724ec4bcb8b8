package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/adventure-engine/internal/metrics"
	"github.com/jwebster45206/adventure-engine/pkg/narrative"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// DefaultAttemptTimeout bounds a single candidate attempt.
const DefaultAttemptTimeout = 30 * time.Second

// Completion is a parsed response from the first candidate that produced usable text.
type Completion struct {
	Story   string
	Choices []state.Choice
	RawText string
	Model   string
}

// Gateway tries candidates in order until one returns usable text.
// Each candidate gets exactly one attempt per call.
type Gateway struct {
	candidates     []Completer
	attemptTimeout time.Duration
	logger         *slog.Logger
}

func NewGateway(candidates []Completer, attemptTimeout time.Duration, logger *slog.Logger) *Gateway {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &Gateway{
		candidates:     candidates,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// Configured reports whether any candidate is available.
func (g *Gateway) Configured() bool {
	return len(g.candidates) > 0
}

// Candidates returns the candidate names in preference order.
func (g *Gateway) Candidates() []string {
	names := make([]string, 0, len(g.candidates))
	for _, c := range g.candidates {
		names = append(names, c.Name())
	}
	return names
}

// Complete returns the first usable completion, parsed.
// It returns ErrNotConfigured without any network call when there are no candidates,
// ErrProvidersExhausted when all fail, or the context error if ctx ends first.
func (g *Gateway) Complete(ctx context.Context, prompt string) (*Completion, error) {
	if len(g.candidates) == 0 {
		return nil, ErrNotConfigured
	}

	for i, c := range g.candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := g.attempt(ctx, c, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			g.logger.Warn("Completion attempt failed",
				"model", c.Name(),
				"attempt", i+1,
				"remaining", len(g.candidates)-i-1,
				"error", err)
			continue
		}

		parsed := narrative.Parse(text)
		g.logger.Debug("Completion succeeded", "model", c.Name(), "attempt", i+1, "choices", len(parsed.Choices))
		return &Completion{
			Story:   parsed.Story,
			Choices: parsed.Choices,
			RawText: text,
			Model:   c.Name(),
		}, nil
	}

	g.logger.Error("All completion candidates failed", "candidates", len(g.candidates))
	return nil, ErrProvidersExhausted
}

func (g *Gateway) attempt(ctx context.Context, c Completer, prompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
	defer cancel()

	start := time.Now()
	text, err := c.Complete(attemptCtx, prompt)
	elapsed := time.Since(start)

	switch {
	case err == nil && strings.TrimSpace(text) != "":
		metrics.ObserveAttempt(c.Name(), metrics.ResultOK, elapsed)
	case err == nil:
		err = ErrEmptyCompletion
		metrics.ObserveAttempt(c.Name(), metrics.ResultEmpty, elapsed)
	case errors.Is(err, ErrEmptyCompletion):
		metrics.ObserveAttempt(c.Name(), metrics.ResultEmpty, elapsed)
	case errors.Is(err, context.DeadlineExceeded):
		metrics.ObserveAttempt(c.Name(), metrics.ResultTimeout, elapsed)
	default:
		metrics.ObserveAttempt(c.Name(), metrics.ResultError, elapsed)
	}
	return text, err
}
