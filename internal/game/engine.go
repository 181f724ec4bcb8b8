// Package game runs the turn loop: it resolves the player's choice, rolls any
// skill check, asks the completion gateway for the next beat and records it.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/metrics"
	"github.com/jwebster45206/adventure-engine/internal/services"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/actor"
	"github.com/jwebster45206/adventure-engine/pkg/prompts"
	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/textfilter"
	"github.com/jwebster45206/adventure-engine/pkg/turn"
	"github.com/jwebster45206/adventure-engine/pkg/world"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownWorld    = errors.New("unknown world")
	ErrSessionBusy     = errors.New("session is processing another turn")
	ErrInvalidChoice   = errors.New("choice_id is required")
)

const (
	DefaultLockWait    = 5 * time.Second
	DefaultTurnTimeout = 3 * time.Minute

	degradedTextFormat = "Something went wrong: %s. Choose an option to continue."
	recoveryChoiceText = "Ignore the error and hope to continue."
	saveWarning        = "Your progress for this turn could not be saved."
)

// Turn kinds, used as metric labels
const (
	kindCustom     = "custom"
	kindChoice     = "choice"
	kindSkillCheck = "skill_check"
)

// Gateway produces the next narrative beat for a prompt.
type Gateway interface {
	Complete(ctx context.Context, prompt string) (*services.Completion, error)
}

// Engine owns the per-turn orchestration. It is safe for concurrent use;
// turns on the same session are serialized by the locker.
type Engine struct {
	store   storage.SessionStore
	locker  storage.Locker
	catalog *world.Catalog
	gateway Gateway
	roller  dice.Roller
	filter  *textfilter.Filter
	logger  *slog.Logger

	lockWait    time.Duration
	turnTimeout time.Duration
}

// NewEngine wires the engine. A nil roller uses the default d20 source.
func NewEngine(
	store storage.SessionStore,
	locker storage.Locker,
	catalog *world.Catalog,
	gateway Gateway,
	roller dice.Roller,
	logger *slog.Logger,
) *Engine {
	if roller == nil {
		roller = dice.DefaultRoller
	}
	return &Engine{
		store:       store,
		locker:      locker,
		catalog:     catalog,
		gateway:     gateway,
		roller:      roller,
		filter:      textfilter.New(),
		logger:      logger,
		lockWait:    DefaultLockWait,
		turnTimeout: DefaultTurnTimeout,
	}
}

// WithTimeouts overrides how long a turn waits for the session lock and how long it may run.
func (e *Engine) WithTimeouts(lockWait, turnTimeout time.Duration) *Engine {
	if lockWait > 0 {
		e.lockWait = lockWait
	}
	if turnTimeout > 0 {
		e.turnTimeout = turnTimeout
	}
	return e
}

// Catalog returns the world catalog the engine starts games from.
func (e *Engine) Catalog() *world.Catalog {
	return e.catalog
}

// StartGame creates a session in the requested world and returns its opening scenario.
func (e *Engine) StartGame(ctx context.Context, req turn.StartRequest) (*turn.StartResponse, error) {
	w, ok := e.catalog.World(req.WorldID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWorld, req.WorldID)
	}

	s := state.NewSession(strings.TrimSpace(req.PlayerName), w.ID)
	s.WorldName = w.Name

	classID := strings.TrimSpace(req.ClassID)
	if cl, ok := e.catalog.Class(w.ID, classID); ok {
		s.ClassID = cl.ID
		s.Class = cl.Name
		stats, skills, _ := e.catalog.BaseStats(w.ID, cl.ID)
		for _, a := range stats {
			s.SetScore(a.Name, a.Score)
		}
		s.Skills = skills
	} else if classID != "" {
		e.logger.Warn("Unknown class requested, using template stats", "world_id", w.ID, "class", classID)
		s.Class = fmt.Sprintf("Unknown (%s)", classID)
	}

	scenario, _ := e.catalog.StartingScenario(w.ID, s.ClassID)
	choices := scenario.Choices()
	s.Location = scenario.Location
	s.History = append(s.History, state.NewGameStartEvent(state.GameStartEvent{
		WorldID:  w.ID,
		Class:    s.Class,
		Location: scenario.Location,
		Text:     scenario.Text,
		Choices:  choices,
	}))

	created, err := e.store.Create(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	metrics.ObserveGameStart(w.ID)
	e.logger.Info("Game started",
		"session_id", created.ID.String(),
		"world_id", w.ID,
		"class", created.Class)

	return &turn.StartResponse{
		Text:      scenario.Text,
		Choices:   choices,
		SessionID: created.ID,
		Card:      created.Card(),
	}, nil
}

// Session loads a session for display.
func (e *Engine) Session(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	s, err := e.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// ProcessTurn applies one player action and returns the next narrative beat.
// Provider exhaustion yields a degraded but playable response rather than an error.
func (e *Engine) ProcessTurn(ctx context.Context, req turn.ChoiceRequest) (*turn.Response, error) {
	if strings.TrimSpace(req.ChoiceID) == "" {
		return nil, ErrInvalidChoice
	}

	callerCtx := ctx
	ctx, cancel := context.WithTimeout(ctx, e.turnTimeout)
	defer cancel()

	lockCtx, lockCancel := context.WithTimeout(ctx, e.lockWait)
	unlock, err := e.locker.Lock(lockCtx, req.SessionID)
	lockCancel()
	if err != nil {
		if errors.Is(err, storage.ErrLockNotAcquired) {
			return nil, ErrSessionBusy
		}
		return nil, fmt.Errorf("failed to lock session: %w", err)
	}
	defer unlock()

	s, err := e.Session(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	log := logger.WithSession(e.logger, s.ID.String())

	scenarioText := s.ScenarioText()
	kind := kindChoice
	var (
		action  string
		outcome string
		check   *skillcheck.Result
	)

	choice, found := state.FindChoice(s.CurrentChoices(), req.ChoiceID)
	switch {
	case strings.EqualFold(req.ChoiceID, state.CustomActionID):
		kind = kindCustom
		action = prompts.CustomAction(req.ChoiceText)

	case found && choice.Gated():
		kind = kindSkillCheck
		res, err := e.rollSkillCheck(s, choice)
		if err != nil {
			metrics.ObserveTurn(kind, "error")
			return nil, err
		}
		// committed before the provider call so the roll survives a failed turn
		saved, err := e.store.Save(ctx, s.ID, state.Update{
			Append: []state.Event{state.NewSkillCheckEvent(res, scenarioText)},
		})
		if err != nil {
			metrics.ObserveTurn(kind, "error")
			return nil, fmt.Errorf("failed to save skill check: %w", err)
		}
		s = saved
		check = &res
		action = prompts.SkillCheckAction(choice.Text, res)
		outcome = prompts.SkillCheckOutcome(res)
		log.Info("Skill check resolved",
			"stat", string(res.Stat),
			"dc", res.Difficulty,
			"roll", res.Roll,
			"total", res.Total,
			"outcome", string(res.Outcome))

	default:
		text := req.ChoiceText
		if found && strings.TrimSpace(text) == "" {
			text = choice.Text
		}
		action = prompts.ChoiceAction(text)
	}

	prompt, err := prompts.New().
		WithWorld(e.catalog.DisplayName(s.WorldID), e.catalog.Lore(s.WorldID)).
		WithSession(s).
		WithScenarioText(scenarioText).
		WithSkillCheckOutcome(outcome).
		WithAction(action).
		Build()
	if err != nil {
		metrics.ObserveTurn(kind, "error")
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	completion, err := e.gateway.Complete(ctx, prompt)
	if err != nil {
		// the turn budget ran out mid-fallback; only a caller cancel is a hard failure
		if errors.Is(err, context.DeadlineExceeded) && callerCtx.Err() == nil {
			err = fmt.Errorf("%w: turn time limit reached", services.ErrProvidersExhausted)
		}
		if errors.Is(err, services.ErrProvidersExhausted) {
			metrics.ObserveTurn(kind, "degraded")
			log.Warn("Returning degraded turn", "error", err)
			return degradedResponse(s, check, err), nil
		}
		metrics.ObserveTurn(kind, "error")
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	if textfilter.AppliesTo(e.catalog.Rating(s.WorldID)) {
		completion = e.clean(completion)
	}

	resp := &turn.Response{
		Text:       completion.Story,
		Choices:    completion.Choices,
		Card:       s.Card(),
		SkillCheck: check,
	}

	ev := state.AIResponseEvent{
		Action:    action,
		RawText:   completion.RawText,
		Narrative: completion.Story,
		Choices:   completion.Choices,
		Model:     completion.Model,
	}
	if check != nil {
		ev.SkillCheckOutcome = check.Outcome
	}
	updated, err := e.store.Save(ctx, s.ID, state.Update{Append: []state.Event{state.NewAIResponseEvent(ev)}})
	if err != nil {
		metrics.ObserveTurn(kind, "unsaved")
		log.Error("Failed to save turn", "error", err, "model", completion.Model)
		resp.Warning = saveWarning
		return resp, nil
	}

	resp.Card = updated.Card()
	metrics.ObserveTurn(kind, "ok")
	log.Debug("Turn processed", "kind", kind, "model", completion.Model, "choices", len(completion.Choices))
	return resp, nil
}

// clean filters the narrative and choice text. RawText keeps what the provider sent.
func (e *Engine) clean(c *services.Completion) *services.Completion {
	out := *c
	out.Story = e.filter.Clean(c.Story)
	out.Choices = make([]state.Choice, len(c.Choices))
	for i, ch := range c.Choices {
		ch.Text = e.filter.Clean(ch.Text)
		out.Choices[i] = ch
	}
	return &out
}

func (e *Engine) rollSkillCheck(s *state.Session, choice state.Choice) (skillcheck.Result, error) {
	pc, err := actor.NewCharacter(s)
	if err != nil {
		return skillcheck.Result{}, fmt.Errorf("failed to build character: %w", err)
	}
	res, err := skillcheck.Check(choice.Gate.Stat, pc, choice.Gate.Difficulty, e.roller)
	if err != nil {
		return skillcheck.Result{}, fmt.Errorf("failed to resolve skill check: %w", err)
	}
	metrics.ObserveSkillCheck(string(res.Stat), string(res.Outcome))
	return res, nil
}

func degradedResponse(s *state.Session, check *skillcheck.Result, cause error) *turn.Response {
	return &turn.Response{
		Text: fmt.Sprintf(degradedTextFormat, cause.Error()),
		Choices: []state.Choice{
			{ID: state.RecoveryChoiceID, Text: recoveryChoiceText},
		},
		Card:       s.Card(),
		SkillCheck: check,
		Degraded:   true,
	}
}
