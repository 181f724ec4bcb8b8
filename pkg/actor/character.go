package actor

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/d20"
)

// Character is the runtime view of a session's player, backed by a d20.Actor.
type Character struct {
	Name  string
	Class string
	Actor *d20.Actor // Built from session stats on each turn
}

// Ensure Character can feed skill checks
var _ skillcheck.ScoreSource = (*Character)(nil)

// NewCharacter builds a Character from the stats and health stored on s.
func NewCharacter(s *state.Session) (*Character, error) {
	if s == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	maxHP := state.DefaultHealth
	if s.Health > maxHP {
		maxHP = s.Health
	}

	id := s.PlayerName
	if s.ID != uuid.Nil {
		id = s.ID.String()
	}

	a, err := d20.NewActor(id).
		WithHP(maxHP).
		WithAttributes(s.StatMap()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	// Set current HP if different from max
	if s.Health != maxHP && s.Health > 0 {
		if err := a.SetHP(s.Health); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Character{
		Name:  s.PlayerName,
		Class: s.Class,
		Actor: a,
	}, nil
}

// Score returns the attribute score, or the neutral score when the attribute is missing.
func (c *Character) Score(stat skillcheck.Stat) int {
	if c == nil || c.Actor == nil {
		return skillcheck.NeutralScore
	}
	if v, ok := c.Actor.Attribute(string(stat)); ok {
		return v
	}
	return skillcheck.NeutralScore
}

// Modifier returns the roll modifier for stat.
func (c *Character) Modifier(stat skillcheck.Stat) int {
	return skillcheck.Modifier(c.Score(stat))
}
