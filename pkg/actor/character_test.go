package actor

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

func TestNewCharacter(t *testing.T) {
	s := state.NewSession("Ada", "dark_fantasy")
	s.ID = uuid.New()
	s.Class = "Ashen Legion"
	s.SetScore(skillcheck.Strength, 14)
	s.SetScore(skillcheck.Charisma, 6)

	c, err := NewCharacter(s)
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}

	if c.Name != "Ada" {
		t.Errorf("Name = %q, want %q", c.Name, "Ada")
	}
	if c.Class != "Ashen Legion" {
		t.Errorf("Class = %q, want %q", c.Class, "Ashen Legion")
	}

	tests := []struct {
		stat     skillcheck.Stat
		score    int
		modifier int
	}{
		{skillcheck.Strength, 14, 2},
		{skillcheck.Charisma, 6, -2},
		{skillcheck.Wisdom, 10, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.stat), func(t *testing.T) {
			if got := c.Score(tt.stat); got != tt.score {
				t.Errorf("Score(%s) = %d, want %d", tt.stat, got, tt.score)
			}
			if got := c.Modifier(tt.stat); got != tt.modifier {
				t.Errorf("Modifier(%s) = %d, want %d", tt.stat, got, tt.modifier)
			}
		})
	}

	if c.Actor.MaxHP() != 100 {
		t.Errorf("Actor.MaxHP() = %d, want 100", c.Actor.MaxHP())
	}
}

func TestNewCharacter_MissingStatDefaultsToNeutral(t *testing.T) {
	s := &state.Session{PlayerName: "Ada", Health: 100}

	c, err := NewCharacter(s)
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}
	if got := c.Score(skillcheck.Dexterity); got != 10 {
		t.Errorf("Score(dexterity) = %d, want 10", got)
	}
}

func TestNewCharacter_CurrentHP(t *testing.T) {
	s := state.NewSession("Ada", "dark_fantasy")
	s.Health = 40

	c, err := NewCharacter(s)
	if err != nil {
		t.Fatalf("NewCharacter() error = %v", err)
	}
	if c.Actor.HP() != 40 {
		t.Errorf("Actor.HP() = %d, want 40", c.Actor.HP())
	}
	if c.Actor.MaxHP() != 100 {
		t.Errorf("Actor.MaxHP() = %d, want 100", c.Actor.MaxHP())
	}
}

func TestNewCharacter_NilSession(t *testing.T) {
	if _, err := NewCharacter(nil); err == nil {
		t.Error("expected error for nil session")
	}
}

func TestCharacter_NilScore(t *testing.T) {
	var c *Character
	if got := c.Score(skillcheck.Strength); got != 10 {
		t.Errorf("Score on nil character = %d, want 10", got)
	}
}
