package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// Builder composes the single instruction prompt sent to the completion provider.
type Builder struct {
	worldName    string
	lore         string
	session      *state.Session
	scenarioText string
	outcome      string
	action       string
}

// New creates a new prompt builder.
func New() *Builder {
	return &Builder{}
}

// WithWorld sets the world display name and lore summary.
func (b *Builder) WithWorld(name, lore string) *Builder {
	b.worldName = name
	b.lore = lore
	return b
}

// WithSession sets the player state to describe.
func (b *Builder) WithSession(s *state.Session) *Builder {
	b.session = s
	return b
}

// WithScenarioText sets the narrative the player last saw.
func (b *Builder) WithScenarioText(text string) *Builder {
	b.scenarioText = text
	return b
}

// WithSkillCheckOutcome reports this turn's check. Empty means no check.
func (b *Builder) WithSkillCheckOutcome(outcome string) *Builder {
	b.outcome = outcome
	return b
}

// WithAction sets the description of what the player did.
func (b *Builder) WithAction(action string) *Builder {
	b.action = action
	return b
}

// Build assembles the prompt sections in order: framing, lore, player, outcome, action.
func (b *Builder) Build() (string, error) {
	if b.session == nil {
		return "", fmt.Errorf("session is required")
	}
	if strings.TrimSpace(b.action) == "" {
		return "", fmt.Errorf("action is required")
	}

	worldName := b.worldName
	if worldName == "" {
		worldName = b.session.WorldName
	}

	var sb strings.Builder

	// 1. Narrator framing
	sb.WriteString(fmt.Sprintf(NarratorPrompt, worldName, statNames()))

	// 2. Lore
	if b.lore != "" {
		sb.WriteString("\n\n### World lore:\n")
		sb.WriteString(b.lore)
	}

	// 3. Player state
	sb.WriteString("\n\n### Player:\n")
	sb.WriteString(b.playerSection())

	scenario := b.scenarioText
	if scenario == "" {
		scenario = b.session.ScenarioText()
	}
	sb.WriteString("\n\n### Current situation:\n")
	sb.WriteString(scenario)

	// 4. Skill check
	if b.outcome != "" {
		sb.WriteString("\n\n### Skill check result:\n")
		sb.WriteString(b.outcome)
	}

	// 5. Action
	sb.WriteString("\n\n### Player action:\n")
	sb.WriteString(b.action)

	sb.WriteString("\n\n")
	sb.WriteString(ClosingPrompt)

	return sb.String(), nil
}

func (b *Builder) playerSection() string {
	s := b.session
	class := s.Class
	if class == "" {
		class = "None"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", s.PlayerName)
	fmt.Fprintf(&sb, "Class/Faction: %s\n", class)
	fmt.Fprintf(&sb, "Health: %d\n", s.Health)

	stats := make([]string, 0, len(s.Stats))
	for _, a := range s.Stats {
		stats = append(stats, fmt.Sprintf("%s %d", a.Name.Title(), a.Score))
	}
	fmt.Fprintf(&sb, "Attributes: %s", strings.Join(stats, ", "))

	if len(s.Skills) > 0 {
		fmt.Fprintf(&sb, "\nSkills: %s", strings.Join(s.Skills, ", "))
	}
	if len(s.Inventory) > 0 {
		fmt.Fprintf(&sb, "\nCarrying: %s", strings.Join(s.Inventory, ", "))
	}
	return sb.String()
}
