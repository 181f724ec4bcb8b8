package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
)

const (
	DefaultHealth     = 100
	DefaultPlayerName = "Player"

	unknownScenarioText = "The previous situation is unknown."
)

// Attribute is one named score on the character sheet.
type Attribute struct {
	Name  skillcheck.Stat `json:"name"`
	Score int             `json:"score"`
}

// Session is the persistent state of a single game.
// History is append-only; stores add events through Update.Append.
type Session struct {
	ID         uuid.UUID   `json:"id"`
	PlayerName string      `json:"player_name"`
	WorldID    string      `json:"world_id"`
	WorldName  string      `json:"world_name"`
	ClassID    string      `json:"class_id,omitempty"`
	Class      string      `json:"class,omitempty"`
	Health     int         `json:"health"`
	Stats      []Attribute `json:"stats"`
	Skills     []string    `json:"skills,omitempty"`
	Inventory  []string    `json:"inventory,omitempty"`
	Location   string      `json:"location,omitempty"`
	History    []Event     `json:"history"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewSession creates a session with template defaults: full health and neutral stats.
func NewSession(playerName, worldID string) *Session {
	if playerName == "" {
		playerName = DefaultPlayerName
	}
	stats := make([]Attribute, 0, len(skillcheck.Stats))
	for _, s := range skillcheck.Stats {
		stats = append(stats, Attribute{Name: s, Score: skillcheck.NeutralScore})
	}
	return &Session{
		PlayerName: playerName,
		WorldID:    worldID,
		Health:     DefaultHealth,
		Stats:      stats,
		History:    make([]Event, 0),
	}
}

// Score returns the attribute score, or the neutral score when the attribute is missing.
func (s *Session) Score(stat skillcheck.Stat) int {
	for _, a := range s.Stats {
		if a.Name == stat {
			return a.Score
		}
	}
	return skillcheck.NeutralScore
}

// SetScore overwrites or adds an attribute, keeping canonical order for known stats.
func (s *Session) SetScore(stat skillcheck.Stat, score int) {
	for i := range s.Stats {
		if s.Stats[i].Name == stat {
			s.Stats[i].Score = score
			return
		}
	}
	s.Stats = append(s.Stats, Attribute{Name: stat, Score: score})
}

// StatMap returns the scores keyed by stat name.
func (s *Session) StatMap() map[string]int {
	m := make(map[string]int, len(s.Stats))
	for _, a := range s.Stats {
		m[string(a.Name)] = a.Score
	}
	return m
}

// LastEvent returns the most recent history entry, or nil for an empty history.
func (s *Session) LastEvent() *Event {
	if len(s.History) == 0 {
		return nil
	}
	return &s.History[len(s.History)-1]
}

// ScenarioText returns the narrative the player is currently responding to.
func (s *Session) ScenarioText() string {
	if ev := s.LastEvent(); ev != nil {
		if text := ev.ScenarioText(); text != "" {
			return text
		}
	}
	return unknownScenarioText
}

// CurrentChoices returns the choices of the most recent ai_response event.
// Before the first response, the opening choices from game_start are used.
func (s *Session) CurrentChoices() []Choice {
	for i := len(s.History) - 1; i >= 0; i-- {
		ev := s.History[i]
		if ev.Type == EventAIResponse && ev.AIResponse != nil {
			return ev.AIResponse.Choices
		}
	}
	for i := len(s.History) - 1; i >= 0; i-- {
		ev := s.History[i]
		if ev.Type == EventGameStart && ev.GameStart != nil {
			return ev.GameStart.Choices
		}
	}
	return nil
}

// Card is the player summary shown alongside each turn.
type Card struct {
	Name   string         `json:"name"`
	Class  string         `json:"class"`
	Health int            `json:"health"`
	Stats  map[string]int `json:"stats"`
}

func (s *Session) Card() Card {
	class := s.Class
	if class == "" {
		class = "None"
	}
	return Card{
		Name:   s.PlayerName,
		Class:  class,
		Health: s.Health,
		Stats:  s.StatMap(),
	}
}
