package state

import (
	"time"

	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
)

// EventType tags an entry in a session's history.
type EventType string

const (
	EventGameStart         EventType = "game_start"
	EventAIResponse        EventType = "ai_response"
	EventSkillCheckAttempt EventType = "skill_check_attempt"
)

// Event is one history entry. Exactly one payload is set, matching Type.
type Event struct {
	Type EventType `json:"type"`
	At   time.Time `json:"at"`

	GameStart  *GameStartEvent  `json:"game_start,omitempty"`
	AIResponse *AIResponseEvent `json:"ai_response,omitempty"`
	SkillCheck *SkillCheckEvent `json:"skill_check,omitempty"`
}

// GameStartEvent records the opening scenario shown to the player.
type GameStartEvent struct {
	WorldID  string   `json:"world_id"`
	Class    string   `json:"class,omitempty"`
	Location string   `json:"location,omitempty"`
	Text     string   `json:"text"`
	Choices  []Choice `json:"choices,omitempty"`
}

// AIResponseEvent records a completed turn.
type AIResponseEvent struct {
	Action            string             `json:"action"`
	SkillCheckOutcome skillcheck.Outcome `json:"skill_check_outcome,omitempty"`
	RawText           string             `json:"raw_text"`
	Narrative         string             `json:"narrative"`
	Choices           []Choice           `json:"choices"`
	Model             string             `json:"model,omitempty"`
}

// SkillCheckEvent records a resolved dice roll before the narrative is generated.
type SkillCheckEvent struct {
	Stat       skillcheck.Stat    `json:"stat"`
	Difficulty int                `json:"dc"`
	Roll       int                `json:"roll"`
	Modifier   int                `json:"modifier"`
	Total      int                `json:"total"`
	Outcome    skillcheck.Outcome `json:"outcome"`
	PriorText  string             `json:"prior_text,omitempty"`
}

func NewGameStartEvent(e GameStartEvent) Event {
	return Event{Type: EventGameStart, At: time.Now().UTC(), GameStart: &e}
}

func NewAIResponseEvent(e AIResponseEvent) Event {
	return Event{Type: EventAIResponse, At: time.Now().UTC(), AIResponse: &e}
}

// NewSkillCheckEvent records res along with the text the player was looking at.
func NewSkillCheckEvent(res skillcheck.Result, priorText string) Event {
	return Event{
		Type: EventSkillCheckAttempt,
		At:   time.Now().UTC(),
		SkillCheck: &SkillCheckEvent{
			Stat:       res.Stat,
			Difficulty: res.Difficulty,
			Roll:       res.Roll,
			Modifier:   res.Modifier,
			Total:      res.Total,
			Outcome:    res.Outcome,
			PriorText:  priorText,
		},
	}
}

// ScenarioText returns the narrative the player saw after this event.
func (e Event) ScenarioText() string {
	switch e.Type {
	case EventGameStart:
		if e.GameStart != nil {
			return e.GameStart.Text
		}
	case EventAIResponse:
		if e.AIResponse != nil {
			return e.AIResponse.Narrative
		}
	case EventSkillCheckAttempt:
		if e.SkillCheck != nil {
			return e.SkillCheck.PriorText
		}
	}
	return ""
}

// Valid reports whether the payload matches the type tag.
func (e Event) Valid() bool {
	switch e.Type {
	case EventGameStart:
		return e.GameStart != nil && e.AIResponse == nil && e.SkillCheck == nil
	case EventAIResponse:
		return e.AIResponse != nil && e.GameStart == nil && e.SkillCheck == nil
	case EventSkillCheckAttempt:
		return e.SkillCheck != nil && e.GameStart == nil && e.AIResponse == nil
	default:
		return false
	}
}
