// Package turn defines the request and response shapes exchanged with API clients.
package turn

import (
	"github.com/google/uuid"
	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/state"
)

// StartRequest begins a new game.
type StartRequest struct {
	PlayerName string `json:"player_name,omitempty"`
	WorldID    string `json:"world_id"`
	ClassID    string `json:"selected_class_or_faction,omitempty"`
}

// StartResponse carries the opening scenario.
type StartResponse struct {
	Text      string         `json:"text"`
	Choices   []state.Choice `json:"choices"`
	SessionID uuid.UUID      `json:"session_id"`
	Card      state.Card     `json:"player_info_for_card"`
}

// ChoiceRequest submits the player's next action.
// ChoiceID is a choice id from the previous turn or state.CustomActionID.
type ChoiceRequest struct {
	SessionID  uuid.UUID `json:"session_id"`
	ChoiceID   string    `json:"choice_id"`
	ChoiceText string    `json:"choice_text"`
}

// Response is the result of one turn.
// Warning is set when the turn was generated but could not be saved.
type Response struct {
	Text       string             `json:"text"`
	Choices    []state.Choice     `json:"choices"`
	Card       state.Card         `json:"player_info_for_card"`
	SkillCheck *skillcheck.Result `json:"skill_check_result,omitempty"`
	Warning    string             `json:"warning,omitempty"`
	Degraded   bool               `json:"degraded,omitempty"`
}

// WorldSummary describes a world for selection screens.
type WorldSummary struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Lore    string         `json:"lore"`
	Rating  string         `json:"rating,omitempty"`
	Classes []ClassSummary `json:"classes"`
}

// ClassSummary describes a playable class or faction.
type ClassSummary struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Stats map[string]int `json:"stats"`
}
