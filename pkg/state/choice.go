package state

import (
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
)

// CustomActionID is the reserved choice id for free-text player actions.
const CustomActionID = "USER_ACTION"

// RecoveryChoiceID marks the placeholder choice offered when no narrative could be generated.
const RecoveryChoiceID = "IGNORE"

// Choice is one option offered to the player.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Gate *Gate  `json:"skill_check,omitempty"`
}

// Gate makes a choice require a skill check.
type Gate struct {
	Stat       skillcheck.Stat `json:"stat"`
	Difficulty int             `json:"dc"`
}

// Gated reports whether picking this choice triggers a skill check.
func (c Choice) Gated() bool {
	return c.Gate != nil
}

// FindChoice looks up a choice id, ignoring case and surrounding space.
func FindChoice(choices []Choice, id string) (Choice, bool) {
	id = strings.TrimSpace(id)
	for _, c := range choices {
		if strings.EqualFold(c.ID, id) {
			return c, true
		}
	}
	return Choice{}, false
}
