package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
)

// SkillCheckExample is the annotation shown to the model. The narrative parser
// must accept it unchanged.
const SkillCheckExample = "(Strength DC15)"

// NarratorPrompt frames the model as the narrator of the named world.
const NarratorPrompt = `You are the narrator of a text adventure set in the world of %s. You describe what happens in response to the player's actions, in second person, in a vivid and grounded voice. You never discuss things outside of the game and you never speak for the player.

### Writing rules:
- Write one to three short paragraphs that continue the story from where it left off.
- Stay consistent with the world lore and with what the player has already seen.
- When a skill check result is reported, the story MUST reflect it. A critical success is a triumph, a success works, a failure costs the player something, and a critical failure goes badly wrong.
- When the player attempts a custom action, judge it against their class, attributes and situation. It may succeed, partly succeed or fail outright.

### Choices:
After the story, write a line with the heading "New choices:" and then offer 2 or 3 new choices, one per line, each starting with a marker such as "A)", "B)", "C)".
Occasionally, one choice may be a skill check. Mark it by ending that choice with the attribute and difficulty in parentheses, for example:
C) Force the rusted gate open ` + SkillCheckExample + `
Only these attributes may be used: %s. Difficulty is a number between 5 and 25.`

// ClosingPrompt ends the prompt and cues the narrator.
const ClosingPrompt = "Continue the story now, then list the new choices."

// CustomAction describes a free-text action typed by the player.
func CustomAction(text string) string {
	return fmt.Sprintf("The player attempts a custom action: %q. Narrate the result realistically, considering the character's abilities and the current situation. The action may succeed, partly succeed or fail completely.", strings.TrimSpace(text))
}

// ChoiceAction describes a plain pick from the offered choices.
func ChoiceAction(text string) string {
	return fmt.Sprintf("The player chose: %q.", strings.TrimSpace(text))
}

// SkillCheckAction describes a gated choice by its dice outcome rather than its text.
func SkillCheckAction(text string, res skillcheck.Result) string {
	return fmt.Sprintf(
		"The player attempted %q, which required a %s check against DC %d. They rolled %d with a modifier of %+d for a total of %d: a %s. Narrate the consequences of this %s.",
		strings.TrimSpace(text),
		res.Stat.Title(),
		res.Difficulty,
		res.Roll,
		res.Modifier,
		res.Total,
		res.Outcome.Label(),
		res.Outcome.Label(),
	)
}

// SkillCheckOutcome summarizes a result for the outcome section of the prompt.
func SkillCheckOutcome(res skillcheck.Result) string {
	return fmt.Sprintf("%s check (DC %d): rolled %d%+d = %d, %s",
		res.Stat.Title(), res.Difficulty, res.Roll, res.Modifier, res.Total, strings.ToUpper(res.Outcome.Label()))
}

func statNames() string {
	names := make([]string, 0, len(skillcheck.Stats))
	for _, s := range skillcheck.Stats {
		names = append(names, s.Title())
	}
	return strings.Join(names, ", ")
}
