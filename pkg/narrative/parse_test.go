package narrative

import (
	"strings"
	"testing"

	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_StoryAndChoices(t *testing.T) {
	raw := `The gate groans open.
Cold wind carries the smell of ash.

**New Choices:**
A) Step through the gate
B) Search the guardhouse (Wisdom DC12)
C) Turn back`

	res := Parse(raw)

	assert.Equal(t, "The gate groans open. Cold wind carries the smell of ash.", res.Story)
	require.Len(t, res.Choices, 3)
	assert.Equal(t, state.Choice{ID: "A", Text: "Step through the gate"}, res.Choices[0])
	assert.Equal(t, state.Choice{
		ID:   "B",
		Text: "Search the guardhouse",
		Gate: &state.Gate{Stat: skillcheck.Wisdom, Difficulty: 12},
	}, res.Choices[1])
	assert.Equal(t, "Turn back", res.Choices[2].Text)
	assert.Nil(t, res.Choices[2].Gate)
}

func TestParse_SkillCheckAnnotation(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		text     string
		stat     skillcheck.Stat
		dc       int
		hasCheck bool
	}{
		{"english", "A) Force the door (Strength DC15)", "Force the door", skillcheck.Strength, 15, true},
		{"trailing period", "A) Force the door (Strength DC15).", "Force the door", skillcheck.Strength, 15, true},
		{"period inside", "A) Force the door (Strength DC15.)", "Force the door", skillcheck.Strength, 15, true},
		{"lowercase dc", "A) Sneak past (dexterity dc9)", "Sneak past", skillcheck.Dexterity, 9, true},
		{"turkish", "A) Kapıyı kır (Güç DC15)", "Kapıyı kır", skillcheck.Strength, 15, true},
		{"turkish dotless", "A) Dayan (DAYANIKLILIK DC11)", "Dayan", skillcheck.Constitution, 11, true},
		{"emphasis", "**A)** **Charm the guard (Charisma DC14)**", "Charm the guard", skillcheck.Charisma, 14, true},
		{"emphasis around text only", "A) **Sneak past** (Dexterity DC12)", "Sneak past", skillcheck.Dexterity, 12, true},
		{"unknown stat", "A) Pray (Luck DC10)", "Pray (Luck DC10)", "", 0, false},
		{"not at end", "A) Lift (Strength DC15) the stone", "Lift (Strength DC15) the stone", "", 0, false},
		{"no digits", "A) Lift (Strength DC)", "Lift (Strength DC)", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.line)
			require.Len(t, res.Choices, 1)
			c := res.Choices[0]
			assert.Equal(t, tt.text, c.Text)
			if !tt.hasCheck {
				assert.Nil(t, c.Gate)
				return
			}
			require.NotNil(t, c.Gate)
			assert.Equal(t, tt.stat, c.Gate.Stat)
			assert.Equal(t, tt.dc, c.Gate.Difficulty)
		})
	}
}

func TestParse_ReassignsIDs(t *testing.T) {
	res := Parse("B) Run\nA) Fight")

	require.Len(t, res.Choices, 2)
	assert.Equal(t, "A", res.Choices[0].ID)
	assert.Equal(t, "Run", res.Choices[0].Text)
	assert.Equal(t, "B", res.Choices[1].ID)
	assert.Equal(t, "Fight", res.Choices[1].Text)
}

func TestParse_NumberedAndDottedMarkers(t *testing.T) {
	res := Parse("You wake.\n1. Stand up\n2) Stay down\n* 3. Call out")

	assert.Equal(t, "You wake.", res.Story)
	require.Len(t, res.Choices, 3)
	assert.Equal(t, "Stand up", res.Choices[0].Text)
	assert.Equal(t, "Stay down", res.Choices[1].Text)
	assert.Equal(t, "Call out", res.Choices[2].Text)
}

func TestParse_ContiguousChoiceBlock(t *testing.T) {
	// narrative cannot resume after the first marker
	res := Parse("Intro\nA) Go left\nThe path splits again\nB) Go right")

	assert.Equal(t, "Intro", res.Story)
	require.Len(t, res.Choices, 3)
	assert.Equal(t, "The path splits again", res.Choices[1].Text)
	assert.Equal(t, "C", res.Choices[2].ID)
}

func TestParse_MarkerWithoutTextFallsBackToLine(t *testing.T) {
	res := Parse("Story\nA)\nB) Walk")

	require.Len(t, res.Choices, 2)
	assert.Equal(t, "A)", res.Choices[0].Text)
	assert.Equal(t, "Walk", res.Choices[1].Text)
}

func TestParse_ChoiceHeadingVariants(t *testing.T) {
	for _, heading := range []string{"New choices", "**NEW CHOICES:**", "Yeni Seçenekler:", "YENİ SEÇENEKLER", "## New Choices"} {
		res := Parse("The river roars.\n" + heading + "\nA) Swim")
		assert.Equal(t, "The river roars.", res.Story, heading)
	}

	// heading is kept when no choices follow
	res := Parse("The river roars.\nNew choices")
	assert.Equal(t, "The river roars. New choices", res.Story)
}

func TestParse_FallbackToRawText(t *testing.T) {
	res := Parse("  **  ")
	assert.Equal(t, "**", res.Story)
	assert.Empty(t, res.Choices)

	res = Parse("")
	assert.True(t, res.Empty())
}

func TestParse_OnlyChoices(t *testing.T) {
	res := Parse("A) One\nB) Two")
	assert.Equal(t, "", res.Story)
	assert.Len(t, res.Choices, 2)
}

func TestParse_NeverEmptyForNonEmptyInput(t *testing.T) {
	inputs := []string{
		"x",
		"A)",
		")",
		"...",
		"*",
		"1.",
		"(Strength DC15)",
		"\n\n  hello \n",
		"ü) ünicode",
		strings.Repeat("A) a\n", 40),
		"İ. dotted",
	}

	for _, in := range inputs {
		res := Parse(in)
		assert.False(t, res.Empty(), "input %q", in)
	}
}

func TestChoiceID(t *testing.T) {
	assert.Equal(t, "A", choiceID(0))
	assert.Equal(t, "Z", choiceID(25))
	assert.Equal(t, "AA", choiceID(26))
	assert.Equal(t, "AB", choiceID(27))
}
