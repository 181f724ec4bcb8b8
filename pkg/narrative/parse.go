// Package narrative turns free-form model output into story text and a choice list.
package narrative

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/state"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Result is the structured form of a completion.
type Result struct {
	Story   string         `json:"text"`
	Choices []state.Choice `json:"choices"`
}

// Empty reports whether nothing was extracted.
func (r Result) Empty() bool {
	return r.Story == "" && len(r.Choices) == 0
}

// annotationPattern matches a trailing "(Strength DC15)" style marker.
// The stat word is validated separately against the alias table.
var annotationPattern = regexp.MustCompile(`\s*\((\p{L}+)\s+(?i:dc)\s*(\d+)\.?\)\.?\s*$`)

// choiceHeadings are dropped when they end the story block.
var choiceHeadings = []string{"new choices", "yeni seçenekler"}

var (
	lowerGeneric = cases.Lower(language.Und)
	lowerTurkish = cases.Lower(language.Turkish)
)

// Parse extracts the story and choices from raw. It never fails: when nothing
// structured is found, the trimmed input becomes the story.
func Parse(raw string) Result {
	var storyLines, choiceLines []string
	inChoices := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !inChoices && isChoiceLine(line) {
			inChoices = true
		}
		if inChoices {
			choiceLines = append(choiceLines, line)
		} else {
			storyLines = append(storyLines, line)
		}
	}

	if len(storyLines) > 0 && len(choiceLines) > 0 && isChoiceHeading(storyLines[len(storyLines)-1]) {
		storyLines = storyLines[:len(storyLines)-1]
	}

	res := Result{
		Story:   strings.Join(storyLines, " "),
		Choices: make([]state.Choice, 0, len(choiceLines)),
	}

	for _, line := range choiceLines {
		text := choiceText(line)
		if text == "" {
			continue
		}
		c := state.Choice{ID: choiceID(len(res.Choices))}
		c.Text, c.Gate = extractGate(text)
		res.Choices = append(res.Choices, c)
	}

	if res.Empty() {
		res.Story = strings.TrimSpace(raw)
	}
	return res
}

// isChoiceLine reports whether line starts with a marker such as "A)", "2." or "**B)".
func isChoiceLine(line string) bool {
	check := strings.TrimLeft(line, " *")
	first, size := utf8.DecodeRuneInString(check)
	if size == 0 || !(unicode.IsLetter(first) || unicode.IsDigit(first)) {
		return false
	}
	second, size2 := utf8.DecodeRuneInString(check[size:])
	return size2 > 0 && (second == ')' || second == '.')
}

func isChoiceHeading(line string) bool {
	for _, norm := range []string{lowerGeneric.String(line), lowerTurkish.String(line)} {
		norm = strings.NewReplacer("*", "", ":", "", "#", "").Replace(norm)
		norm = strings.TrimSpace(norm)
		for _, h := range choiceHeadings {
			if norm == h {
				return true
			}
		}
	}
	return false
}

// choiceText returns the display text after the first ")" or ".".
func choiceText(line string) string {
	text := ""
	if idx := strings.IndexAny(line, ")."); idx >= 0 {
		text = stripEmphasis(line[idx+1:])
	}
	if text == "" {
		text = stripEmphasis(line)
	}
	return text
}

func stripEmphasis(s string) string {
	return strings.Trim(s, " \t*")
}

// extractGate strips a trailing skill-check annotation and returns the gate it names.
func extractGate(text string) (string, *state.Gate) {
	m := annotationPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return text, nil
	}
	stat, ok := skillcheck.ParseStat(text[m[2]:m[3]])
	if !ok {
		return text, nil
	}
	dc, err := strconv.Atoi(text[m[4]:m[5]])
	if err != nil {
		return text, nil
	}
	display := stripEmphasis(text[:m[0]])
	if display == "" {
		display = text
	}
	return display, &state.Gate{Stat: stat, Difficulty: dc}
}

// choiceID maps 0, 1, 2... to A, B, C..., continuing with AA, AB after Z.
func choiceID(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return choiceID(i/26-1) + string(rune('A'+i%26))
}
