package skillcheck

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stat is one of the six canonical character attributes.
type Stat string

const (
	Strength     Stat = "strength"
	Dexterity    Stat = "dexterity"
	Constitution Stat = "constitution"
	Intelligence Stat = "intelligence"
	Wisdom       Stat = "wisdom"
	Charisma     Stat = "charisma"
)

// NeutralScore is used for any attribute a character does not have.
const NeutralScore = 10

// Stats lists the canonical attributes in display order.
var Stats = []Stat{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// aliases maps lowercased display names (English and Turkish) to canonical stats.
var aliases = map[string]Stat{
	"strength":     Strength,
	"dexterity":    Dexterity,
	"constitution": Constitution,
	"intelligence": Intelligence,
	"wisdom":       Wisdom,
	"charisma":     Charisma,

	"güç":          Strength,
	"çeviklik":     Dexterity,
	"dayanıklılık": Constitution,
	"zeka":         Intelligence,
	"bilgelik":     Wisdom,
	"karizma":      Charisma,

	// ASCII-folded spellings some models emit
	"guc":          Strength,
	"ceviklik":     Dexterity,
	"dayaniklilik": Constitution,
}

var (
	lowerGeneric = cases.Lower(language.Und)
	lowerTurkish = cases.Lower(language.Turkish)
)

// ParseStat normalizes a stat name in any supported language to its canonical form.
// Matching is case-insensitive, including Turkish dotted and dotless I.
func ParseStat(name string) (Stat, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	if s, ok := aliases[lowerGeneric.String(name)]; ok {
		return s, true
	}
	if s, ok := aliases[lowerTurkish.String(name)]; ok {
		return s, true
	}
	return "", false
}

// Valid reports whether s is one of the canonical stats.
func (s Stat) Valid() bool {
	for _, c := range Stats {
		if s == c {
			return true
		}
	}
	return false
}

// Title returns the capitalized display name, e.g. "Strength".
func (s Stat) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
