// Package textfilter softens profanity in generated narration for family-rated worlds.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Content ratings a world may declare.
const (
	RatingG    = "G"
	RatingPG   = "PG"
	RatingPG13 = "PG-13"
	RatingR    = "R"
)

const censored = "[censored]"

// replacements pairs each filtered word with its family-friendly stand-in.
// Multi-word and compound entries come before their parts.
var replacements = [][2]string{
	{"motherfucker", "mother-trucker"},
	{"jesus christ", "jeez"},
	{"goddamn", "gosh-dang"},
	{"bullshit", "baloney"},
	{"horseshit", "nonsense"},
	{"dipshit", "dummy"},
	{"shithead", "jerk"},
	{"dickhead", "jerk"},
	{"douchebag", "jerk"},
	{"asshole", "jerk"},
	{"dumbass", "dummy"},
	{"jackass", "jerk"},
	{"smartass", "smarty"},
	{"badass", "tough"},
	{"fuck", "fudge"},
	{"shit", "shoot"},
	{"damn", "dang"},
	{"hell", "heck"},
	{"ass", "butt"},
	{"bitch", "jerk"},
	{"bastard", "jerk"},
	{"crap", "crud"},
	{"piss", "ticked"},
	{"dick", "jerk"},
	{"prick", "jerk"},
	{"douche", "jerk"},
	{"christ", "crikey"},
	{"cock", censored},
	{"pussy", censored},
	{"tits", censored},
	{"boobs", censored},
	{"whore", censored},
	{"slut", censored},
	{"fag", censored},
	{"retard", censored},
	{"nigger", censored},
	{"nigga", censored},
	{"spic", censored},
	{"chink", censored},
	{"kike", censored},
}

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// Filter replaces profanity while keeping the case shape of what it replaces.
type Filter struct {
	rules []rule
}

func New() *Filter {
	f := &Filter{rules: make([]rule, 0, len(replacements))}
	for _, r := range replacements {
		f.rules = append(f.rules, rule{
			re:          regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(r[0]) + `\b`),
			replacement: r[1],
		})
	}
	return f
}

// Clean returns text with every filtered word replaced.
func (f *Filter) Clean(text string) string {
	for _, r := range f.rules {
		text = r.re.ReplaceAllStringFunc(text, func(match string) string {
			return matchCase(match, r.replacement)
		})
	}
	return text
}

// Contains reports whether text has anything Clean would replace.
func (f *Filter) Contains(text string) bool {
	for _, r := range f.rules {
		if r.re.MatchString(text) {
			return true
		}
	}
	return false
}

func normalizeRating(rating string) string {
	rating = strings.ToUpper(strings.TrimSpace(rating))
	if rating == "PG13" {
		return RatingPG13
	}
	return rating
}

// AppliesTo reports whether narration for a world with this rating should be cleaned.
func AppliesTo(rating string) bool {
	switch normalizeRating(rating) {
	case RatingG, RatingPG, RatingPG13:
		return true
	default:
		return false
	}
}

// KnownRating reports whether rating is one of the supported ratings.
func KnownRating(rating string) bool {
	switch normalizeRating(rating) {
	case RatingG, RatingPG, RatingPG13, RatingR:
		return true
	default:
		return false
	}
}

// matchCase gives replacement the case pattern of original.
func matchCase(original, replacement string) string {
	if replacement == censored || original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return replacement
	}

	title := cases.Title(language.English)
	if title.String(strings.ToLower(original)) == original {
		return title.String(replacement)
	}

	orig := []rune(original)
	out := []rune(replacement)
	for i, r := range out {
		if i < len(orig) && unicode.IsUpper(orig[i]) {
			out[i] = unicode.ToUpper(r)
		} else {
			out[i] = unicode.ToLower(r)
		}
	}
	return string(out)
}
