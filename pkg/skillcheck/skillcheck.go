// Package skillcheck resolves d20 attribute checks against a difficulty class.
package skillcheck

import (
	"fmt"

	"github.com/KirkDiggler/rpg-toolkit/dice"
)

// Outcome is the four-way result of a check.
type Outcome string

const (
	CriticalSuccess Outcome = "CRITICAL_SUCCESS"
	Success         Outcome = "SUCCESS"
	Failure         Outcome = "FAILURE"
	CriticalFailure Outcome = "CRITICAL_FAILURE"
)

// Label returns the human wording used in prompts and the console.
func (o Outcome) Label() string {
	switch o {
	case CriticalSuccess:
		return "critical success"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case CriticalFailure:
		return "critical failure"
	default:
		return string(o)
	}
}

// Result describes one resolved check.
type Result struct {
	Stat       Stat    `json:"stat_checked"`
	Difficulty int     `json:"dc"`
	Roll       int     `json:"roll"`
	Modifier   int     `json:"modifier"`
	Total      int     `json:"total_roll"`
	Outcome    Outcome `json:"outcome"`
}

// ScoreSource supplies attribute scores for a character.
type ScoreSource interface {
	Score(stat Stat) int
}

// Modifier converts an attribute score into its roll modifier, rounding toward negative infinity.
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return -((-diff + 1) / 2)
	}
	return diff / 2
}

// Evaluate classifies a natural roll. Natural 20 and natural 1 override the total.
func Evaluate(roll, modifier, difficulty int) Outcome {
	switch {
	case roll == 20:
		return CriticalSuccess
	case roll == 1:
		return CriticalFailure
	case roll+modifier >= difficulty:
		return Success
	default:
		return Failure
	}
}

// Resolve rolls one d20 for the given score. A nil roller uses dice.DefaultRoller.
func Resolve(stat Stat, score, difficulty int, roller dice.Roller) (Result, error) {
	if roller == nil {
		roller = dice.DefaultRoller
	}

	roll, err := roller.Roll(20)
	if err != nil {
		return Result{}, fmt.Errorf("failed to roll d20: %w", err)
	}
	if roll < 1 || roll > 20 {
		return Result{}, fmt.Errorf("d20 roll out of range: %d", roll)
	}

	mod := Modifier(score)
	return Result{
		Stat:       stat,
		Difficulty: difficulty,
		Roll:       roll,
		Modifier:   mod,
		Total:      roll + mod,
		Outcome:    Evaluate(roll, mod, difficulty),
	}, nil
}

// Check looks up the stat on src, falling back to NeutralScore, and resolves it.
func Check(stat Stat, src ScoreSource, difficulty int, roller dice.Roller) (Result, error) {
	score := NeutralScore
	if src != nil {
		score = src.Score(stat)
	}
	return Resolve(stat, score, difficulty, roller)
}
