package runner

import (
	"time"

	"github.com/google/uuid"
)

// TestSuite is one scripted playthrough, or a sequence of other case files.
type TestSuite struct {
	Name       string     `yaml:"name"`
	World      string     `yaml:"world,omitempty"`
	Class      string     `yaml:"class,omitempty"`
	PlayerName string     `yaml:"player_name,omitempty"`
	Start      StartCheck `yaml:"start,omitempty"`
	Steps      []TestStep `yaml:"steps,omitempty"`
	Cases      []string   `yaml:"cases,omitempty"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// StartCheck describes the expected opening of a game.
type StartCheck struct {
	Class    string   `yaml:"class,omitempty"`
	Choices  *int     `yaml:"choices,omitempty"`
	Contains []string `yaml:"contains,omitempty"`
}

// TestStep submits one choice and checks the turn.
// Choice is a choice id from the previous turn; an empty Choice sends Action as a custom action.
type TestStep struct {
	Name         string       `yaml:"name,omitempty"`
	Choice       string       `yaml:"choice,omitempty"`
	Action       string       `yaml:"action,omitempty"`
	Expectations Expectations `yaml:"expect"`
}

// Expectations defines what to check after a step executes
type Expectations struct {
	// Response analysis
	ResponseContains    []string `yaml:"response_contains,omitempty"`
	ResponseNotContains []string `yaml:"response_not_contains,omitempty"`
	ResponseRegex       string   `yaml:"response_regex,omitempty"`
	ResponseMinLength   *int     `yaml:"response_min_length,omitempty"`
	ResponseMaxLength   *int     `yaml:"response_max_length,omitempty"`
	MinChoices          *int     `yaml:"min_choices,omitempty"`

	SkillCheck *bool `yaml:"skill_check,omitempty"`
	Degraded   *bool `yaml:"degraded,omitempty"`

	// Session state read back after the turn
	HistoryLength *int    `yaml:"history_length,omitempty"`
	Health        *int    `yaml:"health,omitempty"`
	Location      *string `yaml:"location,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	SessionID uuid.UUID
}
