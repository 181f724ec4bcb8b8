package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/adventure-engine/pkg/state"
	"github.com/jwebster45206/adventure-engine/pkg/turn"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted suites against a running adventure-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	WorldOverride     string // If set, replaces the world of every suite
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 4 * time.Minute},
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a YAML file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse YAML in %s: %w", filename, err)
	}
	return suite, nil
}

// LoadTestSuiteWithExpansion loads a suite and, for sequences, every case it references.
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		subJobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, caseFile), casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}
	return jobs, nil
}

// RunSuite starts a fresh game and plays every step of the suite.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	worldID := suite.World
	if r.WorldOverride != "" {
		worldID = r.WorldOverride
	}

	opening, err := r.startGame(ctx, turn.StartRequest{
		PlayerName: suite.PlayerName,
		WorldID:    worldID,
		ClassID:    suite.Class,
	})
	if err != nil {
		result.Error = fmt.Errorf("failed to start game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.SessionID = opening.SessionID

	if err := checkStart(suite.Start, opening); err != nil {
		result.Error = fmt.Errorf("opening check failed: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, opening.SessionID, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	req := turn.ChoiceRequest{SessionID: sessionID, ChoiceID: step.Choice, ChoiceText: step.Action}
	if req.ChoiceID == "" {
		req.ChoiceID = state.CustomActionID
	}

	resp, err := r.makeChoice(ctx, req)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}
	result.ResponseText = resp.Text

	var session *state.Session
	if step.Expectations.needsSession() {
		session, err = r.getSession(ctx, sessionID)
		if err != nil {
			result.Error = fmt.Errorf("failed to read session: %w", err)
			result.Duration = time.Since(start)
			return result
		}
	}

	if err := checkExpectations(step.Expectations, resp, session); err != nil {
		result.Error = err
	} else {
		result.Success = true
	}
	result.Duration = time.Since(start)
	return result
}

func (exp Expectations) needsSession() bool {
	return exp.HistoryLength != nil || exp.Health != nil || exp.Location != nil
}

func checkStart(c StartCheck, resp *turn.StartResponse) error {
	if c.Class != "" && resp.Card.Class != c.Class {
		return fmt.Errorf("expected class %q, got %q", c.Class, resp.Card.Class)
	}
	if c.Choices != nil && len(resp.Choices) != *c.Choices {
		return fmt.Errorf("expected %d opening choices, got %d", *c.Choices, len(resp.Choices))
	}
	lower := strings.ToLower(resp.Text)
	for _, want := range c.Contains {
		if !strings.Contains(lower, strings.ToLower(want)) {
			return fmt.Errorf("expected opening to contain '%s', but it didn't", want)
		}
	}
	return nil
}

// checkExpectations validates a turn response and, when read, the session after it
func checkExpectations(exp Expectations, resp *turn.Response, session *state.Session) error {
	responseText := resp.Text
	lowerResponse := strings.ToLower(responseText)

	for _, expectedText := range exp.ResponseContains {
		if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected response to contain '%s', but it didn't", expectedText)
		}
	}
	for _, unexpectedText := range exp.ResponseNotContains {
		if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	if exp.ResponseMinLength != nil && len(responseText) < *exp.ResponseMinLength {
		return fmt.Errorf("expected response length >= %d, got %d", *exp.ResponseMinLength, len(responseText))
	}
	if exp.ResponseMaxLength != nil && len(responseText) > *exp.ResponseMaxLength {
		return fmt.Errorf("expected response length <= %d, got %d", *exp.ResponseMaxLength, len(responseText))
	}
	if exp.MinChoices != nil && len(resp.Choices) < *exp.MinChoices {
		return fmt.Errorf("expected at least %d choices, got %d", *exp.MinChoices, len(resp.Choices))
	}

	if exp.SkillCheck != nil && (resp.SkillCheck != nil) != *exp.SkillCheck {
		return fmt.Errorf("expected skill check %t, got %t", *exp.SkillCheck, resp.SkillCheck != nil)
	}
	if exp.Degraded != nil && resp.Degraded != *exp.Degraded {
		return fmt.Errorf("expected degraded %t, got %t", *exp.Degraded, resp.Degraded)
	}

	if session == nil {
		return nil
	}
	if exp.HistoryLength != nil && len(session.History) != *exp.HistoryLength {
		return fmt.Errorf("expected %d history events, got %d", *exp.HistoryLength, len(session.History))
	}
	if exp.Health != nil && session.Health != *exp.Health {
		return fmt.Errorf("expected health %d, got %d", *exp.Health, session.Health)
	}
	if exp.Location != nil && session.Location != *exp.Location {
		return fmt.Errorf("expected location %s, got %s", *exp.Location, session.Location)
	}
	return nil
}

func (r *Runner) startGame(ctx context.Context, req turn.StartRequest) (*turn.StartResponse, error) {
	var out turn.StartResponse
	if err := r.call(ctx, http.MethodPost, "/api/v1/start_game", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Runner) makeChoice(ctx context.Context, req turn.ChoiceRequest) (*turn.Response, error) {
	var out turn.Response
	if err := r.call(ctx, http.MethodPost, "/api/v1/make_choice", req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Runner) getSession(ctx context.Context, id uuid.UUID) (*state.Session, error) {
	var out state.Session
	if err := r.call(ctx, http.MethodGet, "/api/v1/sessions/"+id.String(), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Runner) call(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Printf("Warning: failed to close response body: %v", closeErr)
		}
	}()

	if resp.StatusCode != wantStatus {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s returned status %d: %s", method, path, resp.StatusCode, string(data))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
