package runner

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwebster45206/adventure-engine/internal/game"
	"github.com/jwebster45206/adventure-engine/internal/handlers"
	"github.com/jwebster45206/adventure-engine/internal/services"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/skillcheck"
	"github.com/jwebster45206/adventure-engine/pkg/turn"
	"github.com/jwebster45206/adventure-engine/pkg/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wolvesReply = "Wolves howl beyond the ridge.\nA) Run (Dexterity DC12)\nB) Hide"

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog, err := world.Default()
	require.NoError(t, err)
	store := storage.NewMockStorage()
	gw := services.NewGateway([]services.Completer{services.NewMockCompleter("mock-model", wolvesReply)}, time.Second, logger)
	engine := game.NewEngine(store, storage.NewLocalLocker(), catalog, gw, skillcheck.NewMockRoller(15), logger)

	srv := httptest.NewServer(handlers.NewRouter(engine, catalog, store, gw, logger))
	t.Cleanup(srv.Close)
	return srv
}

func writeCase(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const playthrough = `
name: ashen legion basics
world: dark_fantasy
class: ashen_legion
start:
  class: Ashen Legion
  choices: 3
  contains: [castle]
steps:
  - name: plain choice
    choice: A
    expect:
      min_choices: 2
      skill_check: false
      history_length: 2
  - name: gated choice
    choice: a
    expect:
      skill_check: true
      history_length: 4
      response_contains: [wolves]
  - name: custom action
    action: I whistle a marching song
    expect:
      response_not_contains: [error]
      history_length: 5
      health: 100
`

func TestRunSuite_Playthrough(t *testing.T) {
	srv := newTestAPI(t)
	path := writeCase(t, t.TempDir(), "basics.yaml", playthrough)

	suite, err := LoadTestSuite(path)
	require.NoError(t, err)

	r := NewRunner(srv.URL + "/")
	result, err := r.RunSuite(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, result.Results, 3)
	for _, step := range result.Results {
		assert.True(t, step.Success, step.StepName)
	}
	assert.NotEmpty(t, result.SessionID)
}

func TestRunSuite_ReportsFailedStep(t *testing.T) {
	srv := newTestAPI(t)
	r := NewRunner(srv.URL)
	r.ErrorHandlingMode = ErrorHandlingExit

	want := 99
	suite := TestSuite{
		Name:  "wrong history",
		World: "dark_fantasy",
		Steps: []TestStep{
			{Name: "first", Choice: "A", Expectations: Expectations{HistoryLength: &want}},
			{Name: "never runs", Choice: "B"},
		},
	}

	result, err := r.RunSuite(context.Background(), suite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 99 history events")
	assert.Len(t, result.Results, 1)
}

func TestRunSuite_UnknownWorld(t *testing.T) {
	srv := newTestAPI(t)
	r := NewRunner(srv.URL)
	r.WorldOverride = "atlantis"

	_, err := r.RunSuite(context.Background(), TestSuite{Name: "x", World: "dark_fantasy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestLoadTestSuiteWithExpansion(t *testing.T) {
	dir := t.TempDir()
	writeCase(t, dir, "basics.yaml", playthrough)
	writeCase(t, dir, "inner.yaml", "name: inner\ncases: [basics.yaml]\n")
	seq := writeCase(t, dir, "all.yaml", "name: all\ncases: [inner.yaml, basics.yaml]\n")

	jobs, err := LoadTestSuiteWithExpansion(seq, dir)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "ashen legion basics", jobs[0].Name)

	writeCase(t, dir, "broken.yaml", "name: broken\ncases: [missing.yaml]\n")
	_, err = LoadTestSuiteWithExpansion(filepath.Join(dir, "broken.yaml"), dir)
	assert.Error(t, err)
}

func TestLoadTestSuite_RejectsUnknownFields(t *testing.T) {
	path := writeCase(t, t.TempDir(), "bad.yaml", "name: bad\nscenario: pirate.json\n")
	_, err := LoadTestSuite(path)
	assert.Error(t, err)
}

func TestCheckExpectations(t *testing.T) {
	yes, no := true, false
	minLen, maxLen, choices := 5, 10, 3
	resp := &turn.Response{Text: "A cold wind"}

	tests := []struct {
		name    string
		exp     Expectations
		wantErr string
	}{
		{"contains is case insensitive", Expectations{ResponseContains: []string{"COLD"}}, ""},
		{"missing text", Expectations{ResponseContains: []string{"fire"}}, "contain 'fire'"},
		{"forbidden text", Expectations{ResponseNotContains: []string{"wind"}}, "NOT contain"},
		{"regex", Expectations{ResponseRegex: `^A \w+`}, ""},
		{"bad regex", Expectations{ResponseRegex: `(`}, "invalid regex"},
		{"min length", Expectations{ResponseMinLength: &minLen}, ""},
		{"max length", Expectations{ResponseMaxLength: &maxLen}, "length <= 10"},
		{"choices", Expectations{MinChoices: &choices}, "at least 3 choices"},
		{"skill check", Expectations{SkillCheck: &yes}, "expected skill check true"},
		{"not degraded", Expectations{Degraded: &no}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkExpectations(tt.exp, resp, nil)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
