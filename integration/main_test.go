//go:build integration

package integration

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/adventure-engine/integration/runner"
)

var caseFlag = flag.String("case", "", "Name of test case to run (from integration/cases/)")
var errFlag = flag.String("err", "continue", "Error handling mode: 'continue' (run all steps) or 'exit' (stop on first failure)")
var runsFlag = flag.Int("runs", 1, "Number of times to run each suite (model output varies between runs)")
var worldFlag = flag.String("world", "", "Override the world for all test cases")

func TestMain(m *testing.M) {
	flag.Parse()
	fmt.Printf("Running Adventure Engine Integration Tests\n")
	fmt.Printf("   API Base URL: %s\n", apiBaseURL())
	os.Exit(m.Run())
}

func TestIntegrationSuites(t *testing.T) {
	if *errFlag != string(runner.ErrorHandlingExit) && *errFlag != string(runner.ErrorHandlingContinue) {
		t.Fatalf("Invalid -err flag value: %s (must be 'exit' or 'continue')", *errFlag)
	}
	if *runsFlag < 1 {
		t.Fatalf("Number of runs must be >= 1, got: %d", *runsFlag)
	}

	files, err := selectCaseFiles("cases", *caseFlag)
	if err != nil {
		t.Fatalf("Failed to find test cases: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("No test files found in cases directory")
	}

	var jobs []runner.TestJob
	for _, file := range files {
		expanded, err := runner.LoadTestSuiteWithExpansion(file, "cases")
		if err != nil {
			t.Errorf("Failed to load test suite %s: %v", file, err)
			continue
		}
		jobs = append(jobs, expanded...)
	}

	r := runner.NewRunner(apiBaseURL())
	r.Client.Timeout = time.Duration(getIntEnv("TEST_TIMEOUT_SECONDS", 240)) * time.Second
	r.ErrorHandlingMode = runner.ErrorHandlingMode(*errFlag)
	r.WorldOverride = *worldFlag
	r.Logger = func(format string, args ...any) {
		fmt.Printf(format+"\n", args...)
	}

	passes, failures := 0, 0
	for run := 1; run <= *runsFlag; run++ {
		for _, job := range jobs {
			name := job.Name
			if *runsFlag > 1 {
				name = fmt.Sprintf("%s/run_%d", job.Name, run)
			}
			t.Run(name, func(t *testing.T) {
				result, err := r.RunSuite(context.Background(), job.Suite)
				for _, step := range result.Results {
					if step.Success {
						passes++
					} else {
						failures++
					}
				}
				if err != nil {
					t.Errorf("%s (session %s): %v", job.Name, result.SessionID, err)
				}
			})
		}
	}

	t.Logf("Steps passed: %d, failed: %d", passes, failures)
}

func apiBaseURL() string {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// selectCaseFiles returns the named cases, or every case in dir when names is empty.
func selectCaseFiles(dir, names string) ([]string, error) {
	if names == "" {
		return filepath.Glob(filepath.Join(dir, "*.yaml"))
	}
	var files []string
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !strings.HasSuffix(name, ".yaml") {
			name += ".yaml"
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

func getIntEnv(name string, defaultValue int) int {
	val, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return defaultValue
	}
	return val
}
