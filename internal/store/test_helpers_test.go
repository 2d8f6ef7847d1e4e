package store

import (
	"path/filepath"
	"testing"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/assertion"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/testutil"
)

// createTestStore opens a store in a temp dir with sequential run ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDGenerator("run")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun builds a run with one passing and one failing check.
func createTestRun(scenario string, passed bool) RunRecord {
	return RunRecord{
		Scenario:    scenario,
		TracePath:   "traces/" + scenario + ".yaml",
		TraceDigest: "digest-" + scenario,
		Passed:      passed,
		Checks: []CheckRecord{
			{
				Timestamp: 100,
				Assertion: assertion.NameIsAboveAppWindow,
				Target:    "StatusBar",
				Expect:    "pass",
				Passed:    true,
				OK:        true,
				Message:   "StatusBar is visible",
			},
			{
				Timestamp: 100,
				Assertion: assertion.NameCoversAtLeastRegion,
				Target:    "StatusBar",
				Expect:    "fail",
				Passed:    false,
				OK:        true,
				Message:   "StatusBar does not cover at least SkRegion((0,0,1441,171)). Uncovered region: SkRegion((1440,0,1441,171))",
			},
		},
		Errors: []ErrorRecord{
			{
				Timestamp: 100,
				Error: assertion.Error{
					Stacktrace:    "entry 100: Display 0 > WindowState StatusBar",
					Message:       "StatusBar does not cover at least SkRegion((0,0,1441,171)). Uncovered region: SkRegion((1440,0,1441,171))",
					LayerID:       7,
					WindowToken:   "a1b2c3",
					TaskID:        0,
					AssertionName: assertion.NameCoversAtLeastRegion,
				},
			},
		},
	}
}
