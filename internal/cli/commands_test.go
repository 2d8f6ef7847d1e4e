package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/harness"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/parser"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/snapshot"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/testutil"
)

type rawResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *CLIError       `json:"error"`
}

func decodeResponse(t *testing.T, out string) rawResponse {
	t.Helper()
	var resp rawResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

func ts(v int64) string {
	return fmt.Sprintf("%d", v)
}

func TestEntriesCommand(t *testing.T) {
	trace := writeReferenceTrace(t, t.TempDir(), "ref.yaml", snapshot.FormatYAML)

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "entries", trace)
		require.NoError(t, err)
		assert.Contains(t, out, "3 entries")
		assert.Contains(t, out, ts(testutil.TSLauncher))
		assert.Contains(t, out, ts(testutil.TSChrome))
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "--format", "json", "entries", trace)
		require.NoError(t, err)

		resp := decodeResponse(t, out)
		var result EntriesResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		require.Len(t, result.Entries, 3)
		assert.Equal(t, testutil.TSLauncher, result.Entries[0].Timestamp)
		assert.Equal(t, testutil.LauncherWindow, result.Entries[0].FocusedWindow)
		assert.Equal(t, testutil.ChromeWindow, result.Entries[2].FocusedWindow)
		assert.Len(t, result.Digest, 64)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "entries", filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "trace file not found")
	})

	t.Run("dump mode rejects a trace", func(t *testing.T) {
		_, err := execute(t, "entries", trace, "--mode", "dump")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))

		var pe *parser.ParseError
		assert.ErrorAs(t, err, &pe)
	})
}

func TestDumpCommand(t *testing.T) {
	trace := writeReferenceTrace(t, t.TempDir(), "ref.yaml", snapshot.FormatYAML)

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "dump", trace, "--at", ts(testutil.TSLauncher))
		require.NoError(t, err)
		assert.Contains(t, out, "Entry "+ts(testutil.TSLauncher))
		assert.Contains(t, out, testutil.StatusBar)
		assert.Contains(t, out, testutil.LauncherWindow)
	})

	t.Run("json is the canonical entry", func(t *testing.T) {
		out, err := execute(t, "--format", "json", "dump", trace, "--at", ts(testutil.TSLauncher))
		require.NoError(t, err)

		parsed, err := harness.LoadTrace(trace, snapshot.FormatAuto, harness.ModeTrace, nil)
		require.NoError(t, err)
		entry, err := parsed.Entry(testutil.TSLauncher)
		require.NoError(t, err)
		want, err := harness.EntryJSON(entry)
		require.NoError(t, err)

		resp := decodeResponse(t, out)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, string(want), string(resp.Data))
	})

	t.Run("golden", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "wmtrace.yaml")
		goldenDir := filepath.Join(dir, "golden")
		require.NoError(t, os.WriteFile(cfgPath, []byte("golden:\n  dir: "+goldenDir+"\n"), 0o644))

		out, err := execute(t, "--config", cfgPath, "dump", trace, "--at", ts(testutil.TSLauncher), "--golden", "launcher")
		require.NoError(t, err)
		assert.Contains(t, out, "Wrote ")

		written, err := os.ReadFile(filepath.Join(goldenDir, "launcher.golden"))
		require.NoError(t, err)

		parsed, err := harness.LoadTrace(trace, snapshot.FormatAuto, harness.ModeTrace, nil)
		require.NoError(t, err)
		entry, err := parsed.Entry(testutil.TSLauncher)
		require.NoError(t, err)
		want, err := harness.EntryJSON(entry)
		require.NoError(t, err)
		assert.Equal(t, string(want), string(written))
	})

	t.Run("unknown timestamp", func(t *testing.T) {
		out, err := execute(t, "--format", "json", "dump", trace, "--at", "1")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))

		resp := decodeResponse(t, out)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeEntryNotFound, resp.Error.Code)
	})

	t.Run("at is required", func(t *testing.T) {
		_, err := execute(t, "dump", trace)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}

func TestCheckCommand(t *testing.T) {
	trace := writeReferenceTrace(t, t.TempDir(), "ref.yaml", snapshot.FormatYAML)
	at := ts(testutil.TSLauncher)

	t.Run("pass", func(t *testing.T) {
		out, err := execute(t, "check", trace, "--at", at, "is_above_app_window", testutil.StatusBar)
		require.NoError(t, err)
		assert.Contains(t, out, "PASS is_above_app_window(StatusBar)")
	})

	t.Run("fail", func(t *testing.T) {
		out, err := execute(t, "check", trace, "--at", at, "covers_at_least_region", testutil.StatusBar, "--region", "0,0,1441,171")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "FAIL covers_at_least_region(StatusBar)")
		assert.Contains(t, out, "Uncovered region: SkRegion((1440,0,1441,171))")
	})

	t.Run("fail json", func(t *testing.T) {
		out, err := execute(t, "--format", "json", "check", trace, "--at", at, "covers_at_least_region", testutil.StatusBar, "--region", "0,0,1441,171")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		resp := decodeResponse(t, out)
		assert.Equal(t, "ok", resp.Status)
		var result struct {
			Timestamp int64 `json:"timestamp"`
			Result    struct {
				Passed bool `json:"passed"`
			} `json:"result"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, testutil.TSLauncher, result.Timestamp)
		assert.False(t, result.Result.Passed)
	})

	t.Run("activity state", func(t *testing.T) {
		_, err := execute(t, "check", trace, "--at", ts(testutil.TSChrome), "has_activity_state", "ChromeTabbedActivity", "--state", "RESUMED")
		require.NoError(t, err)
	})

	t.Run("command errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
		}{
			{"unknown assertion", []string{"check", trace, "--at", at, "is_purple", testutil.StatusBar}},
			{"missing region", []string{"check", trace, "--at", at, "covers_at_most_region", testutil.StatusBar}},
			{"bad region", []string{"check", trace, "--at", at, "covers_at_most_region", testutil.StatusBar, "--region", "0,0,1"}},
			{"bad match", []string{"check", trace, "--at", at, "is_focused_window", testutil.StatusBar, "--match", "regex"}},
			{"unknown timestamp", []string{"check", trace, "--at", "7", "is_focused_window", testutil.StatusBar}},
			{"wrong arity", []string{"check", trace, "--at", at, "is_focused_window"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := execute(t, tt.args...)
				require.Error(t, err)
				assert.Equal(t, ExitCommandError, GetExitCode(err))
			})
		}
	})
}

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestTestAndReportCommands(t *testing.T) {
	dir := t.TempDir()
	trace := writeReferenceTrace(t, dir, "ref.winscope", snapshot.FormatProto)
	scenarios := filepath.Join(dir, "scenarios")
	require.NoError(t, os.Mkdir(scenarios, 0o755))

	writeScenario(t, scenarios, "a_pass.yaml", fmt.Sprintf(`name: launcher
trace: %s
checks:
  - at: %d
    assert: is_above_app_window
    window: StatusBar
  - at: %d
    assert: is_focused_window
    window: NexusLauncherActivity
`, trace, testutil.TSLauncher, testutil.TSLauncher))

	writeScenario(t, scenarios, "b_fail.yaml", fmt.Sprintf(`name: chrome
trace: %s
checks:
  - at: %d
    assert: is_app_window_visible
    window: NexusLauncherActivity
`, trace, testutil.TSChrome))

	db := filepath.Join(dir, "runs.db")

	out, err := execute(t, "--format", "json", "test", scenarios, "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result TestResult
	require.NoError(t, json.Unmarshal(decodeResponse(t, out).Data, &result))
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Scenarios, 2)
	assert.Equal(t, "launcher", result.Scenarios[0].Name)
	assert.True(t, result.Scenarios[0].Pass)
	assert.Equal(t, "chrome", result.Scenarios[1].Name)
	assert.False(t, result.Scenarios[1].Pass)
	assert.Equal(t, 1, result.Scenarios[1].Failures)
	require.NotEmpty(t, result.Scenarios[1].RunID)

	t.Run("filter", func(t *testing.T) {
		out, err := execute(t, "test", scenarios, "--filter", "a_*")
		require.NoError(t, err)
		assert.Contains(t, out, "✓ launcher (2 checks)")
		assert.Contains(t, out, "1 passed, 0 failed, 1 total")
	})

	t.Run("report lists runs", func(t *testing.T) {
		out, err := execute(t, "report", "--db", db)
		require.NoError(t, err)
		assert.Contains(t, out, "launcher")
		assert.Contains(t, out, "chrome")
		assert.Contains(t, out, "FAIL")
	})

	t.Run("report shows one run", func(t *testing.T) {
		out, err := execute(t, "--format", "json", "report", "--db", db, "--run", result.Scenarios[1].RunID)
		require.NoError(t, err)

		var report struct {
			Run struct {
				Scenario string `json:"scenario"`
			} `json:"run"`
			Checks []json.RawMessage `json:"checks"`
			Errors []json.RawMessage `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(decodeResponse(t, out).Data, &report))
		assert.Len(t, report.Checks, 1)
		assert.Len(t, report.Errors, 1)

		out, err = execute(t, "report", "--db", db, "--run", result.Scenarios[1].RunID)
		require.NoError(t, err)
		assert.Contains(t, out, "Assertion errors:")
	})

	t.Run("report unknown run", func(t *testing.T) {
		_, err := execute(t, "report", "--db", db, "--run", "missing")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "run not found")
	})
}

func TestTestCommandEdges(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := execute(t, "test", filepath.Join(t.TempDir(), "absent"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("no scenarios", func(t *testing.T) {
		out, err := execute(t, "test", t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, out, "No scenarios found.")
	})

	t.Run("invalid scenario fails", func(t *testing.T) {
		dir := t.TempDir()
		writeScenario(t, dir, "broken.yaml", "name: broken\nchecks: []\n")

		out, err := execute(t, "test", dir)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "failed to load scenario")
	})
}

func TestReportCommandNoDatabase(t *testing.T) {
	_, err := execute(t, "report")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	out, err := execute(t, "report", "--db", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	src := writeReferenceTrace(t, dir, "ref.yaml", snapshot.FormatYAML)
	bin := filepath.Join(dir, "ref.winscope")
	back := filepath.Join(dir, "back.yaml")

	out, err := execute(t, "--format", "json", "convert", src, bin)
	require.NoError(t, err)
	var result ConvertResult
	require.NoError(t, json.Unmarshal(decodeResponse(t, out).Data, &result))
	assert.Equal(t, "yaml", result.From)
	assert.Equal(t, "proto", result.To)
	assert.Equal(t, 3, result.Snapshots)

	out, err = execute(t, "convert", bin, back)
	require.NoError(t, err)
	assert.Contains(t, out, "Converted 3 snapshots")

	digest := func(path string) string {
		trace, err := harness.LoadTrace(path, snapshot.FormatAuto, harness.ModeTrace, nil)
		require.NoError(t, err)
		d, err := harness.TraceDigest(trace)
		require.NoError(t, err)
		return d
	}
	assert.Equal(t, digest(src), digest(bin))
	assert.Equal(t, digest(src), digest(back))

	t.Run("invalid input writes nothing", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("snapshots:\n  - timestamp: 1\n    containers:\n      - {id: 1, parent: 9, kind: Display}\n"), 0o644))
		out := filepath.Join(dir, "bad.winscope")

		_, err := execute(t, "convert", bad, out)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.NoFileExists(t, out)
	})

	t.Run("unknown output format", func(t *testing.T) {
		_, err := execute(t, "convert", src, filepath.Join(dir, "x.out"), "--to", "xml")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})
}
