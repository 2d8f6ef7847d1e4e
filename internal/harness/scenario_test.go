package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/statusbar.yaml")
	require.NoError(t, err)

	assert.Equal(t, "statusbar", s.Name)
	assert.Equal(t, ModeTrace, s.Mode)
	assert.Equal(t, "auto", s.Format)
	assert.Equal(t, filepath.Join("testdata", "traces", "statusbar.yaml"), s.TracePath())
	require.Len(t, s.Checks, 6)

	assert.Equal(t, int64(100), s.Checks[0].At)
	assert.Equal(t, ExpectPass, s.Checks[0].Expect)
	assert.Equal(t, ExpectFail, s.Checks[2].Expect)
	assert.Equal(t, [][]int{{0, 0, 1441, 171}}, s.Checks[2].Region)
	assert.Equal(t, "NexusLauncherActivity", s.Checks[5].Below)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenarioAbsoluteTrace(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: abs
trace: /var/traces/a.pb
checks:
  - {at: 1, assert: is_focused_window, window: StatusBar}
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/traces/a.pb", s.TracePath())
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "empty",
			doc:  "",
			want: "empty document",
		},
		{
			name: "unknown field",
			doc: `
name: x
trace: t.yaml
checkz: []
`,
			want: "failed to parse YAML",
		},
		{
			name: "unknown check field",
			doc: `
name: x
trace: t.yaml
checks:
  - {at: 1, assert: is_focused_window, window: A, wnidow: B}
`,
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			doc: `
trace: t.yaml
checks:
  - {at: 1, assert: is_focused_window, window: A}
`,
			want: "invalid scenario",
		},
		{
			name: "missing trace",
			doc: `
name: x
checks:
  - {at: 1, assert: is_focused_window, window: A}
`,
			want: "invalid scenario",
		},
		{
			name: "no checks",
			doc: `
name: x
trace: t.yaml
checks: []
`,
			want: "invalid scenario",
		},
		{
			name: "unknown assertion",
			doc: `
name: x
trace: t.yaml
checks:
  - {at: 1, assert: is_purple, window: A}
`,
			want: "invalid scenario",
		},
		{
			name: "bad mode",
			doc: `
name: x
trace: t.yaml
mode: stream
checks:
  - {at: 1, assert: is_focused_window, window: A}
`,
			want: "invalid scenario",
		},
		{
			name: "bad expect",
			doc: `
name: x
trace: t.yaml
checks:
  - {at: 1, assert: is_focused_window, window: A, expect: maybe}
`,
			want: "invalid scenario",
		},
		{
			name: "bad match",
			doc: `
name: x
trace: t.yaml
checks:
  - {at: 1, assert: is_focused_window, window: A, match: fuzzy}
`,
			want: "invalid scenario",
		},
		{
			name: "short region",
			doc: `
name: x
trace: t.yaml
checks:
  - {at: 1, assert: covers_at_least_region, window: A, region: [[0, 0, 10]]}
`,
			want: "invalid scenario",
		},
		{
			name: "missing region",
			doc: `
name: x
trace: t.yaml
checks:
  - {at: 1, assert: covers_at_most_region, window: A}
`,
			want: "region is required",
		},
		{
			name: "missing below",
			doc: `
name: x
trace: t.yaml
checks:
  - {at: 1, assert: is_window_above, window: A}
`,
			want: "below is required",
		},
		{
			name: "missing state",
			doc: `
name: x
trace: t.yaml
checks:
  - {at: 1, assert: has_activity_state, window: A}
`,
			want: "state is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchemaErrorType(t *testing.T) {
	err := validateDocument(map[string]any{
		"name":   "x",
		"trace":  "t.yaml",
		"checks": []any{map[string]any{"at": 1, "assert": "is_purple", "window": "A"}},
	})
	require.Error(t, err)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.NotEmpty(t, se.Message)
}
