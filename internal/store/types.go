package store

import (
	"errors"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/assertion"
)

// ErrRunNotFound is returned by ReadRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is a scenario run to persist.
type RunRecord struct {
	Scenario    string
	TracePath   string
	TraceDigest string
	Passed      bool
	Checks      []CheckRecord
	Errors      []ErrorRecord
}

// Run is a stored run summary.
type Run struct {
	ID          string `json:"id"`
	Seq         int64  `json:"seq"`
	Scenario    string `json:"scenario"`
	TracePath   string `json:"trace_path"`
	TraceDigest string `json:"trace_digest"`
	Passed      bool   `json:"passed"`
}

// CheckRecord is one evaluated check of a run.
type CheckRecord struct {
	Index     int    `json:"index"`
	Timestamp int64  `json:"timestamp"`
	Assertion string `json:"assertion"`
	Target    string `json:"target"`
	Expect    string `json:"expect"`
	Passed    bool   `json:"passed"`
	OK        bool   `json:"ok"`
	Message   string `json:"message"`
}

// ErrorRecord is one failed predicate of a run.
type ErrorRecord struct {
	Index     int             `json:"index"`
	Timestamp int64           `json:"timestamp"`
	Error     assertion.Error `json:"error"`
}
