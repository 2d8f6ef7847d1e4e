package harness

import "github.com/PixelDust-Twelve/android-platform-testing/internal/assertion"

// CheckOutcome is the evaluation of one scenario check.
type CheckOutcome struct {
	Index     int    `json:"index"`
	Timestamp int64  `json:"timestamp"`
	Assert    string `json:"assert"`
	Window    string `json:"window"`
	Expect    string `json:"expect"`

	// Passed is the predicate outcome. OK reports whether it met Expect.
	Passed  bool   `json:"passed"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`

	// Error is set when the predicate ran and failed.
	Error *assertion.Error `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string `json:"scenario"`

	// Pass is true when every check met its expectation.
	Pass bool `json:"pass"`

	Checks []CheckOutcome `json:"checks"`

	// Errors holds one line per check that did not meet its expectation.
	Errors []string `json:"errors,omitempty"`

	// Failures are the assertion errors of every failed predicate, in
	// check order.
	Failures []assertion.Error `json:"failures,omitempty"`

	TracePath   string `json:"trace_path"`
	TraceDigest string `json:"trace_digest"`
}

// NewResult creates a passing result with no checks.
func NewResult(name string) *Result {
	return &Result{
		Scenario: name,
		Pass:     true,
		Checks:   []CheckOutcome{},
		Errors:   []string{},
		Failures: []assertion.Error{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
