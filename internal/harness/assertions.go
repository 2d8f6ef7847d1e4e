package harness

import (
	"fmt"
	"strings"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/assertion"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// CheckError is a check that could not be evaluated, as opposed to one whose
// predicate failed.
type CheckError struct {
	Index     int
	Timestamp int64
	Err       error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("checks[%d] at %d: %v", e.Index, e.Timestamp, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// toAssertionCheck converts a scenario check into its predicate call.
func toAssertionCheck(c Check) (assertion.Check, error) {
	r, err := c.region()
	if err != nil {
		return assertion.Check{}, err
	}
	m, err := assertion.ParseMatch(c.Match)
	if err != nil {
		return assertion.Check{}, err
	}
	return assertion.Check{
		Assert: c.Assert,
		Window: c.Window,
		Region: r,
		Below:  c.Below,
		State:  c.State,
		Match:  m,
	}, nil
}

// evaluateCheck runs one check against the entry at its timestamp. The
// returned result is nil when the check never reached its predicate.
func evaluateCheck(trace *wm.Trace, idx int, c Check) (CheckOutcome, *assertion.Result, error) {
	out := CheckOutcome{
		Index:     idx,
		Timestamp: c.At,
		Assert:    c.Assert,
		Window:    c.Window,
		Expect:    c.Expect,
	}

	entry, err := trace.Entry(c.At)
	if err != nil {
		out.Message = err.Error()
		return out, nil, &CheckError{Index: idx, Timestamp: c.At, Err: err}
	}
	ac, err := toAssertionCheck(c)
	if err != nil {
		out.Message = err.Error()
		return out, nil, &CheckError{Index: idx, Timestamp: c.At, Err: err}
	}
	res, err := assertion.Evaluate(entry, ac)
	if err != nil {
		out.Message = err.Error()
		return out, nil, &CheckError{Index: idx, Timestamp: c.At, Err: err}
	}

	out.Passed = res.Passed
	out.Message = res.Message
	out.Error = res.Error
	out.OK = res.Passed == (c.Expect != ExpectFail)
	if out.OK && c.Message != "" && !strings.Contains(res.Message, c.Message) {
		out.OK = false
	}
	return out, &res, nil
}

// describeMismatch explains why an evaluated check missed its expectation.
func describeMismatch(c Check, out CheckOutcome) string {
	got := ExpectPass
	if !out.Passed {
		got = ExpectFail
	}
	prefix := fmt.Sprintf("checks[%d] %s(%s) at %d", out.Index, c.Assert, c.Window, c.At)
	if got != c.Expect {
		return fmt.Sprintf("%s: expected %s, got %s: %s", prefix, c.Expect, got, out.Message)
	}
	return fmt.Sprintf("%s: message %q does not contain %q", prefix, out.Message, c.Message)
}
