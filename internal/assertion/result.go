// Package assertion evaluates named properties of a window-manager entry.
//
// Predicates never return Go errors for a failed property: they return a
// Result whose Message explains the outcome and, on failure, an Error that
// names the window, layer and task involved. Callers that evaluate several
// predicates feed the results into a Collector to accumulate the errors in
// evaluation order.
package assertion

import (
	"fmt"
	"slices"
	"sync"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// Error is the structured record of one failed assertion.
type Error struct {
	Stacktrace    string `json:"stacktrace"`
	Message       string `json:"message"`
	LayerID       int    `json:"layer_id"`
	WindowToken   string `json:"window_token"`
	TaskID        int    `json:"task_id"`
	AssertionName string `json:"assertion_name"`
}

// String formats the error for logs and CLI output.
func (e Error) String() string {
	return fmt.Sprintf("%s: %s [%s]", e.AssertionName, e.Message, e.Stacktrace)
}

// Result is the outcome of evaluating one predicate.
type Result struct {
	Name    string `json:"name"`
	Target  string `json:"target"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Error   *Error `json:"error,omitempty"`
}

func pass(name, target, msg string) Result {
	return Result{Name: name, Target: target, Passed: true, Message: msg}
}

// fail builds a failed result. w may be nil when no window was resolved.
func fail(e *wm.Entry, name, target string, w *wm.WindowState, msg string) Result {
	err := &Error{
		Stacktrace:    fmt.Sprintf("entry %d", e.Timestamp()),
		Message:       msg,
		AssertionName: name,
	}
	if w != nil {
		err.Stacktrace += ": " + e.Path(w)
		err.LayerID = w.LayerID()
		err.WindowToken = w.Token()
		err.TaskID = w.TaskID()
	}
	return Result{Name: name, Target: target, Passed: false, Message: msg, Error: err}
}

// Collector accumulates results and the errors of failed ones.
//
// Thread-safety: safe for concurrent use via internal mutex.
type Collector struct {
	mu      sync.Mutex
	results []Result
	errors  []Error
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records r and returns it unchanged.
func (c *Collector) Add(r Result) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
	if !r.Passed && r.Error != nil {
		c.errors = append(c.errors, *r.Error)
	}
	return r
}

// Results returns every recorded result in order.
func (c *Collector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.results)
}

// Errors returns the errors of failed results in order.
// Returns empty slice (not nil) if nothing failed.
func (c *Collector) Errors() []Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Error, len(c.errors))
	copy(out, c.errors)
	return out
}

// Passed reports whether every recorded result passed.
func (c *Collector) Passed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.results {
		if !r.Passed {
			return false
		}
	}
	return true
}
