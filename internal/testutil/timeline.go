package testutil

import (
	"sync"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/snapshot"
)

// Timeline hands out strictly increasing snapshot timestamps, so fixtures
// with several entries always satisfy the trace ordering rule.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Timeline struct {
	mu   sync.Mutex
	step int64
	last int64
}

// NewTimeline creates a timeline whose first Next() returns start.
// A step below 1 is treated as 1.
func NewTimeline(start, step int64) *Timeline {
	if step < 1 {
		step = 1
	}
	return &Timeline{step: step, last: start - step}
}

// Next advances and returns the next timestamp.
func (t *Timeline) Next() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last += t.step
	return t.last
}

// Last returns the most recent timestamp handed out.
func (t *Timeline) Last() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Snapshot starts a snapshot at the next timestamp.
func (t *Timeline) Snapshot() *SnapshotBuilder {
	return NewSnapshot(t.Next())
}

// Screens returns n snapshots that each hold one visible display of the
// given bounds, at consecutive timestamps.
func (t *Timeline) Screens(n int, bounds region.Rect) []snapshot.Snapshot {
	out := make([]snapshot.Snapshot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, t.Snapshot().Display(1, 0, bounds).Build())
	}
	return out
}
