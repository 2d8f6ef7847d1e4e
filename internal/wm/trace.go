package wm

import (
	"fmt"
	"slices"
)

// Trace is an ordered, immutable sequence of entries.
type Trace struct {
	entries []*Entry
	index   map[int64]int
}

// NewTrace builds a trace. Entry timestamps must be strictly increasing.
func NewTrace(entries []*Entry) (*Trace, error) {
	t := &Trace{
		entries: slices.Clone(entries),
		index:   make(map[int64]int, len(entries)),
	}
	for i, e := range t.entries {
		if i > 0 && e.timestamp <= t.entries[i-1].timestamp {
			return nil, fmt.Errorf("%w: entry %d at %d follows %d",
				ErrTimestampOrder, i, e.timestamp, t.entries[i-1].timestamp)
		}
		t.index[e.timestamp] = i
	}
	return t, nil
}

// Entries returns the entries in timestamp order.
func (t *Trace) Entries() []*Entry { return slices.Clone(t.entries) }

// Len returns the number of entries.
func (t *Trace) Len() int { return len(t.entries) }

// Timestamps returns every entry timestamp in order.
func (t *Trace) Timestamps() []int64 {
	out := make([]int64, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.timestamp
	}
	return out
}

// Entry returns the entry recorded at exactly ts.
func (t *Trace) Entry(ts int64) (*Entry, error) {
	i, ok := t.index[ts]
	if !ok {
		return nil, fmt.Errorf("%w: timestamp %d", ErrEntryNotFound, ts)
	}
	return t.entries[i], nil
}

// First returns the earliest entry.
func (t *Trace) First() (*Entry, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	return t.entries[0], true
}

// Last returns the latest entry.
func (t *Trace) Last() (*Entry, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	return t.entries[len(t.entries)-1], true
}
