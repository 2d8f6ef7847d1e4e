package wm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/testutil"
)

func entryAt(t *testing.T, ts int64) *Entry {
	t.Helper()
	d := NewDisplay(Attrs{ID: 1, Visible: true}, 0)
	e, err := NewEntry(ts, []*Display{d}, EntryOptions{})
	require.NoError(t, err)
	return e
}

func TestTrace_ExactLookup(t *testing.T) {
	tl := testutil.NewTimeline(100, 100)
	tr, err := NewTrace([]*Entry{entryAt(t, tl.Next()), entryAt(t, tl.Next()), entryAt(t, tl.Next())})
	require.NoError(t, err)

	e, err := tr.Entry(200)
	require.NoError(t, err)
	assert.Equal(t, int64(200), e.Timestamp())

	_, err = tr.Entry(250)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.Contains(t, err.Error(), "250")
}

func TestTrace_Accessors(t *testing.T) {
	tl := testutil.NewTimeline(100, 100)
	tr, err := NewTrace([]*Entry{entryAt(t, tl.Next()), entryAt(t, tl.Next())})
	require.NoError(t, err)

	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, []int64{100, 200}, tr.Timestamps())

	first, ok := tr.First()
	require.True(t, ok)
	assert.Equal(t, int64(100), first.Timestamp())

	last, ok := tr.Last()
	require.True(t, ok)
	assert.Equal(t, int64(200), last.Timestamp())

	entries := tr.Entries()
	entries[0] = nil
	assert.NotNil(t, tr.Entries()[0])
}

func TestTrace_Empty(t *testing.T) {
	tr, err := NewTrace(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, tr.Len())
	_, ok := tr.First()
	assert.False(t, ok)
	_, ok = tr.Last()
	assert.False(t, ok)
}

func TestTrace_TimestampOrder(t *testing.T) {
	tests := []struct {
		name string
		ts   []int64
	}{
		{"decreasing", []int64{200, 100}},
		{"duplicate", []int64{100, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []*Entry
			for _, ts := range tt.ts {
				entries = append(entries, entryAt(t, ts))
			}
			_, err := NewTrace(entries)
			assert.ErrorIs(t, err, ErrTimestampOrder)
		})
	}
}
