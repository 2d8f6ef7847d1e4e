package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/ir"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// GoldenDir is where AssertGolden keeps its fixtures, relative to the
// package under test.
const GoldenDir = "testdata/golden"

// EntryJSON returns the canonical JSON dump of an entry.
func EntryJSON(e *wm.Entry) ([]byte, error) {
	return ir.MarshalCanonical(e.Dump())
}

// AssertGolden compares the canonical JSON dump of entry against
// testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, entry *wm.Entry) {
	t.Helper()

	data, err := EntryJSON(entry)
	if err != nil {
		t.Fatalf("marshal entry %d: %v", entry.Timestamp(), err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
