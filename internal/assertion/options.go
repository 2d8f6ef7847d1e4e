package assertion

import (
	"fmt"
	"strings"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// Match selects how a window name is compared against titles.
type Match int

const (
	// MatchDefault uses the predicate's own strategy: exact for non-app
	// windows, substring for app windows.
	MatchDefault Match = iota

	// MatchExact requires the title to equal the name.
	MatchExact

	// MatchSubstring accepts titles containing the name. For app windows the
	// owning activity's title is tried as well.
	MatchSubstring
)

func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchSubstring:
		return "substring"
	default:
		return "default"
	}
}

// ParseMatch maps "exact", "substring" or "" to a Match.
func ParseMatch(s string) (Match, error) {
	switch s {
	case "", "default":
		return MatchDefault, nil
	case "exact":
		return MatchExact, nil
	case "substring":
		return MatchSubstring, nil
	}
	return MatchDefault, fmt.Errorf("unknown match strategy %q (valid: exact, substring)", s)
}

type options struct {
	match Match
}

// Option configures a predicate call.
type Option func(*options)

// WithMatch overrides the predicate's matching strategy.
func WithMatch(m Match) Option {
	return func(o *options) {
		o.match = m
	}
}

func buildOptions(def Match, opts []Option) options {
	o := options{match: MatchDefault}
	for _, opt := range opts {
		opt(&o)
	}
	if o.match == MatchDefault {
		o.match = def
	}
	return o
}

// matches reports whether w answers to name under m. An empty name never
// matches by substring.
func matches(e *wm.Entry, w *wm.WindowState, name string, m Match) bool {
	if m == MatchExact {
		return w.Title() == name
	}
	if name == "" {
		return false
	}
	if strings.Contains(w.Title(), name) {
		return true
	}
	if a, ok := e.ActivityOf(w); ok {
		return strings.Contains(a.Title(), name)
	}
	return false
}

// lookup returns the first visible window matching name, or else the first
// invisible one. It returns nil when nothing matches.
func lookup(e *wm.Entry, windows []*wm.WindowState, name string, m Match) *wm.WindowState {
	var hidden *wm.WindowState
	for _, w := range windows {
		if !matches(e, w, name, m) {
			continue
		}
		if w.IsVisible() {
			return w
		}
		if hidden == nil {
			hidden = w
		}
	}
	return hidden
}

// resolve finds a window of any band: exact title first, then substring
// against app windows. An explicit strategy applies to every window.
func resolve(e *wm.Entry, name string, m Match) *wm.WindowState {
	if m != MatchDefault {
		return lookup(e, e.WindowStates(), name, m)
	}
	if w := lookup(e, e.WindowStates(), name, MatchExact); w != nil {
		return w
	}
	return lookup(e, e.AppWindows(), name, MatchSubstring)
}
