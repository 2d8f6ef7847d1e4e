package assertion

import (
	"fmt"
	"strings"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// Assertion names, as used in scenario files, the CLI and Error.AssertionName.
const (
	NameIsAboveAppWindow        = "is_above_app_window"
	NameHasNonAppWindow         = "has_non_app_window"
	NameIsAppWindowVisible      = "is_app_window_visible"
	NameIsVisibleAppWindowOnTop = "is_visible_app_window_on_top"
	NameCoversAtLeastRegion     = "covers_at_least_region"
	NameCoversAtMostRegion      = "covers_at_most_region"
	NameIsWindowAbove           = "is_window_above"
	NameHasActivityState        = "has_activity_state"
	NameIsFocusedWindow         = "is_focused_window"
)

// visibleIn checks that a window named name exists among windows and is
// visible.
func visibleIn(e *wm.Entry, assertName, name string, windows []*wm.WindowState, m Match) Result {
	w := lookup(e, windows, name, m)
	switch {
	case w == nil:
		return fail(e, assertName, name, nil, fmt.Sprintf("%s cannot be found", name))
	case !w.IsVisible():
		return fail(e, assertName, name, w, fmt.Sprintf("%s is invisible", name))
	}
	return pass(assertName, name, fmt.Sprintf("%s is visible", w.Title()))
}

// IsAboveAppWindow checks that a visible window named name is stacked above
// the applications. Matching is exact by default.
func IsAboveAppWindow(e *wm.Entry, name string, opts ...Option) Result {
	o := buildOptions(MatchExact, opts)
	return visibleIn(e, NameIsAboveAppWindow, name, e.AboveAppWindows(), o.match)
}

// HasNonAppWindow checks that a visible non-app window named name exists in
// either the above-app or below-app band. Matching is exact by default.
func HasNonAppWindow(e *wm.Entry, name string, opts ...Option) Result {
	o := buildOptions(MatchExact, opts)
	return visibleIn(e, NameHasNonAppWindow, name, e.NonAppWindows(), o.match)
}

// IsAppWindowVisible checks that a visible app window answers to name.
// By default name may be a substring of the window or activity title.
func IsAppWindowVisible(e *wm.Entry, name string, opts ...Option) Result {
	o := buildOptions(MatchSubstring, opts)
	return visibleIn(e, NameIsAppWindowVisible, name, e.AppWindows(), o.match)
}

// IsVisibleAppWindowOnTop checks that the top-most visible app window
// answers to name.
func IsVisibleAppWindowOnTop(e *wm.Entry, name string, opts ...Option) Result {
	o := buildOptions(MatchSubstring, opts)

	var top *wm.WindowState
	for _, w := range e.ZOrder() {
		if w.Band() == wm.BandApp {
			top = w
			break
		}
	}
	if top == nil {
		return fail(e, NameIsVisibleAppWindowOnTop, name, nil,
			fmt.Sprintf("No visible app windows found: wanted=%s found=<none>", name))
	}
	if !matches(e, top, name, o.match) {
		return fail(e, NameIsVisibleAppWindowOnTop, name, top,
			fmt.Sprintf("%s is not on top: wanted=%s found=%s", name, name, top.Title()))
	}
	return pass(NameIsVisibleAppWindowOnTop, name, fmt.Sprintf("%s is on top", top.Title()))
}

// CoversAtLeastRegion checks that the bounds of window name include every
// pixel of r. The window is found by exact title, then by app substring.
func CoversAtLeastRegion(e *wm.Entry, name string, r region.Region, opts ...Option) Result {
	o := buildOptions(MatchDefault, opts)
	w := resolve(e, name, o.match)
	if w == nil {
		return fail(e, NameCoversAtLeastRegion, name, nil, fmt.Sprintf("%s cannot be found", name))
	}

	uncovered := r.Difference(w.Bounds())
	if !uncovered.IsEmpty() {
		return fail(e, NameCoversAtLeastRegion, name, w,
			fmt.Sprintf("%s does not cover at least %s. Uncovered region: %s", w.Title(), r, uncovered))
	}
	return pass(NameCoversAtLeastRegion, name, fmt.Sprintf("%s covers at least %s", w.Title(), r))
}

// CoversAtMostRegion checks that the bounds of window name stay inside r.
// The window is found by exact title, then by app substring.
func CoversAtMostRegion(e *wm.Entry, name string, r region.Region, opts ...Option) Result {
	o := buildOptions(MatchDefault, opts)
	w := resolve(e, name, o.match)
	if w == nil {
		return fail(e, NameCoversAtMostRegion, name, nil, fmt.Sprintf("%s cannot be found", name))
	}

	outOfBounds := w.Bounds().Difference(r)
	if !outOfBounds.IsEmpty() {
		return fail(e, NameCoversAtMostRegion, name, w,
			fmt.Sprintf("%s covers more than %s. Out-of-bounds region: %s", w.Title(), r, outOfBounds))
	}
	return pass(NameCoversAtMostRegion, name, fmt.Sprintf("%s covers at most %s", w.Title(), r))
}

// IsWindowAbove checks that visible window upper is stacked above visible
// window lower. Bands are absolute: any above-app window is above every app
// and below-app window.
func IsWindowAbove(e *wm.Entry, upper, lower string, opts ...Option) Result {
	o := buildOptions(MatchDefault, opts)
	target := upper + " above " + lower

	order := e.ZOrder()
	index := func(name string) (int, *wm.WindowState) {
		w := resolve(e, name, o.match)
		if w == nil {
			return -1, nil
		}
		for i, v := range order {
			if v == w {
				return i, w
			}
		}
		return -1, w
	}

	ui, uw := index(upper)
	li, lw := index(lower)
	for _, c := range []struct {
		name string
		idx  int
		w    *wm.WindowState
	}{{upper, ui, uw}, {lower, li, lw}} {
		if c.w == nil {
			return fail(e, NameIsWindowAbove, target, nil, fmt.Sprintf("%s cannot be found", c.name))
		}
		if c.idx < 0 {
			return fail(e, NameIsWindowAbove, target, c.w, fmt.Sprintf("%s is invisible", c.name))
		}
	}

	if ui > li {
		return fail(e, NameIsWindowAbove, target, uw,
			fmt.Sprintf("%s is not above %s: wanted=%s found=%s", upper, lower, uw.Title(), lw.Title()))
	}
	return pass(NameIsWindowAbove, target, fmt.Sprintf("%s is above %s", uw.Title(), lw.Title()))
}

// HasActivityState checks the lifecycle state of the activity answering to
// name. By default name may be a substring of the activity title.
func HasActivityState(e *wm.Entry, name, state string, opts ...Option) Result {
	o := buildOptions(MatchSubstring, opts)

	var found *wm.Activity
	for _, a := range e.Activities() {
		if titleMatches(a.Title(), name, o.match) {
			found = a
			break
		}
	}
	if found == nil {
		return fail(e, NameHasActivityState, name, nil, fmt.Sprintf("%s cannot be found", name))
	}
	if found.State() != state {
		r := fail(e, NameHasActivityState, name, nil,
			fmt.Sprintf("%s has state %s: wanted=%s found=%s", found.Title(), found.State(), state, found.State()))
		r.Error.Stacktrace += ": " + e.Path(found)
		r.Error.WindowToken = found.Token()
		if task, ok := e.TaskOf(found); ok {
			r.Error.TaskID = task.TaskID()
		}
		return r
	}
	return pass(NameHasActivityState, name, fmt.Sprintf("%s is %s", found.Title(), state))
}

// IsFocusedWindow checks the focused window recorded with the entry.
// By default name may be a substring of the focused title.
func IsFocusedWindow(e *wm.Entry, name string, opts ...Option) Result {
	o := buildOptions(MatchSubstring, opts)
	focused := e.FocusedWindow()
	if focused == "" || !titleMatches(focused, name, o.match) {
		if focused == "" {
			focused = "<none>"
		}
		return fail(e, NameIsFocusedWindow, name, nil,
			fmt.Sprintf("%s is not focused: wanted=%s found=%s", name, name, focused))
	}
	return pass(NameIsFocusedWindow, name, fmt.Sprintf("%s is focused", focused))
}

func titleMatches(title, name string, m Match) bool {
	if m == MatchExact {
		return title == name
	}
	return name != "" && strings.Contains(title, name)
}
