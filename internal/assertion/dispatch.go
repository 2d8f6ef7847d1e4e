package assertion

import (
	"fmt"
	"slices"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/wm"
)

// Names lists every assertion accepted by Evaluate.
var Names = []string{
	NameIsAboveAppWindow,
	NameHasNonAppWindow,
	NameIsAppWindowVisible,
	NameIsVisibleAppWindowOnTop,
	NameCoversAtLeastRegion,
	NameCoversAtMostRegion,
	NameIsWindowAbove,
	NameHasActivityState,
	NameIsFocusedWindow,
}

// Check names one predicate call by assertion name, as read from a scenario
// file or command line.
type Check struct {
	Assert string
	Window string
	Region region.Region
	Below  string
	State  string
	Match  Match
}

// Evaluate runs the predicate named by c.Assert. It returns an error only
// when the check itself is unusable: an unknown assertion or a missing
// argument. A failing property is reported through the Result.
func Evaluate(e *wm.Entry, c Check) (Result, error) {
	if !slices.Contains(Names, c.Assert) {
		return Result{}, fmt.Errorf("unknown assertion %q", c.Assert)
	}
	if c.Window == "" {
		return Result{}, fmt.Errorf("%s: window is required", c.Assert)
	}
	opts := []Option{WithMatch(c.Match)}

	switch c.Assert {
	case NameIsAboveAppWindow:
		return IsAboveAppWindow(e, c.Window, opts...), nil
	case NameHasNonAppWindow:
		return HasNonAppWindow(e, c.Window, opts...), nil
	case NameIsAppWindowVisible:
		return IsAppWindowVisible(e, c.Window, opts...), nil
	case NameIsVisibleAppWindowOnTop:
		return IsVisibleAppWindowOnTop(e, c.Window, opts...), nil
	case NameCoversAtLeastRegion, NameCoversAtMostRegion:
		if c.Region.IsEmpty() {
			return Result{}, fmt.Errorf("%s: region is required", c.Assert)
		}
		if c.Assert == NameCoversAtLeastRegion {
			return CoversAtLeastRegion(e, c.Window, c.Region, opts...), nil
		}
		return CoversAtMostRegion(e, c.Window, c.Region, opts...), nil
	case NameIsWindowAbove:
		if c.Below == "" {
			return Result{}, fmt.Errorf("%s: below is required", c.Assert)
		}
		return IsWindowAbove(e, c.Window, c.Below, opts...), nil
	case NameHasActivityState:
		if c.State == "" {
			return Result{}, fmt.Errorf("%s: state is required", c.Assert)
		}
		return HasActivityState(e, c.Window, c.State, opts...), nil
	case NameIsFocusedWindow:
		return IsFocusedWindow(e, c.Window, opts...), nil
	default:
		return Result{}, fmt.Errorf("unknown assertion %q", c.Assert)
	}
}
