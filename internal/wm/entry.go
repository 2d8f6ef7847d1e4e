package wm

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
)

// EntryOptions carries snapshot-level fields of an entry.
type EntryOptions struct {
	FocusedWindow string
	FocusedApp    string
}

// Entry is the sealed window hierarchy at one timestamp.
type Entry struct {
	timestamp     int64
	displays      []*Display
	focusedWindow string
	focusedApp    string

	byID       map[int64]Container
	windows    []*WindowState
	visible    []*WindowState
	app        []*WindowState
	above      []*WindowState
	below      []*WindowState
	activities []*Activity
	tasks      []*ActivityTask
	zorder     []*WindowState
}

// NewEntry seals the trees rooted at displays and builds an entry.
// The containers must not be attached or sealed again afterwards.
func NewEntry(timestamp int64, displays []*Display, opts EntryOptions) (*Entry, error) {
	e := &Entry{
		timestamp:     timestamp,
		displays:      slices.Clone(displays),
		focusedWindow: opts.FocusedWindow,
		focusedApp:    opts.FocusedApp,
		byID:          make(map[int64]Container),
	}

	for _, d := range e.displays {
		if d.hasParent {
			return nil, fmt.Errorf("%w: Display %d must be a root", ErrParentKind, d.id)
		}
		w := &walker{entry: e}
		if err := w.seal(d, true, nil, nil); err != nil {
			return nil, err
		}
	}

	for _, win := range e.windows {
		if win.visible {
			e.visible = append(e.visible, win)
		}
		switch {
		case win.hasActivity:
			e.app = append(e.app, win)
		case win.resolved == BandAboveApp:
			e.above = append(e.above, win)
		default:
			e.below = append(e.below, win)
		}
	}

	e.zorder = slices.Clone(e.visible)
	slices.SortStableFunc(e.zorder, func(a, b *WindowState) int {
		return a.resolved.rank() - b.resolved.rank()
	})
	return e, nil
}

// walker carries per-display state of the front-to-back traversal.
type walker struct {
	entry    *Entry
	seenTask bool
}

func (w *walker) seal(c Container, parentVisible bool, task *ActivityTask, activity *Activity) error {
	n := c.base()
	if prev, dup := w.entry.byID[n.id]; dup {
		return fmt.Errorf("%w: %d used by %s and %s", ErrDuplicateID, n.id, prev.Kind(), c.Kind())
	}
	w.entry.byID[n.id] = c
	n.visible = n.visibleFlag && parentVisible

	switch v := c.(type) {
	case *ActivityTask:
		w.seenTask = true
		task = v
		w.entry.tasks = append(w.entry.tasks, v)
	case *Activity:
		activity = v
		w.entry.activities = append(w.entry.activities, v)
	case *WindowState:
		if err := w.classify(v, task, activity); err != nil {
			return err
		}
		w.entry.windows = append(w.entry.windows, v)
	}

	for _, child := range n.children {
		if err := w.seal(child, n.visible, task, activity); err != nil {
			return err
		}
	}

	n.bounds = n.recorded
	switch c.(type) {
	case *Activity, *GenericContainer:
		if !n.hasRects {
			var union region.Region
			for _, child := range n.children {
				union = union.Union(child.Bounds())
			}
			n.bounds = union
		}
	}
	return nil
}

// classify resolves the band of win. A window recorded in the app band must
// have an Activity ancestor.
func (w *walker) classify(win *WindowState, task *ActivityTask, activity *Activity) error {
	if activity != nil {
		win.hasActivity = true
		win.activityID = activity.id
		win.resolved = BandApp
		if task != nil {
			win.taskID = task.taskID
		}
		return nil
	}
	switch {
	case win.band == BandApp:
		return fmt.Errorf("%w: WindowState %d is recorded as an app window outside an Activity", ErrParentKind, win.id)
	case win.band != BandUnspecified:
		win.resolved = win.band
	case w.seenTask:
		win.resolved = BandBelowApp
	default:
		win.resolved = BandAboveApp
	}
	return nil
}

// Timestamp returns the entry timestamp.
func (e *Entry) Timestamp() int64 { return e.timestamp }

// FocusedWindow returns the title of the focused window, if recorded.
func (e *Entry) FocusedWindow() string { return e.focusedWindow }

// FocusedApp returns the name of the focused application, if recorded.
func (e *Entry) FocusedApp() string { return e.focusedApp }

// Displays returns the root containers.
func (e *Entry) Displays() []*Display { return slices.Clone(e.displays) }

// WindowStates returns every window, front to back.
func (e *Entry) WindowStates() []*WindowState { return slices.Clone(e.windows) }

// VisibleWindows returns the effectively visible windows, front to back.
func (e *Entry) VisibleWindows() []*WindowState { return slices.Clone(e.visible) }

// AppWindows returns windows owned by an activity.
func (e *Entry) AppWindows() []*WindowState { return slices.Clone(e.app) }

// AboveAppWindows returns non-app windows stacked above applications.
func (e *Entry) AboveAppWindows() []*WindowState { return slices.Clone(e.above) }

// BelowAppWindows returns non-app windows stacked below applications.
func (e *Entry) BelowAppWindows() []*WindowState { return slices.Clone(e.below) }

// NonAppWindows returns the above-app windows followed by the below-app ones.
func (e *Entry) NonAppWindows() []*WindowState {
	out := make([]*WindowState, 0, len(e.above)+len(e.below))
	out = append(out, e.above...)
	return append(out, e.below...)
}

// Activities returns every activity, front to back.
func (e *Entry) Activities() []*Activity { return slices.Clone(e.activities) }

// Tasks returns every task, front to back.
func (e *Entry) Tasks() []*ActivityTask { return slices.Clone(e.tasks) }

// ZOrder returns the visible windows ordered top to bottom: above-app
// windows, then app windows, then below-app windows. Within a band the
// recorded front-to-back order is kept.
func (e *Entry) ZOrder() []*WindowState { return slices.Clone(e.zorder) }

// Container looks up a container by id.
func (e *Entry) Container(id int64) (Container, bool) {
	c, ok := e.byID[id]
	return c, ok
}

// Parent returns the parent of c, or false for a root.
func (e *Entry) Parent(c Container) (Container, bool) {
	pid, ok := c.ParentID()
	if !ok {
		return nil, false
	}
	return e.Container(pid)
}

// TaskOf returns the task that owns a.
func (e *Entry) TaskOf(a *Activity) (*ActivityTask, bool) {
	c, ok := e.byID[a.TaskID()]
	if !ok {
		return nil, false
	}
	t, ok := c.(*ActivityTask)
	return t, ok
}

// ActivityOf returns the activity that owns w.
func (e *Entry) ActivityOf(w *WindowState) (*Activity, bool) {
	id, ok := w.ActivityID()
	if !ok {
		return nil, false
	}
	c, ok := e.byID[id]
	if !ok {
		return nil, false
	}
	a, ok := c.(*Activity)
	return a, ok
}

// Path describes the chain of containers from the display down to c,
// for example "Display 0 > ActivityTask 12 > Activity com.x/.Main".
func (e *Entry) Path(c Container) string {
	var parts []string
	for cur, ok := c, true; ok; cur, ok = e.Parent(cur) {
		parts = append(parts, label(cur))
	}
	slices.Reverse(parts)
	return strings.Join(parts, " > ")
}

func label(c Container) string {
	switch v := c.(type) {
	case *Display:
		return "Display " + strconv.Itoa(v.displayID)
	case *ActivityTask:
		return "ActivityTask " + strconv.Itoa(v.taskID)
	}
	if c.Title() != "" {
		return string(c.Kind()) + " " + c.Title()
	}
	return string(c.Kind()) + " #" + strconv.FormatInt(c.ID(), 10)
}

// Dump renders the entry as nested maps suitable for canonical JSON.
func (e *Entry) Dump() map[string]any {
	displays := make([]any, 0, len(e.displays))
	for _, d := range e.displays {
		displays = append(displays, dumpContainer(d))
	}
	return map[string]any{
		"timestamp":      e.timestamp,
		"focused_window": e.focusedWindow,
		"focused_app":    e.focusedApp,
		"displays":       displays,
	}
}

func dumpContainer(c Container) map[string]any {
	n := c.base()
	children := make([]any, 0, len(n.children))
	for _, child := range n.children {
		children = append(children, dumpContainer(child))
	}
	out := map[string]any{
		"id":       n.id,
		"kind":     string(c.Kind()),
		"token":    n.token,
		"title":    n.title,
		"visible":  n.visible,
		"bounds":   n.bounds.String(),
		"children": children,
	}
	switch v := c.(type) {
	case *Display:
		out["display_id"] = v.displayID
	case *ActivityTask:
		out["task_id"] = v.taskID
	case *Activity:
		out["state"] = v.info.State
		out["front_of_task"] = v.info.FrontOfTask
		out["proc_id"] = v.info.ProcID
		out["translucent"] = v.info.Translucent
	case *WindowState:
		out["layer_id"] = v.layerID
		out["band"] = v.resolved.String()
		out["app"] = v.hasActivity
	}
	return out
}
