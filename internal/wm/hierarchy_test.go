package wm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
)

type fixture struct {
	display   *Display
	status    *WindowState
	ime       *WindowState
	task      *ActivityTask
	chrome    *Activity
	chromeWin *WindowState
	hidden    *Activity
	hiddenWin *WindowState
	wallpaper *WindowState
	overlays  *GenericContainer
	overlay   *WindowState
	entry     *Entry
}

func screen() []region.Rect {
	return []region.Rect{{Left: 0, Top: 0, Right: 1440, Bottom: 2960}}
}

func mustAttach(t *testing.T, parent, child Container) {
	t.Helper()
	require.NoError(t, Attach(parent, child))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		display: NewDisplay(Attrs{ID: 1, Title: "Built-in Screen", Visible: true, Rects: screen()}, 0),
		status: NewWindowState(Attrs{ID: 2, Token: "s1", Title: "StatusBar", Visible: true,
			Rects: []region.Rect{{Left: 0, Top: 0, Right: 1440, Bottom: 171}}}, 7, BandUnspecified),
		ime:  NewWindowState(Attrs{ID: 3, Title: "InputMethod"}, 9, BandUnspecified),
		task: NewActivityTask(Attrs{ID: 4, Visible: true, Rects: screen()}, 12),
		chrome: NewActivity(Attrs{ID: 5, Token: "a1", Title: "com.android.chrome/.Main", Visible: true},
			ActivityInfo{State: "RESUMED", FrontOfTask: true, ProcID: 4242}),
		chromeWin: NewWindowState(Attrs{ID: 6, Token: "w1", Title: "com.android.chrome/.Main", Visible: true, Rects: screen()}, 21, BandUnspecified),
		hidden:    NewActivity(Attrs{ID: 7, Title: "com.other/.Hidden"}, ActivityInfo{State: "STOPPED"}),
		hiddenWin: NewWindowState(Attrs{ID: 8, Title: "com.other/.Hidden", Visible: true, Rects: screen()}, 22, BandUnspecified),
		wallpaper: NewWindowState(Attrs{ID: 9, Title: "Wallpaper", Visible: true, Rects: screen()}, 1, BandUnspecified),
		overlays:  NewGenericContainer(Attrs{ID: 10, Title: "Overlays", Visible: true}),
		overlay: NewWindowState(Attrs{ID: 11, Title: "Overlay", Visible: true,
			Rects: []region.Rect{{Left: 0, Top: 2800, Right: 1440, Bottom: 2960}}}, 30, BandAboveApp),
	}

	mustAttach(t, f.display, f.status)
	mustAttach(t, f.display, f.ime)
	mustAttach(t, f.display, f.task)
	mustAttach(t, f.task, f.chrome)
	mustAttach(t, f.chrome, f.chromeWin)
	mustAttach(t, f.task, f.hidden)
	mustAttach(t, f.hidden, f.hiddenWin)
	mustAttach(t, f.display, f.wallpaper)
	mustAttach(t, f.display, f.overlays)
	mustAttach(t, f.overlays, f.overlay)

	entry, err := NewEntry(9213763541297, []*Display{f.display}, EntryOptions{
		FocusedWindow: "com.android.chrome/.Main",
		FocusedApp:    "com.android.chrome",
	})
	require.NoError(t, err)
	f.entry = entry
	return f
}

func TestVisibility_GatedByAncestors(t *testing.T) {
	f := newFixture(t)

	assert.True(t, f.display.IsVisible())
	assert.True(t, f.status.IsVisible())
	assert.False(t, f.ime.IsVisible())
	assert.True(t, f.chromeWin.IsVisible())

	assert.True(t, f.hiddenWin.VisibleFlag())
	assert.False(t, f.hiddenWin.IsVisible(), "window under an invisible activity must be invisible")
}

func TestVisibility_InvisibleRootHidesEverything(t *testing.T) {
	d := NewDisplay(Attrs{ID: 1, Rects: screen()}, 0)
	w := NewWindowState(Attrs{ID: 2, Title: "StatusBar", Visible: true, Rects: screen()}, 1, BandUnspecified)
	mustAttach(t, d, w)

	e, err := NewEntry(1, []*Display{d}, EntryOptions{})
	require.NoError(t, err)

	assert.False(t, w.IsVisible())
	assert.Empty(t, e.VisibleWindows())
	assert.Empty(t, e.ZOrder())
}

func TestBands(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, BandAboveApp, f.status.Band())
	assert.Equal(t, BandAboveApp, f.ime.Band())
	assert.Equal(t, BandApp, f.chromeWin.Band())
	assert.Equal(t, BandBelowApp, f.wallpaper.Band())
	assert.Equal(t, BandAboveApp, f.overlay.Band(), "recorded band wins over position")

	assert.True(t, f.chromeWin.IsAppWindow())
	assert.False(t, f.status.IsAppWindow())
	assert.Equal(t, 12, f.chromeWin.TaskID())
	assert.Equal(t, 0, f.status.TaskID())
}

func TestBands_DisplayWithoutTask(t *testing.T) {
	d := NewDisplay(Attrs{ID: 1, Visible: true, Rects: screen()}, 0)
	a := NewWindowState(Attrs{ID: 2, Title: "A", Visible: true}, 1, BandUnspecified)
	b := NewWindowState(Attrs{ID: 3, Title: "B", Visible: true}, 1, BandUnspecified)
	mustAttach(t, d, a)
	mustAttach(t, d, b)

	e, err := NewEntry(1, []*Display{d}, EntryOptions{})
	require.NoError(t, err)

	assert.Equal(t, []*WindowState{a, b}, e.AboveAppWindows())
	assert.Empty(t, e.BelowAppWindows())
	assert.Empty(t, e.AppWindows())
}

func TestBands_RecordedAppOutsideActivity(t *testing.T) {
	d := NewDisplay(Attrs{ID: 1, Visible: true, Rects: screen()}, 0)
	splash := NewWindowState(Attrs{ID: 2, Title: "Splash", Visible: true}, 1, BandApp)
	task := NewActivityTask(Attrs{ID: 3, Visible: true}, 4)
	mustAttach(t, d, splash)
	mustAttach(t, d, task)

	_, err := NewEntry(1, []*Display{d}, EntryOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParentKind)
	assert.Contains(t, err.Error(), "WindowState 2")
}

func TestEntryViews(t *testing.T) {
	f := newFixture(t)
	e := f.entry

	assert.Equal(t, []*WindowState{f.status, f.ime, f.chromeWin, f.hiddenWin, f.wallpaper, f.overlay}, e.WindowStates())
	assert.Equal(t, []*WindowState{f.status, f.chromeWin, f.wallpaper, f.overlay}, e.VisibleWindows())
	assert.Equal(t, []*WindowState{f.chromeWin, f.hiddenWin}, e.AppWindows())
	assert.Equal(t, []*WindowState{f.status, f.ime, f.overlay}, e.AboveAppWindows())
	assert.Equal(t, []*WindowState{f.wallpaper}, e.BelowAppWindows())
	assert.Equal(t, []*WindowState{f.status, f.ime, f.overlay, f.wallpaper}, e.NonAppWindows())
	assert.Equal(t, []*Activity{f.chrome, f.hidden}, e.Activities())
	assert.Equal(t, []*ActivityTask{f.task}, e.Tasks())
	assert.Equal(t, int64(9213763541297), e.Timestamp())
	assert.Equal(t, "com.android.chrome/.Main", e.FocusedWindow())
	assert.Equal(t, "com.android.chrome", e.FocusedApp())
}

func TestZOrder_BandsThenRecordedOrder(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, []*WindowState{f.status, f.overlay, f.chromeWin, f.wallpaper}, f.entry.ZOrder())
}

func TestBounds(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "SkRegion((0,0,1440,171))", f.status.Bounds().String())
	assert.True(t, f.chrome.Bounds().Equal(region.FromRect(0, 0, 1440, 2960)), "activity uses children")
	assert.True(t, f.overlays.Bounds().Equal(region.FromRect(0, 2800, 1440, 2960)), "container uses children")
	assert.True(t, f.ime.Bounds().IsEmpty())
}

func TestLookups(t *testing.T) {
	f := newFixture(t)
	e := f.entry

	c, ok := e.Container(6)
	require.True(t, ok)
	assert.Same(t, f.chromeWin, c)

	_, ok = e.Container(999)
	assert.False(t, ok)

	p, ok := e.Parent(f.chromeWin)
	require.True(t, ok)
	assert.Same(t, f.chrome, p)

	_, ok = e.Parent(f.display)
	assert.False(t, ok)

	task, ok := e.TaskOf(f.chrome)
	require.True(t, ok)
	assert.Same(t, f.task, task)
	assert.Equal(t, int64(4), f.chrome.TaskID())

	act, ok := e.ActivityOf(f.chromeWin)
	require.True(t, ok)
	assert.Same(t, f.chrome, act)

	_, ok = e.ActivityOf(f.status)
	assert.False(t, ok)
}

func TestPath(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t,
		"Display 0 > ActivityTask 12 > Activity com.android.chrome/.Main > WindowState com.android.chrome/.Main",
		f.entry.Path(f.chromeWin))
	assert.Equal(t, "Display 0 > WindowState StatusBar", f.entry.Path(f.status))
	assert.Equal(t, "Display 0", f.entry.Path(f.display))
}

func TestStringForms(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "Activity {a1 com.android.chrome/.Main} state=RESUMED visible=true", f.chrome.String())
	assert.Equal(t, "Activity { com.other/.Hidden} state=STOPPED visible=false", f.hidden.String())
	assert.Equal(t, "WindowState {s1 StatusBar} layer=7 band=above_app visible=true", f.status.String())
}

func TestActivityAccessors(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, KindActivity, f.chrome.Kind())
	assert.Equal(t, "RESUMED", f.chrome.State())
	assert.True(t, f.chrome.FrontOfTask())
	assert.Equal(t, 4242, f.chrome.ProcID())
	assert.False(t, f.chrome.IsTranslucent())
}

func TestChildrenAreCopies(t *testing.T) {
	f := newFixture(t)

	kids := f.display.Children()
	kids[0] = nil

	assert.Same(t, f.status, f.display.Children()[0])

	views := f.entry.WindowStates()
	views[0] = nil
	assert.Same(t, f.status, f.entry.WindowStates()[0])
}

func TestAttach_ParentKind(t *testing.T) {
	display := func() *Display { return NewDisplay(Attrs{ID: 1}, 0) }
	task := func() *ActivityTask { return NewActivityTask(Attrs{ID: 2}, 5) }
	activity := func() *Activity { return NewActivity(Attrs{ID: 3}, ActivityInfo{}) }
	window := func() *WindowState { return NewWindowState(Attrs{ID: 4}, 0, BandUnspecified) }
	generic := func() *GenericContainer { return NewGenericContainer(Attrs{ID: 5}) }

	tests := []struct {
		name   string
		parent Container
		child  Container
	}{
		{"activity under display", display(), activity()},
		{"activity under container", generic(), activity()},
		{"activity under window", window(), activity()},
		{"display under task", task(), display()},
		{"task under window", window(), task()},
		{"container under window", window(), generic()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Attach(tt.parent, tt.child)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParentKind)
			assert.Empty(t, tt.parent.Children())
		})
	}
}

func TestAttach_Allowed(t *testing.T) {
	d := NewDisplay(Attrs{ID: 1}, 0)
	g := NewGenericContainer(Attrs{ID: 2})
	task := NewActivityTask(Attrs{ID: 3}, 7)
	a := NewActivity(Attrs{ID: 4}, ActivityInfo{})
	w := NewWindowState(Attrs{ID: 5}, 0, BandUnspecified)
	child := NewWindowState(Attrs{ID: 6}, 0, BandUnspecified)

	require.NoError(t, Attach(d, g))
	require.NoError(t, Attach(g, task))
	require.NoError(t, Attach(task, a))
	require.NoError(t, Attach(a, w))
	require.NoError(t, Attach(w, child))

	pid, ok := child.ParentID()
	assert.True(t, ok)
	assert.Equal(t, int64(5), pid)
}

func TestAttach_Twice(t *testing.T) {
	d := NewDisplay(Attrs{ID: 1}, 0)
	other := NewDisplay(Attrs{ID: 2}, 1)
	w := NewWindowState(Attrs{ID: 3}, 0, BandUnspecified)

	require.NoError(t, Attach(d, w))
	err := Attach(other, w)

	assert.ErrorIs(t, err, ErrAttached)
	assert.Empty(t, other.Children())
}

func TestAttach_Self(t *testing.T) {
	w := NewWindowState(Attrs{ID: 3}, 0, BandUnspecified)

	assert.ErrorIs(t, Attach(w, w), ErrParentKind)
}

func TestNewEntry_DuplicateID(t *testing.T) {
	d := NewDisplay(Attrs{ID: 1}, 0)
	require.NoError(t, Attach(d, NewWindowState(Attrs{ID: 1}, 0, BandUnspecified)))

	_, err := NewEntry(1, []*Display{d}, EntryOptions{})

	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestNewEntry_MultipleDisplays(t *testing.T) {
	d0 := NewDisplay(Attrs{ID: 1, Visible: true}, 0)
	d1 := NewDisplay(Attrs{ID: 2, Visible: true}, 1)
	w0 := NewWindowState(Attrs{ID: 3, Title: "A", Visible: true}, 0, BandUnspecified)
	task := NewActivityTask(Attrs{ID: 4, Visible: true}, 1)
	w1 := NewWindowState(Attrs{ID: 5, Title: "B", Visible: true}, 0, BandUnspecified)
	mustAttach(t, d0, task)
	mustAttach(t, d0, w0)
	mustAttach(t, d1, w1)

	e, err := NewEntry(1, []*Display{d0, d1}, EntryOptions{})
	require.NoError(t, err)

	assert.Equal(t, BandBelowApp, w0.Band())
	assert.Equal(t, BandAboveApp, w1.Band(), "task position is tracked per display")
	assert.Len(t, e.Displays(), 2)
}

func TestDump(t *testing.T) {
	f := newFixture(t)

	dump := f.entry.Dump()

	assert.Equal(t, int64(9213763541297), dump["timestamp"])
	displays, ok := dump["displays"].([]any)
	require.True(t, ok)
	require.Len(t, displays, 1)

	root := displays[0].(map[string]any)
	assert.Equal(t, "Display", root["kind"])
	assert.Equal(t, 0, root["display_id"])
	assert.Equal(t, "SkRegion((0,0,1440,2960))", root["bounds"])

	children := root["children"].([]any)
	require.Len(t, children, 5)
	status := children[0].(map[string]any)
	assert.Equal(t, "StatusBar", status["title"])
	assert.Equal(t, "above_app", status["band"])
	assert.Equal(t, false, status["app"])
}

func TestParseKindAndBand(t *testing.T) {
	k, ok := ParseKind("ActivityTask")
	assert.True(t, ok)
	assert.Equal(t, KindActivityTask, k)

	_, ok = ParseKind("Surface")
	assert.False(t, ok)

	b, ok := ParseBand("below_app")
	assert.True(t, ok)
	assert.Equal(t, BandBelowApp, b)

	b, ok = ParseBand("")
	assert.True(t, ok)
	assert.Equal(t, BandUnspecified, b)

	_, ok = ParseBand("floating")
	assert.False(t, ok)
}
