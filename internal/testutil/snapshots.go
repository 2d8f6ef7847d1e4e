// Package testutil provides fixtures for window-trace tests: snapshot
// builders, a reference trace, and deterministic timestamp and id sources.
package testutil

import (
	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
	"github.com/PixelDust-Twelve/android-platform-testing/internal/snapshot"
)

// SnapshotBuilder assembles a snapshot record by record. Records keep the
// order in which they are added, which is the z-order of siblings.
type SnapshotBuilder struct {
	s snapshot.Snapshot
}

// NewSnapshot starts a snapshot at the given timestamp.
func NewSnapshot(ts int64) *SnapshotBuilder {
	return &SnapshotBuilder{s: snapshot.Snapshot{Timestamp: ts}}
}

// Focus sets the focused window and application.
func (b *SnapshotBuilder) Focus(window, app string) *SnapshotBuilder {
	b.s.FocusedWindow = window
	b.s.FocusedApp = app
	return b
}

// Display adds a visible root display.
func (b *SnapshotBuilder) Display(id int64, displayID int, bounds region.Rect) *SnapshotBuilder {
	return b.Record(snapshot.Record{
		ID:        id,
		Kind:      "Display",
		Title:     "Built-in Screen",
		Visible:   true,
		DisplayID: displayID,
		Rects:     []region.Rect{bounds},
	})
}

// Task adds an ActivityTask.
func (b *SnapshotBuilder) Task(id, parent int64, taskID int, visible bool, bounds ...region.Rect) *SnapshotBuilder {
	return b.Record(snapshot.Record{
		ID:      id,
		Parent:  snapshot.ParentRef(parent),
		Kind:    "ActivityTask",
		Visible: visible,
		TaskID:  taskID,
		Rects:   bounds,
	})
}

// Activity adds an Activity in the given lifecycle state.
func (b *SnapshotBuilder) Activity(id, parent int64, title, state string, visible bool) *SnapshotBuilder {
	return b.Record(snapshot.Record{
		ID:          id,
		Parent:      snapshot.ParentRef(parent),
		Kind:        "Activity",
		Title:       title,
		State:       state,
		Visible:     visible,
		FrontOfTask: true,
	})
}

// Window adds a WindowState whose band is derived from its position.
func (b *SnapshotBuilder) Window(id, parent int64, title string, visible bool, bounds ...region.Rect) *SnapshotBuilder {
	return b.Record(snapshot.Record{
		ID:      id,
		Parent:  snapshot.ParentRef(parent),
		Kind:    "WindowState",
		Title:   title,
		Visible: visible,
		LayerID: int(id),
		Rects:   bounds,
	})
}

// Container adds a GenericContainer.
func (b *SnapshotBuilder) Container(id, parent int64, title string, visible bool) *SnapshotBuilder {
	return b.Record(snapshot.Record{
		ID:      id,
		Parent:  snapshot.ParentRef(parent),
		Kind:    "WindowContainer",
		Title:   title,
		Visible: visible,
	})
}

// Record adds a raw record.
func (b *SnapshotBuilder) Record(r snapshot.Record) *SnapshotBuilder {
	b.s.Records = append(b.s.Records, r)
	return b
}

// Build returns the assembled snapshot.
func (b *SnapshotBuilder) Build() snapshot.Snapshot {
	out := b.s
	out.Records = append([]snapshot.Record(nil), b.s.Records...)
	return out
}

// Rect is shorthand for region.Rect{Left: l, Top: t, Right: r, Bottom: b}.
func Rect(l, t, r, b int) region.Rect {
	return region.Rect{Left: l, Top: t, Right: r, Bottom: b}
}

// Window titles and timestamps of ReferenceTrace.
const (
	TSLauncher       int64 = 9213763541297
	TSChromeStarting int64 = 9215511235586
	TSChrome         int64 = 9216093628925

	StatusBar      = "StatusBar"
	NavigationBar  = "NavigationBar"
	InputMethod    = "InputMethod"
	Wallpaper      = "com.android.systemui.ImageWallpaper"
	LauncherApp    = "com.google.android.apps.nexuslauncher/.NexusLauncherActivity"
	LauncherWindow = "com.google.android.apps.nexuslauncher/com.google.android.apps.nexuslauncher.NexusLauncherActivity"
	ChromeApp      = "com.android.chrome/org.chromium.chrome.browser.ChromeTabbedActivity"
	ChromeStarting = "Splash Screen com.android.chrome"
	ChromeWindow   = "com.android.chrome/org.chromium.chrome.browser.ChromeTabbedActivity"
)

// ReferenceTrace returns three snapshots of a phone opening Chrome from the
// launcher:
//
//   - TSLauncher: launcher resumed, keyboard hidden
//   - TSChromeStarting: Chrome task on top showing a splash window while the
//     launcher is still visible beneath it
//   - TSChrome: Chrome resumed, launcher stopped, keyboard shown
//
// Every snapshot has the status bar (0,0,1440,171) and navigation bar above
// the apps and the wallpaper below them.
func ReferenceTrace() []snapshot.Snapshot {
	screen := Rect(0, 0, 1440, 2960)
	status := Rect(0, 0, 1440, 171)
	nav := Rect(0, 2792, 1440, 2960)
	ime := Rect(0, 1578, 1440, 2960)

	launcher := NewSnapshot(TSLauncher).
		Focus(LauncherWindow, LauncherApp).
		Display(1, 0, screen).
		Window(2, 1, StatusBar, true, status).
		Window(3, 1, NavigationBar, true, nav).
		Window(4, 1, InputMethod, false, ime).
		Task(10, 1, 1, true, screen).
		Activity(11, 10, LauncherApp, "RESUMED", true).
		Window(12, 11, LauncherWindow, true, screen).
		Window(5, 1, Wallpaper, true, screen).
		Build()

	starting := NewSnapshot(TSChromeStarting).
		Focus(LauncherWindow, LauncherApp).
		Display(1, 0, screen).
		Window(2, 1, StatusBar, true, status).
		Window(3, 1, NavigationBar, true, nav).
		Window(4, 1, InputMethod, false, ime).
		Task(20, 1, 2, true, screen).
		Activity(21, 20, ChromeApp, "INITIALIZING", true).
		Window(23, 21, ChromeStarting, true, screen).
		Task(10, 1, 1, true, screen).
		Activity(11, 10, LauncherApp, "PAUSING", true).
		Window(12, 11, LauncherWindow, true, screen).
		Window(5, 1, Wallpaper, true, screen).
		Build()

	chrome := NewSnapshot(TSChrome).
		Focus(ChromeWindow, ChromeApp).
		Display(1, 0, screen).
		Window(2, 1, StatusBar, true, status).
		Window(3, 1, NavigationBar, true, nav).
		Window(4, 1, InputMethod, true, ime).
		Task(20, 1, 2, true, screen).
		Activity(21, 20, ChromeApp, "RESUMED", true).
		Window(22, 21, ChromeWindow, true, screen).
		Task(10, 1, 1, false, screen).
		Activity(11, 10, LauncherApp, "STOPPED", false).
		Window(12, 11, LauncherWindow, false, screen).
		Window(5, 1, Wallpaper, true, screen).
		Build()

	return []snapshot.Snapshot{launcher, starting, chrome}
}
