package wm

import (
	"fmt"
	"slices"

	"github.com/PixelDust-Twelve/android-platform-testing/internal/region"
)

// Kind names a container variant.
type Kind string

const (
	KindDisplay      Kind = "Display"
	KindActivityTask Kind = "ActivityTask"
	KindActivity     Kind = "Activity"
	KindWindowState  Kind = "WindowState"
	KindContainer    Kind = "WindowContainer"
)

// ParseKind maps a record kind string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindDisplay, KindActivityTask, KindActivity, KindWindowState, KindContainer:
		return Kind(s), true
	}
	return "", false
}

// Band is the stacking band a window belongs to.
type Band int

const (
	BandUnspecified Band = iota
	BandAboveApp
	BandApp
	BandBelowApp
)

func (b Band) String() string {
	switch b {
	case BandAboveApp:
		return "above_app"
	case BandApp:
		return "app"
	case BandBelowApp:
		return "below_app"
	default:
		return "unspecified"
	}
}

// ParseBand maps a band name to a Band. The empty string is BandUnspecified.
func ParseBand(s string) (Band, bool) {
	switch s {
	case "", "unspecified":
		return BandUnspecified, true
	case "above_app":
		return BandAboveApp, true
	case "app":
		return BandApp, true
	case "below_app":
		return BandBelowApp, true
	}
	return BandUnspecified, false
}

// rank orders bands top to bottom.
func (b Band) rank() int {
	switch b {
	case BandAboveApp:
		return 0
	case BandApp:
		return 1
	default:
		return 2
	}
}

// Container is a node of the window hierarchy.
// Only Display, ActivityTask, Activity, WindowState and GenericContainer
// implement it.
type Container interface {
	ID() int64
	ParentID() (int64, bool)
	Kind() Kind
	Token() string
	Title() string
	VisibleFlag() bool
	IsVisible() bool
	Children() []Container
	Bounds() region.Region
	String() string

	base() *node // Sealed
}

// Attrs carries the fields shared by every container kind.
type Attrs struct {
	ID      int64
	Token   string
	Title   string
	Visible bool
	Rects   []region.Rect
}

type node struct {
	id          int64
	parentID    int64
	hasParent   bool
	token       string
	title       string
	visibleFlag bool
	recorded    region.Region
	hasRects    bool
	children    []Container

	// set by NewEntry
	visible bool
	bounds  region.Region
}

func newNode(a Attrs) node {
	n := node{
		id:          a.ID,
		token:       a.Token,
		title:       a.Title,
		visibleFlag: a.Visible,
	}
	if len(a.Rects) > 0 {
		n.recorded = region.New(a.Rects...)
		n.hasRects = true
	}
	return n
}

func (n *node) base() *node { return n }

// ID returns the container id from the trace record.
func (n *node) ID() int64 { return n.id }

// ParentID returns the parent's id, or false for a root.
func (n *node) ParentID() (int64, bool) { return n.parentID, n.hasParent }

// Token returns the window-manager token.
func (n *node) Token() string { return n.token }

// Title returns the human-readable name.
func (n *node) Title() string { return n.title }

// VisibleFlag returns the recorded visibility flag.
func (n *node) VisibleFlag() bool { return n.visibleFlag }

// IsVisible reports effective visibility: the recorded flag of this
// container and every ancestor.
func (n *node) IsVisible() bool { return n.visible }

// Children returns a copy of the children, top-most first.
func (n *node) Children() []Container { return slices.Clone(n.children) }

// Bounds returns the screen region occupied by the container.
func (n *node) Bounds() region.Region { return n.bounds }

func (n *node) describe(k Kind) string {
	return fmt.Sprintf("%s {%s %s}", k, n.token, n.title)
}

// Display is the root of one screen's hierarchy.
type Display struct {
	node
	displayID int
}

// NewDisplay creates a display container.
func NewDisplay(a Attrs, displayID int) *Display {
	return &Display{node: newNode(a), displayID: displayID}
}

func (*Display) Kind() Kind { return KindDisplay }

// DisplayID returns the platform display id.
func (d *Display) DisplayID() int { return d.displayID }

func (d *Display) String() string {
	return fmt.Sprintf("%s displayId=%d visible=%t", d.describe(KindDisplay), d.displayID, d.visible)
}

// ActivityTask groups the activities of one task.
type ActivityTask struct {
	node
	taskID int
}

// NewActivityTask creates a task container.
func NewActivityTask(a Attrs, taskID int) *ActivityTask {
	return &ActivityTask{node: newNode(a), taskID: taskID}
}

func (*ActivityTask) Kind() Kind { return KindActivityTask }

// TaskID returns the platform task id.
func (t *ActivityTask) TaskID() int { return t.taskID }

func (t *ActivityTask) String() string {
	return fmt.Sprintf("%s taskId=%d visible=%t", t.describe(KindActivityTask), t.taskID, t.visible)
}

// ActivityInfo carries the lifecycle fields of an Activity record.
type ActivityInfo struct {
	State       string
	FrontOfTask bool
	ProcID      int
	Translucent bool
}

// Activity is an application screen. Its parent is always an ActivityTask.
type Activity struct {
	node
	info ActivityInfo
}

// NewActivity creates an activity container.
func NewActivity(a Attrs, info ActivityInfo) *Activity {
	return &Activity{node: newNode(a), info: info}
}

func (*Activity) Kind() Kind { return KindActivity }

// State returns the recorded lifecycle state, for example "RESUMED".
func (a *Activity) State() string { return a.info.State }

// FrontOfTask reports whether the activity is the front of its task.
func (a *Activity) FrontOfTask() bool { return a.info.FrontOfTask }

// ProcID returns the hosting process id.
func (a *Activity) ProcID() int { return a.info.ProcID }

// IsTranslucent reports whether the activity lets lower content show through.
func (a *Activity) IsTranslucent() bool { return a.info.Translucent }

// TaskID returns the container id of the owning ActivityTask. Resolve it
// with Entry.TaskOf.
func (a *Activity) TaskID() int64 { return a.parentID }

func (a *Activity) String() string {
	return fmt.Sprintf("%s state=%s visible=%t", a.describe(KindActivity), a.info.State, a.visible)
}

// WindowState is a single window surface.
type WindowState struct {
	node
	layerID int
	band    Band

	// set by NewEntry
	resolved    Band
	activityID  int64
	hasActivity bool
	taskID      int
}

// NewWindowState creates a window. band may be BandUnspecified, in which case
// the band is derived from the window's position when the entry is sealed.
func NewWindowState(a Attrs, layerID int, band Band) *WindowState {
	return &WindowState{node: newNode(a), layerID: layerID, band: band}
}

func (*WindowState) Kind() Kind { return KindWindowState }

// LayerID returns the compositor layer id.
func (w *WindowState) LayerID() int { return w.layerID }

// Band returns the resolved stacking band.
func (w *WindowState) Band() Band { return w.resolved }

// RecordedBand returns the band from the trace record, if any.
func (w *WindowState) RecordedBand() Band { return w.band }

// IsAppWindow reports whether the window belongs to an activity.
func (w *WindowState) IsAppWindow() bool { return w.hasActivity }

// ActivityID returns the container id of the owning activity.
func (w *WindowState) ActivityID() (int64, bool) { return w.activityID, w.hasActivity }

// TaskID returns the task id of the owning task, or 0.
func (w *WindowState) TaskID() int { return w.taskID }

func (w *WindowState) String() string {
	return fmt.Sprintf("%s layer=%d band=%s visible=%t", w.describe(KindWindowState), w.layerID, w.resolved, w.visible)
}

// GenericContainer is any grouping node without kind-specific fields.
type GenericContainer struct {
	node
}

// NewGenericContainer creates a generic grouping container.
func NewGenericContainer(a Attrs) *GenericContainer {
	return &GenericContainer{node: newNode(a)}
}

func (*GenericContainer) Kind() Kind { return KindContainer }

func (g *GenericContainer) String() string {
	return fmt.Sprintf("%s visible=%t", g.describe(KindContainer), g.visible)
}

// Attach appends child as the bottom-most child of parent.
//
// Displays are always roots, an Activity may only sit under an ActivityTask,
// and a WindowState may only hold other WindowStates. Violations return an
// error wrapping ErrParentKind.
func Attach(parent, child Container) error {
	p, c := parent.base(), child.base()
	if p == c {
		return fmt.Errorf("%w: %s %d cannot be its own parent", ErrParentKind, child.Kind(), c.id)
	}
	if c.hasParent {
		return fmt.Errorf("%w: %s %d already has parent %d", ErrAttached, child.Kind(), c.id, c.parentID)
	}

	switch child.(type) {
	case *Display:
		return fmt.Errorf("%w: Display %d must be a root, got parent %s %d",
			ErrParentKind, c.id, parent.Kind(), p.id)
	case *Activity:
		if _, ok := parent.(*ActivityTask); !ok {
			return fmt.Errorf("%w: Activity %d requires an ActivityTask parent, got %s %d",
				ErrParentKind, c.id, parent.Kind(), p.id)
		}
	}
	if _, ok := parent.(*WindowState); ok {
		if _, ok := child.(*WindowState); !ok {
			return fmt.Errorf("%w: WindowState %d may only hold windows, got %s %d",
				ErrParentKind, p.id, child.Kind(), c.id)
		}
	}

	c.parentID = p.id
	c.hasParent = true
	p.children = append(p.children, child)
	return nil
}
