package willowkit

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EntityStore is the interface for optional ECS integration.
// When set on a World, snapshot lifecycle events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event SnapshotEvent)
}

// SnapshotEventType identifies a point in the snapshot lifecycle.
type SnapshotEventType uint8

const (
	EventSnapshotStarted   SnapshotEventType = iota // isolation is about to begin
	EventSnapshotCompleted                          // image read back, scene restored
	EventSnapshotFailed                             // error returned, scene restored
)

// SnapshotEvent carries snapshot lifecycle data for the ECS bridge.
type SnapshotEvent struct {
	Type       SnapshotEventType
	EntityID   uint32 // EntityID of the snapshot target
	NodeID     uint32
	Strategy   IsolationStrategy
	Resolution int
	State      SnapshotState // state reached when the event was emitted
	Err        error         // non-nil for EventSnapshotFailed
	Duration   time.Duration
}

const (
	defaultCommandCap  = 1024
	defaultSnapshotDir = "snapshots"
)

// World is the top-level object that owns the node tree, cameras, and render
// buffers.
type World struct {
	root  *Node
	store EntityStore
	debug bool

	// SnapshotDir is where SaveSnapshot writes PNG files. Defaults to
	// "snapshots".
	SnapshotDir string

	// Cameras
	cameras []*Camera

	// Render state
	commands []RenderCommand
	sortBuf  []RenderCommand
	verts    []Vertex
	inds     []uint32

	screenDev       *EbitenDevice // lazily created by Draw
	screenshotQueue []string
	tweens          []*TweenGroup
}

// NewWorld creates a new world with a pre-created root container.
func NewWorld() *World {
	return &World{
		root:        NewContainer("root"),
		SnapshotDir: defaultSnapshotDir,
		commands:    make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:     make([]RenderCommand, 0, defaultCommandCap),
	}
}

// Root returns the world's root container node.
func (w *World) Root() *Node {
	return w.root
}

// Update advances node tweens and camera animations by dt seconds and
// refreshes world transforms.
func (w *World) Update(dt float32) {
	w.updateTweens(dt)
	updateWorldTransform(w.root, identityTransform, false)
	for _, cam := range w.cameras {
		cam.update(dt)
	}
}

// NewCamera creates a perspective camera with default settings and adds it to
// the world.
func (w *World) NewCamera(name string) *Camera {
	cam := newCamera(name)
	w.cameras = append(w.cameras, cam)
	return cam
}

// RemoveCamera removes a camera from the world. No-op if cam is not present.
func (w *World) RemoveCamera(cam *Camera) {
	for i, c := range w.cameras {
		if c == cam {
			w.cameras = append(w.cameras[:i], w.cameras[i+1:]...)
			return
		}
	}
}

// Cameras returns the world's camera list. The returned slice MUST NOT be mutated.
func (w *World) Cameras() []*Camera {
	return w.cameras
}

// NodeCount returns the number of nodes in the tree, root included.
func (w *World) NodeCount() int {
	count := 0
	w.root.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Contains reports whether n is attached to this world's tree.
func (w *World) Contains(n *Node) bool {
	return n != nil && isAncestor(w.root, n)
}

// Instantiate clones src and attaches the copy under parent, or under the
// root when parent is nil. It returns the copy.
func (w *World) Instantiate(src, parent *Node) *Node {
	if src == nil {
		panic("willowkit: cannot instantiate nil node")
	}
	if parent == nil {
		parent = w.root
	}
	c := src.Clone()
	parent.AddChild(c)
	return c
}

// Destroy detaches n from the tree and disposes it with its subtree.
// Destroying the root panics.
func (w *World) Destroy(n *Node) {
	if n == w.root {
		panic("willowkit: cannot destroy the world root")
	}
	n.Dispose()
}

// LayersInUse returns the mask of layers used by visible nodes in the tree.
// The subtree rooted at exclude (if any) is skipped.
func (w *World) LayersInUse(exclude *Node) LayerMask {
	var mask LayerMask
	w.root.Walk(func(n *Node) bool {
		if n == exclude || !n.Visible {
			return false
		}
		mask |= LayerBit(n.Layer)
		return true
	})
	return mask
}

// SetEntityStore sets the optional ECS bridge.
func (w *World) SetEntityStore(store EntityStore) {
	w.store = store
}

// emit forwards an event to the entity store if one is set.
func (w *World) emit(ev SnapshotEvent) {
	if w.store != nil {
		w.store.EmitEvent(ev)
	}
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are printed, and per-frame
// and per-snapshot timing stats are logged to stderr.
func (w *World) SetDebugMode(enabled bool) {
	w.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set World debug flag so that node
// operations (which lack a World pointer) can check it cheaply. Only valid
// with a single World; multiple Worlds with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool

// Render draws the world as seen by cam into target. Solid-color cameras
// clear the target first; depth-only cameras leave existing pixels in place.
func (w *World) Render(cam *Camera, target Target) error {
	if cam.ClearMode == ClearSolidColor {
		target.Clear(cam.Background)
	}

	var stats debugStats
	var t0 time.Time
	if w.debug {
		t0 = time.Now()
	}

	w.commands = w.commands[:0]
	view := cam.view(float64(target.Width()), float64(target.Height()))
	treeOrder := 0
	w.traverse(w.root, identityTransform, false, &view, &treeOrder)

	if w.debug {
		stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	w.mergeSort()

	if w.debug {
		stats.sortTime = time.Since(t0)
		stats.commandCount = len(w.commands)
		t0 = time.Now()
	}

	err := w.submit(target)

	if w.debug {
		stats.submitTime = time.Since(t0)
		w.debugLog(cam.Name, stats)
	}
	return err
}

// Draw renders every camera into its viewport on screen. A camera with an
// empty viewport covers the whole screen.
func (w *World) Draw(screen *ebiten.Image) {
	if w.screenDev == nil {
		w.screenDev = NewEbitenDevice()
	}
	for _, cam := range w.cameras {
		dst := screen
		vp := cam.Viewport
		if vp.Width > 0 && vp.Height > 0 {
			dst = screen.SubImage(image.Rect(
				int(vp.X), int(vp.Y),
				int(vp.X+vp.Width), int(vp.Y+vp.Height),
			)).(*ebiten.Image)
		}
		if err := w.Render(cam, w.screenDev.Wrap(dst)); err != nil {
			debugWarnf("draw camera %q: %v", cam.Name, err)
		}
	}
	w.flushScreenshots(screen)
}
