package willowkit

import (
	"fmt"
	"image"
	"math"
	"sync/atomic"
	"time"
)

// IsolationStrategy selects how a snapshot keeps its subject apart from the
// rest of the scene while it renders.
type IsolationStrategy uint8

const (
	// IsolateMoveInPlace moves the target itself to the isolation point and
	// writes its original local position back afterwards. The target must be
	// attached to the world, and it and its ancestors must be visible.
	IsolateMoveInPlace IsolationStrategy = iota
	// IsolateCloneOnPrivateLayer renders a clone parented to a scratch
	// container on a layer no other visible node uses. The target is never
	// touched and may be hidden or detached from the world.
	IsolateCloneOnPrivateLayer
)

func (s IsolationStrategy) String() string {
	switch s {
	case IsolateMoveInPlace:
		return "move-in-place"
	case IsolateCloneOnPrivateLayer:
		return "clone-on-private-layer"
	default:
		return fmt.Sprintf("IsolationStrategy(%d)", uint8(s))
	}
}

// SnapshotState is a step of a single snapshot call.
type SnapshotState uint8

const (
	StateIdle SnapshotState = iota
	StateIsolating
	StateFraming
	StateRendering
	StateReadingBack
	StateCleaningUp
	StateDone
)

var snapshotStateNames = [...]string{
	StateIdle:        "idle",
	StateIsolating:   "isolating",
	StateFraming:     "framing",
	StateRendering:   "rendering",
	StateReadingBack: "reading back",
	StateCleaningUp:  "cleaning up",
	StateDone:        "done",
}

func (s SnapshotState) String() string {
	if int(s) < len(snapshotStateNames) {
		return snapshotStateNames[s]
	}
	return fmt.Sprintf("SnapshotState(%d)", uint8(s))
}

// Framing constants.
const (
	SnapshotNear      = 0.01 // near clip distance
	SnapshotFarMargin = 0.5  // added beyond distance + radius for the far clip
	EmptyBoundsExtent = 0.25 // half extent of the 0.5-unit box used for targets without geometry
)

// DefaultIsolationPoint is where subjects are rendered when
// SnapshotOptions.IsolationPoint is nil.
var DefaultIsolationPoint = Vec3{0, -10000, 0}

// SnapshotOptions configures RenderSnapshot. The zero value selects
// IsolateMoveInPlace, a transparent background, automatic camera distance,
// an automatically chosen private layer, and DefaultIsolationPoint. FieldOfView
// and Resolution have no defaults and must be positive.
type SnapshotOptions struct {
	Strategy IsolationStrategy

	// FieldOfView is the camera's vertical field of view in degrees, in (0, 180).
	FieldOfView float64
	// Resolution is the width and height of the square output image.
	Resolution int

	// Background, when set, clears the frame to a solid color. When nil the
	// frame starts fully transparent.
	Background *Color
	// CameraOffset, when set, places the camera at bounds center + offset.
	// When nil the camera sits on +Z at the distance that fits the bounding
	// sphere in the field of view.
	CameraOffset *Vec3

	// PrivateLayer is the layer used by IsolateCloneOnPrivateLayer. Zero
	// picks the highest layer no visible node uses. A non-zero layer already
	// used by a visible node is rejected.
	PrivateLayer uint8
	// IsolationPoint is the world position subjects are rendered at.
	IsolationPoint *Vec3

	// OnTransition, if set, is called for every state change.
	OnTransition func(from, to SnapshotState)
}

// DefaultSnapshotOptions returns options with a 30 degree field of view and
// a 512 pixel resolution.
func DefaultSnapshotOptions() SnapshotOptions {
	return SnapshotOptions{
		FieldOfView: 30,
		Resolution:  512,
	}
}

// Framing is the camera placement derived from a bounding volume.
type Framing struct {
	Center   Vec3    // bounds center, the look-at point
	Radius   float64 // length of the bounds half extents
	Distance float64 // eye to center
	Eye      Vec3
	Near     float64
	Far      float64
}

// ComputeFraming places a camera so the bounding sphere of bounds fits in a
// vertical field of view of fovDegrees. With a nil offset the camera sits on
// +Z at radius / tan(fov/2); otherwise it sits at center + offset. An empty
// box is treated as the fallback box at the origin.
func ComputeFraming(bounds Box3, fovDegrees float64, offset *Vec3) Framing {
	if bounds.IsEmpty() {
		bounds = BoxFromCenter(Vec3{}, Vec3{EmptyBoundsExtent, EmptyBoundsExtent, EmptyBoundsExtent})
	}
	f := Framing{
		Center: bounds.Center(),
		Radius: bounds.Extents().Length(),
		Near:   SnapshotNear,
	}
	if offset != nil {
		f.Distance = offset.Length()
		f.Eye = f.Center.Add(*offset)
	} else {
		f.Distance = f.Radius / math.Tan(fovDegrees*math.Pi/360)
		f.Eye = f.Center.Add(Vec3{0, 0, f.Distance})
	}
	f.Far = f.Distance + f.Radius + SnapshotFarMargin
	return f
}

// RenderableBounds returns the world-space bounds of every visible mesh node
// in n's subtree. The result is empty when the subtree has no geometry.
func RenderableBounds(n *Node) Box3 {
	b := EmptyBox3()
	if n == nil || n.disposed {
		return b
	}
	var walk func(n *Node, wt [12]float64)
	walk = func(n *Node, wt [12]float64) {
		if !n.Visible {
			return
		}
		if n.Renderable && hasGeometry(n) {
			b = b.Union(meshWorldBounds(n, wt))
		}
		for _, c := range n.children {
			walk(c, multiplyAffine(wt, computeLocalTransform(c)))
		}
	}
	walk(n, n.WorldTransform())
	return b
}

// snapshotSeq makes names of temporary nodes and cameras unique across calls.
var snapshotSeq atomic.Uint64

// Snapshotter renders single nodes of a World into images using temporary,
// isolated cameras and targets. It holds no state between calls.
type Snapshotter struct {
	world  *World
	device Device
}

// NewSnapshotter creates a snapshotter drawing world with device.
func NewSnapshotter(world *World, device Device) *Snapshotter {
	return &Snapshotter{world: world, device: device}
}

// World returns the world the snapshotter renders.
func (s *Snapshotter) World() *World { return s.world }

// Device returns the device the snapshotter renders with.
func (s *Snapshotter) Device() Device { return s.device }

// RenderSnapshot renders target into a Resolution×Resolution image.
//
// Arguments are validated before anything is allocated; failures wrap
// ErrInvalidArgument. Once isolation starts, every temporary resource (scratch
// container, clone, camera, offscreen target) is released and the device's
// active target restored before RenderSnapshot returns, on success and
// failure alike. Failures after validation are reported as *SnapshotError.
func (s *Snapshotter) RenderSnapshot(target *Node, opts SnapshotOptions) (*image.NRGBA, error) {
	layer, err := s.validate(target, &opts)
	if err != nil {
		return nil, err
	}
	r := &snapshotRun{s: s, target: target, opts: opts, layer: layer}
	return r.execute()
}

// validate checks every argument and resolves the private layer without
// touching the scene.
func (s *Snapshotter) validate(target *Node, opts *SnapshotOptions) (uint8, error) {
	if s == nil || s.world == nil || s.device == nil {
		return 0, fmt.Errorf("snapshotter needs a world and a device: %w", ErrInvalidArgument)
	}
	if !IsAlive(target) {
		return 0, fmt.Errorf("snapshot target is nil or disposed: %w", ErrInvalidArgument)
	}
	if target == s.world.root {
		return 0, fmt.Errorf("cannot snapshot the world root: %w", ErrInvalidArgument)
	}
	if opts.Resolution <= 0 {
		return 0, fmt.Errorf("resolution %d must be positive: %w", opts.Resolution, ErrInvalidArgument)
	}
	if !isFinite(opts.FieldOfView) || opts.FieldOfView <= 0 || opts.FieldOfView >= 180 {
		return 0, fmt.Errorf("field of view %v must be in (0, 180): %w", opts.FieldOfView, ErrInvalidArgument)
	}
	if o := opts.CameraOffset; o != nil {
		if !isFiniteVec(*o) || o.Length() == 0 {
			return 0, fmt.Errorf("camera offset %v must be finite and non-zero: %w", *o, ErrInvalidArgument)
		}
	}
	if p := opts.IsolationPoint; p != nil && !isFiniteVec(*p) {
		return 0, fmt.Errorf("isolation point %v must be finite: %w", *p, ErrInvalidArgument)
	}

	switch opts.Strategy {
	case IsolateMoveInPlace:
		if !s.world.Contains(target) {
			return 0, fmt.Errorf("move-in-place target %q is not attached to the world: %w", target.Name, ErrInvalidArgument)
		}
		if !visibleInWorld(target) {
			return 0, fmt.Errorf("move-in-place target %q or one of its ancestors is hidden: %w", target.Name, ErrInvalidArgument)
		}
		return 0, nil
	case IsolateCloneOnPrivateLayer:
		return s.privateLayer(opts.PrivateLayer)
	default:
		return 0, fmt.Errorf("unknown isolation strategy %d: %w", uint8(opts.Strategy), ErrInvalidArgument)
	}
}

// privateLayer resolves the layer for a clone. requested == 0 picks the
// highest free layer.
func (s *Snapshotter) privateLayer(requested uint8) (uint8, error) {
	used := s.world.LayersInUse(nil)
	if requested != 0 {
		if requested >= MaxLayers {
			return 0, fmt.Errorf("private layer %d out of range: %w", requested, ErrInvalidArgument)
		}
		if used.Has(requested) {
			return 0, fmt.Errorf("private layer %d is used by visible nodes: %w", requested, ErrInvalidArgument)
		}
		return requested, nil
	}
	for l := uint8(MaxLayers - 1); l > 0; l-- {
		if !used.Has(l) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("no free private layer: %w", ErrInvalidArgument)
}

// visibleInWorld reports whether n and all of its ancestors are visible.
func visibleInWorld(n *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if !p.Visible {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isFiniteVec(v Vec3) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// --- Single call ---

// snapshotTimings holds per-phase durations for debug logging.
type snapshotTimings struct {
	isolate  time.Duration
	frame    time.Duration
	render   time.Duration
	readback time.Duration
	cleanup  time.Duration
}

// snapshotRun is the transient state of one RenderSnapshot call.
type snapshotRun struct {
	s      *Snapshotter
	target *Node
	opts   SnapshotOptions
	layer  uint8
	orbit  float64 // radians around +Y applied to the eye, used by turntables

	state   SnapshotState
	scope   resourceScope
	subject *Node // target or its clone
	mask    LayerMask
	framing Framing
	timings snapshotTimings
}

func (r *snapshotRun) transition(to SnapshotState) {
	from := r.state
	r.state = to
	if r.opts.OnTransition != nil {
		r.opts.OnTransition(from, to)
	}
}

func (r *snapshotRun) isolationPoint() Vec3 {
	if r.opts.IsolationPoint != nil {
		return *r.opts.IsolationPoint
	}
	return DefaultIsolationPoint
}

func (r *snapshotRun) execute() (img *image.NRGBA, err error) {
	w := r.s.world
	start := time.Now()
	w.emit(SnapshotEvent{
		Type:       EventSnapshotStarted,
		EntityID:   r.target.EntityID,
		NodeID:     r.target.ID,
		Strategy:   r.opts.Strategy,
		Resolution: r.opts.Resolution,
		State:      r.state,
	})

	completed := false
	defer func() {
		failedIn := r.state
		r.transition(StateCleaningUp)
		t0 := time.Now()
		r.scope.close()
		r.timings.cleanup = time.Since(t0)
		r.transition(StateDone)

		if !completed && err == nil {
			// Panicking; the scene is restored and the panic continues.
			return
		}
		ev := SnapshotEvent{
			Type:       EventSnapshotCompleted,
			EntityID:   r.target.EntityID,
			NodeID:     r.target.ID,
			Strategy:   r.opts.Strategy,
			Resolution: r.opts.Resolution,
			State:      StateDone,
			Duration:   time.Since(start),
		}
		if err != nil {
			img = nil
			err = &SnapshotError{State: failedIn, Err: err}
			ev.Type = EventSnapshotFailed
			ev.State = failedIn
			ev.Err = err
		}
		w.emit(ev)
		if w.debug {
			w.debugLogSnapshot(r.target.Name, r.timings, err)
		}
	}()

	t0 := time.Now()
	r.transition(StateIsolating)
	if err = r.isolate(); err != nil {
		return nil, err
	}
	r.timings.isolate = time.Since(t0)

	t0 = time.Now()
	r.transition(StateFraming)
	r.frame()
	r.timings.frame = time.Since(t0)

	t0 = time.Now()
	r.transition(StateRendering)
	if err = r.render(); err != nil {
		return nil, err
	}
	r.timings.render = time.Since(t0)

	t0 = time.Now()
	r.transition(StateReadingBack)
	img, err = r.readBack()
	if err != nil {
		return nil, err
	}
	r.timings.readback = time.Since(t0)

	completed = true
	return img, nil
}

// isolate separates the subject from the rest of the scene and registers the
// undo step with the scope.
func (r *snapshotRun) isolate() error {
	w := r.s.world
	point := r.isolationPoint()

	switch r.opts.Strategy {
	case IsolateMoveInPlace:
		t := r.target
		saved := t.Position
		r.scope.add("restore target position", func() {
			t.Position = saved
			markSubtreeDirty(t)
		})
		t.SetWorldPosition(point)
		r.subject = t
		r.mask = AllLayers

	case IsolateCloneOnPrivateLayer:
		seq := snapshotSeq.Add(1)
		container := NewContainer(fmt.Sprintf("snapshot-container-%d", seq))
		container.Layer = r.layer
		container.Position = point
		w.root.AddChild(container)
		r.scope.add("destroy isolation container", container.Dispose)

		clone := r.target.Clone()
		clone.Name = fmt.Sprintf("%s (snapshot %d)", r.target.Name, seq)
		clone.Position = Vec3{}
		clone.Visible = true
		clone.SetLayerRecursive(r.layer)
		container.AddChild(clone)
		r.subject = clone
		r.mask = LayerBit(r.layer)
	}
	return nil
}

// frame computes the camera placement for the isolated subject.
func (r *snapshotRun) frame() {
	bounds := RenderableBounds(r.subject)
	if bounds.IsEmpty() || bounds.Extents().Length() == 0 {
		e := EmptyBoundsExtent
		bounds = BoxFromCenter(r.subject.WorldPosition(), Vec3{e, e, e})
	}
	f := ComputeFraming(bounds, r.opts.FieldOfView, r.opts.CameraOffset)
	if r.orbit != 0 {
		f.Eye = f.Center.Add(rotateY(f.Eye.Sub(f.Center), r.orbit))
	}
	r.framing = f
}

// render creates the temporary camera and offscreen target, makes the target
// active, and draws the world into it.
func (r *snapshotRun) render() error {
	w, dev := r.s.world, r.s.device
	f := r.framing

	cam := w.NewCamera(fmt.Sprintf("snapshot-camera-%d", snapshotSeq.Add(1)))
	r.scope.add("remove snapshot camera", func() { w.RemoveCamera(cam) })
	cam.Position = f.Eye
	cam.LookAt(f.Center)
	cam.FieldOfView = r.opts.FieldOfView
	cam.Near = f.Near
	cam.Far = f.Far
	cam.CullingMask = r.mask
	if bg := r.opts.Background; bg != nil {
		cam.ClearMode = ClearSolidColor
		cam.Background = *bg
	} else {
		cam.ClearMode = ClearDepthOnly
	}

	res := r.opts.Resolution
	target, err := dev.NewTarget(res, res, TargetOptions{AntiAlias: true})
	if err != nil {
		return fmt.Errorf("allocate %dx%d target: %w", res, res, err)
	}
	r.scope.add("dispose offscreen target", target.Dispose)

	prev := dev.ActiveTarget()
	dev.SetActiveTarget(target)
	r.scope.add("restore active target", func() { dev.SetActiveTarget(prev) })

	if err := w.Render(cam, target); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// readBack copies the active target into a CPU image.
func (r *snapshotRun) readBack() (*image.NRGBA, error) {
	active := r.s.device.ActiveTarget()
	if active == nil {
		return nil, fmt.Errorf("no active target to read: %w", ErrRenderBackend)
	}
	img, err := active.ReadPixels()
	if err != nil {
		return nil, fmt.Errorf("read back: %w", err)
	}
	res := r.opts.Resolution
	if b := img.Bounds(); b.Dx() != res || b.Dy() != res {
		return nil, fmt.Errorf("read back %dx%d, want %dx%d: %w", b.Dx(), b.Dy(), res, res, ErrRenderBackend)
	}
	return img, nil
}

// rotateY rotates v around the +Y axis by angle radians.
func rotateY(v Vec3, angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{v.X*c + v.Z*s, v.Y, -v.X*s + v.Z*c}
}
