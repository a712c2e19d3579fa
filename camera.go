package willowkit

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ClearMode selects how a camera prepares its target before drawing.
type ClearMode uint8

const (
	// ClearDepthOnly leaves existing color untouched. A freshly allocated
	// target stays fully transparent.
	ClearDepthOnly ClearMode = iota
	// ClearSolidColor fills the target with Camera.Background.
	ClearSolidColor
)

// Camera defaults.
const (
	DefaultFieldOfView = 60.0
	DefaultNear        = 0.1
	DefaultFar         = 1000.0
)

// moveAnim holds active move-to tweens for the camera position.
type moveAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is a perspective camera looking from Position toward Target.
type Camera struct {
	Name string

	// Position is the world-space eye point.
	Position Vec3
	// Target is the world-space point the camera looks at.
	Target Vec3
	// Up is the approximate up direction. Defaults to +Y.
	Up Vec3

	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float64
	// Near and Far are the clip plane distances along the view direction.
	Near, Far float64

	// CullingMask selects which node layers this camera renders.
	CullingMask LayerMask

	ClearMode  ClearMode
	Background Color

	// Viewport is the screen-space rectangle used by World.Draw. An empty
	// viewport covers the whole screen.
	Viewport Rect

	moveTween *moveAnim
}

// newCamera creates a Camera with default values.
func newCamera(name string) *Camera {
	return &Camera{
		Name:        name,
		Position:    Vec3{0, 0, 10},
		Up:          Vec3{0, 1, 0},
		FieldOfView: DefaultFieldOfView,
		Near:        DefaultNear,
		Far:         DefaultFar,
		CullingMask: AllLayers,
	}
}

// LookAt points the camera at p.
func (c *Camera) LookAt(p Vec3) {
	c.Target = p
}

// MoveTo animates the camera position to p over duration seconds. The look-at
// target is unchanged. Advanced by World.Update.
func (c *Camera) MoveTo(p Vec3, duration float32, easeFn ease.TweenFunc) {
	c.moveTween = &moveAnim{
		tweens: [3]*gween.Tween{
			gween.New(float32(c.Position.X), float32(p.X), duration, easeFn),
			gween.New(float32(c.Position.Y), float32(p.Y), duration, easeFn),
			gween.New(float32(c.Position.Z), float32(p.Z), duration, easeFn),
		},
	}
}

// Moving reports whether a MoveTo animation is in progress.
func (c *Camera) Moving() bool {
	return c.moveTween != nil
}

// update advances the move animation. Called from World.Update().
func (c *Camera) update(dt float32) {
	if c.moveTween == nil {
		return
	}
	m := c.moveTween
	dst := [3]*float64{&c.Position.X, &c.Position.Y, &c.Position.Z}
	for i, tw := range m.tweens {
		if m.done[i] {
			continue
		}
		val, done := tw.Update(dt)
		*dst[i] = float64(val)
		m.done[i] = done
	}
	if m.done[0] && m.done[1] && m.done[2] {
		c.moveTween = nil
	}
}

// Project maps a world-space point to screen coordinates for a w×h target.
// depth is the distance along the view direction. ok is false when the point
// lies outside the near/far range.
func (c *Camera) Project(p Vec3, w, h float64) (x, y, depth float64, ok bool) {
	v := c.view(w, h)
	return v.project(p)
}

// --- View ---

// cameraView caches the camera basis and projection scale for one render.
type cameraView struct {
	eye                Vec3
	right, up, forward Vec3
	focal, aspect      float64
	halfW, halfH       float64
	near, far          float64
	mask               LayerMask
}

// view computes the camera basis. A degenerate look direction falls back to
// looking down -Z. An up vector parallel to the look direction is replaced
// by +Z.
func (c *Camera) view(w, h float64) cameraView {
	forward := c.Target.Sub(c.Position).Normalize()
	if forward == (Vec3{}) {
		forward = Vec3{0, 0, -1}
	}
	up := c.Up
	if up == (Vec3{}) {
		up = Vec3{0, 1, 0}
	}
	right := forward.Cross(up)
	if right.Length() < 1e-9 {
		right = forward.Cross(Vec3{0, 0, 1})
	}
	right = right.Normalize()
	aspect := 1.0
	if h > 0 {
		aspect = w / h
	}
	return cameraView{
		eye:     c.Position,
		right:   right,
		up:      right.Cross(forward),
		forward: forward,
		focal:   1 / math.Tan(c.FieldOfView*math.Pi/360),
		aspect:  aspect,
		halfW:   w / 2,
		halfH:   h / 2,
		near:    c.Near,
		far:     c.Far,
		mask:    c.CullingMask,
	}
}

func (v *cameraView) project(p Vec3) (x, y, depth float64, ok bool) {
	depth = v.depthOf(p)
	if depth < v.near || depth > v.far {
		return 0, 0, depth, false
	}
	x, y, depth = v.toScreen(p)
	return x, y, depth, true
}

// depthOf returns the distance of p along the view direction.
func (v *cameraView) depthOf(p Vec3) float64 {
	return p.Sub(v.eye).Dot(v.forward)
}

// toScreen projects p without range checks. depth must be positive.
func (v *cameraView) toScreen(p Vec3) (x, y, depth float64) {
	d := p.Sub(v.eye)
	depth = d.Dot(v.forward)
	ndcX := d.Dot(v.right) * v.focal / (depth * v.aspect)
	ndcY := d.Dot(v.up) * v.focal / depth
	return (ndcX + 1) * v.halfW, (1 - ndcY) * v.halfH, depth
}
