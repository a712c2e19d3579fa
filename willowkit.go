package willowkit

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default mesh tint.
var ColorWhite = Color{1, 1, 1, 1}

// ColorTransparent is fully transparent black.
var ColorTransparent = Color{}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// --- Vec3 ---

// Vec3 is a 3D vector used for positions, offsets, sizes, and directions
// throughout the API. The world is right-handed with +Y up.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Mul returns the component-wise product of v and o.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length, or the zero vector if v is zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp linearly interpolates from v to o by t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t, v.Z + (o.Z-v.Z)*t}
}

// Project returns the projection of v onto the direction onto.
// Projecting onto the zero vector yields the zero vector.
func (v Vec3) Project(onto Vec3) Vec3 {
	d := onto.Dot(onto)
	if d == 0 {
		return Vec3{}
	}
	return onto.Scale(v.Dot(onto) / d)
}

// ProjectOnPlane returns v with its component along normal removed.
func (v Vec3) ProjectOnPlane(normal Vec3) Vec3 {
	return v.Sub(v.Project(normal))
}

// SumVec3 returns the sum of all given vectors.
func SumVec3(vs ...Vec3) Vec3 {
	var s Vec3
	for _, v := range vs {
		s = s.Add(v)
	}
	return s
}

// --- Box3 ---

// Box3 is an axis-aligned 3D bounding box. The zero value is a degenerate
// box at the origin; use EmptyBox3 to start an accumulation.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox3 returns a box with Min = +Inf and Max = -Inf, so the first
// ExpandByPoint sets both corners.
func EmptyBox3() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// BoxFromCenter returns the box centered at c with the given half extents.
func BoxFromCenter(c, extents Vec3) Box3 {
	return Box3{Min: c.Sub(extents), Max: c.Add(extents)}
}

// IsEmpty reports whether max < min on any axis.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint returns b grown to include p.
func (b Box3) ExpandByPoint(p Vec3) Box3 {
	b.Min = Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)}
	b.Max = Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)}
	return b
}

// Union returns the smallest box containing both b and o. Empty boxes are
// ignored.
func (b Box3) Union(o Box3) Box3 {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.ExpandByPoint(o.Min).ExpandByPoint(o.Max)
}

// Center returns the center point of the box.
func (b Box3) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the vector from Min to Max.
func (b Box3) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Extents returns the half size of the box.
func (b Box3) Extents() Vec3 {
	return b.Size().Scale(0.5)
}

// Corners returns the eight corner points of the box.
func (b Box3) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// --- Layers ---

// MaxLayers is the number of render layers a LayerMask can address.
const MaxLayers = 32

// LayerDefault is the layer every node starts on.
const LayerDefault uint8 = 0

// LayerMask is a bitmask of render layers. A camera renders a node only when
// the bit for the node's Layer is set in the camera's CullingMask.
type LayerMask uint32

// AllLayers has every layer bit set.
const AllLayers LayerMask = ^LayerMask(0)

// LayerBit returns the mask with only the given layer set. Layers >= MaxLayers
// produce an empty mask.
func LayerBit(layer uint8) LayerMask {
	if layer >= MaxLayers {
		return 0
	}
	return 1 << layer
}

// Has reports whether layer is set in m.
func (m LayerMask) Has(layer uint8) bool {
	return m&LayerBit(layer) != 0
}

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeMesh                      // renders a triangle Mesh
)
