package willowkit

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [12]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
}

// Matrix layout (row-major 3x4, implicit last row 0 0 0 1):
//
//	| m[0]  m[1]  m[2]  m[3]  |
//	| m[4]  m[5]  m[6]  m[7]  |
//	| m[8]  m[9]  m[10] m[11] |

// computeLocalTransform computes the local affine matrix from the node's
// transform properties.
//
// Composition order:
//
//	Scale -> RotateZ -> RotateX -> RotateY -> Translate(Position)
func computeLocalTransform(n *Node) [12]float64 {
	sx, cx := math.Sincos(n.Rotation.X)
	sy, cy := math.Sincos(n.Rotation.Y)
	sz, cz := math.Sincos(n.Rotation.Z)

	// R = Ry * Rx * Rz
	r00 := cy*cz + sy*sx*sz
	r01 := -cy*sz + sy*sx*cz
	r02 := sy * cx
	r10 := cx * sz
	r11 := cx * cz
	r12 := -sx
	r20 := -sy*cz + cy*sx*sz
	r21 := sy*sz + cy*sx*cz
	r22 := cy * cx

	s := n.Scale
	p := n.Position
	return [12]float64{
		r00 * s.X, r01 * s.Y, r02 * s.Z, p.X,
		r10 * s.X, r11 * s.Y, r12 * s.Z, p.Y,
		r20 * s.X, r21 * s.Y, r22 * s.Z, p.Z,
	}
}

// multiplyAffine multiplies two affine matrices: result = parent * child.
func multiplyAffine(p, c [12]float64) [12]float64 {
	var r [12]float64
	for i := 0; i < 3; i++ {
		p0, p1, p2, p3 := p[i*4], p[i*4+1], p[i*4+2], p[i*4+3]
		r[i*4] = p0*c[0] + p1*c[4] + p2*c[8]
		r[i*4+1] = p0*c[1] + p1*c[5] + p2*c[9]
		r[i*4+2] = p0*c[2] + p1*c[6] + p2*c[10]
		r[i*4+3] = p0*c[3] + p1*c[7] + p2*c[11] + p3
	}
	return r
}

// invertAffine computes the inverse of an affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func invertAffine(m [12]float64) [12]float64 {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[4], m[5], m[6]
	g, h, i := m[8], m[9], m[10]

	co00 := e*i - f*h
	co01 := -(d*i - f*g)
	co02 := d*h - e*g
	det := a*co00 + b*co01 + c*co02
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	inv := 1.0 / det

	// Inverse of the 3x3 part is the transposed cofactor matrix / det.
	i00 := co00 * inv
	i01 := -(b*i - c*h) * inv
	i02 := (b*f - c*e) * inv
	i10 := co01 * inv
	i11 := (a*i - c*g) * inv
	i12 := -(a*f - c*d) * inv
	i20 := co02 * inv
	i21 := -(a*h - b*g) * inv
	i22 := (a*e - b*d) * inv

	tx, ty, tz := m[3], m[7], m[11]
	return [12]float64{
		i00, i01, i02, -(i00*tx + i01*ty + i02*tz),
		i10, i11, i12, -(i10*tx + i11*ty + i12*tz),
		i20, i21, i22, -(i20*tx + i21*ty + i22*tz),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [12]float64, v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

// transformDir applies the linear part of an affine matrix to a direction.
func transformDir(m [12]float64, v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// updateWorldTransform recomputes a node's cached worldTransform.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parentTransform [12]float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		local := computeLocalTransform(n)
		n.worldTransform = multiplyAffine(parentTransform, local)
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldTransform, recompute)
	}
}

// WorldTransform computes the node's local-to-world matrix from its ancestor
// chain. Unlike the cached transform used during traversal, it is always
// current.
func (n *Node) WorldTransform() [12]float64 {
	local := computeLocalTransform(n)
	if n.Parent == nil {
		return local
	}
	return multiplyAffine(n.Parent.WorldTransform(), local)
}

// --- Transform property setters ---

// SetPosition sets the node's local position and marks it dirty.
func (n *Node) SetPosition(x, y, z float64) {
	n.Position = Vec3{x, y, z}
	markSubtreeDirty(n)
}

// SetRotation sets the node's Euler rotation (radians) and marks it dirty.
func (n *Node) SetRotation(x, y, z float64) {
	n.Rotation = Vec3{x, y, z}
	markSubtreeDirty(n)
}

// SetScale sets the node's scale and marks it dirty.
func (n *Node) SetScale(x, y, z float64) {
	n.Scale = Vec3{x, y, z}
	markSubtreeDirty(n)
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	markSubtreeDirty(n)
}

// --- Coordinate conversion ---

// WorldPosition returns the world-space position of the node's origin.
func (n *Node) WorldPosition() Vec3 {
	m := n.WorldTransform()
	return Vec3{m[3], m[7], m[11]}
}

// LocalToWorld converts a local-space point to world-space.
func (n *Node) LocalToWorld(p Vec3) Vec3 {
	return transformPoint(n.WorldTransform(), p)
}

// WorldToLocal converts a world-space point to this node's local coordinate space.
func (n *Node) WorldToLocal(p Vec3) Vec3 {
	return transformPoint(invertAffine(n.WorldTransform()), p)
}

// SetWorldPosition moves the node so that its origin lands on the given
// world-space point, expressing it in the parent's space.
func (n *Node) SetWorldPosition(p Vec3) {
	if n.Parent == nil {
		n.Position = p
	} else {
		n.Position = n.Parent.WorldToLocal(p)
	}
	markSubtreeDirty(n)
}
