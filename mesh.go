package willowkit

// Mesh is indexed triangle geometry in local space. Every three Indices form
// one triangle. Meshes may be shared between nodes (Clone shares them).
type Mesh struct {
	Positions []Vec3
	Indices   []uint16

	bounds      Box3 // cached local-space AABB
	boundsDirty bool // recompute bounds when true
}

// NewMesh creates a mesh from positions and triangle indices.
func NewMesh(positions []Vec3, indices []uint16) *Mesh {
	return &Mesh{Positions: positions, Indices: indices, boundsDirty: true}
}

// Invalidate marks the mesh's cached bounds as needing recomputation.
// Call this after modifying Positions.
func (m *Mesh) Invalidate() {
	m.boundsDirty = true
}

// Bounds returns the local-space AABB of the mesh. An empty mesh returns an
// empty box (see Box3.IsEmpty).
func (m *Mesh) Bounds() Box3 {
	if m.boundsDirty {
		m.bounds = computeMeshBounds(m.Positions)
		m.boundsDirty = false
	}
	return m.bounds
}

// TriangleCount returns the number of complete triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Clone returns a deep copy of the mesh geometry.
func (m *Mesh) Clone() *Mesh {
	pos := make([]Vec3, len(m.Positions))
	copy(pos, m.Positions)
	ind := make([]uint16, len(m.Indices))
	copy(ind, m.Indices)
	return NewMesh(pos, ind)
}

// computeMeshBounds scans positions and returns their axis-aligned bounds.
func computeMeshBounds(positions []Vec3) Box3 {
	b := EmptyBox3()
	for _, p := range positions {
		b = b.ExpandByPoint(p)
	}
	return b
}

// hasGeometry reports whether the node contributes triangles when rendered.
func hasGeometry(n *Node) bool {
	return n.Type == NodeTypeMesh && n.Mesh != nil &&
		len(n.Mesh.Positions) > 0 && len(n.Mesh.Indices) >= 3
}

// meshWorldBounds computes the world-space AABB for a mesh node by
// transforming the eight corners of its local AABB.
func meshWorldBounds(n *Node, transform [12]float64) Box3 {
	local := n.Mesh.Bounds()
	if local.IsEmpty() {
		return local
	}
	b := EmptyBox3()
	for _, c := range local.Corners() {
		b = b.ExpandByPoint(transformPoint(transform, c))
	}
	return b
}
