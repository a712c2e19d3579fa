package willowkit

// --- Box ---

// NewBoxMesh creates an axis-aligned box centered on the origin with the given
// full size. 8 vertices, 12 triangles.
func NewBoxMesh(size Vec3) *Mesh {
	h := size.Scale(0.5)
	b := BoxFromCenter(Vec3{}, h)
	c := b.Corners()
	positions := c[:]
	// Corner index bits: 1 = +X, 2 = +Y, 4 = +Z.
	indices := []uint16{
		0, 2, 3, 0, 3, 1, // -Z
		4, 5, 7, 4, 7, 6, // +Z
		0, 4, 6, 0, 6, 2, // -X
		1, 3, 7, 1, 7, 5, // +X
		0, 1, 5, 0, 5, 4, // -Y
		2, 6, 7, 2, 7, 3, // +Y
	}
	return NewMesh(positions, indices)
}

// NewBox creates a mesh node rendering a box of the given size and color.
func NewBox(name string, size Vec3, c Color) *Node {
	return NewMeshNode(name, NewBoxMesh(size), c)
}

// --- Quad ---

// NewQuadMesh creates a w×h quad in the XY plane, centered on the origin and
// facing +Z. 4 vertices, 2 triangles.
func NewQuadMesh(w, h float64) *Mesh {
	hw, hh := w/2, h/2
	positions := []Vec3{
		{-hw, -hh, 0},
		{hw, -hh, 0},
		{hw, hh, 0},
		{-hw, hh, 0},
	}
	return NewMesh(positions, []uint16{0, 1, 2, 0, 2, 3})
}

// --- Pyramid ---

// NewPyramidMesh creates a square-based pyramid resting on the XZ plane with
// its apex at (0, height, 0). 5 vertices, 6 triangles.
func NewPyramidMesh(base, height float64) *Mesh {
	hb := base / 2
	positions := []Vec3{
		{-hb, 0, -hb},
		{hb, 0, -hb},
		{hb, 0, hb},
		{-hb, 0, hb},
		{0, height, 0},
	}
	indices := []uint16{
		0, 1, 2, 0, 2, 3, // base
		0, 4, 1,
		1, 4, 2,
		2, 4, 3,
		3, 4, 0,
	}
	return NewMesh(positions, indices)
}

// --- Polygon ---

// NewPolygonMesh creates a flat polygon in the XY plane from the given points
// using fan triangulation (convex polygons). N vertices, 3*(N-2) indices.
// Fewer than 3 points produce an empty mesh.
func NewPolygonMesh(points []Vec3) *Mesh {
	n := len(points)
	if n < 3 {
		return NewMesh(nil, nil)
	}
	positions := make([]Vec3, n)
	copy(positions, points)
	inds := make([]uint16, (n-2)*3)
	// Fan triangulation: vertex 0 is the hub.
	for i := 0; i < n-2; i++ {
		inds[i*3+0] = 0
		inds[i*3+1] = uint16(i + 1)
		inds[i*3+2] = uint16(i + 2)
	}
	return NewMesh(positions, inds)
}
