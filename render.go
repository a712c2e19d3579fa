package willowkit

import "math"

// Flat headlight shading: the light sits at the camera, so faces pointing at
// the viewer receive full color.
const (
	shadeAmbient = 0.35
	shadeDiffuse = 0.65
)

// Vertex is a screen-space vertex submitted to a Target. Colors are
// premultiplied by alpha.
type Vertex struct {
	X, Y       float32
	R, G, B, A float32
}

// RenderCommand is a single projected triangle emitted during world traversal.
type RenderCommand struct {
	Verts     [3]Vertex
	Depth     float64 // mean view depth of the three vertices
	NodeID    uint32
	treeOrder int // assigned during traversal for stable sort
}

// traverse walks the node tree depth-first, updating transforms and emitting
// render commands for visible, renderable mesh nodes on the camera's layers.
func (w *World) traverse(n *Node, parentTransform [12]float64, parentRecomputed bool, v *cameraView, treeOrder *int) {
	if !n.Visible {
		if parentRecomputed {
			// Recompute when the node becomes visible again.
			markSubtreeDirty(n)
		}
		return
	}

	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldTransform = multiplyAffine(parentTransform, computeLocalTransform(n))
		n.transformDirty = false
	}

	if n.Renderable && v.mask.Has(n.Layer) && hasGeometry(n) {
		w.emitMesh(n, v, treeOrder)
	}

	for _, child := range n.children {
		w.traverse(child, n.worldTransform, recompute, v, treeOrder)
	}
}

// emitMesh projects each triangle of n's mesh, clipped to the camera's
// near/far range, and appends one command per piece of the clipped polygon.
func (w *World) emitMesh(n *Node, v *cameraView, treeOrder *int) {
	m := n.Mesh
	wt := n.worldTransform
	var bufA, bufB [5]Vec3
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := int(m.Indices[i]), int(m.Indices[i+1]), int(m.Indices[i+2])
		if i0 >= len(m.Positions) || i1 >= len(m.Positions) || i2 >= len(m.Positions) {
			continue
		}
		a := transformPoint(wt, m.Positions[i0])
		b := transformPoint(wt, m.Positions[i1])
		c := transformPoint(wt, m.Positions[i2])

		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Length() < 1e-12 {
			continue
		}
		normal = normal.Normalize()

		bufA[0], bufA[1], bufA[2] = a, b, c
		poly := v.clip(bufA[:3], bufB[:0], v.near, 1)
		poly = v.clip(poly, bufA[:0], v.far, -1)
		if len(poly) < 3 {
			continue
		}

		centroid := SumVec3(a, b, c).Scale(1.0 / 3)
		toCam := v.eye.Sub(centroid).Normalize()
		shade := math.Min(shadeAmbient+shadeDiffuse*math.Abs(normal.Dot(toCam)), 1)
		col := shadeColor(n.Color, shade)

		var screen [5]Vertex
		var depthSum float64
		for k, p := range poly {
			x, y, d := v.toScreen(p)
			screen[k] = Vertex{X: float32(x), Y: float32(y), R: col[0], G: col[1], B: col[2], A: col[3]}
			depthSum += d
		}
		depth := depthSum / float64(len(poly))

		for k := 1; k+1 < len(poly); k++ {
			w.commands = append(w.commands, RenderCommand{
				Verts:     [3]Vertex{screen[0], screen[k], screen[k+1]},
				Depth:     depth,
				NodeID:    n.ID,
				treeOrder: *treeOrder,
			})
			*treeOrder++
		}
	}
}

// clip keeps the part of the convex polygon in on the side of the plane
// depth == bound given by sign (1 keeps depth >= bound, -1 keeps depth <=
// bound) and appends it to out.
func (v *cameraView) clip(in, out []Vec3, bound, sign float64) []Vec3 {
	for i, cur := range in {
		prev := in[(i+len(in)-1)%len(in)]
		dc := sign * (v.depthOf(cur) - bound)
		dp := sign * (v.depthOf(prev) - bound)
		switch {
		case dc >= 0 && dp < 0:
			out = append(out, clipPoint(prev, cur, dp, dc), cur)
		case dc >= 0:
			out = append(out, cur)
		case dp >= 0:
			out = append(out, clipPoint(prev, cur, dp, dc))
		}
	}
	return out
}

// clipPoint returns where segment p–q crosses the plane given the signed
// distances dp and dq. It interpolates from the outside end so an edge shared
// by two triangles is cut at the same point whichever way it is walked.
func clipPoint(p, q Vec3, dp, dq float64) Vec3 {
	if dp > dq {
		p, q, dp, dq = q, p, dq, dp
	}
	return p.Lerp(q, dp/(dp-dq))
}

// shadeColor scales the RGB channels by shade and premultiplies by alpha.
func shadeColor(c Color, shade float64) [4]float32 {
	a := clamp01(c.A)
	return [4]float32{
		float32(clamp01(c.R*shade) * a),
		float32(clamp01(c.G*shade) * a),
		float32(clamp01(c.B*shade) * a),
		float32(a),
	}
}

// submit flattens the sorted commands into one triangle list and draws it.
func (w *World) submit(target Target) error {
	if len(w.commands) == 0 {
		return nil
	}
	w.verts = w.verts[:0]
	w.inds = w.inds[:0]
	for i := range w.commands {
		base := uint32(len(w.verts))
		w.verts = append(w.verts, w.commands[i].Verts[:]...)
		w.inds = append(w.inds, base, base+1, base+2)
	}
	return target.DrawTriangles(w.verts, w.inds)
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should be drawn before or at the same
// position as b. Farther triangles draw first. Using <= for treeOrder ensures
// stability.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.Depth != b.Depth {
		return a.Depth > b.Depth
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts w.commands in-place using w.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (w *World) mergeSort() {
	n := len(w.commands)
	if n <= 1 {
		return
	}
	if cap(w.sortBuf) < n {
		w.sortBuf = make([]RenderCommand, n)
	}
	w.sortBuf = w.sortBuf[:n]

	a := w.commands
	b := w.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(w.commands, w.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
