package willowkit

import "sync/atomic"

// --- ID counter ---

// nodeIDCounter is atomic so that clones created by concurrent snapshot calls
// on distinct worlds never share an ID. The scene graph itself is not
// goroutine-safe.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used for
// all node types to avoid interface dispatch on the hot path.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local). Rotation holds Euler angles in radians, applied
	// around Z, then X, then Y.
	Position Vec3
	Rotation Vec3
	Scale    Vec3

	// Computed (unexported, updated during traversal)
	worldTransform [12]float64
	transformDirty bool

	// Visibility
	Visible    bool
	Renderable bool

	// Layer selects which cameras can see this node (see Camera.CullingMask).
	Layer uint8

	// Metadata
	UserData any
	EntityID uint32

	// Mesh fields (NodeTypeMesh)
	Mesh  *Mesh
	Color Color

	// Internal
	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Scale = Vec3{1, 1, 1}
	n.Color = ColorWhite
	n.Visible = true
	n.Renderable = true
	n.transformDirty = true
	n.worldTransform = identityTransform
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewMeshNode creates a mesh node that renders the given mesh tinted by c.
func NewMeshNode(name string, mesh *Mesh, c Color) *Node {
	n := &Node{Name: name, Type: NodeTypeMesh, Mesh: mesh}
	nodeDefaults(n)
	n.Color = c
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("willowkit: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("willowkit: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("willowkit: cannot add nil child")
	}
	if isAncestor(child, n) {
		panic("willowkit: adding child would create a cycle")
	}
	if index < 0 || index > len(n.children) {
		panic("willowkit: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	markSubtreeDirty(child)
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("willowkit: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the visited node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// SetLayerRecursive moves n and every descendant to layer.
func (n *Node) SetLayerRecursive(layer uint8) {
	n.Walk(func(c *Node) bool {
		c.Layer = layer
		return true
	})
}

// Clone returns a deep copy of n and its subtree with fresh IDs. The copy has
// no parent. Meshes are shared, not copied; treat Mesh geometry as immutable
// while clones exist or call Mesh.Clone yourself.
func (n *Node) Clone() *Node {
	c := &Node{
		ID:             nextNodeID(),
		Name:           n.Name,
		Type:           n.Type,
		Position:       n.Position,
		Rotation:       n.Rotation,
		Scale:          n.Scale,
		worldTransform: identityTransform,
		transformDirty: true,
		Visible:        n.Visible,
		Renderable:     n.Renderable,
		Layer:          n.Layer,
		UserData:       n.UserData,
		EntityID:       n.EntityID,
		Mesh:           n.Mesh,
		Color:          n.Color,
	}
	if len(n.children) > 0 {
		c.children = make([]*Node, 0, len(n.children))
		for _, child := range n.children {
			cc := child.Clone()
			cc.Parent = c
			c.children = append(c.children, cc)
		}
	}
	return c
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.Mesh = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// IsAlive reports whether n refers to a live node: non-nil and not disposed.
func IsAlive(n *Node) bool {
	return n != nil && !n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
