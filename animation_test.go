package willowkit

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPosition(t *testing.T) {
	node := NewContainer("n")
	g := TweenPosition(node, Vec3{100, -50, 20}, 1.0, ease.Linear)

	g.Update(0.5)
	if math.Abs(node.Position.X-50) > 0.5 || math.Abs(node.Position.Y+25) > 0.5 {
		t.Errorf("halfway Position = %v, want (50, -25, 10)", node.Position)
	}
	if g.Done {
		t.Error("should not be done halfway")
	}

	g.Update(0.5)
	if !approxVec(node.Position, Vec3{100, -50, 20}, 0.5) {
		t.Errorf("final Position = %v, want (100, -50, 20)", node.Position)
	}
	if !g.Done {
		t.Error("should be done after full duration")
	}
}

func TestTweenScale(t *testing.T) {
	node := NewContainer("n")
	g := TweenScale(node, Vec3{2, 3, 4}, 1.0, ease.Linear)
	g.Update(1.0)
	if !approxVec(node.Scale, Vec3{2, 3, 4}, 0.01) {
		t.Errorf("Scale = %v, want (2, 3, 4)", node.Scale)
	}
}

func TestTweenRotation(t *testing.T) {
	node := NewContainer("n")
	g := TweenRotation(node, Vec3{0, math.Pi, 0}, 1.0, ease.Linear)
	g.Update(1.0)
	if math.Abs(node.Rotation.Y-math.Pi) > 0.01 {
		t.Errorf("Rotation.Y = %v, want pi", node.Rotation.Y)
	}
}

func TestTweenColor(t *testing.T) {
	node := NewMeshNode("m", NewQuadMesh(1, 1), ColorWhite)
	g := TweenColor(node, Color{0, 0.5, 1, 0.25}, 1.0, ease.Linear)
	g.Update(1.0)
	c := node.Color
	if math.Abs(c.R) > 0.01 || math.Abs(c.G-0.5) > 0.01 || math.Abs(c.B-1) > 0.01 || math.Abs(c.A-0.25) > 0.01 {
		t.Errorf("Color = %v, want {0 0.5 1 0.25}", c)
	}
}

func TestTweenMarksDirty(t *testing.T) {
	w := NewWorld()
	node := NewContainer("n")
	w.Root().AddChild(node)
	w.Update(0)
	if node.transformDirty {
		t.Fatal("node should be clean after Update")
	}
	g := TweenPosition(node, Vec3{10, 0, 0}, 1.0, ease.Linear)
	g.Update(0.1)
	if !node.transformDirty {
		t.Error("tween should mark the node dirty")
	}
}

func TestTweenStopsOnDisposedNode(t *testing.T) {
	node := NewContainer("n")
	g := TweenPosition(node, Vec3{100, 0, 0}, 1.0, ease.Linear)
	node.Dispose()
	g.Update(0.5)
	if !g.Done {
		t.Error("tween should be done after its node is disposed")
	}
	if node.Position.X != 0 {
		t.Errorf("Position.X = %v, want 0 (no writes after dispose)", node.Position.X)
	}
}

func TestTweenDoneIsNoop(t *testing.T) {
	node := NewContainer("n")
	g := TweenPosition(node, Vec3{10, 0, 0}, 1.0, ease.Linear)
	g.Update(1.0)
	node.Position.X = 42
	g.Update(1.0)
	if node.Position.X != 42 {
		t.Errorf("Position.X = %v, want 42 (finished tween should not write)", node.Position.X)
	}
}

func TestWorldAdvancesTweens(t *testing.T) {
	w := NewWorld()
	node := NewContainer("n")
	w.Root().AddChild(node)
	w.AddTween(TweenPosition(node, Vec3{0, 8, 0}, 1.0, ease.Linear))
	w.AddTween(TweenScale(node, Vec3{2, 2, 2}, 2.0, ease.Linear))

	w.Update(1.0)
	if math.Abs(node.Position.Y-8) > 0.01 {
		t.Errorf("Position.Y = %v, want 8", node.Position.Y)
	}
	if len(w.tweens) != 1 {
		t.Errorf("active tweens = %d, want 1 after the first finished", len(w.tweens))
	}
	if got := node.worldTransform[7]; math.Abs(got-8) > 0.01 {
		t.Errorf("world Y = %v, want 8 (transforms refreshed after tweens)", got)
	}

	w.Update(1.0)
	if len(w.tweens) != 0 {
		t.Errorf("active tweens = %d, want 0", len(w.tweens))
	}
}
