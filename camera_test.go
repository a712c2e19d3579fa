package willowkit

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestNewCameraDefaults(t *testing.T) {
	w := NewWorld()
	cam := w.NewCamera("main")
	if cam.Position != (Vec3{0, 0, 10}) {
		t.Errorf("Position = %v, want (0, 0, 10)", cam.Position)
	}
	if cam.FieldOfView != DefaultFieldOfView || cam.Near != DefaultNear || cam.Far != DefaultFar {
		t.Errorf("fov/near/far = %v/%v/%v", cam.FieldOfView, cam.Near, cam.Far)
	}
	if cam.CullingMask != AllLayers {
		t.Errorf("CullingMask = %b, want all", cam.CullingMask)
	}
	if cam.ClearMode != ClearDepthOnly {
		t.Errorf("ClearMode = %d, want ClearDepthOnly", cam.ClearMode)
	}
	if len(w.Cameras()) != 1 {
		t.Errorf("Cameras = %d, want 1", len(w.Cameras()))
	}
}

func TestRemoveCamera(t *testing.T) {
	w := NewWorld()
	a := w.NewCamera("a")
	b := w.NewCamera("b")
	w.RemoveCamera(a)
	if len(w.Cameras()) != 1 || w.Cameras()[0] != b {
		t.Error("RemoveCamera removed the wrong camera")
	}
	w.RemoveCamera(a) // no-op
	if len(w.Cameras()) != 1 {
		t.Error("removing a missing camera changed the list")
	}
}

func TestCameraProjectCenter(t *testing.T) {
	cam := newCamera("c")
	cam.LookAt(Vec3{})
	x, y, depth, ok := cam.Project(Vec3{}, 200, 100)
	if !ok {
		t.Fatal("origin should be in range")
	}
	if math.Abs(x-100) > 1e-9 || math.Abs(y-50) > 1e-9 {
		t.Errorf("screen = (%v, %v), want (100, 50)", x, y)
	}
	if math.Abs(depth-10) > 1e-9 {
		t.Errorf("depth = %v, want 10", depth)
	}
}

func TestCameraProjectAxes(t *testing.T) {
	cam := newCamera("c")
	cam.FieldOfView = 90
	cam.LookAt(Vec3{})

	// At fov 90 and depth 10, a point 10 units up lands on the top edge.
	_, y, _, ok := cam.Project(Vec3{0, 10, 0}, 100, 100)
	if !ok || math.Abs(y) > 1e-9 {
		t.Errorf("top edge y = %v (ok=%v), want 0", y, ok)
	}
	x, _, _, ok := cam.Project(Vec3{10, 0, 0}, 100, 100)
	if !ok || math.Abs(x-100) > 1e-9 {
		t.Errorf("right edge x = %v (ok=%v), want 100", x, ok)
	}
}

func TestCameraProjectClipRange(t *testing.T) {
	cam := newCamera("c")
	cam.LookAt(Vec3{})
	cam.Near = 1
	cam.Far = 20
	tests := []struct {
		p    Vec3
		want bool
	}{
		{Vec3{0, 0, 9.5}, false},   // closer than near
		{Vec3{0, 0, 11}, false},    // behind the camera
		{Vec3{0, 0, -10.5}, false}, // beyond far
		{Vec3{0, 0, -9}, true},
	}
	for _, tt := range tests {
		if _, _, _, ok := cam.Project(tt.p, 10, 10); ok != tt.want {
			t.Errorf("Project(%v) ok = %v, want %v", tt.p, ok, tt.want)
		}
	}
}

func TestCameraViewDegenerate(t *testing.T) {
	cam := newCamera("c")
	cam.Position = Vec3{}
	cam.Target = Vec3{}
	v := cam.view(10, 10)
	if v.forward != (Vec3{0, 0, -1}) {
		t.Errorf("forward = %v, want -Z", v.forward)
	}

	// Looking straight down with +Y up.
	cam.Position = Vec3{0, 10, 0}
	v = cam.view(10, 10)
	if math.IsNaN(v.right.X) || v.right.Length() < 0.99 {
		t.Errorf("right = %v, want a unit vector", v.right)
	}
}

func TestCameraMoveTo(t *testing.T) {
	w := NewWorld()
	cam := w.NewCamera("c")
	cam.Position = Vec3{}
	cam.MoveTo(Vec3{10, 20, -30}, 1, ease.Linear)
	if !cam.Moving() {
		t.Fatal("Moving() = false after MoveTo")
	}

	w.Update(0.5)
	if math.Abs(cam.Position.X-5) > 0.01 || math.Abs(cam.Position.Z+15) > 0.01 {
		t.Errorf("halfway Position = %v, want (5, 10, -15)", cam.Position)
	}

	w.Update(0.5)
	if cam.Moving() {
		t.Error("Moving() = true after duration elapsed")
	}
	if !approxVec(cam.Position, Vec3{10, 20, -30}, 0.01) {
		t.Errorf("final Position = %v, want (10, 20, -30)", cam.Position)
	}
}
