package willowkit

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"
)

// captureStderr runs fn with os.Stderr redirected and returns what it wrote.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	oldStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		buf.ReadFrom(r)
		done <- buf.String()
	}()

	fn()

	w.Close()
	os.Stderr = oldStderr
	return <-done
}

func TestDebugMode_DisposedNodePanics(t *testing.T) {
	w := NewWorld()
	w.SetDebugMode(true)
	defer w.SetDebugMode(false)

	n := NewContainer("gone")
	n.Dispose()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for disposed node")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "disposed") {
			t.Errorf("panic = %q, want mention of disposed", msg)
		}
	}()
	w.Root().AddChild(n)
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	w := NewWorld()
	w.SetDebugMode(true)
	defer w.SetDebugMode(false)

	output := captureStderr(t, func() {
		current := w.Root()
		for i := 0; i < debugMaxTreeDepth+5; i++ {
			child := NewContainer(fmt.Sprintf("depth_%d", i))
			current.AddChild(child)
			current = child
		}
	})
	if !strings.Contains(output, "warning: tree depth") {
		t.Errorf("expected tree depth warning in stderr, got: %q", output)
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	w := NewWorld()
	w.SetDebugMode(true)
	defer w.SetDebugMode(false)

	output := captureStderr(t, func() {
		parent := NewContainer("many_children")
		w.Root().AddChild(parent)
		for i := 0; i < debugMaxChildCount+1; i++ {
			parent.AddChild(NewContainer(fmt.Sprintf("c_%d", i)))
		}
	})
	if !strings.Contains(output, "warning: node") || !strings.Contains(output, "children") {
		t.Errorf("expected child count warning in stderr, got: %q", output)
	}
}

func TestDebugMode_RenderStats(t *testing.T) {
	w := NewWorld()
	w.SetDebugMode(true)
	defer w.SetDebugMode(false)
	w.Root().AddChild(NewBox("box", Vec3{4, 4, 4}, ColorWhite))
	cam := w.NewCamera("main")
	cam.LookAt(Vec3{})

	output := captureStderr(t, func() {
		renderWorld(t, w, cam, 8)
	})
	if !strings.Contains(output, `camera "main"`) || !strings.Contains(output, "triangles: 12") {
		t.Errorf("expected render stats in stderr, got: %q", output)
	}
}

func TestDebugMode_SnapshotTimings(t *testing.T) {
	w, crate := snapshotScene()
	w.SetDebugMode(true)
	defer w.SetDebugMode(false)

	output := captureStderr(t, func() {
		if _, err := NewSnapshotter(w, NewSoftDevice()).RenderSnapshot(crate, snapOpts(IsolateCloneOnPrivateLayer, 8)); err != nil {
			t.Error(err)
		}
	})
	for _, want := range []string{`snapshot "crate"`, "isolate:", "readback:", "release dispose offscreen target"} {
		if !strings.Contains(output, want) {
			t.Errorf("stderr missing %q: %q", want, output)
		}
	}
}

func TestDebugModeOff_Silent(t *testing.T) {
	w, crate := snapshotScene()
	output := captureStderr(t, func() {
		if _, err := NewSnapshotter(w, NewSoftDevice()).RenderSnapshot(crate, snapOpts(IsolateMoveInPlace, 8)); err != nil {
			t.Error(err)
		}
	})
	if output != "" {
		t.Errorf("expected no stderr output, got: %q", output)
	}
}
