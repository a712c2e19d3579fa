package ecs

import (
	"errors"
	"testing"

	"github.com/phanxgames/willowkit"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []willowkit.SnapshotEvent
	SnapshotEventType.Subscribe(world, func(w donburi.World, e willowkit.SnapshotEvent) {
		received = append(received, e)
	})

	store.EmitEvent(willowkit.SnapshotEvent{
		Type:       willowkit.EventSnapshotStarted,
		EntityID:   42,
		Resolution: 64,
	})
	store.EmitEvent(willowkit.SnapshotEvent{
		Type:  willowkit.EventSnapshotFailed,
		State: willowkit.StateRendering,
		Err:   willowkit.ErrRenderBackend,
	})

	// Events are queued; process them.
	SnapshotEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}

	e0 := received[0]
	if e0.Type != willowkit.EventSnapshotStarted || e0.EntityID != 42 || e0.Resolution != 64 {
		t.Errorf("event 0: %+v", e0)
	}

	e1 := received[1]
	if e1.Type != willowkit.EventSnapshotFailed || e1.State != willowkit.StateRendering {
		t.Errorf("event 1: %+v", e1)
	}
	if !errors.Is(e1.Err, willowkit.ErrRenderBackend) {
		t.Errorf("event 1 err = %v, want ErrRenderBackend", e1.Err)
	}
}

func TestDonburiStore_ImplementsEntityStore(t *testing.T) {
	world := donburi.NewWorld()
	var store willowkit.EntityStore = NewDonburiStore(world)
	_ = store // compile-time interface check
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	SnapshotEventType.Subscribe(world, func(w donburi.World, e willowkit.SnapshotEvent) {
		count1++
	})
	SnapshotEventType.Subscribe(world, func(w donburi.World, e willowkit.SnapshotEvent) {
		count2++
	})

	store.EmitEvent(willowkit.SnapshotEvent{Type: willowkit.EventSnapshotCompleted})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDonburiStore_SnapshotLifecycle(t *testing.T) {
	ecsWorld := donburi.NewWorld()
	w := willowkit.NewWorld()
	w.SetEntityStore(NewDonburiStore(ecsWorld))

	box := willowkit.NewBox("crate", willowkit.Vec3{X: 1, Y: 1, Z: 1}, willowkit.ColorWhite)
	box.EntityID = 7
	w.Root().AddChild(box)

	var got []willowkit.SnapshotEventType
	SnapshotEventType.Subscribe(ecsWorld, func(_ donburi.World, e willowkit.SnapshotEvent) {
		if e.EntityID != 7 {
			t.Errorf("EntityID = %d, want 7", e.EntityID)
		}
		got = append(got, e.Type)
	})

	snap := willowkit.NewSnapshotter(w, willowkit.NewSoftDevice())
	opts := willowkit.DefaultSnapshotOptions()
	opts.Resolution = 16
	if _, err := snap.RenderSnapshot(box, opts); err != nil {
		t.Fatalf("RenderSnapshot: %v", err)
	}
	SnapshotEventType.ProcessEvents(ecsWorld)

	want := []willowkit.SnapshotEventType{willowkit.EventSnapshotStarted, willowkit.EventSnapshotCompleted}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}
