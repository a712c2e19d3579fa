package ecs

import (
	"github.com/phanxgames/willowkit"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// SnapshotEventType is the Donburi event type for willowkit snapshot events.
// Subscribe to this in your ECS systems to learn when snapshots of entities
// start, complete, or fail.
var SnapshotEventType = events.NewEventType[willowkit.SnapshotEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Snapshot events are published to SnapshotEventType and can be consumed
// with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) willowkit.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event willowkit.SnapshotEvent) {
	SnapshotEventType.Publish(s.world, event)
}
