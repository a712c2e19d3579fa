// Package ecs provides ECS adapters for willowkit's snapshot lifecycle events.
//
// The primary adapter is [NewDonburiStore], which bridges willowkit snapshot
// events (started, completed, failed) into a [Donburi] world as typed events.
// Subscribe to [SnapshotEventType] in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	w.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
