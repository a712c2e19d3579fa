// Package willowkit is a small retained-mode 3D scene layer for [Ebitengine]
// built around one job: rendering a single object of a scene into an image
// with a temporary, isolated camera.
//
// # Scene graph
//
// Every element is a [Node]. Nodes form a tree rooted at [World.Root].
// Children inherit their parent's transform. Mesh nodes carry a [Mesh] and a
// flat [Color]; containers only group.
//
//	w := willowkit.NewWorld()
//	crate := willowkit.NewBox("crate", willowkit.Vec3{X: 1, Y: 1, Z: 1}, willowkit.ColorWhite)
//	w.Root().AddChild(crate)
//
// Each node sits on one of 32 layers. A [Camera] renders only nodes whose
// layer is set in its CullingMask.
//
// # Snapshots
//
// A [Snapshotter] pairs a World with a render [Device]. RenderSnapshot
// isolates the target, frames it so its bounding sphere fits the field of
// view, renders it into an offscreen [Target], and reads the pixels back:
//
//	snap := willowkit.NewSnapshotter(w, willowkit.NewSoftDevice())
//	opts := willowkit.DefaultSnapshotOptions()
//	opts.Strategy = willowkit.IsolateCloneOnPrivateLayer
//	img, err := snap.RenderSnapshot(crate, opts)
//
// Every temporary resource is released before RenderSnapshot returns, on
// success and failure alike, and the device's active target is restored.
// RenderTurntable renders a sequence of frames orbiting the target.
//
// # Devices
//
// [EbitenDevice] renders on the GPU and must be used from inside the game
// loop (readback is unavailable before it starts). [SoftDevice] renders on
// the CPU into a supersampled buffer resolved with [golang.org/x/image/draw],
// and works anywhere, including tests and the willowsnap command.
//
// # Images
//
// [AdjustHSL] and [HSLShader] shift hue and scale saturation and lightness on
// the CPU and GPU. [AddOutline] and [OutlineShader] draw an outline behind
// the opaque parts of a snapshot. [PackSpriteSheet] packs frames into a grid with
// TexturePacker JSON that [LoadAtlas] reads back.
//
// # Debugging
//
// [World.SetDebugMode] enables disposed-node panics, tree warnings, and
// per-render and per-snapshot timings on stderr.
//
// [Ebitengine]: https://ebitengine.org
package willowkit
