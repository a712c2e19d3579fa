// Willowsnap builds a scene from a JSON snapshot script and writes the
// requested snapshots, turntable sheets, and HSL variants as PNG files. It
// renders on the CPU and needs no window.
//
// Usage:
//
//	willowsnap -script scene.json -out snapshots
//
// Without -script a small built-in scene is rendered.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/phanxgames/willowkit"
)

const builtinScript = `{
  "nodes": [
    {"name": "floor", "shape": "quad", "size": [8, 8], "rotation": [-90, 0, 0], "color": [0.3, 0.3, 0.35]},
    {"name": "crate", "shape": "box", "color": [0.85, 0.55, 0.2], "rotation": [15, 30, 0]},
    {"name": "marker", "shape": "pyramid", "size": [0.6, 1], "color": [0.2, 0.6, 0.9], "position": [0, 0.5, 0], "parent": "crate"}
  ],
  "steps": [
    {"action": "snapshot", "target": "crate", "label": "crate"},
    {"action": "snapshot", "target": "crate", "label": "crate-clone", "strategy": "clone", "background": [0.1, 0.1, 0.12, 1]},
    {"action": "turntable", "target": "crate", "label": "crate-turntable", "frames": 8, "columns": 4, "resolution": 128, "ease": "inOutSine"},
    {"action": "hsl", "source": "crate", "label": "crate-teal", "hue": 160}
  ]
}`

func main() {
	scriptPath := flag.String("script", "", "JSON snapshot script (default: built-in demo scene)")
	outDir := flag.String("out", "snapshots", "output directory")
	maxSize := flag.Int("max-size", willowkit.DefaultMaxTargetSize, "largest allowed target dimension")
	debug := flag.Bool("debug", false, "log per-phase snapshot timings to stderr")
	flag.Parse()

	data := []byte(builtinScript)
	if *scriptPath != "" {
		var err error
		data, err = os.ReadFile(*scriptPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	script, err := willowkit.LoadSnapshotScript(data)
	if err != nil {
		log.Fatal(err)
	}

	world := willowkit.NewWorld()
	world.SetDebugMode(*debug)
	device := willowkit.NewSoftDevice()
	device.MaxTargetSize = *maxSize

	written, err := script.Run(willowkit.NewSnapshotter(world, device), *outDir)
	for _, path := range written {
		fmt.Println(path)
	}
	if err != nil {
		log.Fatal(err)
	}
}
