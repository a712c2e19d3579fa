package willowkit

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-render timing and command metrics.
// Only populated when World.debug is true.
type debugStats struct {
	traverseTime time.Duration
	sortTime     time.Duration
	submitTime   time.Duration
	commandCount int
}

// debugLog prints timing and command stats for one camera render to stderr.
func (w *World) debugLog(camera string, stats debugStats) {
	if !w.debug {
		return
	}
	total := stats.traverseTime + stats.sortTime + stats.submitTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[willowkit] camera %q traverse: %v | sort: %v | submit: %v | total: %v | triangles: %d\n",
		camera, stats.traverseTime, stats.sortTime, stats.submitTime, total, stats.commandCount)
}

// debugLogSnapshot prints per-phase snapshot timings to stderr.
func (w *World) debugLogSnapshot(target string, t snapshotTimings, err error) {
	if !w.debug {
		return
	}
	total := t.isolate + t.frame + t.render + t.readback + t.cleanup
	_, _ = fmt.Fprintf(os.Stderr,
		"[willowkit] snapshot %q isolate: %v | frame: %v | render: %v | readback: %v | cleanup: %v | total: %v\n",
		target, t.isolate, t.frame, t.render, t.readback, t.cleanup, total)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[willowkit] snapshot %q failed: %v\n", target, err)
	}
}

// debugLogf prints a debug line to stderr. Callers gate it on debug mode.
func debugLogf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[willowkit] "+format+"\n", args...)
}

// debugWarnf prints a warning line to stderr regardless of debug mode.
func debugWarnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[willowkit] warning: "+format+"\n", args...)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode. In release mode
// callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("willowkit debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugWarnf("tree depth %d exceeds %d (node %q)", depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		debugWarnf("node %q has %d children (threshold %d)", n.Name, len(n.children), debugMaxChildCount)
	}
}
