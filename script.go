package willowkit

import (
	"encoding/json"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/tanema/gween/ease"
)

// scriptNode describes one node to build from a snapshot script. Rotation is
// in degrees.
type scriptNode struct {
	Name     string    `json:"name"`
	Parent   string    `json:"parent,omitempty"`
	Shape    string    `json:"shape,omitempty"` // "box", "quad", "pyramid", or "" for a container
	Size     []float64 `json:"size,omitempty"`
	Color    []float64 `json:"color,omitempty"`
	Position []float64 `json:"position,omitempty"`
	Rotation []float64 `json:"rotation,omitempty"`
	Scale    []float64 `json:"scale,omitempty"`
	Layer    uint8     `json:"layer,omitempty"`
	Hidden   bool      `json:"hidden,omitempty"`
	Detached bool      `json:"detached,omitempty"` // build but do not attach to the world
}

// scriptStep is a single action in a snapshot script.
type scriptStep struct {
	Action     string    `json:"action"` // "snapshot", "turntable", "hsl", or "outline"
	Target     string    `json:"target,omitempty"`
	Label      string    `json:"label,omitempty"`
	Strategy   string    `json:"strategy,omitempty"` // "move" or "clone"
	FOV        float64   `json:"fov,omitempty"`
	Resolution int       `json:"resolution,omitempty"`
	Background []float64 `json:"background,omitempty"`
	Offset     []float64 `json:"offset,omitempty"`
	Layer      uint8     `json:"layer,omitempty"`
	Frames     int       `json:"frames,omitempty"`
	Degrees    float64   `json:"degrees,omitempty"`
	Ease       string    `json:"ease,omitempty"`
	Columns    int       `json:"columns,omitempty"`
	Source     string    `json:"source,omitempty"` // label of an earlier image, for "hsl" and "outline"
	Hue        float64   `json:"hue,omitempty"`
	Saturation *float64  `json:"saturation,omitempty"`
	Lightness  *float64  `json:"lightness,omitempty"`
	Color      []float64 `json:"color,omitempty"`
	Thickness  int       `json:"thickness,omitempty"`
}

const defaultOutlineThickness = 2

// SnapshotScript is a parsed JSON description of a scene and the snapshots to
// take of it. It drives the willowsnap command.
type SnapshotScript struct {
	Nodes []scriptNode `json:"nodes"`
	Steps []scriptStep `json:"steps"`
}

// easeFuncs maps script easing names to gween easing functions.
var easeFuncs = map[string]ease.TweenFunc{
	"":           ease.Linear,
	"linear":     ease.Linear,
	"inQuad":     ease.InQuad,
	"outQuad":    ease.OutQuad,
	"inOutQuad":  ease.InOutQuad,
	"inCubic":    ease.InCubic,
	"outCubic":   ease.OutCubic,
	"inOutCubic": ease.InOutCubic,
	"inSine":     ease.InSine,
	"outSine":    ease.OutSine,
	"inOutSine":  ease.InOutSine,
	"outBounce":  ease.OutBounce,
}

// LoadSnapshotScript parses and checks a JSON snapshot script.
func LoadSnapshotScript(jsonData []byte) (*SnapshotScript, error) {
	var script SnapshotScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse snapshot script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse snapshot script: no steps")
	}
	names := make(map[string]bool, len(script.Nodes))
	for i, n := range script.Nodes {
		if n.Name == "" {
			return nil, fmt.Errorf("parse snapshot script: node %d has no name", i)
		}
		if names[n.Name] {
			return nil, fmt.Errorf("parse snapshot script: duplicate node %q", n.Name)
		}
		if n.Parent != "" && !names[n.Parent] {
			return nil, fmt.Errorf("parse snapshot script: node %q parent %q must be declared first", n.Name, n.Parent)
		}
		switch n.Shape {
		case "", "box", "quad", "pyramid":
		default:
			return nil, fmt.Errorf("parse snapshot script: node %q has unknown shape %q", n.Name, n.Shape)
		}
		names[n.Name] = true
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "snapshot", "turntable":
			if !names[st.Target] {
				return nil, fmt.Errorf("parse snapshot script: step %d targets unknown node %q", i, st.Target)
			}
			if _, ok := easeFuncs[st.Ease]; !ok {
				return nil, fmt.Errorf("parse snapshot script: step %d has unknown ease %q", i, st.Ease)
			}
			if st.Strategy != "" && st.Strategy != "move" && st.Strategy != "clone" {
				return nil, fmt.Errorf("parse snapshot script: step %d has unknown strategy %q", i, st.Strategy)
			}
		case "hsl", "outline":
			if st.Source == "" {
				return nil, fmt.Errorf("parse snapshot script: step %d needs a source label", i)
			}
		default:
			return nil, fmt.Errorf("parse snapshot script: step %d has unknown action %q", i, st.Action)
		}
	}
	return &script, nil
}

// Build creates the script's nodes in w and returns them by name. Detached
// nodes are built but not attached.
func (s *SnapshotScript) Build(w *World) map[string]*Node {
	nodes := make(map[string]*Node, len(s.Nodes))
	for _, sn := range s.Nodes {
		n := buildScriptNode(sn)
		nodes[sn.Name] = n
		switch {
		case sn.Parent != "":
			nodes[sn.Parent].AddChild(n)
		case !sn.Detached:
			w.Root().AddChild(n)
		}
	}
	return nodes
}

func buildScriptNode(sn scriptNode) *Node {
	size := vec3Or(sn.Size, Vec3{1, 1, 1})
	col := colorOr(sn.Color, ColorWhite)
	var n *Node
	switch sn.Shape {
	case "box":
		n = NewBox(sn.Name, size, col)
	case "quad":
		n = NewMeshNode(sn.Name, NewQuadMesh(size.X, size.Y), col)
	case "pyramid":
		n = NewMeshNode(sn.Name, NewPyramidMesh(size.X, size.Y), col)
	default:
		n = NewContainer(sn.Name)
	}
	n.Position = vec3Or(sn.Position, Vec3{})
	n.Rotation = vec3Or(sn.Rotation, Vec3{}).Scale(math.Pi / 180)
	n.Scale = vec3Or(sn.Scale, Vec3{1, 1, 1})
	n.Layer = sn.Layer
	n.Visible = !sn.Hidden
	n.MarkDirty()
	return n
}

// Run builds the scene into the snapshotter's world and executes every step,
// writing PNG files (and sprite sheet JSON for turntables) into outDir. It
// returns the written paths in order.
func (s *SnapshotScript) Run(snap *Snapshotter, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", outDir, err)
	}
	nodes := s.Build(snap.World())
	images := make(map[string]*image.NRGBA)
	var written []string

	save := func(label string, img *image.NRGBA) error {
		path := filepath.Join(outDir, sanitizeLabel(label)+".png")
		if err := SavePNG(path, img); err != nil {
			return err
		}
		images[label] = img
		written = append(written, path)
		return nil
	}

	for i, st := range s.Steps {
		label := st.Label
		if label == "" {
			label = fmt.Sprintf("step%d", i)
		}
		switch st.Action {
		case "snapshot":
			img, err := snap.RenderSnapshot(nodes[st.Target], st.options())
			if err != nil {
				return written, fmt.Errorf("step %d (%s): %w", i, label, err)
			}
			if err := save(label, img); err != nil {
				return written, err
			}

		case "turntable":
			frames, err := snap.RenderTurntable(nodes[st.Target], st.options(), TurntableOptions{
				Frames:  st.Frames,
				Degrees: st.Degrees,
				Ease:    easeFuncs[st.Ease],
			})
			if err != nil {
				return written, fmt.Errorf("step %d (%s): %w", i, label, err)
			}
			imgs := make([]image.Image, len(frames))
			names := make([]string, len(frames))
			for k, f := range frames {
				imgs[k] = f
				names[k] = fmt.Sprintf("%s_%02d", label, k)
			}
			base := sanitizeLabel(label)
			sheet, err := PackSpriteSheet(imgs, names, st.Columns, base+".png")
			if err != nil {
				return written, fmt.Errorf("step %d (%s): %w", i, label, err)
			}
			if err := save(label, sheet.Image); err != nil {
				return written, err
			}
			jsonPath := filepath.Join(outDir, base+".json")
			if err := os.WriteFile(jsonPath, sheet.JSON, 0o644); err != nil {
				return written, fmt.Errorf("write %s: %w", jsonPath, err)
			}
			written = append(written, jsonPath)

		case "hsl":
			src, ok := images[st.Source]
			if !ok {
				return written, fmt.Errorf("step %d (%s): no image labeled %q", i, label, st.Source)
			}
			adj := HueShift(st.Hue)
			if st.Saturation != nil {
				adj.Saturation = *st.Saturation
			}
			if st.Lightness != nil {
				adj.Lightness = *st.Lightness
			}
			if err := save(label, AdjustHSL(src, adj)); err != nil {
				return written, err
			}

		case "outline":
			src, ok := images[st.Source]
			if !ok {
				return written, fmt.Errorf("step %d (%s): no image labeled %q", i, label, st.Source)
			}
			thickness := st.Thickness
			if thickness == 0 {
				thickness = defaultOutlineThickness
			}
			if err := save(label, AddOutline(src, colorOr(st.Color, ColorWhite), thickness)); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// options converts a step into SnapshotOptions, filling defaults from
// DefaultSnapshotOptions.
func (st scriptStep) options() SnapshotOptions {
	opts := DefaultSnapshotOptions()
	if st.Strategy == "clone" {
		opts.Strategy = IsolateCloneOnPrivateLayer
	}
	if st.FOV != 0 {
		opts.FieldOfView = st.FOV
	}
	if st.Resolution != 0 {
		opts.Resolution = st.Resolution
	}
	if len(st.Background) > 0 {
		bg := colorOr(st.Background, ColorTransparent)
		opts.Background = &bg
	}
	if len(st.Offset) > 0 {
		off := vec3Or(st.Offset, Vec3{})
		opts.CameraOffset = &off
	}
	opts.PrivateLayer = st.Layer
	return opts
}

// vec3Or converts a 3-element slice to a Vec3, or returns def. A 2-element
// slice keeps def.Z.
func vec3Or(v []float64, def Vec3) Vec3 {
	switch len(v) {
	case 2:
		return Vec3{v[0], v[1], def.Z}
	case 3:
		return Vec3{v[0], v[1], v[2]}
	}
	return def
}

// colorOr converts a 3- or 4-element slice to a Color, or returns def.
func colorOr(v []float64, def Color) Color {
	switch len(v) {
	case 3:
		return Color{v[0], v[1], v[2], 1}
	case 4:
		return Color{v[0], v[1], v[2], v[3]}
	}
	return def
}
