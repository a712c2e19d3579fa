package willowkit

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// SoftDevice renders on the CPU into premultiplied image.RGBA buffers. Output
// is deterministic and needs no window or game loop, which makes it the
// device for headless tools and tests.
type SoftDevice struct {
	activeSlot

	// MaxTargetSize bounds either target dimension. Zero means
	// DefaultMaxTargetSize.
	MaxTargetSize int
}

// NewSoftDevice creates a CPU render device.
func NewSoftDevice() *SoftDevice {
	return &SoftDevice{}
}

// Anti-aliased targets take softAASamples² samples per pixel, halving the
// count while the sample buffer edge would exceed softMaxSampleSize.
const (
	softAASamples     = 4
	softMaxSampleSize = 4096
)

// boxKernel averages the samples that fall inside each destination pixel
// when resolving a supersampled buffer.
var boxKernel = &xdraw.Kernel{
	Support: 0.5,
	At: func(t float64) float64 {
		if t > -0.5 && t < 0.5 {
			return 1
		}
		return 0
	},
}

// NewTarget allocates a transparent width×height target. Anti-aliased
// targets rasterize into a supersampled buffer that is box-filtered on
// readback, so triangles sharing an edge cover it exactly once.
func (d *SoftDevice) NewTarget(width, height int, opts TargetOptions) (Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("soft target %dx%d: %w", width, height, ErrInvalidArgument)
	}
	limit := d.MaxTargetSize
	if limit <= 0 {
		limit = DefaultMaxTargetSize
	}
	if width > limit || height > limit {
		return nil, fmt.Errorf("soft target %dx%d exceeds limit %d: %w", width, height, limit, ErrRenderBackend)
	}
	samples := 1
	if opts.AntiAlias {
		samples = softAASamples
		for samples > 1 && max(width, height)*samples > softMaxSampleSize {
			samples /= 2
		}
	}
	return &softTarget{
		img:     image.NewRGBA(image.Rect(0, 0, width*samples, height*samples)),
		w:       width,
		h:       height,
		samples: samples,
	}, nil
}

type softTarget struct {
	img     *image.RGBA // premultiplied, samples×samples per pixel
	w, h    int
	samples int
}

func (t *softTarget) Width() int  { return t.w }
func (t *softTarget) Height() int { return t.h }

// Image returns the premultiplied pixels at target resolution.
func (t *softTarget) Image() *image.RGBA {
	if t.img == nil || t.samples == 1 {
		return t.img
	}
	dst := image.NewRGBA(image.Rect(0, 0, t.w, t.h))
	boxKernel.Scale(dst, dst.Rect, t.img, t.img.Rect, draw.Src, nil)
	return dst
}

func (t *softTarget) Clear(c Color) {
	if t.img == nil {
		return
	}
	draw.Draw(t.img, t.img.Rect, image.NewUniform(c.toRGBA()), image.Point{}, draw.Src)
}

func (t *softTarget) DrawTriangles(vertices []Vertex, indices []uint32) error {
	if t.img == nil {
		return fmt.Errorf("draw on disposed soft target: %w", ErrRenderBackend)
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3: %w", len(indices), ErrInvalidArgument)
	}
	s := float64(t.samples)
	for i := 0; i < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(vertices) || int(i1) >= len(vertices) || int(i2) >= len(vertices) {
			return fmt.Errorf("triangle %d references missing vertex: %w", i/3, ErrInvalidArgument)
		}
		a, b, c := vertices[i0], vertices[i1], vertices[i2]
		// Flat fill: the first vertex carries the triangle color.
		col := vertexRGBA(a)
		if col.A == 0 {
			continue
		}
		t.fill(
			float64(a.X)*s, float64(a.Y)*s,
			float64(b.X)*s, float64(b.Y)*s,
			float64(c.X)*s, float64(c.Y)*s,
			col,
		)
	}
	return nil
}

// fill blends col over every sample whose center lies inside the triangle.
// Centers exactly on an edge belong to the triangle only when ownsEdge holds
// for that edge, so two triangles sharing an edge never both cover a sample.
func (t *softTarget) fill(ax, ay, bx, by, cx, cy float64, col color.RGBA) {
	area := edge(ax, ay, bx, by, cx, cy)
	if area == 0 {
		return
	}
	if area < 0 {
		bx, by, cx, cy = cx, cy, bx, by
	}
	own0 := ownsEdge(bx, by, cx, cy)
	own1 := ownsEdge(cx, cy, ax, ay)
	own2 := ownsEdge(ax, ay, bx, by)

	b := t.img.Rect
	minX := max(int(math.Floor(math.Min(ax, math.Min(bx, cx)))), 0)
	maxX := min(int(math.Ceil(math.Max(ax, math.Max(bx, cx)))), b.Dx()-1)
	minY := max(int(math.Floor(math.Min(ay, math.Min(by, cy)))), 0)
	maxY := min(int(math.Ceil(math.Max(ay, math.Max(by, cy)))), b.Dy()-1)
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			if inside(edge(bx, by, cx, cy, px, py), own0) &&
				inside(edge(cx, cy, ax, ay, px, py), own1) &&
				inside(edge(ax, ay, bx, by, px, py), own2) {
				blendOver(t.img, x, y, col)
			}
		}
	}
}

func inside(w float64, owned bool) bool {
	return w > 0 || (w == 0 && owned)
}

// ownsEdge is the tie-break for samples on the edge p→q of a positively
// wound triangle. It is true for exactly one direction of every edge, so the
// neighbour walking q→p gets the opposite answer.
func ownsEdge(px, py, qx, qy float64) bool {
	dx, dy := qx-px, qy-py
	return dy > 0 || (dy == 0 && dx < 0)
}

// edge returns twice the signed area of triangle (a, b, p).
func edge(ax, ay, bx, by, px, py float64) float64 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// blendOver composites a premultiplied color over the pixel at (x, y).
func blendOver(img *image.RGBA, x, y int, c color.RGBA) {
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	inv := 255 - uint32(c.A)
	p[0] = uint8(uint32(c.R) + (uint32(p[0])*inv+127)/255)
	p[1] = uint8(uint32(c.G) + (uint32(p[1])*inv+127)/255)
	p[2] = uint8(uint32(c.B) + (uint32(p[2])*inv+127)/255)
	p[3] = uint8(uint32(c.A) + (uint32(p[3])*inv+127)/255)
}

func (t *softTarget) ReadPixels() (*image.NRGBA, error) {
	if t.img == nil {
		return nil, fmt.Errorf("read from disposed soft target: %w", ErrRenderBackend)
	}
	return premultipliedToNRGBA(t.Image().Pix, t.w, t.h), nil
}

func (t *softTarget) Dispose() {
	t.img = nil
}
