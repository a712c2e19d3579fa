package willowkit

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenDevice renders on the GPU through Ebitengine. Readback requires a
// running game loop, so snapshots on this device must be taken from inside
// Update or Draw.
type EbitenDevice struct {
	activeSlot

	// MaxTargetSize bounds either target dimension. Zero means
	// DefaultMaxTargetSize.
	MaxTargetSize int

	white *ebiten.Image
}

// NewEbitenDevice creates a GPU render device.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{}
}

// whitePixel returns the device's 1x1 white source image, creating it on
// first use. Untextured triangles sample it and carry color in the vertices.
func (d *EbitenDevice) whitePixel() *ebiten.Image {
	if d.white == nil {
		d.white = ebiten.NewImage(1, 1)
		d.white.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return d.white
}

// Dispose releases the device's shared images. Targets created by the device
// must be disposed separately.
func (d *EbitenDevice) Dispose() {
	if d.white != nil {
		d.white.Deallocate()
		d.white = nil
	}
}

// NewTarget allocates an unmanaged width×height GPU image. Backend panics
// (for example an exhausted texture atlas) are reported as ErrRenderBackend.
func (d *EbitenDevice) NewTarget(width, height int, opts TargetOptions) (t Target, err error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ebiten target %dx%d: %w", width, height, ErrInvalidArgument)
	}
	limit := d.MaxTargetSize
	if limit <= 0 {
		limit = DefaultMaxTargetSize
	}
	if width > limit || height > limit {
		return nil, fmt.Errorf("ebiten target %dx%d exceeds limit %d: %w", width, height, limit, ErrRenderBackend)
	}
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = fmt.Errorf("ebiten target %dx%d: %v: %w", width, height, r, ErrRenderBackend)
		}
	}()
	img := ebiten.NewImageWithOptions(image.Rect(0, 0, width, height), &ebiten.NewImageOptions{
		Unmanaged: true,
	})
	return &ebitenTarget{
		img:   img,
		dev:   d,
		aa:    opts.AntiAlias,
		owned: true,
	}, nil
}

// Wrap adapts an existing image, such as the screen, as a Target drawn with
// this device. Dispose on the returned target does not deallocate img.
func (d *EbitenDevice) Wrap(img *ebiten.Image) Target {
	return &ebitenTarget{img: img, dev: d, aa: true}
}

type ebitenTarget struct {
	img   *ebiten.Image
	dev   *EbitenDevice
	aa    bool
	owned bool // deallocate img on Dispose

	vbuf []ebiten.Vertex
}

// Image returns the backing Ebitengine image, or nil once disposed.
func (t *ebitenTarget) Image() *ebiten.Image { return t.img }

func (t *ebitenTarget) Width() int {
	if t.img == nil {
		return 0
	}
	return t.img.Bounds().Dx()
}

func (t *ebitenTarget) Height() int {
	if t.img == nil {
		return 0
	}
	return t.img.Bounds().Dy()
}

func (t *ebitenTarget) Clear(c Color) {
	if t.img == nil {
		return
	}
	if c.A <= 0 {
		t.img.Clear()
		return
	}
	t.img.Fill(c.toRGBA())
}

func (t *ebitenTarget) DrawTriangles(vertices []Vertex, indices []uint32) (err error) {
	if t.img == nil {
		return fmt.Errorf("draw on disposed ebiten target: %w", ErrRenderBackend)
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3: %w", len(indices), ErrInvalidArgument)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("draw triangles: %v: %w", r, ErrRenderBackend)
		}
	}()

	// Sub-images keep the parent's coordinate space.
	origin := t.img.Bounds().Min
	ox, oy := float32(origin.X), float32(origin.Y)
	t.vbuf = t.vbuf[:0]
	for _, v := range vertices {
		t.vbuf = append(t.vbuf, ebiten.Vertex{
			DstX:   v.X + ox,
			DstY:   v.Y + oy,
			SrcX:   0.5,
			SrcY:   0.5,
			ColorR: v.R,
			ColorG: v.G,
			ColorB: v.B,
			ColorA: v.A,
		})
	}
	t.img.DrawTriangles32(t.vbuf, indices, t.dev.whitePixel(), &ebiten.DrawTrianglesOptions{
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
		AntiAlias:      t.aa,
	})
	return nil
}

// ReadPixels reads the GPU image back. Ebitengine panics when this is called
// before the game loop starts; that panic is reported as ErrRenderBackend.
func (t *ebitenTarget) ReadPixels() (out *image.NRGBA, err error) {
	if t.img == nil {
		return nil, fmt.Errorf("read from disposed ebiten target: %w", ErrRenderBackend)
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("read pixels: %v: %w", r, ErrRenderBackend)
		}
	}()
	w, h := t.Width(), t.Height()
	pixels := make([]byte, 4*w*h)
	t.img.ReadPixels(pixels)
	return premultipliedToNRGBA(pixels, w, h), nil
}

func (t *ebitenTarget) Dispose() {
	if t.img == nil {
		return
	}
	if t.owned {
		t.img.Deallocate()
	}
	t.img = nil
}
