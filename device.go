package willowkit

import (
	"image"
	"image/color"
)

// TargetOptions configures an offscreen target.
type TargetOptions struct {
	// AntiAlias smooths triangle edges.
	AntiAlias bool
}

// Target is an offscreen RGBA color buffer with an alpha channel.
type Target interface {
	Width() int
	Height() int
	// Clear fills the whole target with c.
	Clear(c Color)
	// DrawTriangles composites the triangle list over the current contents.
	DrawTriangles(vertices []Vertex, indices []uint32) error
	// ReadPixels copies the target into a new straight-alpha image.
	ReadPixels() (*image.NRGBA, error)
	// Dispose releases the buffer. Calling it more than once is a no-op.
	Dispose()
}

// Device allocates targets and tracks the process-wide active target used
// for readback. Devices must be driven from one goroutine at a time.
type Device interface {
	NewTarget(width, height int, opts TargetOptions) (Target, error)
	ActiveTarget() Target
	SetActiveTarget(t Target)
}

// DefaultMaxTargetSize bounds either dimension of a target when a device's
// MaxTargetSize is zero.
const DefaultMaxTargetSize = 8192

// activeSlot is the shared active-target bookkeeping embedded by devices.
type activeSlot struct {
	active Target
}

// ActiveTarget returns the currently active target, or nil.
func (s *activeSlot) ActiveTarget() Target { return s.active }

// SetActiveTarget makes t the active target. Pass nil to clear it.
func (s *activeSlot) SetActiveTarget(t Target) { s.active = t }

// premultipliedToNRGBA converts premultiplied RGBA bytes to a straight-alpha
// image of the given size.
func premultipliedToNRGBA(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// toRGBA converts a Color to a premultiplied color.RGBA.
func (c Color) toRGBA() color.RGBA {
	a := clamp01(c.A)
	return color.RGBA{
		R: uint8(clamp01(c.R)*a*255 + 0.5),
		G: uint8(clamp01(c.G)*a*255 + 0.5),
		B: uint8(clamp01(c.B)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// ToNRGBA converts a Color to a straight-alpha color.NRGBA.
func (c Color) ToNRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// ColorFromNRGBA converts an 8-bit straight-alpha color to a Color.
func ColorFromNRGBA(c color.NRGBA) Color {
	return Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
		A: float64(c.A) / 255,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// vertexRGBA converts a premultiplied vertex color to color.RGBA.
func vertexRGBA(v Vertex) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(float64(v.R))*255 + 0.5),
		G: uint8(clamp01(float64(v.G))*255 + 0.5),
		B: uint8(clamp01(float64(v.B))*255 + 0.5),
		A: uint8(clamp01(float64(v.A))*255 + 0.5),
	}
}
