package willowkit

import (
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// MaxOutlineThickness is the widest outline either path draws. Wider
// requests are clamped.
const MaxOutlineThickness = 8

func clampThickness(t int) int {
	return max(0, min(t, MaxOutlineThickness))
}

// --- CPU path ---

// AddOutline returns src grown by thickness pixels on every side, with an
// outline of color c drawn behind it wherever a source pixel lies within
// thickness pixels. Outline coverage follows the strongest nearby alpha, so
// soft snapshot edges produce a soft outline.
func AddOutline(src image.Image, c Color, thickness int) *image.NRGBA {
	t := clampThickness(thickness)
	in := ImageToNRGBA(src)
	w, h := in.Rect.Dx(), in.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w+2*t, h+2*t))

	var disk []image.Point
	for dy := -t; dy <= t; dy++ {
		for dx := -t; dx <= t; dx++ {
			if math.Hypot(float64(dx), float64(dy)) <= float64(t) {
				disk = append(disk, image.Point{dx, dy})
			}
		}
	}
	alphaAt := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return float64(in.Pix[in.PixOffset(x, y)+3]) / 255
	}

	oa := clamp01(c.A)
	for y := 0; y < h+2*t; y++ {
		for x := 0; x < w+2*t; x++ {
			sx, sy := x-t, y-t
			var cover float64
			for _, o := range disk {
				cover = math.Max(cover, alphaAt(sx+o.X, sy+o.Y))
			}
			var s Color
			if sx >= 0 && sy >= 0 && sx < w && sy < h {
				s = ColorFromNRGBA(in.NRGBAAt(sx, sy))
			}
			// Source over outline, in premultiplied terms.
			k := oa * cover * (1 - s.A)
			a := s.A + k
			if a == 0 {
				continue
			}
			dst.SetNRGBA(x, y, Color{
				R: (s.R*s.A + clamp01(c.R)*k) / a,
				G: (s.G*s.A + clamp01(c.G)*k) / a,
				B: (s.B*s.A + clamp01(c.B)*k) / a,
				A: a,
			}.ToNRGBA())
		}
	}
	return dst
}

// --- GPU path ---

const outlineShaderSrc = `//kage:unit pixels

package main

var OutlineColor vec4
var Thickness float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	var cover float
	for j := 0; j < 17; j++ {
		for i := 0; i < 17; i++ {
			o := vec2(float(i-8), float(j-8))
			if length(o) <= Thickness {
				cover = max(cover, imageSrc0At(src+o).a)
			}
		}
	}
	return c + OutlineColor*cover*(1-c.a)
}
`

// OutlineShader is a compiled outline shader. Create one with
// NewOutlineShader and release it with Dispose.
type OutlineShader struct {
	shader   *ebiten.Shader
	uniforms map[string]any
	op       ebiten.DrawRectShaderOptions
}

// NewOutlineShader compiles the outline shader. Compilation failures wrap
// ErrRenderBackend.
func NewOutlineShader() (*OutlineShader, error) {
	s, err := ebiten.NewShader([]byte(outlineShaderSrc))
	if err != nil {
		return nil, fmt.Errorf("compile outline shader: %v: %w", err, ErrRenderBackend)
	}
	return &OutlineShader{shader: s, uniforms: make(map[string]any, 2)}, nil
}

// outlineUniforms fills the shader uniforms. The color is premultiplied.
func outlineUniforms(c Color, thickness int, u map[string]any) {
	a := clamp01(c.A)
	u["OutlineColor"] = []float32{
		float32(clamp01(c.R) * a),
		float32(clamp01(c.G) * a),
		float32(clamp01(c.B) * a),
		float32(a),
	}
	u["Thickness"] = float32(clampThickness(thickness))
}

// Apply renders src into dst with an outline. src should already carry
// thickness pixels of transparent padding, as ApplyFilters provides. Panics
// if the shader has been disposed.
func (s *OutlineShader) Apply(src, dst *ebiten.Image, c Color, thickness int) {
	if s.shader == nil {
		panic("willowkit: OutlineShader used after Dispose")
	}
	outlineUniforms(c, thickness, s.uniforms)
	b := src.Bounds()
	s.op.Images[0] = src
	s.op.Uniforms = s.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), s.shader, &s.op)
}

// Dispose releases the compiled shader. Calling it more than once is a no-op.
func (s *OutlineShader) Dispose() {
	if s.shader != nil {
		s.shader.Deallocate()
		s.shader = nil
	}
}

// OutlineFilter is a Filter that outlines the opaque parts of an image,
// typically a snapshot rendered on a transparent background.
type OutlineFilter struct {
	Shader    *OutlineShader
	Color     Color
	Thickness int
}

// NewOutlineFilter creates an outline filter using shader.
func NewOutlineFilter(shader *OutlineShader, c Color, thickness int) *OutlineFilter {
	return &OutlineFilter{Shader: shader, Color: c, Thickness: thickness}
}

// Apply renders src into dst with the outline.
func (f *OutlineFilter) Apply(src, dst *ebiten.Image) {
	f.Shader.Apply(src, dst, f.Color, f.Thickness)
}

// Padding returns the clamped thickness so the outline is not cut off.
func (f *OutlineFilter) Padding() int { return clampThickness(f.Thickness) }
