package willowkit

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// HSLAdjust describes a hue, saturation, and lightness change.
type HSLAdjust struct {
	// Hue is a rotation in degrees; any value is wrapped into [0, 360).
	Hue float64
	// Saturation multiplies saturation. 1 leaves it unchanged, 0 is grayscale.
	Saturation float64
	// Lightness multiplies lightness. 1 leaves it unchanged.
	Lightness float64
}

// HueShift returns an adjustment that rotates hue by degrees and leaves
// saturation and lightness unchanged.
func HueShift(degrees float64) HSLAdjust {
	return HSLAdjust{Hue: degrees, Saturation: 1, Lightness: 1}
}

// IsIdentity reports whether the adjustment leaves colors unchanged.
func (a HSLAdjust) IsIdentity() bool {
	return wrapHue(a.Hue) == 0 && a.Saturation == 1 && a.Lightness == 1
}

// wrapHue maps degrees into [0, 360).
func wrapHue(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// --- CPU path ---

// AdjustHSL returns a copy of src with adj applied to every pixel. Alpha is
// preserved. Fully transparent pixels are copied unchanged.
func AdjustHSL(src image.Image, adj HSLAdjust) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	hue := wrapHue(adj.Hue)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			n := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			if n.A != 0 {
				n = adjustPixel(n, hue, adj.Saturation, adj.Lightness)
			}
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, n)
		}
	}
	return dst
}

// adjustPixel applies a wrapped hue rotation and saturation/lightness scales
// to one straight-alpha pixel.
func adjustPixel(n color.NRGBA, hue, sat, light float64) color.NRGBA {
	c := colorful.Color{R: float64(n.R) / 255, G: float64(n.G) / 255, B: float64(n.B) / 255}
	h, s, l := c.Hsl()
	h = wrapHue(h + hue)
	s = clamp01(s * sat)
	l = clamp01(l * light)
	out := colorful.Hsl(h, s, l).Clamped()
	return color.NRGBA{
		R: uint8(out.R*255 + 0.5),
		G: uint8(out.G*255 + 0.5),
		B: uint8(out.B*255 + 0.5),
		A: n.A,
	}
}

// --- GPU path ---

const hslShaderSrc = `//kage:unit pixels
package main

var HueShift float
var SaturationScale float
var LightnessScale float

func rgbToHSL(c vec3) vec3 {
	hi := max(c.r, max(c.g, c.b))
	lo := min(c.r, min(c.g, c.b))
	l := (hi + lo) / 2
	if hi == lo {
		return vec3(0, 0, l)
	}
	d := hi - lo
	s := d / (1 - abs(2*l-1))
	h := 0.0
	if hi == c.r {
		h = mod((c.g-c.b)/d, 6)
	} else if hi == c.g {
		h = (c.b-c.r)/d + 2
	} else {
		h = (c.r-c.g)/d + 4
	}
	return vec3(h/6, s, l)
}

func hslToRGB(hsl vec3) vec3 {
	c := (1 - abs(2*hsl.z-1)) * hsl.y
	hp := hsl.x * 6
	x := c * (1 - abs(mod(hp, 2)-1))
	rgb := vec3(0)
	if hp < 1 {
		rgb = vec3(c, x, 0)
	} else if hp < 2 {
		rgb = vec3(x, c, 0)
	} else if hp < 3 {
		rgb = vec3(0, c, x)
	} else if hp < 4 {
		rgb = vec3(0, x, c)
	} else if hp < 5 {
		rgb = vec3(x, 0, c)
	} else {
		rgb = vec3(c, 0, x)
	}
	return rgb + (hsl.z - c/2)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a == 0 {
		return vec4(0)
	}
	// Un-premultiply.
	hsl := rgbToHSL(c.rgb / c.a)
	hsl.x = fract(hsl.x + HueShift)
	hsl.y = clamp(hsl.y*SaturationScale, 0, 1)
	hsl.z = clamp(hsl.z*LightnessScale, 0, 1)
	// Re-premultiply.
	return vec4(hslToRGB(hsl)*c.a, c.a)
}
`

// HSLShader is a compiled HSL adjustment shader. Create one with NewHSLShader
// and release it with Dispose; there is no shared global instance.
type HSLShader struct {
	shader   *ebiten.Shader
	uniforms map[string]any
	op       ebiten.DrawRectShaderOptions
}

// NewHSLShader compiles the HSL adjustment shader. Compilation failures wrap
// ErrRenderBackend.
func NewHSLShader() (*HSLShader, error) {
	s, err := ebiten.NewShader([]byte(hslShaderSrc))
	if err != nil {
		return nil, fmt.Errorf("compile HSL shader: %v: %w", err, ErrRenderBackend)
	}
	return &HSLShader{shader: s, uniforms: make(map[string]any, 3)}, nil
}

// hslUniforms converts an adjustment into shader uniform values. Hue is
// expressed as a fraction of a full turn.
func hslUniforms(adj HSLAdjust, u map[string]any) {
	u["HueShift"] = float32(wrapHue(adj.Hue) / 360)
	u["SaturationScale"] = float32(adj.Saturation)
	u["LightnessScale"] = float32(adj.Lightness)
}

// Apply renders src into dst with adj applied. Panics if the shader has been
// disposed.
func (h *HSLShader) Apply(src, dst *ebiten.Image, adj HSLAdjust) {
	if h.shader == nil {
		panic("willowkit: HSLShader used after Dispose")
	}
	hslUniforms(adj, h.uniforms)
	bounds := src.Bounds()
	h.op.Images[0] = src
	h.op.Uniforms = h.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), h.shader, &h.op)
}

// Adjust returns a new image holding src with adj applied. The source is not
// modified.
func (h *HSLShader) Adjust(src *ebiten.Image, adj HSLAdjust) *ebiten.Image {
	b := src.Bounds()
	dst := ebiten.NewImage(b.Dx(), b.Dy())
	h.Apply(src, dst, adj)
	return dst
}

// Dispose releases the compiled shader. Calling it more than once is a no-op.
func (h *HSLShader) Dispose() {
	if h.shader != nil {
		h.shader.Deallocate()
		h.shader = nil
	}
}

// HSLFilter is a Filter that applies an HSL adjustment with a caller-owned
// shader.
type HSLFilter struct {
	Shader *HSLShader
	Adjust HSLAdjust
}

// NewHSLFilter creates a filter using shader.
func NewHSLFilter(shader *HSLShader, adj HSLAdjust) *HSLFilter {
	return &HSLFilter{Shader: shader, Adjust: adj}
}

// Apply renders src into dst with the filter's adjustment.
func (f *HSLFilter) Apply(src, dst *ebiten.Image) {
	f.Shader.Apply(src, dst, f.Adjust)
}

// Padding returns 0; color adjustments don't expand the image bounds.
func (f *HSLFilter) Padding() int { return 0 }
