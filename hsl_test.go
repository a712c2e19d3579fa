package willowkit

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestAdjustHSL(t *testing.T) {
	tests := []struct {
		name string
		in   color.NRGBA
		adj  HSLAdjust
		want color.NRGBA
	}{
		{"red to green", color.NRGBA{255, 0, 0, 255}, HueShift(120), color.NRGBA{0, 255, 0, 255}},
		{"negative hue wraps", color.NRGBA{255, 0, 0, 255}, HueShift(-240), color.NRGBA{0, 255, 0, 255}},
		{"alpha preserved", color.NRGBA{255, 0, 0, 128}, HueShift(240), color.NRGBA{0, 0, 255, 128}},
		{"desaturate", color.NRGBA{255, 0, 0, 255}, HSLAdjust{Saturation: 0, Lightness: 1}, color.NRGBA{128, 128, 128, 255}},
		{"darken to black", color.NRGBA{200, 100, 50, 255}, HSLAdjust{Saturation: 1, Lightness: 0}, color.NRGBA{0, 0, 0, 255}},
		{"identity", color.NRGBA{200, 100, 50, 255}, HueShift(0), color.NRGBA{200, 100, 50, 255}},
		{"transparent untouched", color.NRGBA{10, 20, 30, 0}, HueShift(90), color.NRGBA{10, 20, 30, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := AdjustHSL(solidImage(2, 2, tt.in), tt.adj)
			if got := out.NRGBAAt(1, 1); got != tt.want {
				t.Errorf("pixel = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdjustHSLSubImageOrigin(t *testing.T) {
	src := solidImage(6, 6, color.NRGBA{255, 0, 0, 255})
	sub := src.SubImage(image.Rect(2, 2, 5, 6))
	out := AdjustHSL(sub, HueShift(120))
	if b := out.Bounds(); b != image.Rect(0, 0, 3, 4) {
		t.Errorf("bounds = %v, want (0,0)-(3,4)", b)
	}
	if got := src.NRGBAAt(3, 3); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("source modified: %v", got)
	}
}

func TestHSLAdjustIsIdentity(t *testing.T) {
	tests := []struct {
		adj  HSLAdjust
		want bool
	}{
		{HueShift(0), true},
		{HueShift(360), true},
		{HueShift(-720), true},
		{HueShift(1), false},
		{HSLAdjust{}, false},
		{HSLAdjust{Saturation: 1, Lightness: 0.5}, false},
	}
	for _, tt := range tests {
		if got := tt.adj.IsIdentity(); got != tt.want {
			t.Errorf("%+v.IsIdentity() = %v, want %v", tt.adj, got, tt.want)
		}
	}
}

func TestWrapHue(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0}, {90, 90}, {360, 0}, {-90, 270}, {725, 5},
	}
	for _, tt := range tests {
		if got := wrapHue(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("wrapHue(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHSLUniforms(t *testing.T) {
	u := map[string]any{}
	hslUniforms(HSLAdjust{Hue: -90, Saturation: 0.5, Lightness: 2}, u)
	if got := u["HueShift"].(float32); got != 0.75 {
		t.Errorf("HueShift = %v, want 0.75", got)
	}
	if got := u["SaturationScale"].(float32); got != 0.5 {
		t.Errorf("SaturationScale = %v, want 0.5", got)
	}
	if got := u["LightnessScale"].(float32); got != 2 {
		t.Errorf("LightnessScale = %v, want 2", got)
	}
}

func TestHSLShaderUseAfterDisposePanics(t *testing.T) {
	h := &HSLShader{}
	h.Dispose() // no-op on an empty handle
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	h.Apply(nil, nil, HueShift(10))
}

func TestHSLFilterPadding(t *testing.T) {
	f := NewHSLFilter(&HSLShader{}, HueShift(30))
	if f.Padding() != 0 {
		t.Errorf("Padding = %d, want 0", f.Padding())
	}
	if f.Adjust.Hue != 30 {
		t.Errorf("Adjust.Hue = %v, want 30", f.Adjust.Hue)
	}
}
