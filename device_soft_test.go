package willowkit

import (
	"errors"
	"image/color"
	"testing"
)

func TestSoftDeviceNewTargetLimits(t *testing.T) {
	dev := NewSoftDevice()
	dev.MaxTargetSize = 64
	tests := []struct {
		w, h int
		want error
	}{
		{0, 10, ErrInvalidArgument},
		{10, -1, ErrInvalidArgument},
		{65, 10, ErrRenderBackend},
		{10, 65, ErrRenderBackend},
		{64, 64, nil},
	}
	for _, tt := range tests {
		tgt, err := dev.NewTarget(tt.w, tt.h, TargetOptions{})
		if tt.want == nil {
			if err != nil {
				t.Errorf("NewTarget(%d, %d) error = %v", tt.w, tt.h, err)
			} else if tgt.Width() != tt.w || tgt.Height() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", tgt.Width(), tgt.Height(), tt.w, tt.h)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("NewTarget(%d, %d) error = %v, want %v", tt.w, tt.h, err, tt.want)
		}
	}
}

func TestSoftDeviceDefaultLimit(t *testing.T) {
	dev := NewSoftDevice()
	if _, err := dev.NewTarget(DefaultMaxTargetSize+1, 1, TargetOptions{}); !errors.Is(err, ErrRenderBackend) {
		t.Errorf("error = %v, want ErrRenderBackend", err)
	}
}

func TestSoftTargetStartsTransparent(t *testing.T) {
	tgt, _ := NewSoftDevice().NewTarget(3, 3, TargetOptions{})
	img, err := tgt.ReadPixels()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range img.Pix {
		if p != 0 {
			t.Fatal("new target should be fully transparent")
		}
	}
}

func TestSoftTargetClearStraightAlpha(t *testing.T) {
	tgt, _ := NewSoftDevice().NewTarget(2, 2, TargetOptions{})
	tgt.Clear(Color{1, 0.5, 0, 0.5})
	img, _ := tgt.ReadPixels()
	got := img.NRGBAAt(0, 0)
	// Stored premultiplied as (128, 64, 0, 128), read back straight.
	want := color.NRGBA{255, 127, 0, 128}
	if got != want {
		t.Errorf("pixel = %v, want %v", got, want)
	}
}

func fullSquare(c [4]float32) ([]Vertex, []uint32) {
	v := func(x, y float32) Vertex { return Vertex{X: x, Y: y, R: c[0], G: c[1], B: c[2], A: c[3]} }
	return []Vertex{v(0, 0), v(8, 0), v(8, 8), v(0, 8)}, []uint32{0, 1, 2, 0, 2, 3}
}

func TestSoftTargetDrawTriangles(t *testing.T) {
	for _, aa := range []bool{false, true} {
		tgt, _ := NewSoftDevice().NewTarget(8, 8, TargetOptions{AntiAlias: aa})
		verts, inds := fullSquare([4]float32{0, 1, 0, 1})
		if err := tgt.DrawTriangles(verts, inds); err != nil {
			t.Fatalf("aa=%v: DrawTriangles: %v", aa, err)
		}
		img, _ := tgt.ReadPixels()
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				if got := img.NRGBAAt(x, y); got != (color.NRGBA{0, 255, 0, 255}) {
					t.Errorf("aa=%v: pixel (%d,%d) = %v, want opaque green", aa, x, y, got)
				}
			}
		}
	}
}

func TestSoftTargetSharedEdgeCoveredOnce(t *testing.T) {
	for _, aa := range []bool{false, true} {
		tgt, _ := NewSoftDevice().NewTarget(8, 8, TargetOptions{AntiAlias: aa})
		verts, inds := fullSquare([4]float32{0.5, 0, 0, 0.5})
		if err := tgt.DrawTriangles(verts, inds); err != nil {
			t.Fatal(err)
		}
		img, _ := tgt.ReadPixels()
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				if got := img.NRGBAAt(x, y).A; got != 128 {
					t.Errorf("aa=%v: alpha at (%d,%d) = %d, want 128", aa, x, y, got)
				}
			}
		}
	}
}

func TestOwnsEdgeIsAntisymmetric(t *testing.T) {
	edges := [][4]float64{
		{0, 0, 8, 8},
		{0, 0, 8, 0},
		{0, 0, 0, 8},
		{3, 1, -2, 5},
		{1.5, 2.5, 1.5, -4},
	}
	for _, e := range edges {
		fwd := ownsEdge(e[0], e[1], e[2], e[3])
		back := ownsEdge(e[2], e[3], e[0], e[1])
		if fwd == back {
			t.Errorf("ownsEdge(%v) = %v both ways, want exactly one owner", e, fwd)
		}
	}
}

func TestSoftTargetSampleCount(t *testing.T) {
	tests := []struct {
		size int
		aa   bool
		want int
	}{
		{64, false, 1},
		{64, true, softAASamples},
		{1024, true, 4},
		{2048, true, 2},
		{4096, true, 1},
	}
	for _, tt := range tests {
		tgt, err := NewSoftDevice().NewTarget(tt.size, 1, TargetOptions{AntiAlias: tt.aa})
		if err != nil {
			t.Fatal(err)
		}
		st := tgt.(*softTarget)
		if st.samples != tt.want {
			t.Errorf("samples(%d, aa=%v) = %d, want %d", tt.size, tt.aa, st.samples, tt.want)
		}
		if b := st.Image().Bounds(); b.Dx() != tt.size || b.Dy() != 1 {
			t.Errorf("Image bounds = %v, want %dx1", b, tt.size)
		}
	}
}

func TestSoftTargetBlendsOver(t *testing.T) {
	tgt, _ := NewSoftDevice().NewTarget(8, 8, TargetOptions{})
	tgt.Clear(Color{0, 0, 1, 1})
	// Half-transparent red, premultiplied.
	verts, inds := fullSquare([4]float32{0.5, 0, 0, 0.5})
	if err := tgt.DrawTriangles(verts, inds); err != nil {
		t.Fatal(err)
	}
	img, _ := tgt.ReadPixels()
	got := img.NRGBAAt(3, 3)
	if got.A != 255 || got.R < 126 || got.R > 129 || got.B < 126 || got.B > 129 {
		t.Errorf("pixel = %v, want an even red/blue mix", got)
	}
}

func TestSoftTargetPartialTriangle(t *testing.T) {
	tgt, _ := NewSoftDevice().NewTarget(8, 8, TargetOptions{})
	c := func(x, y float32) Vertex { return Vertex{X: x, Y: y, R: 1, A: 1} }
	if err := tgt.DrawTriangles([]Vertex{c(0, 0), c(8, 0), c(0, 8)}, []uint32{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	img, _ := tgt.ReadPixels()
	if img.NRGBAAt(1, 1).A != 255 {
		t.Error("pixel inside the triangle should be filled")
	}
	if img.NRGBAAt(7, 7).A != 0 {
		t.Error("pixel outside the triangle should stay empty")
	}
}

func TestSoftTargetDrawTrianglesErrors(t *testing.T) {
	tgt, _ := NewSoftDevice().NewTarget(4, 4, TargetOptions{})
	verts, _ := fullSquare([4]float32{1, 1, 1, 1})
	if err := tgt.DrawTriangles(verts, []uint32{0, 1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short index list error = %v, want ErrInvalidArgument", err)
	}
	if err := tgt.DrawTriangles(verts, []uint32{0, 1, 9}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad index error = %v, want ErrInvalidArgument", err)
	}
}

func TestSoftTargetDispose(t *testing.T) {
	tgt, _ := NewSoftDevice().NewTarget(4, 4, TargetOptions{AntiAlias: true})
	tgt.Dispose()
	tgt.Dispose()
	if tgt.Width() != 4 {
		t.Errorf("Width after Dispose = %d, want 4", tgt.Width())
	}
	if _, err := tgt.ReadPixels(); !errors.Is(err, ErrRenderBackend) {
		t.Errorf("ReadPixels after Dispose error = %v, want ErrRenderBackend", err)
	}
	verts, inds := fullSquare([4]float32{1, 1, 1, 1})
	if err := tgt.DrawTriangles(verts, inds); !errors.Is(err, ErrRenderBackend) {
		t.Errorf("DrawTriangles after Dispose error = %v, want ErrRenderBackend", err)
	}
	tgt.Clear(ColorWhite) // no-op
}

func TestSoftDeviceActiveTarget(t *testing.T) {
	dev := NewSoftDevice()
	if dev.ActiveTarget() != nil {
		t.Error("new device should have no active target")
	}
	tgt, _ := dev.NewTarget(1, 1, TargetOptions{})
	dev.SetActiveTarget(tgt)
	if dev.ActiveTarget() != tgt {
		t.Error("ActiveTarget did not return the set target")
	}
	dev.SetActiveTarget(nil)
	if dev.ActiveTarget() != nil {
		t.Error("ActiveTarget should be nil after clearing")
	}
}

// --- Color conversion ---

func TestPremultipliedToNRGBA(t *testing.T) {
	pix := []byte{
		0, 0, 0, 0,
		255, 0, 0, 255,
		64, 32, 0, 128,
	}
	img := premultipliedToNRGBA(pix, 3, 1)
	tests := []struct {
		x    int
		want color.NRGBA
	}{
		{0, color.NRGBA{0, 0, 0, 0}},
		{1, color.NRGBA{255, 0, 0, 255}},
		{2, color.NRGBA{127, 63, 0, 128}},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, 0); got != tt.want {
			t.Errorf("pixel %d = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestColorConversions(t *testing.T) {
	c := Color{1, 0.5, 0, 0.5}
	if got := c.toRGBA(); got != (color.RGBA{128, 64, 0, 128}) {
		t.Errorf("toRGBA = %v, want {128 64 0 128}", got)
	}
	if got := c.ToNRGBA(); got != (color.NRGBA{255, 128, 0, 128}) {
		t.Errorf("ToNRGBA = %v, want {255 128 0 128}", got)
	}
	back := ColorFromNRGBA(color.NRGBA{255, 0, 51, 255})
	if back != (Color{1, 0, 0.2, 1}) {
		t.Errorf("ColorFromNRGBA = %v, want {1 0 0.2 1}", back)
	}
	if got := (Color{2, -1, 0, 1}).ToNRGBA(); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("out-of-range ToNRGBA = %v, want clamped", got)
	}
}
