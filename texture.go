package willowkit

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/hajimehoshi/ebiten/v2"
)

// NewTextureFromImage uploads img as a new GPU texture.
func NewTextureFromImage(img image.Image) *ebiten.Image {
	return ebiten.NewImageFromImage(img)
}

// TextureToImage reads tex back into a straight-alpha CPU image. Readback
// needs a running game loop; calling it earlier fails with ErrRenderBackend.
func TextureToImage(tex *ebiten.Image) (out *image.NRGBA, err error) {
	if tex == nil {
		return nil, fmt.Errorf("nil texture: %w", ErrInvalidArgument)
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("read texture: %v: %w", r, ErrRenderBackend)
		}
	}()
	b := tex.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	tex.ReadPixels(pixels)
	return premultipliedToNRGBA(pixels, b.Dx(), b.Dy()), nil
}

// ImageToNRGBA returns img as a straight-alpha image with its origin at (0, 0).
// The result never aliases img.
func ImageToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// FullRegion returns a region covering an entire w×h page.
func FullRegion(page uint16, w, h int) TextureRegion {
	return TextureRegion{
		Page:      page,
		Width:     uint16(w),
		Height:    uint16(h),
		OriginalW: uint16(w),
		OriginalH: uint16(h),
	}
}

// pageRect returns the rectangle the region occupies on its page. Rotated
// regions are stored with width and height swapped.
func (r TextureRegion) pageRect() image.Rectangle {
	if r.Rotated {
		return image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Height), int(r.Y)+int(r.Width))
	}
	return image.Rect(int(r.X), int(r.Y), int(r.X)+int(r.Width), int(r.Y)+int(r.Height))
}

// resolvePageImage returns the page image for a region, or nil if the page
// index is out of range or the region is the magenta placeholder.
func resolvePageImage(region TextureRegion, pages []*ebiten.Image) *ebiten.Image {
	if region.Page == magentaPlaceholderPage {
		return nil
	}
	idx := int(region.Page)
	if idx < len(pages) {
		return pages[idx]
	}
	return nil
}

// SubTexture returns the GPU sub-image a region occupies on its page, as
// stored (rotated regions stay rotated). Returns nil if the page is missing.
func SubTexture(pages []*ebiten.Image, region TextureRegion) *ebiten.Image {
	page := resolvePageImage(region, pages)
	if page == nil {
		return nil
	}
	return page.SubImage(region.pageRect()).(*ebiten.Image)
}

// RegionToImage extracts a region from a CPU page into a standalone image of
// the region's original (untrimmed) size, undoing rotation and trim offsets.
func RegionToImage(page image.Image, region TextureRegion) *image.NRGBA {
	w, h := int(region.OriginalW), int(region.OriginalH)
	if w == 0 || h == 0 {
		w, h = int(region.Width), int(region.Height)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := page.Bounds()
	pr := region.pageRect().Add(src.Min)
	ox, oy := int(region.OffsetX), int(region.OffsetY)
	for y := 0; y < int(region.Height); y++ {
		for x := 0; x < int(region.Width); x++ {
			// Rotated regions are stored 90 degrees clockwise.
			sx, sy := pr.Min.X+x, pr.Min.Y+y
			if region.Rotated {
				sx, sy = pr.Max.X-1-y, pr.Min.Y+x
			}
			if !(image.Point{sx, sy}).In(src) {
				continue
			}
			dx, dy := x+ox, y+oy
			if dx < 0 || dy < 0 || dx >= w || dy >= h {
				continue
			}
			dst.Set(dx, dy, page.At(sx, sy))
		}
	}
	return dst
}
