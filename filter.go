package willowkit

import "github.com/hajimehoshi/ebiten/v2"

// Filter is the interface for visual effects applied to rendered images.
type Filter interface {
	// Apply renders src into dst with the filter effect.
	Apply(src, dst *ebiten.Image)
	// Padding returns the extra pixels needed around the source to accommodate
	// the effect. Zero means no padding.
	Padding() int
}

// filterChainPadding returns the cumulative padding required by a slice of filters.
func filterChainPadding(filters []Filter) int {
	pad := 0
	for _, f := range filters {
		pad += f.Padding()
	}
	return pad
}

// ApplyFilters runs a filter chain on src, ping-ponging between two scratch
// images sized to src plus the chain's padding. It returns a new image owned
// by the caller; src is left untouched. An empty chain returns nil.
func ApplyFilters(filters []Filter, src *ebiten.Image) *ebiten.Image {
	if len(filters) == 0 {
		return nil
	}
	pad := filterChainPadding(filters)
	b := src.Bounds()
	w, h := b.Dx()+2*pad, b.Dy()+2*pad

	current := ebiten.NewImage(w, h)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(pad), float64(pad))
	current.DrawImage(src, op)

	scratch := ebiten.NewImage(w, h)
	for _, f := range filters {
		scratch.Clear()
		f.Apply(current, scratch)
		current, scratch = scratch, current
	}
	scratch.Deallocate()
	return current
}
