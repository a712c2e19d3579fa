package willowkit

import (
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ClearColor fills the screen before the world is drawn.
	ClearColor Color
	// ShowFPS overlays the current FPS and TPS in the top-left corner.
	ShowFPS bool
	// Update, if set, runs once per tick before World.Update.
	Update func() error
	// AfterDraw, if set, runs after the world is drawn each frame. GPU
	// snapshots with an EbitenDevice belong here or in Update.
	AfterDraw func(screen *ebiten.Image)
}

// runner adapts a World to ebiten.Game.
type runner struct {
	world *World
	cfg   RunConfig
}

func (g *runner) Update() error {
	if g.cfg.Update != nil {
		if err := g.cfg.Update(); err != nil {
			return err
		}
	}
	g.world.Update(float32(1.0 / float64(ebiten.TPS())))
	return nil
}

func (g *runner) Draw(screen *ebiten.Image) {
	if g.cfg.ClearColor.A > 0 {
		screen.Fill(g.cfg.ClearColor.toRGBA())
	}
	g.world.Draw(screen)
	if g.cfg.AfterDraw != nil {
		g.cfg.AfterDraw(screen)
	}
	if g.cfg.ShowFPS {
		drawFPS(screen)
	}
}

func (g *runner) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// drawFPS prints FPS and TPS over a semi-transparent backdrop.
func drawFPS(screen *ebiten.Image) {
	b := screen.Bounds()
	// 100x32 is enough for "FPS: 60.0\nTPS: 60.0"
	r := image.Rect(b.Min.X, b.Min.Y, b.Min.X+100, b.Min.Y+32).Intersect(b)
	screen.SubImage(r).(*ebiten.Image).Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
}

// Run opens a window and drives w with a standard game loop until the window
// closes or an update returns an error.
func Run(w *World, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("window %dx%d: %w", cfg.Width, cfg.Height, ErrInvalidArgument)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	return ebiten.RunGame(&runner{world: w, cfg: cfg})
}
