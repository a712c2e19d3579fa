package willowkit

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
)

// SpriteSheet is a packed grid of frames plus TexturePacker hash-format JSON
// describing it. The JSON loads back with LoadAtlas.
type SpriteSheet struct {
	Image *image.NRGBA
	JSON  []byte
}

type jsonSheetMeta struct {
	App   string   `json:"app"`
	Image string   `json:"image"`
	Size  jsonSize `json:"size"`
}

type jsonSheet struct {
	Frames map[string]jsonFrame `json:"frames"`
	Meta   jsonSheetMeta        `json:"meta"`
}

// maxSheetSize is the largest sheet dimension a TextureRegion can address.
const maxSheetSize = 0xFFFF

// PackSpriteSheet lays frames out left to right, top to bottom, in a grid of
// columns cells. Each cell is as large as the largest frame; frames sit at
// their cell's top-left corner. names[i] names frames[i] and must be unique.
// columns <= 0 packs all frames into one row. imageName is recorded in the
// JSON meta block.
func PackSpriteSheet(frames []image.Image, names []string, columns int, imageName string) (*SpriteSheet, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("sprite sheet needs at least one frame: %w", ErrInvalidArgument)
	}
	if len(names) != len(frames) {
		return nil, fmt.Errorf("sprite sheet has %d frames but %d names: %w", len(frames), len(names), ErrInvalidArgument)
	}
	if columns <= 0 || columns > len(frames) {
		columns = len(frames)
	}
	rows := (len(frames) + columns - 1) / columns

	cellW, cellH := 0, 0
	seen := make(map[string]bool, len(names))
	for i, f := range frames {
		if f == nil {
			return nil, fmt.Errorf("sprite sheet frame %d is nil: %w", i, ErrInvalidArgument)
		}
		if seen[names[i]] {
			return nil, fmt.Errorf("duplicate sprite name %q: %w", names[i], ErrInvalidArgument)
		}
		seen[names[i]] = true
		b := f.Bounds()
		cellW = max(cellW, b.Dx())
		cellH = max(cellH, b.Dy())
	}
	sheetW, sheetH := cellW*columns, cellH*rows
	if sheetW > maxSheetSize || sheetH > maxSheetSize {
		return nil, fmt.Errorf("sprite sheet %dx%d exceeds %d: %w", sheetW, sheetH, maxSheetSize, ErrInvalidArgument)
	}

	sheet := image.NewNRGBA(image.Rect(0, 0, sheetW, sheetH))
	doc := jsonSheet{
		Frames: make(map[string]jsonFrame, len(frames)),
		Meta: jsonSheetMeta{
			App:   "willowkit",
			Image: imageName,
			Size:  jsonSize{W: sheetW, H: sheetH},
		},
	}
	for i, f := range frames {
		b := f.Bounds()
		x, y := (i%columns)*cellW, (i/columns)*cellH
		draw.Draw(sheet, image.Rect(x, y, x+b.Dx(), y+b.Dy()), f, b.Min, draw.Src)
		doc.Frames[names[i]] = jsonFrame{
			Frame:            jsonRect{X: x, Y: y, W: b.Dx(), H: b.Dy()},
			SpriteSourceSize: jsonRect{W: b.Dx(), H: b.Dy()},
			SourceSize:       jsonSize{W: b.Dx(), H: b.Dy()},
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("willowkit: encode sprite sheet JSON: %w", err)
	}
	return &SpriteSheet{Image: sheet, JSON: data}, nil
}
