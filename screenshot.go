package willowkit

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the whole screen, taken at the end of
// the next Draw call. The PNG is written to SnapshotDir with a timestamped
// filename. Safe to call from Update or Draw.
func (w *World) Screenshot(label string) {
	w.screenshotQueue = append(w.screenshotQueue, label)
}

// flushScreenshots captures the rendered frame for every queued label and
// writes each as a PNG file. Called at the end of World.Draw.
func (w *World) flushScreenshots(screen *ebiten.Image) {
	if len(w.screenshotQueue) == 0 {
		return
	}
	defer func() { w.screenshotQueue = w.screenshotQueue[:0] }()

	img, err := TextureToImage(screen)
	if err != nil {
		debugWarnf("screenshot: %v", err)
		return
	}
	for _, label := range w.screenshotQueue {
		if _, err := w.SaveSnapshot(label, img); err != nil {
			debugWarnf("screenshot: %v", err)
		}
	}
}

// SaveSnapshot writes img to SnapshotDir as <timestamp>_<label>.png, creating
// the directory if needed, and returns the file path.
func (w *World) SaveSnapshot(label string, img *image.NRGBA) (string, error) {
	if img == nil {
		return "", fmt.Errorf("save snapshot %q: nil image: %w", label, ErrInvalidArgument)
	}
	dir := w.SnapshotDir
	if dir == "" {
		dir = defaultSnapshotDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
	if err := SavePNG(path, img); err != nil {
		return "", err
	}
	return path, nil
}

// SavePNG encodes img to a PNG file at path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// LoadPNG decodes the PNG file at path into a straight-alpha image.
func LoadPNG(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ImageToNRGBA(img), nil
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
