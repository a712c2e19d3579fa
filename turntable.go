package willowkit

import (
	"fmt"
	"image"
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TurntableOptions configures RenderTurntable. The zero value renders eight
// evenly spaced frames over a full revolution.
type TurntableOptions struct {
	// Frames is the number of images to render. Zero means 8.
	Frames int
	// Degrees is the total orbit swept across all frames. Zero means 360.
	// With a full revolution the last frame stops one step short of the first.
	Degrees float64
	// Ease shapes the angle progression. Nil means ease.Linear.
	Ease ease.TweenFunc
}

const defaultTurntableFrames = 8

// RenderTurntable renders target from cameras orbiting around the +Y axis
// through its bounds center. Each frame is an independent snapshot with the
// same cleanup guarantees as RenderSnapshot. The first failure stops the
// sequence and is returned with the frames rendered so far.
func (s *Snapshotter) RenderTurntable(target *Node, opts SnapshotOptions, tt TurntableOptions) ([]*image.NRGBA, error) {
	frames := tt.Frames
	if frames < 0 {
		return nil, fmt.Errorf("turntable frame count %d is negative: %w", frames, ErrInvalidArgument)
	}
	if frames == 0 {
		frames = defaultTurntableFrames
	}
	degrees := tt.Degrees
	if !isFinite(degrees) {
		return nil, fmt.Errorf("turntable sweep %v must be finite: %w", degrees, ErrInvalidArgument)
	}
	if degrees == 0 {
		degrees = 360
	}
	easeFn := tt.Ease
	if easeFn == nil {
		easeFn = ease.Linear
	}

	// Progress is sampled at i/frames, so a full revolution never repeats
	// the first frame.
	tween := gween.New(0, float32(degrees), float32(frames), easeFn)
	out := make([]*image.NRGBA, 0, frames)
	for i := 0; i < frames; i++ {
		angle, _ := tween.Set(float32(i))
		layer, err := s.validate(target, &opts)
		if err != nil {
			return out, err
		}
		r := &snapshotRun{
			s:      s,
			target: target,
			opts:   opts,
			layer:  layer,
			orbit:  float64(angle) * math.Pi / 180,
		}
		img, err := r.execute()
		if err != nil {
			return out, fmt.Errorf("turntable frame %d: %w", i, err)
		}
		out = append(out, img)
	}
	return out, nil
}
