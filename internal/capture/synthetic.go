package capture

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/claude/nutrical/internal/models"
)

// Synthetic produces geometry-only frames at the requested resolution.
// It stands in for a camera on headless hosts.
type Synthetic struct {
	now func() time.Time
}

// NewSynthetic returns a Synthetic provider on wall-clock time.
func NewSynthetic() *Synthetic {
	return &Synthetic{now: time.Now}
}

// Acquire implements Provider.
func (s *Synthetic) Acquire(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &syntheticStream{
		settings: c,
		now:      s.now,
		track:    newVideoTrack(nil),
	}, nil
}

type syntheticStream struct {
	settings Constraints
	now      func() time.Time
	track    *videoTrack
	seq      atomic.Uint64
}

func (s *syntheticStream) Tracks() []Track       { return []Track{s.track} }
func (s *syntheticStream) Settings() Constraints { return s.settings }

func (s *syntheticStream) ReadFrame(ctx context.Context) (models.Frame, error) {
	if err := ctx.Err(); err != nil {
		return models.Frame{}, err
	}
	if s.track.Stopped() {
		return models.Frame{}, ErrStopped
	}
	return models.Frame{
		Seq:        s.seq.Add(1),
		Width:      s.settings.Width,
		Height:     s.settings.Height,
		CapturedAt: s.now(),
	}, nil
}

// Unavailable always fails to acquire. The zero value reports ErrNoDevice.
type Unavailable struct {
	Err error
}

// Acquire implements Provider.
func (u Unavailable) Acquire(ctx context.Context, _ Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if u.Err != nil {
		return nil, u.Err
	}
	return nil, ErrNoDevice
}
