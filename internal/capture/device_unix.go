//go:build unix

package capture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/claude/nutrical/internal/models"
	"golang.org/x/sys/unix"
)

// Device claims a video device node such as /dev/video0 with an exclusive
// non-blocking flock, so a second session cannot open the same camera.
// Frames carry geometry only; pixel capture needs V4L2 streaming ioctls.
type Device struct {
	Path string
}

// Acquire implements Provider.
func (d Device) Acquire(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(d.Path, os.O_RDWR, 0)
	if err != nil {
		return nil, classifyOpenError(d.Path, err)
	}

	fd := int(f.Fd())
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("locking %s: %w", d.Path, ErrDeviceBusy)
		}
		return nil, fmt.Errorf("locking %s: %w", d.Path, err)
	}

	release := func() {
		_ = unix.Flock(fd, unix.LOCK_UN)
		_ = f.Close()
	}
	return &deviceStream{settings: c, track: newVideoTrack(release)}, nil
}

func classifyOpenError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("opening %s: %w", path, ErrNoDevice)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("opening %s: %w", path, ErrPermissionDenied)
	case errors.Is(err, unix.EBUSY):
		return fmt.Errorf("opening %s: %w", path, ErrDeviceBusy)
	default:
		return fmt.Errorf("opening %s: %w", path, err)
	}
}

type deviceStream struct {
	settings Constraints
	track    *videoTrack
	seq      atomic.Uint64
}

func (s *deviceStream) Tracks() []Track       { return []Track{s.track} }
func (s *deviceStream) Settings() Constraints { return s.settings }

func (s *deviceStream) ReadFrame(ctx context.Context) (models.Frame, error) {
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
		CapturedAt: time.Now(),
	}, nil
}
