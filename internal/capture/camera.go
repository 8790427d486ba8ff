package capture

import (
	"context"
	"log/slog"
	"sync"

	"github.com/claude/nutrical/internal/models"
)

// State is the camera lifecycle state.
type State string

const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateReady        State = "ready"
	StateError        State = "error"
)

// Status is what display surfaces render for the camera.
type Status struct {
	State  State  `json:"state"`
	Ready  bool   `json:"ready"`
	Error  string `json:"error,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Camera owns one capture stream from Mount to Unmount. Acquisition runs
// in the background; an error is terminal until the camera is remounted.
// Every acquired track is stopped on Unmount, including a stream whose
// acquisition finishes after Unmount was called.
type Camera struct {
	provider    Provider
	constraints Constraints
	log         *slog.Logger
	onChange    func(Status)

	mu      sync.Mutex
	mounted bool
	state   State
	err     error
	stream  Stream
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewCamera returns an unmounted camera. onChange may be nil.
func NewCamera(p Provider, c Constraints, log *slog.Logger, onChange func(Status)) *Camera {
	return &Camera{
		provider:    p,
		constraints: c,
		log:         log,
		onChange:    onChange,
		state:       StateIdle,
	}
}

// Mount starts acquiring the device. Mounting a mounted camera does nothing.
func (c *Camera) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mounted = true
	c.state = StateInitializing
	c.err = nil
	c.cancel = cancel
	c.done = done
	st := c.statusLocked()
	c.mu.Unlock()

	c.notify(st)
	go c.acquire(ctx, done)
}

func (c *Camera) acquire(ctx context.Context, done chan struct{}) {
	defer close(done)

	stream, err := c.provider.Acquire(ctx, c.constraints)

	c.mu.Lock()
	if c.done != done || !c.mounted {
		// Unmounted while acquiring: release whatever we got.
		c.mu.Unlock()
		StopTracks(stream)
		return
	}
	if err == nil && ctx.Err() != nil {
		StopTracks(stream)
		stream, err = nil, ctx.Err()
	}
	if err != nil {
		c.state = StateError
		c.err = err
		c.log.Error("camera access failed", "error", err)
	} else {
		c.stream = stream
		c.state = StateReady
		c.err = nil
		c.log.Info("camera ready", "width", stream.Settings().Width, "height", stream.Settings().Height)
	}
	st := c.statusLocked()
	c.mu.Unlock()

	c.notify(st)
}

// Unmount cancels a pending acquisition, waits for it, and stops all tracks.
func (c *Camera) Unmount() {
	c.mu.Lock()
	if !c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = false
	cancel, done, stream := c.cancel, c.done, c.stream
	c.stream = nil
	c.cancel = nil
	c.state = StateIdle
	c.err = nil
	st := c.statusLocked()
	c.mu.Unlock()

	cancel()
	<-done
	StopTracks(stream)
	c.notify(st)
}

// Wait blocks until the pending acquisition settles or ctx is done.
func (c *Camera) Wait(ctx context.Context) Status {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return c.Status()
}

// Ready reports whether frames can be read.
func (c *Camera) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateReady
}

// Err returns the acquisition error, if any.
func (c *Camera) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Status returns the current lifecycle status.
func (c *Camera) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Frame reads the next frame from the ready stream.
func (c *Camera) Frame(ctx context.Context) (models.Frame, error) {
	c.mu.Lock()
	stream := c.stream
	ready := c.state == StateReady
	c.mu.Unlock()

	if !ready || stream == nil {
		return models.Frame{}, ErrNotReady
	}
	return stream.ReadFrame(ctx)
}

func (c *Camera) statusLocked() Status {
	st := Status{State: c.state, Ready: c.state == StateReady}
	if c.err != nil {
		st.Error = UnavailableMessage
	}
	if c.stream != nil {
		s := c.stream.Settings()
		st.Width, st.Height = s.Width, s.Height
	}
	return st
}

func (c *Camera) notify(st Status) {
	if c.onChange != nil {
		c.onChange(st)
	}
}
