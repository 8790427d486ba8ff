// Package capture acquires and releases the video capture device behind a
// workout session.
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/nutrical/internal/models"
)

// Acquisition failure causes. Callers show UnavailableMessage for all of them.
var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrNoDevice         = errors.New("no camera device found")
	ErrDeviceBusy       = errors.New("camera device is in use")
)

var (
	// ErrNotReady is returned when frames are requested before the camera is ready.
	ErrNotReady = errors.New("camera not ready")
	// ErrStopped is returned by a stream whose tracks have been stopped.
	ErrStopped = errors.New("capture stream stopped")
)

// UnavailableMessage is the single user-facing text for any acquisition failure.
const UnavailableMessage = "Unable to access camera. Please check permissions."

// FacingMode selects the front or rear camera.
type FacingMode string

const (
	FacingUser        FacingMode = "user"
	FacingEnvironment FacingMode = "environment"
)

// Constraints describe the requested video stream. Audio is never requested.
type Constraints struct {
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	FacingMode FacingMode `json:"facing_mode"`
}

// DefaultConstraints is a 1280×720 user-facing stream.
func DefaultConstraints() Constraints {
	return Constraints{Width: 1280, Height: 720, FacingMode: FacingUser}
}

// Track is one media track of an acquired stream.
type Track interface {
	Kind() string
	Stop()
	Stopped() bool
}

// Stream is an acquired capture stream.
type Stream interface {
	Tracks() []Track
	Settings() Constraints
	ReadFrame(ctx context.Context) (models.Frame, error)
}

// Provider acquires exclusive access to a capture device.
type Provider interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}

// StopTracks stops every track of s. It is safe on a nil stream.
func StopTracks(s Stream) {
	if s == nil {
		return
	}
	for _, t := range s.Tracks() {
		t.Stop()
	}
}

// NewProvider builds a Provider by name: "synthetic", "device" or "none".
func NewProvider(kind, devicePath string) (Provider, error) {
	switch kind {
	case "", "synthetic":
		return NewSynthetic(), nil
	case "device":
		if devicePath == "" {
			return nil, fmt.Errorf("camera.device is required for the device provider")
		}
		return Device{Path: devicePath}, nil
	case "none":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown camera provider %q", kind)
	}
}
