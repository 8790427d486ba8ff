//go:build unix

package capture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeDeviceNode(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video0")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func TestDevice_ExclusiveAccess(t *testing.T) {
	dev := Device{Path: fakeDeviceNode(t)}

	first, err := dev.Acquire(context.Background(), DefaultConstraints())
	require.NoError(t, err)

	_, err = dev.Acquire(context.Background(), DefaultConstraints())
	assert.ErrorIs(t, err, ErrDeviceBusy)

	StopTracks(first)
	assert.True(t, first.Tracks()[0].Stopped())

	again, err := dev.Acquire(context.Background(), DefaultConstraints())
	require.NoError(t, err, "released device can be claimed again")
	StopTracks(again)
}

func TestDevice_ReadFrameAfterStop(t *testing.T) {
	s, err := Device{Path: fakeDeviceNode(t)}.Acquire(context.Background(), Constraints{Width: 640, Height: 360})
	require.NoError(t, err)

	f, err := s.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 640, f.Width)
	assert.Equal(t, 360, f.Height)

	StopTracks(s)
	_, err = s.ReadFrame(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDevice_Missing(t *testing.T) {
	_, err := Device{Path: filepath.Join(t.TempDir(), "nope")}.Acquire(context.Background(), DefaultConstraints())
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestDevice_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}
	path := fakeDeviceNode(t)
	require.NoError(t, os.Chmod(path, 0o000))

	_, err := Device{Path: path}.Acquire(context.Background(), DefaultConstraints())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
