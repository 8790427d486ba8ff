package capture

import (
	"sync"
	"sync/atomic"
)

// videoTrack is a Track that runs a release func exactly once.
type videoTrack struct {
	once    sync.Once
	stopped atomic.Bool
	release func()
}

func newVideoTrack(release func()) *videoTrack {
	return &videoTrack{release: release}
}

func (t *videoTrack) Kind() string { return "video" }

func (t *videoTrack) Stop() {
	t.once.Do(func() {
		t.stopped.Store(true)
		if t.release != nil {
			t.release()
		}
	})
}

func (t *videoTrack) Stopped() bool { return t.stopped.Load() }
