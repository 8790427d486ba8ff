// Package schedule provides the clock and periodic-callback capabilities the
// workout loops run on. Production code uses Real; tests drive Manual.
package schedule

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Scheduler runs fn every d until the returned cancel func is called.
// Cancel blocks until no invocation of fn is in flight and must not be
// called from inside fn.
type Scheduler interface {
	Clock
	Every(d time.Duration, fn func()) (cancel func())
}

// Real schedules on wall-clock time with one goroutine per task.
type Real struct{}

// Now implements Clock.
func (Real) Now() time.Time { return time.Now() }

// Every implements Scheduler.
func (Real) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
		<-done
	}
}
