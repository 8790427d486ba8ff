package session

import (
	"sync"
	"time"

	"github.com/claude/nutrical/internal/schedule"
)

// DefaultTickInterval is how often a running timer reports elapsed time.
const DefaultTickInterval = time.Second

// Timer reports whole elapsed seconds while running. Paused intervals are
// excluded: Stop folds the running span into the accumulated total and the
// next Start resumes counting from there.
type Timer struct {
	sched    schedule.Scheduler
	interval time.Duration
	onUpdate func(seconds int)

	mu          sync.Mutex
	running     bool
	startedAt   time.Time
	accumulated time.Duration
	cancel      func()
}

// NewTimer returns a stopped timer that calls onUpdate on every tick.
func NewTimer(sched schedule.Scheduler, interval time.Duration, onUpdate func(seconds int)) *Timer {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Timer{sched: sched, interval: interval, onUpdate: onUpdate}
}

// Start moves the timer to Running. Starting a running timer does nothing.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.startedAt = t.sched.Now()
	t.cancel = t.sched.Every(t.interval, t.tick)
}

// Stop moves the timer to Stopped and keeps the elapsed total. It returns
// once no tick is in flight.
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.accumulated += t.sched.Now().Sub(t.startedAt)
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	cancel()
}

// Reset stops the timer and zeroes the elapsed total.
func (t *Timer) Reset() {
	t.Stop()
	t.mu.Lock()
	t.accumulated = 0
	t.mu.Unlock()
}

// Running reports whether the timer is ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Elapsed returns the whole seconds counted so far.
func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsedLocked()
}

func (t *Timer) elapsedLocked() int {
	total := t.accumulated
	if t.running {
		total += t.sched.Now().Sub(t.startedAt)
	}
	if total < 0 {
		return 0
	}
	return int(total / time.Second)
}

func (t *Timer) tick() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	elapsed := t.elapsedLocked()
	t.mu.Unlock()

	if t.onUpdate != nil {
		t.onUpdate(elapsed)
	}
}
