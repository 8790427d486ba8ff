package schedule

import (
	"sync"
	"time"
)

// Manual is a deterministic Scheduler whose time only moves on Advance.
// Due callbacks fire in time order; ties fire in registration order.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	tasks  []*manualTask
	nextID int
}

type manualTask struct {
	id       int
	every    time.Duration
	next     time.Time
	fn       func()
	canceled bool
}

// NewManual returns a Manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Every implements Scheduler.
func (m *Manual) Every(d time.Duration, fn func()) func() {
	m.mu.Lock()
	t := &manualTask{id: m.nextID, every: d, next: m.now.Add(d), fn: fn}
	m.nextID++
	m.tasks = append(m.tasks, t)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.canceled = true
		for i, other := range m.tasks {
			if other == t {
				m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
				break
			}
		}
	}
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.next
		t.next = t.next.Add(t.every)
		m.mu.Unlock()
		t.fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Pending returns the number of live periodic tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manual) nextDue(target time.Time) *manualTask {
	var due *manualTask
	for _, t := range m.tasks {
		if t.canceled || t.next.After(target) {
			continue
		}
		if due == nil || t.next.Before(due.next) || (t.next.Equal(due.next) && t.id < due.id) {
			due = t
		}
	}
	return due
}
