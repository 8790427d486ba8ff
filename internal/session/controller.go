// Package session implements the workout session state machine: the
// controller that owns rep count and elapsed time, the rebasing timer, and
// the rep detector loop.
//
// Invariant: reps and elapsed time only advance while the session is active.
// Both freeze on Pause and return to zero only through Reset or a new
// selection.
package session

import (
	"sync"

	"github.com/claude/nutrical/internal/models"
	"github.com/google/uuid"
)

// Snapshot is a consistent copy of the session state for renderers.
type Snapshot struct {
	ID             uuid.UUID        `json:"id"`
	Exercise       *models.Exercise `json:"exercise"`
	Active         bool             `json:"active"`
	Reps           int              `json:"reps"`
	ElapsedSeconds int              `json:"elapsed_seconds"`
}

// HasExercise reports whether an exercise is selected.
func (s Snapshot) HasExercise() bool { return s.Exercise != nil }

// Controller owns the selected exercise and the session counters.
// All methods are safe for concurrent use.
type Controller struct {
	mu       sync.RWMutex
	id       uuid.UUID
	exercise *models.Exercise
	active   bool
	reps     int
	elapsed  int
}

// NewController returns a Controller with no exercise selected.
func NewController() *Controller {
	return &Controller{}
}

// SelectExercise replaces the current session with a fresh one for e.
func (c *Controller) SelectExercise(e models.Exercise) uuid.UUID {
	ex := e.Clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = uuid.New()
	c.exercise = &ex
	c.active = false
	c.reps = 0
	c.elapsed = 0
	return c.id
}

// Clear drops the selected exercise and its session.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = uuid.Nil
	c.exercise = nil
	c.active = false
	c.reps = 0
	c.elapsed = 0
}

// Start marks the session active. It reports false, and changes nothing,
// when no exercise is selected.
func (c *Controller) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exercise == nil {
		return false
	}
	c.active = true
	return true
}

// Pause marks the session inactive. Counters keep their values.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.active = false
	c.mu.Unlock()
}

// Reset zeroes both counters and deactivates the session.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.active = false
	c.reps = 0
	c.elapsed = 0
	c.mu.Unlock()
}

// OnRep counts one repetition. It is a no-op while inactive and reports
// whether the rep was counted.
func (c *Controller) OnRep() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return false
	}
	c.reps++
	return true
}

// OnTimeUpdate overwrites elapsed seconds with the timer's value. Updates
// that arrive while inactive are dropped so a paused session stays frozen.
func (c *Controller) OnTimeUpdate(seconds int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || seconds < 0 {
		return false
	}
	c.elapsed = seconds
	return true
}

// Active reports whether the session is running.
func (c *Controller) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{
		ID:             c.id,
		Active:         c.active,
		Reps:           c.reps,
		ElapsedSeconds: c.elapsed,
	}
	if c.exercise != nil {
		ex := c.exercise.Clone()
		snap.Exercise = &ex
	}
	return snap
}
