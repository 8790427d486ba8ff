package session

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/claude/nutrical/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// timerRig wires a controller and timer the way the workout coordinator does.
type timerRig struct {
	sched   *schedule.Manual
	ctrl    *Controller
	timer   *Timer
	reports []int
}

func newTimerRig(t *testing.T) *timerRig {
	t.Helper()
	r := &timerRig{sched: schedule.NewManual(epoch), ctrl: NewController()}
	r.timer = NewTimer(r.sched, time.Second, func(sec int) {
		r.reports = append(r.reports, sec)
		r.ctrl.OnTimeUpdate(sec)
	})
	r.ctrl.SelectExercise(squats(t))
	return r
}

func (r *timerRig) start() {
	r.ctrl.Start()
	r.timer.Start()
}

func (r *timerRig) pause() {
	r.timer.Stop()
	r.ctrl.Pause()
}

func TestTimer_SquatsThreeTicks(t *testing.T) {
	r := newTimerRig(t)
	r.start()

	for i := 0; i < 3; i++ {
		r.sched.Advance(time.Second)
	}

	assert.Equal(t, []int{1, 2, 3}, r.reports)
	assert.Equal(t, 3, r.ctrl.Snapshot().ElapsedSeconds)
	r.pause()
}

func TestTimer_ResumeContinuesFromPrePauseValue(t *testing.T) {
	r := newTimerRig(t)
	r.start()
	r.sched.Advance(3 * time.Second)
	r.pause()

	r.sched.Advance(10 * time.Second)
	assert.Equal(t, []int{1, 2, 3}, r.reports, "no ticks while paused")
	assert.Equal(t, 3, r.ctrl.Snapshot().ElapsedSeconds)

	r.start()
	r.sched.Advance(2 * time.Second)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, r.reports)
	assert.Equal(t, 5, r.ctrl.Snapshot().ElapsedSeconds)
	r.pause()
}

func TestTimer_PartialSecondsCarryAcrossPause(t *testing.T) {
	r := newTimerRig(t)
	r.start()
	r.sched.Advance(1500 * time.Millisecond)
	r.pause()
	assert.Equal(t, 1, r.timer.Elapsed())

	r.start()
	r.sched.Advance(time.Second)
	assert.Equal(t, []int{1, 2}, r.reports)
	r.pause()
}

func TestTimer_ResetZeroes(t *testing.T) {
	r := newTimerRig(t)
	r.start()
	r.sched.Advance(4 * time.Second)
	r.timer.Reset()
	r.ctrl.Reset()

	assert.False(t, r.timer.Running())
	assert.Zero(t, r.timer.Elapsed())
	assert.Zero(t, r.sched.Pending())

	r.start()
	r.sched.Advance(time.Second)
	assert.Equal(t, 1, r.ctrl.Snapshot().ElapsedSeconds)
	r.pause()
}

func TestTimer_StartTwiceSchedulesOnce(t *testing.T) {
	r := newTimerRig(t)
	r.start()
	r.timer.Start()
	require.Equal(t, 1, r.sched.Pending())

	r.sched.Advance(time.Second)
	assert.Equal(t, []int{1}, r.reports)
	r.pause()
	r.timer.Stop()
	assert.Zero(t, r.sched.Pending())
}

func TestTimer_ElapsedMonotonicAndFrozenWhilePaused(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for run := 0; run < 50; run++ {
		r := newTimerRig(t)
		last := 0
		for step := 0; step < 40; step++ {
			if rng.IntN(3) == 0 {
				if r.ctrl.Active() {
					r.pause()
				} else {
					r.start()
				}
			}
			before := r.ctrl.Snapshot()
			r.sched.Advance(time.Duration(rng.IntN(2500)) * time.Millisecond)
			after := r.ctrl.Snapshot()

			require.GreaterOrEqual(t, after.ElapsedSeconds, last)
			if !before.Active {
				require.Equal(t, before.ElapsedSeconds, after.ElapsedSeconds)
			}
			last = after.ElapsedSeconds
		}
		r.pause()
	}
}

func TestTimer_RealScheduler(t *testing.T) {
	ctrl := NewController()
	ctrl.SelectExercise(squats(t))
	ctrl.Start()
	timer := NewTimer(schedule.Real{}, 10*time.Millisecond, func(sec int) { ctrl.OnTimeUpdate(sec) })
	timer.Start()
	time.Sleep(30 * time.Millisecond)
	timer.Stop()
	ctrl.Pause()

	assert.False(t, timer.Running())
	assert.Zero(t, ctrl.Snapshot().ElapsedSeconds, "less than a second elapsed")
}
