package workout

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/nutrical/internal/capture"
	"github.com/claude/nutrical/internal/catalog"
	"github.com/claude/nutrical/internal/metrics"
	"github.com/claude/nutrical/internal/models"
	"github.com/claude/nutrical/internal/schedule"
	"github.com/claude/nutrical/internal/session"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// alwaysDetector reports one rep per tick.
type alwaysDetector struct {
	mu    sync.Mutex
	calls int
}

func (d *alwaysDetector) Detect(_ context.Context, frame *models.Frame) ([]session.RepEvent, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	ev := session.RepEvent{Confidence: 0.9}
	if frame != nil {
		ev.FrameSeq = frame.Seq
	}
	return []session.RepEvent{ev}, nil
}

type rig struct {
	sched   *schedule.Manual
	metrics *metrics.Manager
	w       *Workout
}

func newRig(t *testing.T, provider capture.Provider) *rig {
	t.Helper()
	m, _ := metrics.NewTestManagerAndRegistry()
	r := &rig{sched: schedule.NewManual(epoch), metrics: m}
	r.w = New(catalog.Builtin(), provider, capture.DefaultConstraints(), Options{
		Scheduler:      r.sched,
		TickInterval:   time.Second,
		DetectInterval: 2 * time.Second,
		Detector:       &alwaysDetector{},
		Metrics:        m,
	}, slog.Default())
	t.Cleanup(r.w.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	r.w.Mount(ctx)
	r.w.Camera().Wait(ctx)
	return r
}

func TestWorkout_StartRequiresExercise(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())

	_, err := r.w.Start()
	assert.ErrorIs(t, err, ErrNoExercise)
	assert.Equal(t, 0, r.sched.Pending())
}

func TestWorkout_StartRequiresCamera(t *testing.T) {
	r := newRig(t, capture.Unavailable{})

	_, err := r.w.Select(context.Background(), "squats")
	require.NoError(t, err)

	_, err = r.w.Start()
	assert.ErrorIs(t, err, ErrCameraUnavailable)
	v := r.w.View()
	assert.False(t, v.Session.Active)
	assert.Equal(t, capture.StateError, v.Camera.State)
	assert.Equal(t, capture.UnavailableMessage, v.Camera.Error)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.CounterCameraFailures))
}

func TestWorkout_SelectUnknownExercise(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())

	_, err := r.w.Select(context.Background(), "burpees")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.False(t, r.w.View().Session.HasExercise())
}

func TestWorkout_RunCountsRepsAndTime(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())

	v, err := r.w.Select(context.Background(), "squats")
	require.NoError(t, err)
	assert.Equal(t, "Squats", v.Session.Exercise.Name)

	v, err = r.w.Start()
	require.NoError(t, err)
	assert.True(t, v.Session.Active)

	r.sched.Advance(6 * time.Second)

	v = r.w.View()
	assert.Equal(t, 6, v.Session.ElapsedSeconds)
	assert.Equal(t, 3, v.Session.Reps)
	assert.Equal(t, "00:06", v.Stats.Time)
	assert.Equal(t, 1, v.Stats.Calories)
	assert.Equal(t, 30, v.Stats.AvgRepsPerMinute)
	require.NotNil(t, v.Overlay)
	assert.Equal(t, 1280, v.Overlay.Width)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.metrics.CounterReps))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.GaugeSessionActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.CounterSessionsStarted))
}

func TestWorkout_StartTwiceIsNoop(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())
	_, err := r.w.Select(context.Background(), "pushups")
	require.NoError(t, err)

	_, err = r.w.Start()
	require.NoError(t, err)
	_, err = r.w.Start()
	require.NoError(t, err)

	assert.Equal(t, 2, r.sched.Pending(), "one timer task and one detector task")
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.CounterSessionsStarted))
}

func TestWorkout_PauseFreezesCounters(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())
	_, err := r.w.Select(context.Background(), "squats")
	require.NoError(t, err)
	_, err = r.w.Start()
	require.NoError(t, err)
	r.sched.Advance(4 * time.Second)

	v := r.w.Pause()
	assert.False(t, v.Session.Active)
	assert.Equal(t, 0, r.sched.Pending())

	r.sched.Advance(30 * time.Second)
	frozen := r.w.View()
	assert.Equal(t, 4, frozen.Session.ElapsedSeconds)
	assert.Equal(t, 2, frozen.Session.Reps)

	_, err = r.w.Start()
	require.NoError(t, err)
	r.sched.Advance(2 * time.Second)
	v = r.w.View()
	assert.Equal(t, 6, v.Session.ElapsedSeconds)
	assert.Equal(t, 3, v.Session.Reps)
}

func TestWorkout_ResetKeepsExercise(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())
	_, err := r.w.Select(context.Background(), "lunges")
	require.NoError(t, err)
	_, err = r.w.Start()
	require.NoError(t, err)
	r.sched.Advance(4 * time.Second)

	v := r.w.Reset()
	assert.False(t, v.Session.Active)
	assert.Equal(t, 0, v.Session.Reps)
	assert.Equal(t, 0, v.Session.ElapsedSeconds)
	assert.Nil(t, v.Overlay)
	require.True(t, v.Session.HasExercise())
	assert.Equal(t, "lunges", v.Session.Exercise.ID)

	_, err = r.w.Start()
	require.NoError(t, err)
	r.sched.Advance(time.Second)
	assert.Equal(t, 1, r.w.View().Session.ElapsedSeconds, "timer restarts from zero")
}

func TestWorkout_SelectDiscardsRunningSession(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())
	first, err := r.w.Select(context.Background(), "squats")
	require.NoError(t, err)
	_, err = r.w.Start()
	require.NoError(t, err)
	r.sched.Advance(3 * time.Second)

	second, err := r.w.Select(context.Background(), "jumping-jacks")
	require.NoError(t, err)
	assert.NotEqual(t, first.Session.ID, second.Session.ID)
	assert.False(t, second.Session.Active)
	assert.Equal(t, 0, second.Session.Reps)
	assert.Equal(t, 0, second.Session.ElapsedSeconds)
	assert.Equal(t, 0, r.sched.Pending())
}

func TestWorkout_ClearReturnsToSelection(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())
	_, err := r.w.Select(context.Background(), "squats")
	require.NoError(t, err)
	_, err = r.w.Start()
	require.NoError(t, err)
	r.sched.Advance(2 * time.Second)

	v := r.w.Clear()
	assert.False(t, v.Session.HasExercise())
	assert.False(t, v.Session.Active)
	assert.Equal(t, 0, r.sched.Pending())

	_, err = r.w.Start()
	assert.ErrorIs(t, err, ErrNoExercise)
}

func TestWorkout_SubscribersReceiveEvents(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())
	events, unsubscribe := r.w.Subscribe()
	defer unsubscribe()
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.GaugeSubscribers))

	_, err := r.w.Select(context.Background(), "squats")
	require.NoError(t, err)
	_, err = r.w.Start()
	require.NoError(t, err)
	r.sched.Advance(2 * time.Second)

	var names []string
	var lastRep View
	for len(events) > 0 {
		ev := <-events
		names = append(names, ev.Event)
		if ev.Event == EventRep {
			require.NoError(t, json.Unmarshal([]byte(ev.Data), &lastRep))
		}
	}
	assert.Equal(t, []string{EventState, EventState, EventTick, EventTick, EventRep, EventOverlay}, names)
	assert.Equal(t, 1, lastRep.Session.Reps)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0.0, testutil.ToFloat64(r.metrics.GaugeSubscribers))
}

func TestWorkout_RealSchedulerPauseStopsTicks(t *testing.T) {
	w := New(catalog.Builtin(), capture.NewSynthetic(), capture.DefaultConstraints(), Options{
		TickInterval:   5 * time.Millisecond,
		DetectInterval: 5 * time.Millisecond,
		Detector:       &alwaysDetector{},
	}, slog.Default())
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	w.Mount(ctx)
	require.True(t, w.Camera().Wait(ctx).Ready)

	_, err := w.Select(ctx, "squats")
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return w.View().Session.Reps >= 2
	}, time.Second, 5*time.Millisecond)

	paused := w.Pause()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, paused.Session.Reps, w.View().Session.Reps)
	assert.Equal(t, paused.Session.ElapsedSeconds, w.View().Session.ElapsedSeconds)
}

func TestWorkout_CloseEndsSubscriptions(t *testing.T) {
	r := newRig(t, capture.NewSynthetic())
	events, unsubscribe := r.w.Subscribe()
	defer unsubscribe()

	_, err := r.w.Select(context.Background(), "squats")
	require.NoError(t, err)
	_, err = r.w.Start()
	require.NoError(t, err)

	r.w.Close()
	r.w.Close()

	var last string
	for ev := range events {
		last = ev.Event
	}
	assert.Equal(t, EventCamera, last)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.metrics.GaugeSubscribers))
	assert.False(t, r.w.View().Session.Active)

	late, unsubscribeLate := r.w.Subscribe()
	defer unsubscribeLate()
	_, ok := <-late
	assert.False(t, ok)

	// no panic on broadcast after close
	r.w.Reset()
}
