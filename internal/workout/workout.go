// Package workout binds the session controller, timer, detection loop and
// camera into a single workout surface shared by the HTTP API and the MCP
// server.
package workout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/nutrical/internal/capture"
	"github.com/claude/nutrical/internal/catalog"
	"github.com/claude/nutrical/internal/metrics"
	"github.com/claude/nutrical/internal/models"
	"github.com/claude/nutrical/internal/schedule"
	"github.com/claude/nutrical/internal/session"
)

var (
	// ErrNoExercise is returned by Start when nothing is selected.
	ErrNoExercise = errors.New("no exercise selected")
	// ErrCameraUnavailable is returned by Start while the camera is not ready.
	ErrCameraUnavailable = errors.New("camera is not ready")
)

// Event names published to subscribers.
const (
	EventState   = "state"
	EventTick    = "tick"
	EventRep     = "rep"
	EventOverlay = "overlay"
	EventCamera  = "camera"
)

// Event is one message for subscribers. Data is JSON.
type Event struct {
	Event string
	Data  string
}

// View is everything a display surface needs to render the workout.
type View struct {
	Session session.Snapshot `json:"session"`
	Stats   session.Stats    `json:"stats"`
	Camera  capture.Status   `json:"camera"`
	Overlay *session.Overlay `json:"overlay,omitempty"`
}

// Options tune a Workout. Zero values fall back to defaults.
type Options struct {
	Scheduler       schedule.Scheduler
	TickInterval    time.Duration
	DetectInterval  time.Duration
	DetectThreshold float64
	// Detector replaces the simulated rep detector.
	Detector session.Detector
	Metrics  *metrics.Manager
}

// Workout is the session coordinator. Control operations are serialized;
// timer and detector ticks only touch the controller and the subscriber set.
type Workout struct {
	catalog catalog.Catalog
	ctrl    *session.Controller
	timer   *session.Timer
	loop    *session.DetectionLoop
	camera  *capture.Camera
	metrics *metrics.Manager
	log     *slog.Logger

	mu sync.Mutex

	overlayMu sync.RWMutex
	overlay   *session.Overlay

	subs   map[chan Event]struct{}
	closed bool
	subsMu sync.Mutex
}

// New wires a Workout around the catalog and camera provider. The camera is
// not acquired until Mount.
func New(cat catalog.Catalog, provider capture.Provider, constraints capture.Constraints, opts Options, log *slog.Logger) *Workout {
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.Real{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewDiscardManager()
	}
	if opts.Detector == nil {
		opts.Detector = session.NewRandomDetector(opts.Scheduler, opts.DetectThreshold, nil)
	}

	w := &Workout{
		catalog: cat,
		ctrl:    session.NewController(),
		metrics: opts.Metrics,
		log:     log,
		subs:    make(map[chan Event]struct{}),
	}
	w.camera = capture.NewCamera(provider, constraints, log, w.onCamera)
	w.timer = session.NewTimer(opts.Scheduler, opts.TickInterval, w.onTime)
	w.loop = session.NewDetectionLoop(opts.Scheduler, opts.DetectInterval, opts.Detector, w.camera, session.LoopHooks{
		OnRep:     w.onRep,
		OnOverlay: w.onOverlay,
	}, log)
	return w
}

// Mount starts camera acquisition.
func (w *Workout) Mount(ctx context.Context) {
	w.camera.Mount(ctx)
}

// Camera exposes the camera for status waits.
func (w *Workout) Camera() *capture.Camera {
	return w.camera
}

// Close stops the session and releases the camera. Subscriber channels are
// closed afterwards. Close may be called more than once.
func (w *Workout) Close() {
	w.mu.Lock()
	w.stopLoops()
	w.ctrl.Pause()
	w.mu.Unlock()
	w.metrics.GaugeSessionActive.Set(0)
	w.camera.Unmount()

	w.subsMu.Lock()
	w.closed = true
	for ch := range w.subs {
		close(ch)
		delete(w.subs, ch)
	}
	w.subsMu.Unlock()
	w.metrics.GaugeSubscribers.Set(0)
}

// Exercises lists the catalog.
func (w *Workout) Exercises(ctx context.Context) ([]models.Exercise, error) {
	return w.catalog.ListExercises(ctx)
}

// Exercise returns one catalog entry.
func (w *Workout) Exercise(ctx context.Context, id string) (models.Exercise, error) {
	return w.catalog.GetExercise(ctx, id)
}

// Select starts a fresh, inactive session for the exercise with id. Any
// running session is discarded.
func (w *Workout) Select(ctx context.Context, id string) (View, error) {
	ex, err := w.catalog.GetExercise(ctx, id)
	if err != nil {
		return View{}, fmt.Errorf("select exercise %q: %w", id, err)
	}

	w.mu.Lock()
	w.stopLoops()
	w.timer.Reset()
	sid := w.ctrl.SelectExercise(ex)
	w.setOverlay(nil)
	w.mu.Unlock()

	w.metrics.CounterSelections.WithLabelValues(ex.ID).Inc()
	w.metrics.GaugeSessionActive.Set(0)
	w.metrics.GaugeElapsedSeconds.Set(0)
	w.log.Info("exercise selected", "exercise", ex.ID, "session", sid)
	return w.publishState(), nil
}

// Start runs the session. It requires a selected exercise and a ready
// camera. Starting a running session returns the current view.
func (w *Workout) Start() (View, error) {
	w.mu.Lock()
	snap := w.ctrl.Snapshot()
	if !snap.HasExercise() {
		w.mu.Unlock()
		return View{}, ErrNoExercise
	}
	if !w.camera.Ready() {
		w.mu.Unlock()
		return View{}, ErrCameraUnavailable
	}
	if snap.Active {
		w.mu.Unlock()
		return w.View(), nil
	}
	w.ctrl.Start()
	w.timer.Start()
	w.loop.Start()
	w.mu.Unlock()

	w.metrics.CounterSessionsStarted.Inc()
	w.metrics.GaugeSessionActive.Set(1)
	w.log.Info("workout started", "session", snap.ID, "exercise", snap.Exercise.ID)
	return w.publishState(), nil
}

// Pause stops the session and keeps its counters.
func (w *Workout) Pause() View {
	w.mu.Lock()
	w.stopLoops()
	w.ctrl.Pause()
	w.mu.Unlock()

	w.metrics.GaugeSessionActive.Set(0)
	w.log.Info("workout paused")
	return w.publishState()
}

// Reset stops the session and zeroes its counters. The exercise stays
// selected.
func (w *Workout) Reset() View {
	w.mu.Lock()
	w.stopLoops()
	w.timer.Reset()
	w.ctrl.Reset()
	w.setOverlay(nil)
	w.mu.Unlock()

	w.metrics.GaugeSessionActive.Set(0)
	w.metrics.GaugeElapsedSeconds.Set(0)
	w.log.Info("workout reset")
	return w.publishState()
}

// Clear returns to exercise selection.
func (w *Workout) Clear() View {
	w.mu.Lock()
	w.stopLoops()
	w.timer.Reset()
	w.ctrl.Clear()
	w.setOverlay(nil)
	w.mu.Unlock()

	w.metrics.GaugeSessionActive.Set(0)
	w.metrics.GaugeElapsedSeconds.Set(0)
	w.log.Info("back to exercise selection")
	return w.publishState()
}

// View returns the current state.
func (w *Workout) View() View {
	snap := w.ctrl.Snapshot()
	v := View{
		Session: snap,
		Stats:   session.ComputeStats(snap),
		Camera:  w.camera.Status(),
	}
	w.overlayMu.RLock()
	if w.overlay != nil {
		o := *w.overlay
		v.Overlay = &o
	}
	w.overlayMu.RUnlock()
	return v
}

// Subscribe registers for workout events. The returned func unsubscribes.
// The channel is closed when the workout closes.
func (w *Workout) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)
	w.subsMu.Lock()
	if w.closed {
		w.subsMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	w.subs[ch] = struct{}{}
	n := len(w.subs)
	w.subsMu.Unlock()
	w.metrics.GaugeSubscribers.Set(float64(n))

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.subsMu.Lock()
			delete(w.subs, ch)
			n := len(w.subs)
			w.subsMu.Unlock()
			w.metrics.GaugeSubscribers.Set(float64(n))
		})
	}
}

// stopLoops must be called with w.mu held.
func (w *Workout) stopLoops() {
	w.loop.Stop()
	w.timer.Stop()
}

func (w *Workout) setOverlay(o *session.Overlay) {
	w.overlayMu.Lock()
	w.overlay = o
	w.overlayMu.Unlock()
}

func (w *Workout) onTime(seconds int) {
	if !w.ctrl.OnTimeUpdate(seconds) {
		return
	}
	w.metrics.GaugeElapsedSeconds.Set(float64(seconds))
	w.broadcast(EventTick, w.View())
}

func (w *Workout) onRep(ev session.RepEvent) bool {
	if !w.ctrl.OnRep() {
		return false
	}
	w.metrics.CounterReps.Inc()
	w.log.Debug("rep counted", "confidence", ev.Confidence, "frame", ev.FrameSeq)
	w.broadcast(EventRep, w.View())
	return true
}

func (w *Workout) onOverlay(o session.Overlay) {
	w.setOverlay(&o)
	w.broadcast(EventOverlay, o)
}

func (w *Workout) onCamera(st capture.Status) {
	if st.State == capture.StateError {
		w.metrics.CounterCameraFailures.Inc()
	}
	w.broadcast(EventCamera, st)
}

func (w *Workout) publishState() View {
	v := w.View()
	w.broadcast(EventState, v)
	return v
}

func (w *Workout) broadcast(name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.log.Error("encoding workout event", "event", name, "error", err)
		return
	}
	ev := Event{Event: name, Data: string(data)}

	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	if w.closed {
		return
	}
	for ch := range w.subs {
		select {
		case ch <- ev:
		default:
			// slow subscriber, skip
		}
	}
}
