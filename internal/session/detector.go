package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/claude/nutrical/internal/models"
	"github.com/claude/nutrical/internal/schedule"
)

const (
	// DefaultDetectInterval is the cadence of the detection loop.
	DefaultDetectInterval = 2 * time.Second
	// DefaultDetectThreshold gives the simulated detector a ~30% chance to
	// fire on each tick.
	DefaultDetectThreshold = 0.7
)

// RepEvent signals one completed repetition.
type RepEvent struct {
	At         time.Time `json:"at"`
	FrameSeq   uint64    `json:"frame_seq"`
	Confidence float64   `json:"confidence"`
}

// Detector turns a video frame into zero or more rep events. Frame is nil
// when no camera frame is available.
type Detector interface {
	Detect(ctx context.Context, frame *models.Frame) ([]RepEvent, error)
}

// FrameSource yields the latest camera frame.
type FrameSource interface {
	Frame(ctx context.Context) (models.Frame, error)
}

// RandomDetector is a placeholder Detector: it ignores frame contents and
// fires one rep when a uniform draw exceeds its threshold.
type RandomDetector struct {
	clock     schedule.Clock
	threshold float64

	mu   sync.Mutex
	draw func() float64
}

// NewRandomDetector returns a RandomDetector. A nil draw uses math/rand/v2.
func NewRandomDetector(clock schedule.Clock, threshold float64, draw func() float64) *RandomDetector {
	if draw == nil {
		draw = rand.Float64
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultDetectThreshold
	}
	return &RandomDetector{clock: clock, threshold: threshold, draw: draw}
}

// Detect implements Detector.
func (d *RandomDetector) Detect(_ context.Context, frame *models.Frame) ([]RepEvent, error) {
	d.mu.Lock()
	v := d.draw()
	d.mu.Unlock()

	if v <= d.threshold {
		return nil, nil
	}
	ev := RepEvent{At: d.clock.Now(), Confidence: v}
	if frame != nil {
		ev.FrameSeq = frame.Seq
	}
	return []RepEvent{ev}, nil
}

// DetectionLoop polls the frame source on a fixed cadence while running and
// feeds detector output to onRep. Whenever a rep is counted the skeleton
// overlay is recomputed for the frame size and handed to onOverlay.
type DetectionLoop struct {
	sched     schedule.Scheduler
	interval  time.Duration
	detector  Detector
	frames    FrameSource
	onRep     func(RepEvent) bool
	onOverlay func(Overlay)
	log       *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  func()
}

// LoopHooks are the callbacks a DetectionLoop reports to.
type LoopHooks struct {
	OnRep     func(RepEvent) bool
	OnOverlay func(Overlay)
}

// NewDetectionLoop returns a stopped loop. frames may be nil.
func NewDetectionLoop(sched schedule.Scheduler, interval time.Duration, detector Detector, frames FrameSource, hooks LoopHooks, log *slog.Logger) *DetectionLoop {
	if interval <= 0 {
		interval = DefaultDetectInterval
	}
	return &DetectionLoop{
		sched:     sched,
		interval:  interval,
		detector:  detector,
		frames:    frames,
		onRep:     hooks.OnRep,
		onOverlay: hooks.OnOverlay,
		log:       log,
	}
}

// Start begins polling. Starting a running loop does nothing.
func (l *DetectionLoop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	l.running = true
	l.cancel = l.sched.Every(l.interval, l.tick)
}

// Stop cancels polling and returns once no tick is in flight.
func (l *DetectionLoop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	cancel()
}

// Running reports whether the loop is polling.
func (l *DetectionLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *DetectionLoop) tick() {
	l.mu.Lock()
	running := l.running
	l.mu.Unlock()
	if !running {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.interval)
	defer cancel()

	var frame *models.Frame
	if l.frames != nil {
		f, err := l.frames.Frame(ctx)
		if err != nil {
			l.log.Debug("no frame for detection", "error", err)
		} else {
			frame = &f
		}
	}

	events, err := l.detector.Detect(ctx, frame)
	if err != nil {
		l.log.Warn("rep detection failed", "error", err)
		return
	}

	counted := false
	for _, ev := range events {
		if l.onRep != nil && l.onRep(ev) {
			counted = true
		}
	}
	if !counted || l.onOverlay == nil {
		return
	}

	w, h := DefaultFrameWidth, DefaultFrameHeight
	if frame != nil && frame.Width > 0 && frame.Height > 0 {
		w, h = frame.Width, frame.Height
	}
	l.onOverlay(SkeletonOverlay(w, h))
}
