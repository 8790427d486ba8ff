package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests        *prometheus.CounterVec
	CounterReps            prometheus.Counter
	CounterSelections      *prometheus.CounterVec
	CounterSessionsStarted prometheus.Counter
	CounterCameraFailures  prometheus.Counter

	// gauges
	GaugeSessionActive  prometheus.Gauge
	GaugeElapsedSeconds prometheus.Gauge
	GaugeSubscribers    prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func SetupPrometheus() *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	// Add Go module build info, runtime metrics and process collectors.
	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return promRegistry
}

// NewDiscardManager returns a Manager on a private registry nobody scrapes.
func NewDiscardManager() *Manager {
	return NewManager("nutrical", "discard", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("nutrical", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterReps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reps",
			Help:      "The total number of counted repetitions",
		}),
		CounterSelections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "exercise_selections",
			Help:      "The total number of exercise selections",
		}, []string{"exercise"}),
		CounterSessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "session_starts",
			Help:      "The total number of stopped-to-running transitions",
		}),
		CounterCameraFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "camera_failures",
			Help:      "The total number of failed camera acquisitions",
		}),
		GaugeSessionActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "session_active",
			Help:      "1 while a workout session is running",
		}),
		GaugeElapsedSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "session_elapsed_seconds",
			Help:      "Elapsed seconds of the current session",
		}),
		GaugeSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "event_subscribers",
			Help:      "Connected session event streams",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
