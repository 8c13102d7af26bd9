package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AnalysesStarted counts analyze invocations; it carries no labels (outcomes
	// are counted by AnalysesCompleted and AnalysesFailed).
	AnalysesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bandsteer",
			Name:      "analyses_started_total",
			Help:      "Total number of analysis runs started",
		},
		[]string{},
	)

	// AnalysesCompleted counts analyze invocations that finished, labeled by verdict.
	AnalysesCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bandsteer",
			Name:      "analyses_completed_total",
			Help:      "Total number of analyses completed, by verdict",
		},
		[]string{"verdict"},
	)

	// AnalysesFailed counts analyze invocations that errored, labeled by error kind.
	AnalysesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bandsteer",
			Name:      "analyses_failed_total",
			Help:      "Total number of analyses that failed before producing a verdict",
		},
		[]string{"kind"},
	)

	// FramesDissected counts frames the dissector adapter handed to the aggregator.
	FramesDissected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bandsteer",
			Name:      "frames_dissected_total",
			Help:      "Total number of capture frames streamed out of the dissector",
		},
		[]string{},
	)

	// DissectorDuration tracks how long the external dissector process ran.
	DissectorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bandsteer",
			Name:      "dissector_duration_seconds",
			Help:      "Wall-clock duration of dissector subprocess runs",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{},
	)

	// WorkerPoolInFlight tracks concurrent dissector invocations.
	WorkerPoolInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "bandsteer",
			Name:      "worker_pool_in_flight",
			Help:      "Number of analyses currently holding a dissector concurrency slot",
		},
		[]string{},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Idempotent; safe to call multiple times.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(AnalysesStarted)
		prometheus.DefaultRegisterer.MustRegister(AnalysesCompleted)
		prometheus.DefaultRegisterer.MustRegister(AnalysesFailed)
		prometheus.DefaultRegisterer.MustRegister(FramesDissected)
		prometheus.DefaultRegisterer.MustRegister(DissectorDuration)
		prometheus.DefaultRegisterer.MustRegister(WorkerPoolInFlight)
	})
}
