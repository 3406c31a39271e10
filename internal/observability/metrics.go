package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "breathing_rivers"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Gamification metrics.
	ActivitiesRecorded *prometheus.CounterVec // labels: type={quiz,cleanup,planting,simulation}
	QuizAnswers        *prometheus.CounterVec // labels: outcome={correct,wrong}

	// NASA simulation metrics.
	NASARequests  *prometheus.CounterVec // labels: dataset={water,satellite,weather}, outcome={success,error}
	NASACache     *prometheus.CounterVec // labels: dataset={water,satellite,weather}, result={hit,miss}
	NASAFallbacks *prometheus.CounterVec // labels: operation
	Refreshes     *prometheus.CounterVec // labels: outcome={success,error}

	// Activity publisher metrics.
	ActivitiesExtracted     prometheus.Counter
	ActivitiesPublished     prometheus.Counter
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ActivitiesRecorded,
		m.QuizAnswers,
		m.NASARequests,
		m.NASACache,
		m.NASAFallbacks,
		m.Refreshes,
		m.ActivitiesExtracted,
		m.ActivitiesPublished,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ActivitiesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activities_recorded_total",
			Help:      "Activities appended to the log by type.",
		}, []string{"type"}),
		QuizAnswers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quiz_answers_total",
			Help:      "Quiz answers scored by outcome.",
		}, []string{"outcome"}),
		NASARequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nasa_requests_total",
			Help:      "Simulated NASA dataset generations by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		NASACache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nasa_cache_total",
			Help:      "NASA cache lookups by dataset and result.",
		}, []string{"dataset", "result"}),
		NASAFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nasa_fallbacks_total",
			Help:      "Operations that fell back to simulated data because NASA data was unavailable.",
		}, []string{"operation"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "environment_refreshes_total",
			Help:      "Scheduled environmental refreshes by outcome.",
		}, []string{"outcome"}),
		ActivitiesExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activities_extracted_total",
			Help:      "Total activities read from the outbox.",
		}),
		ActivitiesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activities_published_total",
			Help:      "Total activities written to the activity topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total activity serialization failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the activity publisher is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of activities per batch extracted from the outbox.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
