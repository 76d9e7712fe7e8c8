// Package metrics provides Prometheus metrics for the transcription pipeline
// and its HTTP surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "minutes_flow"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	registry *prometheus.Registry

	// Pipeline metrics
	RequestsTotal   *prometheus.CounterVec
	RequestsActive  prometheus.Gauge
	StageFailures   *prometheus.CounterVec
	AudioDuration   prometheus.Histogram
	SegmentsPerFile prometheus.Histogram

	// Remote call metrics
	TranscriptionLatency prometheus.Histogram
	SummarizationLatency prometheus.Histogram
	SegmentsTranscribed  prometheus.Counter

	// Resource metrics
	CleanupErrors prometheus.Counter

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the metrics on a fresh registry. The Go and process collectors
// are registered alongside when withRuntime is set.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Recordings processed, by outcome",
		}, []string{"outcome"}),
		RequestsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_active",
			Help:      "Recordings currently being processed",
		}),
		StageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "Pipeline failures by stage",
		}, []string{"stage"}),
		AudioDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audio_duration_seconds",
			Help:      "Length of decoded recordings",
			Buckets:   []float64{30, 60, 120, 300, 600, 1200, 1800, 3600, 7200},
		}),
		SegmentsPerFile: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "segments_per_recording",
			Help:      "Number of segments a recording was split into",
			Buckets:   prometheus.LinearBuckets(1, 5, 10),
		}),

		TranscriptionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_latency_seconds",
			Help:      "Latency of one segment transcription call",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
		SummarizationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summarization_latency_seconds",
			Help:      "Latency of the summarization call",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),
		SegmentsTranscribed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_transcribed_total",
			Help:      "Segments transcribed successfully",
		}),

		CleanupErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_errors_total",
			Help:      "Temporary files or directories that could not be removed",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
