package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transcription outcomes used as the status label
const (
	StatusSuccess         = "success"
	StatusValidationError = "validation_error"
	StatusError           = "error"
)

// Metrics contains all Prometheus metrics for the speech-to-text service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Transcription metrics
	TranscriptionsTotal   *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram
	AudioDuration         prometheus.Histogram
	ModelLoaded           prometheus.Gauge

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates all metrics on a private registry, together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		TranscriptionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speite_transcriptions_total",
			Help: "Total number of transcriptions by outcome",
		}, []string{"status"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "speite_transcription_duration_seconds",
			Help:    "Wall time spent in model inference",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4 minutes
		}),
		AudioDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "speite_audio_duration_seconds",
			Help:    "Duration of transcribed audio",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s to ~8.5 minutes
		}),
		ModelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "speite_model_loaded",
			Help: "1 when the model handle is loaded",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speite_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "speite_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Registry returns the registry holding the service metrics
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordTranscription records one transcription attempt
func (m *Metrics) RecordTranscription(status string, elapsed time.Duration, audioSeconds float64) {
	if m == nil {
		return
	}
	m.TranscriptionsTotal.WithLabelValues(status).Inc()
	m.TranscriptionDuration.Observe(elapsed.Seconds())
	if status == StatusSuccess {
		m.AudioDuration.Observe(audioSeconds)
	}
}

// RecordRejected counts audio refused before inference
func (m *Metrics) RecordRejected() {
	if m == nil {
		return
	}
	m.TranscriptionsTotal.WithLabelValues(StatusValidationError).Inc()
}

// SetModelLoaded sets the model gauge
func (m *Metrics) SetModelLoaded(loaded bool) {
	if m == nil {
		return
	}
	if loaded {
		m.ModelLoaded.Set(1)
		return
	}
	m.ModelLoaded.Set(0)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
