// Package metrics wires the server's counters, gauges, and histograms to
// Prometheus, registering them with promauto against the default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the interface the accept loop and the connection handler
// record against, so neither imports Prometheus directly. The connection
// handler records request completions and admission rejections; the accept
// loop records rejected pool submissions. Nothing in this repository calls
// SetPoolQueueDepth or SetPoolActiveWorkers, so those gauges stay at zero.
type Recorder interface {
	RequestCompleted(status int, duration time.Duration, responseBytes int)
	AdmissionRejected(reason string)
	PoolSubmissionRejected()
	SetPoolQueueDepth(n int64)
	SetPoolActiveWorkers(n int64)
}

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "originserver",
			Name:      "requests_total",
			Help:      "Total requests completed, by status code",
		},
		[]string{"status"},
	)

	admissionRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "originserver",
			Name:      "admission_rejections_total",
			Help:      "Total requests rejected by the admission layer, by reason",
		},
		[]string{"reason"},
	)

	poolSubmissionsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "originserver",
			Name:      "pool_submissions_rejected_total",
			Help:      "Total connections rejected because the worker pool queue was full",
		},
	)

	poolQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "originserver",
			Name:      "pool_queue_depth",
			Help:      "Current number of tasks waiting in the worker pool queue",
		},
	)

	poolActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "originserver",
			Name:      "pool_active_workers",
			Help:      "Current number of worker goroutines actively handling a connection",
		},
	)

	requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "originserver",
			Name:      "request_duration_seconds",
			Help:      "Request handling duration",
			Buckets:   prometheus.DefBuckets,
		},
	)

	responseBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "originserver",
			Name:      "response_bytes",
			Help:      "Response body size in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		},
	)
)

// prometheusRecorder is the Recorder implementation backed by the package
// vars above. It is stateless; Prometheus itself holds the values.
type prometheusRecorder struct{}

// New returns the Prometheus-backed Recorder. There is exactly one
// meaningful instance per process, since promauto registers against the
// default registry.
func New() Recorder {
	return prometheusRecorder{}
}

func (prometheusRecorder) RequestCompleted(status int, duration time.Duration, bytes int) {
	requestsTotal.WithLabelValues(statusLabel(status)).Inc()
	requestDuration.Observe(duration.Seconds())
	responseBytes.Observe(float64(bytes))
}

func (prometheusRecorder) AdmissionRejected(reason string) {
	admissionRejections.WithLabelValues(reason).Inc()
}

func (prometheusRecorder) PoolSubmissionRejected() {
	poolSubmissionsRejected.Inc()
}

func (prometheusRecorder) SetPoolQueueDepth(n int64) {
	poolQueueDepth.Set(float64(n))
}

func (prometheusRecorder) SetPoolActiveWorkers(n int64) {
	poolActiveWorkers.Set(float64(n))
}

func statusLabel(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
