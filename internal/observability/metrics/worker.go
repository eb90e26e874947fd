package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics covers the job-post sync worker.
type WorkerMetrics struct {
	registry *prometheus.Registry

	syncTotal    *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	syncInFlight prometheus.Gauge
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	syncTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tm",
			Subsystem: "worker",
			Name:      "job_sync_total",
			Help:      "Total job-post sync runs by status.",
		},
		[]string{"service", "status"},
	)
	syncDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tm",
			Subsystem: "worker",
			Name:      "job_sync_duration_seconds",
			Help:      "Job-post sync duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	syncInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tm",
			Subsystem: "worker",
			Name:      "job_sync_in_flight",
			Help:      "Number of in-flight sync runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(syncTotal, syncDuration, syncInFlight)

	return &WorkerMetrics{
		registry:     registry,
		syncTotal:    syncTotal,
		syncDuration: syncDuration,
		syncInFlight: syncInFlight,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartSync() {
	m.syncInFlight.Inc()
}

func (m *WorkerMetrics) FinishSync(service string, duration time.Duration, err error) {
	m.syncInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.syncTotal.WithLabelValues(service, status).Inc()
	m.syncDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}
