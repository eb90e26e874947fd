package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics collects request-level and matching-pipeline metrics for
// the API process. Each process owns its registry; nothing registers into
// the global default.
type HTTPServerMetrics struct {
	registry *prometheus.Registry
	service  string

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	matchRunsTotal  *prometheus.CounterVec
	matchCandidates *prometheus.HistogramVec
	matchDuration   *prometheus.HistogramVec
	llmCallsTotal   *prometheus.CounterVec
	llmRetriesTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tm",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tm",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tm",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	matchRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tm",
			Subsystem: "match",
			Name:      "runs_total",
			Help:      "Total resume matching runs by outcome.",
		},
		[]string{"service", "status"},
	)
	matchCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tm",
			Subsystem: "match",
			Name:      "candidates",
			Help:      "Distribution of active candidates per matching run.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	matchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tm",
			Subsystem: "match",
			Name:      "duration_seconds",
			Help:      "End-to-end matching run duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service"},
	)
	llmCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tm",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total model provider calls by endpoint and outcome.",
		},
		[]string{"service", "endpoint", "status"},
	)
	llmRetriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tm",
			Subsystem: "llm",
			Name:      "retries_total",
			Help:      "Total model provider call retries by operation.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		matchRunsTotal,
		matchCandidates,
		matchDuration,
		llmCallsTotal,
		llmRetriesTotal,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		service:         service,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		matchRunsTotal:  matchRunsTotal,
		matchCandidates: matchCandidates,
		matchDuration:   matchDuration,
		llmCallsTotal:   llmCallsTotal,
		llmRetriesTotal: llmRetriesTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses path parameters so metric cardinality stays flat.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/ai/jobs/"):
		if strings.HasSuffix(path, "/resume-score") {
			return "/v1/ai/jobs/{job_id}/resume-score"
		}
		if strings.HasSuffix(path, "/interview-questions") {
			return "/v1/ai/jobs/{job_id}/interview-questions"
		}
		return "/v1/ai/jobs/{job_id}"
	case strings.HasPrefix(path, "/v1/ai/resumes/"):
		return "/v1/ai/resumes/{resume_id}/best-job"
	default:
		return path
	}
}

// MatchRunCompleted records one finished matching run. Satisfies the match
// pipeline's observer port.
func (m *HTTPServerMetrics) MatchRunCompleted(candidateCount int, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.matchRunsTotal.WithLabelValues(m.service, status).Inc()
	m.matchCandidates.WithLabelValues(m.service).Observe(float64(candidateCount))
	m.matchDuration.WithLabelValues(m.service).Observe(elapsed.Seconds())
}

// RetryAttempted counts one retried provider call for the named operation.
func (m *HTTPServerMetrics) RetryAttempted(operation string) {
	m.llmRetriesTotal.WithLabelValues(m.service, operation).Inc()
}

func (m *HTTPServerMetrics) RecordLLMCall(service, endpoint string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.llmCallsTotal.WithLabelValues(service, endpoint, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
