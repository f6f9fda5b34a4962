package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects HTTP request metrics and domain counters on a
// single registry. It implements the click and recalculation observer
// interfaces of the usecase layer.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	clicks         *prometheus.CounterVec
	recalcRuns     *prometheus.CounterVec
	recalcDuration *prometheus.HistogramVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	clicks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clicks_recorded_total",
		Help: "Total number of click events recorded.",
	}, []string{"link_type"})

	recalcRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ranking_recalculations_total",
		Help: "Total number of ranking pipeline runs.",
	}, []string{"period_type", "status"})

	recalcDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ranking_recalculation_duration_seconds",
		Help:    "Ranking pipeline duration in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"period_type"})

	reg.MustRegister(requests, latency, clicks, recalcRuns, recalcDuration)

	return &Metrics{
		registry:       reg,
		requests:       requests,
		latency:        latency,
		clicks:         clicks,
		recalcRuns:     recalcRuns,
		recalcDuration: recalcDuration,
	}
}

// Middleware records request count and duration.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil || m.requests == nil || m.latency == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		status := strconv.Itoa(ww.status)
		path := r.URL.Path
		method := r.Method
		m.requests.WithLabelValues(method, path, status).Inc()
		m.latency.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
	})
}

// ClickRecorded counts one persisted click event.
func (m *Metrics) ClickRecorded(linkType string) {
	if m == nil || m.clicks == nil {
		return
	}
	m.clicks.WithLabelValues(linkType).Inc()
}

// RecalculationRun counts one ranking pipeline run and its duration.
func (m *Metrics) RecalculationRun(periodType string, success bool, duration time.Duration) {
	if m == nil || m.recalcRuns == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.recalcRuns.WithLabelValues(periodType, status).Inc()
	m.recalcDuration.WithLabelValues(periodType).Observe(duration.Seconds())
}

// Handler returns a Prometheus handler that serves metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
