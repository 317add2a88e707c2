package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the demo backend. Each instance
// owns its registry so several servers can coexist in one process.
type Metrics struct {
	registry       *prometheus.Registry
	handler        http.Handler
	activeRequests prometheus.Gauge
	requestsTotal  *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	queriesTotal   *prometheus.CounterVec
	uploadsTotal   prometheus.Counter
	streamedChunks prometheus.Counter
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ragcompare_active_requests",
			Help: "Number of requests being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ragcompare_requests_total",
			Help: "Requests served, by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ragcompare_request_duration_seconds",
			Help:    "Time to serve a request, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ragcompare_queries_total",
			Help: "Questions answered, by channel and response mode.",
		}, []string{"channel", "mode"}),
		uploadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ragcompare_uploads_total",
			Help: "Documents accepted by the upload endpoint.",
		}),
		streamedChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ragcompare_streamed_chunks_total",
			Help: "Chunks written to streamed answers.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.activeRequests,
		m.requestsTotal,
		m.duration,
		m.queriesTotal,
		m.uploadsTotal,
		m.streamedChunks,
	)
	// Pre-create the series so they are exported before the first request.
	m.requestsTotal.WithLabelValues("/metrics", "200")
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// IncrementActiveRequests marks the start of a request.
func (m *Metrics) IncrementActiveRequests() { m.activeRequests.Inc() }

// DecrementActiveRequests marks the end of a request.
func (m *Metrics) DecrementActiveRequests() { m.activeRequests.Dec() }

// ObserveRequest records a finished request.
func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveQuery records an answered question.
func (m *Metrics) ObserveQuery(channel string, streamed bool) {
	mode := "text"
	if streamed {
		mode = "stream"
	}
	m.queriesTotal.WithLabelValues(channel, mode).Inc()
}

// ObserveUpload records an accepted document.
func (m *Metrics) ObserveUpload() { m.uploadsTotal.Inc() }

// ObserveChunk records a streamed chunk.
func (m *Metrics) ObserveChunk() { m.streamedChunks.Inc() }

// WritePrometheus writes the metrics in the Prometheus text format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
