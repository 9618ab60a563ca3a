package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the interop host.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Interop metrics
	InteropCalls    *prometheus.CounterVec
	InteropDuration *prometheus.HistogramVec
	Callbacks       *prometheus.CounterVec

	// Session metrics
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	// WebSocket metrics
	WSFrames *prometheus.CounterVec

	registry *prometheus.Registry
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON status endpoint.
type Snapshot struct {
	ActiveSessions int64 `json:"activeSessions"`
	TotalSessions  int64 `json:"totalSessions"`
	TotalCalls     int64 `json:"totalCalls"`
	FailedCalls    int64 `json:"failedCalls"`
	TotalCallbacks int64 `json:"totalCallbacks"`
}

// NewMetrics creates collectors registered on a private registry, so
// several hosts (and tests) can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webinterop_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webinterop_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		InteropCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webinterop_calls_total",
				Help: "Total number of host to browser invocations",
			},
			[]string{"namespace", "method", "status"},
		),
		InteropDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webinterop_call_duration_seconds",
				Help:    "Host to browser invocation round trip in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"namespace", "method"},
		),
		Callbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webinterop_callbacks_total",
				Help: "Total number of browser to host callbacks",
			},
			[]string{"method", "status"},
		),

		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "webinterop_sessions_active",
				Help: "Number of connected browser contexts",
			},
		),
		SessionsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "webinterop_sessions_total",
				Help: "Total number of browser contexts that connected",
			},
		),

		WSFrames: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webinterop_frames_total",
				Help: "Total number of interop frames",
			},
			[]string{"direction", "kind"},
		),
	}
}

// Handler exposes the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordInteropCall records one invocation of a browser function.
func (m *Metrics) RecordInteropCall(namespace, method, status string, duration time.Duration) {
	m.InteropCalls.WithLabelValues(namespace, method, status).Inc()
	m.InteropDuration.WithLabelValues(namespace, method).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalCalls++
	if status != StatusOK {
		m.snapshot.FailedCalls++
	}
	m.mu.Unlock()
}

// RecordCallback records a browser callback into a host object.
func (m *Metrics) RecordCallback(method, status string) {
	m.Callbacks.WithLabelValues(method, status).Inc()

	m.mu.Lock()
	m.snapshot.TotalCallbacks++
	m.mu.Unlock()
}

// RecordFrame records a frame crossing the connection.
func (m *Metrics) RecordFrame(direction, kind string) {
	m.WSFrames.WithLabelValues(direction, kind).Inc()
}

// SessionOpened increments the connected session gauge.
func (m *Metrics) SessionOpened() {
	m.SessionsActive.Inc()
	m.SessionsTotal.Inc()

	m.mu.Lock()
	m.snapshot.ActiveSessions++
	m.snapshot.TotalSessions++
	m.mu.Unlock()
}

// SessionClosed decrements the connected session gauge.
func (m *Metrics) SessionClosed() {
	m.SessionsActive.Dec()

	m.mu.Lock()
	m.snapshot.ActiveSessions--
	m.mu.Unlock()
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
