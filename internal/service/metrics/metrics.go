// Package metrics provides Prometheus metrics for the link portal.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionIssuedTotal   prometheus.Counter
	SessionRejectedTotal prometheus.Counter

	// OAuth2 metrics
	ExchangeTotal    *prometheus.CounterVec
	ExchangeDuration prometheus.Histogram

	// Link metrics
	LinksCreatedTotal  *prometheus.CounterVec
	LinkConflictsTotal prometheus.Counter
	RedirectsTotal     *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Registry for metrics
	Registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	// Register standard Go collectors
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	reg.MustRegister(prometheus.NewBuildInfoCollector())

	m := &Metrics{
		Registry: reg,

		// Session metrics
		SessionIssuedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "link_portal_session_issued_total",
				Help: "Total number of session cookies issued or refreshed",
			},
		),
		SessionRejectedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "link_portal_session_rejected_total",
				Help: "Total number of requests rejected for missing or invalid sessions",
			},
		),

		// OAuth2 metrics
		ExchangeTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "link_portal_oauth2_exchange_total",
				Help: "Total number of authorization-code token exchanges",
			},
			[]string{"status"},
		),
		ExchangeDuration: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "link_portal_oauth2_exchange_duration_seconds",
				Help:    "Token exchange duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Link metrics
		LinksCreatedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "link_portal_links_created_total",
				Help: "Total number of links created",
			},
			[]string{"type"},
		),
		LinkConflictsTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "link_portal_link_conflicts_total",
				Help: "Total number of link creations rejected because the slug existed",
			},
		),
		RedirectsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "link_portal_redirects_total",
				Help: "Total number of slug redirect lookups",
			},
			[]string{"status"},
		),

		// HTTP metrics
		HTTPRequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "link_portal_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "link_portal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "link_portal_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
	}

	return m
}

// Handler returns an HTTP handler for serving Prometheus metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		Registry:          m.Registry,
		EnableOpenMetrics: true,
	})
}

// RecordSessionIssued records a session cookie being issued or refreshed.
func (m *Metrics) RecordSessionIssued() {
	m.SessionIssuedTotal.Inc()
}

// RecordSessionRejected records a request rejected for lacking a session.
func (m *Metrics) RecordSessionRejected() {
	m.SessionRejectedTotal.Inc()
}

// RecordExchange records a token exchange outcome and its duration.
func (m *Metrics) RecordExchange(status string, duration float64) {
	m.ExchangeTotal.WithLabelValues(status).Inc()
	m.ExchangeDuration.Observe(duration)
}

// RecordLinkCreated records a successful link creation.
func (m *Metrics) RecordLinkCreated(linkType string) {
	m.LinksCreatedTotal.WithLabelValues(linkType).Inc()
}

// RecordLinkConflict records a creation rejected because the slug existed.
func (m *Metrics) RecordLinkConflict() {
	m.LinkConflictsTotal.Inc()
}

// RecordRedirect records a slug lookup outcome.
func (m *Metrics) RecordRedirect(status string) {
	m.RedirectsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordHTTPDuration records HTTP request duration.
func (m *Metrics) RecordHTTPDuration(method, path string, duration float64) {
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments the in-flight request counter.
func (m *Metrics) InFlightInc() {
	m.HTTPRequestsInFlight.Inc()
}

// InFlightDec decrements the in-flight request counter.
func (m *Metrics) InFlightDec() {
	m.HTTPRequestsInFlight.Dec()
}
