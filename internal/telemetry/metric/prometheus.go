package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobboard"

// Registry owns the process's metrics. A nil *Registry is valid and
// records nothing, which keeps call sites free of nil checks in tests.
type Registry struct {
	reg *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	applicationsSubmitted prometheus.Counter
	compensations         *prometheus.CounterVec

	sessionsIssued    prometheus.Counter
	sessionRejections prometheus.Counter
}

// NewRegistry creates a registry with all job board metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		applicationsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_submitted_total",
			Help:      "Applications recorded and counted against their job.",
		}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_compensations_total",
			Help:      "Applications deleted again because the job counter could not be incremented.",
		}, []string{"reason"}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_issued_total",
			Help:      "Session tokens issued by the login exchange.",
		}),
		sessionRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_rejections_total",
			Help:      "Requests refused by the session gate.",
		}),
	}

	r.reg.MustRegister(
		r.requestsTotal,
		r.requestDuration,
		r.applicationsSubmitted,
		r.compensations,
		r.sessionsIssued,
		r.sessionRejections,
	)
	return r
}

// Registerer exposes the underlying registry for components that add
// their own metrics (for example the Badger store).
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer exposes the underlying registry for tests and exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveRequest records one finished HTTP request. route is the matched
// pattern, never the raw path, to keep label cardinality bounded.
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ApplicationSubmitted counts a successful ledger write.
func (r *Registry) ApplicationSubmitted() {
	if r == nil {
		return
	}
	r.applicationsSubmitted.Inc()
}

// ApplicationCompensated counts a rolled back application.
func (r *Registry) ApplicationCompensated(reason string) {
	if r == nil {
		return
	}
	r.compensations.WithLabelValues(reason).Inc()
}

// SessionIssued counts an issued session token.
func (r *Registry) SessionIssued() {
	if r == nil {
		return
	}
	r.sessionsIssued.Inc()
}

// SessionRejected counts a request refused by the session gate.
func (r *Registry) SessionRejected() {
	if r == nil {
		return
	}
	r.sessionRejections.Inc()
}
