package httpserver

import (
	"fmt"
	"net/http"

	"github.com/yndnr/jobboard-go/internal/core/service"
	"github.com/yndnr/jobboard-go/internal/server/httpserver/handler"
	"github.com/yndnr/jobboard-go/internal/telemetry/logger"
	"github.com/yndnr/jobboard-go/internal/telemetry/metric"
)

// Gate declares whether a route needs a verified session. It has no zero
// value on purpose: every route states its gate.
type Gate int

const (
	// GatePublic routes are served to anyone.
	GatePublic Gate = iota + 1
	// GateSession routes run behind SessionGate.
	GateSession
)

func (g Gate) String() string {
	switch g {
	case GatePublic:
		return "public"
	case GateSession:
		return "session"
	default:
		return fmt.Sprintf("Gate(%d)", int(g))
	}
}

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Handler *handler.Handler
	Tokens  *service.TokenService

	// Metrics may be nil.
	Metrics *metric.Registry
	// MetricsPath mounts the Prometheus handler; empty disables it.
	MetricsPath string

	Logger logger.Logger

	CORSOrigins []string

	// RateLimiter may be nil to disable rate limiting.
	RateLimiter *RateLimiterRegistry

	// TrustedProxies may set the client address through forwarding
	// headers. Empty means the remote address is always used.
	TrustedProxies ProxyList

	// GateStatusUpdates puts PATCH /job-applications/{id} behind the
	// session gate.
	GateStatusUpdates bool
}

// Router registers routes, each with its gate.
type Router struct {
	mux     *http.ServeMux
	gate    Middleware
	metrics *metric.Registry
	routes  map[string]Gate
}

func newRouter(tokens *service.TokenService, metrics *metric.Registry) *Router {
	return &Router{
		mux:     http.NewServeMux(),
		gate:    SessionGate(tokens, metrics),
		metrics: metrics,
		routes:  make(map[string]Gate),
	}
}

// Handle registers h for pattern. It panics on an undeclared gate.
func (rt *Router) Handle(pattern string, gate Gate, h http.Handler) {
	middlewares := []Middleware{observe(pattern, rt.metrics)}
	switch gate {
	case GatePublic:
	case GateSession:
		middlewares = append(middlewares, rt.gate)
	default:
		panic(fmt.Sprintf("httpserver: route %q registered without a gate", pattern))
	}

	rt.routes[pattern] = gate
	rt.mux.Handle(pattern, Chain(h, middlewares...))
}

// HandleFunc is Handle for a handler function.
func (rt *Router) HandleFunc(pattern string, gate Gate, h http.HandlerFunc) {
	rt.Handle(pattern, gate, h)
}

// Routes returns the registered patterns and their gates.
func (rt *Router) Routes() map[string]Gate {
	out := make(map[string]Gate, len(rt.routes))
	for k, v := range rt.routes {
		out[k] = v
	}
	return out
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// NewRouter builds the full handler: routes plus the middleware chain.
func NewRouter(cfg *RouterConfig) http.Handler {
	rt := newRouter(cfg.Tokens, cfg.Metrics)
	h := cfg.Handler

	rt.HandleFunc("GET /{$}", GatePublic, h.Greeting)
	rt.HandleFunc("GET /health", GatePublic, h.Health)
	rt.HandleFunc("GET /ready", GatePublic, h.Ready)
	if cfg.MetricsPath != "" && cfg.Metrics != nil {
		rt.Handle("GET "+cfg.MetricsPath, GatePublic, cfg.Metrics.Handler())
	}

	rt.HandleFunc("POST /jwt", GatePublic, h.IssueSession)
	rt.HandleFunc("POST /logout", GatePublic, h.Logout)

	rt.HandleFunc("GET /jobs", GatePublic, h.ListJobs)
	rt.HandleFunc("POST /jobs", GatePublic, h.CreateJob)
	rt.HandleFunc("GET /jobs/{id}", GatePublic, h.GetJob)

	rt.HandleFunc("GET /job-applications", GateSession, h.ListMyApplications)
	rt.HandleFunc("GET /job-applications/jobs/{job_id}", GatePublic, h.ListJobApplications)
	rt.HandleFunc("POST /job-applications", GatePublic, h.SubmitApplication)

	statusGate := GatePublic
	if cfg.GateStatusUpdates {
		statusGate = GateSession
	}
	rt.HandleFunc("PATCH /job-applications/{id}", statusGate, h.UpdateApplicationStatus)

	base := cfg.Logger
	if base == nil {
		base = logger.Default()
	}

	chain := []Middleware{
		RequestID(base),
		Recover(),
		CORS(cfg.CORSOrigins),
	}
	if cfg.RateLimiter != nil {
		chain = append(chain, RateLimit(cfg.RateLimiter, cfg.TrustedProxies))
	}
	chain = append(chain, Audit(cfg.TrustedProxies))

	return Chain(rt, chain...)
}
