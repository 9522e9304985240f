package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the authentication flow.
// Every counter vec is pre-labelled by outcome so dashboards can separate
// "wrong password" noise from signature failures worth paging on.
type Metrics struct {
	registry *prometheus.Registry

	// LoginAttempts counts POST /login outcomes: ok, invalid_credentials,
	// rate_limited, bad_request.
	LoginAttempts *prometheus.CounterVec

	// TicketsIssued counts successfully minted tickets.
	TicketsIssued prometheus.Counter

	// TicketVerifications counts GET /auth outcomes: ok, no_ticket,
	// malformed, bad_signature, expired, future.
	TicketVerifications *prometheus.CounterVec

	// RequestDuration observes handler latency by route and status class.
	RequestDuration *prometheus.HistogramVec

	// UsersLoaded tracks the size of the current userstore snapshot.
	UsersLoaded prometheus.Gauge
}

// NewMetrics creates and registers all instruments on a fresh registry, so
// tests can hold independent instances without double-registration panics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sso",
			Subsystem: "login",
			Name:      "attempts_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		TicketsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sso",
			Subsystem: "ticket",
			Name:      "issued_total",
			Help:      "Signed auth tickets issued",
		}),
		TicketVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sso",
			Subsystem: "ticket",
			Name:      "verifications_total",
			Help:      "Ticket verification results by outcome",
		}, []string{"outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sso",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status class",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
		UsersLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sso",
			Subsystem: "userstore",
			Name:      "users_loaded",
			Help:      "Users in the current credential snapshot",
		}),
	}

	registry.MustRegister(
		m.LoginAttempts,
		m.TicketsIssued,
		m.TicketVerifications,
		m.RequestDuration,
		m.UsersLoaded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the /metrics exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests asserting on values.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
