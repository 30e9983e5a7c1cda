// Package metrics defines the Prometheus metrics exported by the keygate
// server.
//
// Metric naming follows Prometheus conventions:
//   - keygate_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
//
// Metrics live on a private registry, so several servers (for example in
// tests) can run in one process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginInvalid = "invalid_credentials"
	LoginError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests by method, route pattern and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds is a histogram of request latency by route.
	RequestDurationSeconds *prometheus.HistogramVec

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal *prometheus.CounterVec

	// AuthFailuresTotal counts requests rejected before reaching a handler,
	// by reason (unauthenticated, forbidden).
	AuthFailuresTotal *prometheus.CounterVec

	// RegistrationsTotal counts created accounts by role.
	RegistrationsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keygate_http_requests_total",
				Help: "Total HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "keygate_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"route"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keygate_logins_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		AuthFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keygate_auth_failures_total",
				Help: "Requests rejected by authentication or authorization.",
			},
			[]string{"reason"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keygate_registrations_total",
				Help: "Accounts created, by role.",
			},
			[]string{"role"},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDurationSeconds,
		m.LoginsTotal,
		m.AuthFailuresTotal,
		m.RegistrationsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest records one finished HTTP request.
func (m *Metrics) RecordRequest(method, route string, status int, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDurationSeconds.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) RecordLogin(outcome string) {
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordAuthFailure(reason string) {
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordRegistration(isAdmin bool) {
	role := "regular"
	if isAdmin {
		role = "admin"
	}
	m.RegistrationsTotal.WithLabelValues(role).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
