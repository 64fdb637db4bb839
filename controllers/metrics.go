package controllers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeOK          = "ok"
	outcomeInvalid     = "invalid"
	outcomeUnavailable = "unavailable"
)

// Metrics holds the gateway's Prometheus collectors
type Metrics struct {
	registry         *prometheus.Registry
	upstreamRequests *prometheus.CounterVec
}

// NewMetrics registers the gateway collectors on a fresh registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletd_upstream_requests_total",
				Help: "Wallet service calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
	}
	m.registry.MustRegister(m.upstreamRequests)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(operation, outcome).Inc()
}
