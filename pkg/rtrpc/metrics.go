package rtrpc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// (totalRequests, errors) instead of (successes, errors), like the rest of our metrics
type connectionMetrics struct {
	registry        *prometheus.Registry
	roundTrips      *prometheus.CounterVec
	roundTripErrors *prometheus.CounterVec
}

var metrics = newConnectionMetrics()

func newConnectionMetrics() *connectionMetrics {
	registry := prometheus.NewRegistry()

	m := &connectionMetrics{
		registry: registry,
		roundTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pyro_rpc_roundtrips_total",
			Help: "XML-RPC round trips per target (incl. errors)",
		}, []string{"target"}),
		roundTripErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pyro_rpc_roundtrip_errors_total",
			Help: "Failed XML-RPC round trips per target",
		}, []string{"target"}),
	}

	registry.MustRegister(m.roundTrips)
	registry.MustRegister(m.roundTripErrors)

	return m
}

// for the embedding application (e.g. the web UI) to expose under /metrics
func MetricsHTTPHandler() http.Handler {
	return promhttp.HandlerFor(metrics.registry, promhttp.HandlerOpts{})
}
