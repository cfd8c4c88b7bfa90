// Package metrics declares the Prometheus collectors of the share-mal server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequests counts served requests by method, route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sharemal",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests by method, route and status code.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks request latency by method and route pattern.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "sharemal",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// BillsCreated counts created bills by splitting operator.
var BillsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sharemal",
	Name:      "bills_created_total",
	Help:      "Total bills created by operator.",
}, []string{"operator"})

// PaymentToggles counts payment status flips by the resulting status.
var PaymentToggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sharemal",
	Name:      "payment_toggles_total",
	Help:      "Total payment status toggles by new status.",
}, []string{"status"})
