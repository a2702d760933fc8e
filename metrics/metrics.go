// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics for the server. A nil *Collector
// is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	impacts          *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	memoryUpdates    *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		impacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impact_calculations_total",
			Help:      "Impact calculations by direction",
		}, []string{"direction"}),
		providerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_failures_total",
			Help:      "Absorbed failures of external providers",
		}, []string{"provider", "operation"}),
		memoryUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memory_update_decisions_total",
			Help:      "Memory summarization outcomes",
		}, []string{"decision"}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.impacts,
		c.providerFailures,
		c.memoryUpdates,
		prometheus.NewGoCollector(),
	)
	return c
}

// ObserveRequest records one served HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ImpactCalculated counts a computed impact result
func (c *Collector) ImpactCalculated(direction string) {
	if c == nil {
		return
	}
	c.impacts.WithLabelValues(direction).Inc()
}

// ProviderFailure counts a failed call to the memory or language-model provider
func (c *Collector) ProviderFailure(provider, operation string) {
	if c == nil {
		return
	}
	c.providerFailures.WithLabelValues(provider, operation).Inc()
}

// MemoryDecision counts summarization outcomes ("replace", "no_update", "error")
func (c *Collector) MemoryDecision(decision string) {
	if c == nil {
		return
	}
	c.memoryUpdates.WithLabelValues(decision).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
