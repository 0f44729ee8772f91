// Package metrics exposes Prometheus collectors for agenda syncs, role suggestions
// and the HTTP API.
//
// Collectors are registered on a private registry rather than the global default so
// tests and multiple servers in one process do not collide.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tm_roles"

// Collector holds the application's metrics
type Collector struct {
	registry *prometheus.Registry

	syncRuns       *prometheus.CounterVec
	agendasScraped prometheus.Counter
	rolesScraped   prometheus.Counter
	syncDuration   prometheus.Histogram
	suggestions    *prometheus.CounterVec
	unfilledRoles  prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Agenda sync runs by outcome.",
		}, []string{"outcome"}),
		agendasScraped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agendas_scraped_total",
			Help:      "Meeting agendas scraped from the club site.",
		}),
		rolesScraped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roles_scraped_total",
			Help:      "Agenda role rows scraped from the club site.",
		}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall time of an agenda sync run.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300},
		}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestions_total",
			Help:      "Role suggestion requests by outcome.",
		}, []string{"outcome"}),
		unfilledRoles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggested_unfilled_roles_total",
			Help:      "Suggested roles left without a primary because the roster ran out.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	c.registry.MustRegister(
		c.syncRuns,
		c.agendasScraped,
		c.rolesScraped,
		c.syncDuration,
		c.suggestions,
		c.unfilledRoles,
		c.httpRequests,
		c.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveSync records one sync run
func (c *Collector) ObserveSync(agendas, roles int, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.syncRuns.WithLabelValues(outcome).Inc()
	c.agendasScraped.Add(float64(agendas))
	c.rolesScraped.Add(float64(roles))
	c.syncDuration.Observe(elapsed.Seconds())
}

// ObserveSuggestion records one suggestion request and how many roles stayed open
func (c *Collector) ObserveSuggestion(outcome string, unfilled int) {
	if c == nil {
		return
	}
	c.suggestions.WithLabelValues(outcome).Inc()
	c.unfilledRoles.Add(float64(unfilled))
}

// ObserveHTTP records one HTTP request
func (c *Collector) ObserveHTTP(route string, code int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
