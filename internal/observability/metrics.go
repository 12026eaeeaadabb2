// Package observability holds the Prometheus collector and the
// OpenTelemetry tracer setup.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Each
// collector owns its registry so tests can create as many as they like.
// Recording methods are safe on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Business metrics
	NodesCreated      prometheus.Counter
	NodesDeleted      prometheus.Counter
	EdgesCreated      prometheus.Counter
	FlashcardsCreated *prometheus.CounterVec
	Reviews           *prometheus.CounterVec
	HierarchyWarnings *prometheus.CounterVec
}

// NewCollector creates a collector whose metric names start with namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served",
		}),
		NodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_created_total",
			Help:      "Total number of nodes created",
		}),
		NodesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_deleted_total",
			Help:      "Total number of nodes deleted",
		}),
		EdgesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_created_total",
			Help:      "Total number of edges created",
		}),
		FlashcardsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flashcards_created_total",
			Help:      "Total number of flashcards created, by origin",
		}, []string{"origin"}),
		Reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_total",
			Help:      "Total number of flashcard reviews, by outcome",
		}, []string{"outcome"}),
		HierarchyWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hierarchy_warnings_total",
			Help:      "Data integrity warnings found while resolving hierarchies",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.HTTPInFlight,
		c.NodesCreated,
		c.NodesDeleted,
		c.EdgesCreated,
		c.FlashcardsCreated,
		c.Reviews,
		c.HierarchyWarnings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// InFlightGauge returns nil on a nil collector.
func (c *Collector) InFlightGauge() prometheus.Gauge {
	if c == nil {
		return nil
	}
	return c.HTTPInFlight
}

func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) NodeCreated(n int) {
	if c == nil {
		return
	}
	c.NodesCreated.Add(float64(n))
}

func (c *Collector) NodeDeleted() {
	if c == nil {
		return
	}
	c.NodesDeleted.Inc()
}

func (c *Collector) EdgeCreated(n int) {
	if c == nil {
		return
	}
	c.EdgesCreated.Add(float64(n))
}

// FlashcardCreated counts n cards; origin is "manual" or "ai".
func (c *Collector) FlashcardCreated(origin string, n int) {
	if c == nil {
		return
	}
	c.FlashcardsCreated.WithLabelValues(origin).Add(float64(n))
}

// ReviewRecorded counts a review as "pass" or "lapse".
func (c *Collector) ReviewRecorded(passed bool) {
	if c == nil {
		return
	}
	outcome := "lapse"
	if passed {
		outcome = "pass"
	}
	c.Reviews.WithLabelValues(outcome).Inc()
}

func (c *Collector) HierarchyWarning(kind string) {
	if c == nil {
		return
	}
	c.HierarchyWarnings.WithLabelValues(kind).Inc()
}
