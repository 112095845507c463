package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "apiroutes"

// Lookup outcomes recorded by ObserveLookup.
const (
	OutcomeFound         = "found"
	OutcomeGroupNotFound = "group_not_found"
	OutcomeRouteNotFound = "route_not_found"
)

// Config load results recorded by ObserveConfigLoad.
const (
	LoadOK       = "ok"
	LoadFallback = "fallback"
)

// Metrics owns the service's Prometheus collectors and the registry they are
// exposed through.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	lookups         *prometheus.CounterVec
	configLoads     *prometheus.CounterVec
	groups          prometheus.Gauge
	routes          prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests handled, by method, route template and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Route lookups, by outcome.",
		}, []string{"outcome"}),
		configLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_loads_total",
			Help:      "Route table loads, by origin and result.",
		}, []string{"source", "result"}),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "configured_groups",
			Help:      "Groups in the active route table.",
		}),
		routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "configured_routes",
			Help:      "Routes in the active route table.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.lookups,
		m.configLoads,
		m.groups,
		m.routes,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records a completed HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveLookup records the outcome of a route lookup.
func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
}

// ObserveConfigLoad records a route table load.
func (m *Metrics) ObserveConfigLoad(source string, fallback bool) {
	if m == nil {
		return
	}
	result := LoadOK
	if fallback {
		result = LoadFallback
	}
	m.configLoads.WithLabelValues(source, result).Inc()
}

// SetTableSize records the size of the route table now served.
func (m *Metrics) SetTableSize(groups, routes int) {
	if m == nil {
		return
	}
	m.groups.Set(float64(groups))
	m.routes.Set(float64(routes))
}
