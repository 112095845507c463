// Package metrics exposes Prometheus counters and gauges for HTTP traffic,
// route lookups and route table loads.
package metrics
