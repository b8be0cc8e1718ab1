// Package metrics provides the centralized Prometheus metrics registry
// for the OPTIMADE client. All metrics are defined in their respective
// packages (query, response, cache, ratelimit) to maintain modularity
// and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the OPTIMADE client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Query Metrics (pkg/query):
//   - optimade_queries_total{host, status} (Counter): Total queries by provider host
//     and HTTP status ("network_error" and "throttled" for requests that never
//     reached the provider)
//   - optimade_query_duration_seconds{host} (Histogram): Query duration by provider host
//
// Outcome Metrics (pkg/response):
//   - optimade_outcomes_total{kind} (Counter): Classified outcomes by kind
//     (success, api_error, transport_error, version_error)
//
// Cache Metrics (pkg/cache):
//   - optimade_cache_hits_total (Counter): Cache hits
//   - optimade_cache_misses_total (Counter): Cache misses
//   - optimade_cache_size_bytes (Gauge): Current cache size in bytes
//   - optimade_cache_errors_total{operation} (Counter): Cache operation errors
//
// Throttle Metrics (pkg/ratelimit):
//   - optimade_provider_cooldowns_total{host} (Counter): Cooldowns recorded after
//     429 responses
//   - optimade_throttle_blocks_total{host} (Counter): Requests blocked while a
//     provider cooldown is active
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(optimade_cache_hits_total[5m])) /
//   (sum(rate(optimade_cache_hits_total[5m])) + sum(rate(optimade_cache_misses_total[5m])))
//
//   # Query Error Rate per Provider
//   sum by (host) (rate(optimade_queries_total{status!="200"}[5m]))
//
//   # P95 Query Latency
//   histogram_quantile(0.95, rate(optimade_query_duration_seconds_bucket[5m]))
//
//   # Providers Currently Misbehaving
//   rate(optimade_provider_cooldowns_total[15m]) > 0
