// Package metrics provides the Prometheus registry and HTTP handler for the
// booking client. All metrics are defined in their respective packages
// (client, ratelimit, store, repository, pagination) to maintain modularity
// and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the booking client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(Registry, promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}))
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - booking_api_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - booking_api_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - booking_api_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - booking_api_retries_total{error_class} (Counter): Retry attempts by error class
//   - booking_api_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - booking_api_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - booking_api_rate_limit_remaining (Gauge): Requests remaining in the current window
//   - booking_api_rate_limit_blocks_total (Counter): Requests blocked at the critical threshold
//   - booking_api_rate_limit_throttles_total (Counter): Requests throttled at the warning threshold
//
// Local Store Metrics (pkg/store):
//   - booking_store_operations_total{backend, collection, operation} (Counter)
//   - booking_store_errors_total{backend, collection, operation} (Counter)
//   - booking_store_entities{backend, collection} (Gauge): Entities written by the last replace
//
// Repository Metrics (pkg/repository):
//   - booking_repository_fetches_total{repository, source} (Counter): Reads by answering source
//     (remote, local, default, cancelled)
//   - booking_repository_fallbacks_total{repository, reason} (Counter): Reads not served fresh
//     (empty_remote, error)
//   - booking_reservation_saves_total{outcome} (Counter): synced, local_only, failed, cancelled
//
// Pagination Metrics (pkg/pagination):
//   - booking_paginator_requests_total{paginator, outcome} (Counter)
//   - booking_paginator_deduplicated_total{paginator} (Counter): Calls collapsed by the in-flight guard
//   - booking_batch_pages_fetched_total (Counter)
//
// Example Prometheus Queries:
//
//   # Share of repository reads served from a fallback
//   sum(rate(booking_repository_fallbacks_total[5m])) /
//   sum(rate(booking_repository_fetches_total[5m]))
//
//   # Rate Limit Budget
//   booking_api_rate_limit_remaining < 20
//
//   # Request Error Rate
//   rate(booking_api_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(booking_api_request_duration_seconds_bucket[5m]))
