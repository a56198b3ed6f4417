/*
Package metrics provides Prometheus metrics collection and export for observability.

This package defines Prometheus metrics for the catalog server's storage layer,
HTTP API, streaming engine, search engine, caches, sync WebSocket hub,
downloader circuit breaker, and job scheduler. Within this module the HTTP
middleware, the downloader circuit breaker, and the job scheduler record into
them; the storage, streaming, search, cache, and WebSocket metrics are
registered and exported, but no call site records them.

# Overview

The package provides metrics for:
  - SQLite query latency and error rate
  - HTTP API throughput and latency
  - Audio streaming throughput and request outcomes
  - Search query latency and index-sync failures
  - Cache hit/miss rates
  - WebSocket sync hub connection and message counts
  - Downloader circuit breaker state transitions
  - Scheduled job run outcomes and duration

# Metrics Endpoint

Metrics are exposed on the configured metrics port in Prometheus text format:

	curl http://localhost:9090/metrics

# Available Metrics

Storage:
  - sqlite_query_duration_seconds: query execution time (histogram), labels operation, table
  - sqlite_query_errors_total: failed queries (counter), labels operation, table

HTTP API:
  - api_requests_total: requests (counter), labels method, endpoint, status_code
  - api_request_duration_seconds: latency (histogram), labels method, endpoint
  - api_active_requests: in-flight requests (gauge)
  - api_rate_limit_hits_total: rate limit rejections (counter), label endpoint

Streaming:
  - stream_bytes_served_total: bytes streamed (counter), label content_type
  - stream_requests_total: stream outcomes (counter), label status (full, partial, range_not_satisfiable)
  - stream_request_duration_seconds: stream duration from open to close (histogram)

Search:
  - search_query_duration_seconds: query latency (histogram), label engine
  - search_index_sync_failures_total: catalog mutations whose index sync failed (counter), label content_type

Cache:
  - cache_hits_total / cache_misses_total: cache outcomes (counter), label cache_type

WebSocket sync hub:
  - websocket_connections: active connections (gauge)
  - websocket_messages_sent_total / websocket_messages_received_total (counter)
  - websocket_errors_total: labels error_type

Circuit breaker (on-demand downloader):
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge), label name
  - circuit_breaker_requests_total: labels name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: label name
  - circuit_breaker_state_transitions_total: labels name, from_state, to_state

Job scheduler:
  - job_runs_total: labels job, outcome (success, failure)
  - job_duration_seconds: label job

System:
  - app_info: version and Go runtime, labels version, go_version
  - app_uptime_seconds

# Usage Example

Recording metrics from a call site:

	import "github.com/pezzottify/catalog-server/internal/metrics"

	start := time.Now()
	err := store.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "tracks", time.Since(start), err)

HTTP middleware:

	func MetricsMiddleware(next http.Handler) http.Handler {
	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	        start := time.Now()
	        rw := &responseWriter{ResponseWriter: w, statusCode: 200}
	        metrics.TrackActiveRequest(true)
	        defer metrics.TrackActiveRequest(false)

	        next.ServeHTTP(rw, r)

	        metrics.RecordAPIRequest(r.Method, r.URL.Path, strconv.Itoa(rw.statusCode), time.Since(start))
	    })
	}

Job scheduler:

	start := time.Now()
	err := job.Run(ctx)
	metrics.RecordJobRun(job.Name(), time.Since(start), err)

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'catalog-server'
	    static_configs:
	      - targets: ['localhost:9090']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

# Example PromQL queries

	# API p95 latency
	histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))

	# SQLite error rate
	rate(sqlite_query_errors_total[5m])

	# Cache hit rate
	sum(rate(cache_hits_total[5m])) / (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

	# Job failure rate
	rate(job_runs_total{outcome="failure"}[15m])

# Cardinality Management

  - HTTP endpoint labels are the route template, not the raw path, so path
    parameters (track IDs, playlist IDs) never become label values
  - Status codes are recorded as the literal code string, not grouped, since
    the API surface has a small, fixed set of routes
  - Circuit breaker and job labels are drawn from a small fixed set of names

# Thread Safety

All metric recording functions are safe for concurrent use; the Prometheus
client library synchronizes internally.
*/
package metrics
