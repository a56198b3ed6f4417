// Package streaming serves audio bytes for /stream/{track_id}: range-request
// parsing, chunked copy, Cache-Control/ETag headers, per-user bandwidth
// accounting, and a circuit-breaker-wrapped client for the external
// downloader's fetch endpoint. The stream handler does not call that
// client; a track whose audio hasn't been fetched yet gets a 404.
package streaming
