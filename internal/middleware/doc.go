// Package middleware holds the chi.Handler wrappers the API router chains
// in front of every route: CORS, rate limiting, Prometheus instrumentation,
// gzip compression, and request ID assignment.
//
// Typical ordering, outermost first:
//
//	r.Use(middleware.CORS(cfg.CORSOrigins))
//	r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitWindow))
//	r.Use(middleware.PrometheusMetrics)
//	r.Use(middleware.Compression)
//	r.Use(middleware.RequestID)
//
// Authentication (internal/api) and permission checks (internal/authz) are
// applied per route group rather than globally, since public endpoints
// (login, challenge, invite redemption) sit alongside ones that require a
// device session.
package middleware
