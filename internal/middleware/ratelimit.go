package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/pezzottify/catalog-server/internal/apierr"
)

// RateLimit throttles each client IP to reqs requests per window, returning
// 429 with the same JSON error envelope the rest of the API uses once a
// caller exceeds it. A window of zero disables limiting entirely, for local
// development and integration tests.
func RateLimit(reqs int, window time.Duration) func(http.Handler) http.Handler {
	if reqs <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		reqs,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeRateLimitError(w)
		}),
	)
}

func writeRateLimitError(w http.ResponseWriter) {
	err := apierr.RateLimited("too many requests")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error": map[string]string{
			"code":    string(err.Kind),
			"message": err.Message,
		},
	})
}
