package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

// CORS builds a cors.Handler from the configured allow-list. An origin of
// "*" is passed straight through to permissive cross-origin use (a
// self-hosted instance reachable from a browser extension or a companion
// app on another origin); anything else is matched exactly.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           int((24 * time.Hour).Seconds()),
	})
}
