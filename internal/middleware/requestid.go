package middleware

import (
	"net/http"

	"github.com/pezzottify/catalog-server/internal/logging"
)

// RequestIDHeader is the header a request arrives with (from an upstream
// proxy) or is assigned on, and the header it's echoed back on.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a request id (honoring one set by an
// upstream proxy) and a fresh correlation id, both added to the request
// context so internal/logging.Ctx picks them up in every log line the
// handler chain emits.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = logging.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithCorrelationID(ctx, logging.NewCorrelationID())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
