package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/authz"
)

const sessionCookieName = "session_token"

// tokenFromRequest reads the bearer token from the Authorization header,
// falling back to the session cookie WebSocket clients and browsers use.
func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return rest
		}
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate resolves the request's bearer token into a session and
// attaches it to the request context. Requests with no token or an
// invalid one are rejected with 401 before reaching any route handler;
// every mounted route group except auth's public endpoints requires one.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, r, apierr.Unauthorized("no session token presented"))
			return
		}
		sess, apiErr := h.Users.Resolve(r.Context(), token, time.Now())
		if apiErr != nil {
			writeError(w, r, apiErr)
			return
		}
		ctx := authz.WithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requirePermission adapts authz.Middleware.RequirePermission, which takes
// the wrapped handler directly, to chi's func(http.Handler) http.Handler
// middleware shape.
func (h *Handler) requirePermission(permission authz.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return h.AuthzMW.RequirePermission(permission, next)
	}
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
