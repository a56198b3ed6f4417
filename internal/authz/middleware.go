package authz

import (
	"context"
	"net/http"

	"github.com/pezzottify/catalog-server/internal/apierr"
	"github.com/pezzottify/catalog-server/internal/logging"
	"github.com/pezzottify/catalog-server/internal/useraccount"
)

type sessionKey struct{}

// WithSession stores sess on ctx so downstream handlers can read it back
// via SessionFromContext.
func WithSession(ctx context.Context, sess *useraccount.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session attached by the authentication
// middleware, or nil if the request reached here unauthenticated.
func SessionFromContext(ctx context.Context) *useraccount.Session {
	sess, _ := ctx.Value(sessionKey{}).(*useraccount.Session)
	return sess
}

// Middleware wires permission checks into chi's http.Handler chain.
type Middleware struct {
	enforcer *Enforcer
}

func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// RequirePermission enforces that the request's session carries permission,
// either via its role's static policy grant or one of its non-expired
// extra permissions. Must run after a handler has attached a session with
// WithSession (see internal/api's auth middleware).
func (m *Middleware) RequirePermission(permission Permission, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		if sess == nil {
			writeForbidden(w, "no authenticated session")
			return
		}

		for _, extra := range sess.Permissions {
			if extra == string(permission) {
				next.ServeHTTP(w, r)
				return
			}
		}

		allowed, err := m.enforcer.Allows(string(sess.Role), permission)
		if err != nil {
			logging.Error().Err(err).Msg("authorization enforcement failed")
			writeInternalError(w)
			return
		}
		if !allowed {
			writeForbidden(w, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeForbidden(w http.ResponseWriter, reason string) {
	writeAPIError(w, apierr.Forbidden(reason))
}

func writeInternalError(w http.ResponseWriter) {
	writeAPIError(w, apierr.New(apierr.KindInternal, "internal error"))
}

func writeAPIError(w http.ResponseWriter, err *apierr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	_, _ = w.Write([]byte(`{"success":false,"error":{"code":"` + string(err.Kind) + `","message":"` + err.Message + `"}}`))
}
