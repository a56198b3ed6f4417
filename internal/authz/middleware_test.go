package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pezzottify/catalog-server/internal/useraccount"
)

func newTestMiddleware(t *testing.T) *Middleware {
	t.Helper()
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	return NewMiddleware(e)
}

func TestRequirePermissionAllowsRoleGrant(t *testing.T) {
	m := newTestMiddleware(t)
	called := false
	h := m.RequirePermission(AccessCatalog, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req = req.WithContext(WithSession(req.Context(), &useraccount.Session{Role: useraccount.RoleRegular}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected handler to run, called=%v code=%d", called, rec.Code)
	}
}

func TestRequirePermissionDeniesMissingGrant(t *testing.T) {
	m := newTestMiddleware(t)
	h := m.RequirePermission(ServerAdmin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(WithSession(req.Context(), &useraccount.Session{Role: useraccount.RoleRegular}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequirePermissionAllowsExtraGrant(t *testing.T) {
	m := newTestMiddleware(t)
	called := false
	h := m.RequirePermission(ServerAdmin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	sess := &useraccount.Session{Role: useraccount.RoleRegular, Permissions: []string{"ServerAdmin"}}
	req = req.WithContext(WithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected extra permission grant to allow the request")
	}
}

func TestRequirePermissionRejectsNoSession(t *testing.T) {
	m := newTestMiddleware(t)
	h := m.RequirePermission(AccessCatalog, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unauthenticated request, got %d", rec.Code)
	}
}
