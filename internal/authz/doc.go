// Package authz checks role and per-user permissions against a closed
// permission set, using a casbin enforcer loaded from an embedded static
// policy (two roles, no dynamic role assignment — role lives on the user
// row in internal/useraccount). RequirePermission is the per-route
// middleware: a required permission passes if it's granted by the
// session's role or listed among its non-expired extra permissions.
package authz
