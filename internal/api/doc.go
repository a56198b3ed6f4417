// Package api wires the HTTP surface: a chi router mounting the auth,
// content, user, admin, sync and websocket route groups behind the
// request-scoped middleware stack, and the handlers that translate HTTP
// requests into calls against the catalog, useraccount, sync, search and
// scheduler packages.
//
// Every handler writes its response through the shared envelope in
// response.go so a client can always branch on {"success": bool}.
package api
