// Package wsbroker pushes sync events to a user's other devices over
// WebSocket. Each user gets one single-writer goroutine so the append order
// internal/sync assigns is preserved on the wire.
package wsbroker
