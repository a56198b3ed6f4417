/*
Package services provides suture.Service wrappers for catalog server components.

This package adapts existing application components to the suture v4 supervision
model, translating the ListenAndServe/Shutdown lifecycle into suture's
context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation (ListenAndServe/Shutdown to Serve pattern)
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

Not every long-running component in this repo goes through this package: the
scheduler implements suture.Service directly, and the bandwidth tracker and
WebSocket broker are run without suture supervision at all since neither has
a restart-worthy lifecycle (see cmd/server/main.go).

# Usage Example

Creating and registering services:

	import (
	    "net/http"
	    "time"

	    "github.com/pezzottify/catalog-server/internal/supervisor"
	    "github.com/pezzottify/catalog-server/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    httpSvc := services.NewHTTPServerService(server, 30*time.Second)
	    tree.AddAPIService(httpSvc)

	    tree.Serve(ctx)
	}

# Lifecycle Patterns

ListenAndServe Pattern:

	type Listener interface {
	    ListenAndServe() error
	    Shutdown(ctx context.Context) error
	}

	// Wrapped as:
	func (s *Service) Serve(ctx context.Context) error {
	    go s.server.ListenAndServe()
	    <-ctx.Done()
	    return s.server.Shutdown(shutdownCtx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *HTTPServerService) String() string {
	    return "http-server"
	}

Suture uses this for log messages:

	INFO http-server: starting
	INFO http-server: stopped
	ERROR http-server: restarting after failure

# Testing

Services can be tested with mock components:

	type MockServer struct {
	    started  bool
	    shutdown bool
	}

	func (m *MockServer) ListenAndServe() error {
	    m.started = true
	    <-time.After(time.Hour) // Block until shutdown
	    return nil
	}

	func (m *MockServer) Shutdown(ctx context.Context) error {
	    m.shutdown = true
	    return nil
	}

	func TestHTTPService(t *testing.T) {
	    mock := &MockServer{}
	    svc := services.NewHTTPServerService(mock, time.Second)

	    ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	    defer cancel()

	    svc.Serve(ctx)

	    if !mock.started { t.Error("server not started") }
	    if !mock.shutdown { t.Error("server not shutdown") }
	}

# Thread Safety

All service wrappers are safe for concurrent use:
  - State is protected by mutexes where needed
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/scheduler: background job runner wrapped as a service
*/
package services
