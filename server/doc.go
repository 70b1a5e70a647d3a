// Package server provides the HTTP server for extractd: Gin behind an h2c
// handler, so HTTP/1.1 and cleartext HTTP/2 share one port.
//
// The server follows the component pattern with lifecycle management,
// health endpoints and configurable middleware.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request ID generation and propagation into log context
//   - CORS: cross-origin resource sharing
//   - RequestLogger: per-request logging with latency, probes skipped
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /alive: liveness probe
//   - /info: build version and uptime
package server
