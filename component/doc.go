// Package component defines the lifecycle contract shared by extractd's
// long-lived parts (the HTTP server, the extraction coordinator, telemetry
// providers) and the registry that starts them in order and stops them in
// reverse.
package component
