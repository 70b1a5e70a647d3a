// Package errors provides the structured error type used across extractd.
// An AppError carries a machine-readable code, a client-safe message, the
// HTTP status to answer with, and an optional wrapped cause.
package errors
