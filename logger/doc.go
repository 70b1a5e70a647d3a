// Package logger provides structured logging for extractd using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("extract")
//	log.Info("Run started", logger.Fields("run_id", id, "rows", n))
package logger
