// Package logger provides structured logging for resilkit applications
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component- and dependency-scoped loggers with
// structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("executor").WithDependency("payments")
//	log.Info("call succeeded", logger.Fields(logger.FieldAttempt, 2))
package logger
