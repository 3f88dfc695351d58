// Package logger provides structured logging built on zerolog.
//
// Loggers are component-scoped and take structured fields as a map:
//
//	log := logger.GetGlobalLogger().WithComponent("eureka")
//	log.Info("registered", logger.Fields("app", "billing"))
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
package logger
