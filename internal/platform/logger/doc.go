// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package, configured once at startup
// from ServerConfig, and carries request-scoped loggers through context.Context.
package logger
