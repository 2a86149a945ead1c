// Package logger sets up structured logging with log/slog.
//
// Servers log JSON to stdout. The CLI can ask for text output. Request-scoped
// loggers travel in the context via WithLogger and FromContext.
package logger
