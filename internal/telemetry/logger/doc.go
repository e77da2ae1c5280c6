// Package logger provides structured logging for medrec.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, handler setup, dynamic level
//   - context.go: logger and operation name carried in context.Context
//   - redact.go: masking of patient data and secrets in attributes
//
// Patient identifying attributes (keys containing "name", "diagnosis" or
// "doctor") are masked unless Config.ShowPHI is set. Secret attributes
// are always redacted. Output goes to stderr so the menu on stdout stays
// readable.
package logger
