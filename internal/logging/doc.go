// Package logging builds the slog loggers used across the daemon and CLI
// and standardizes the structured field names attached to log records.
package logging
