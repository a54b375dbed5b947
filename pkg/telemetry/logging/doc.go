// Package logging configures structured logging for the catalogue on top
// of log/slog: parsed level and format, optional source locations, and a
// Setup helper that installs the configured logger as the process default
// so components tagging themselves with slog.Default().With("component",
// ...) all write through it.
package logging
