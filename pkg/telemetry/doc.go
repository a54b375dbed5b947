// Package telemetry groups the observability concerns of the catalogue.
//
//   - logging: structured slog loggers, JSON or text
//   - metrics: Prometheus metrics for store operations and match queries
package telemetry
