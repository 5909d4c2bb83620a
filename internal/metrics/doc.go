// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Statement counts, latencies and errors (via a pgx query tracer)
//   - Database connection pool stats
//   - Rows and schema changes per table sync
//
// Metrics are registered on a caller-supplied registry and can be written to a
// node_exporter textfile after each sync.
package metrics
