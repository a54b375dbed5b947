// Package metrics provides Prometheus metrics for the catalogue core:
// store operation counts and match engine query counts, latency, and result
// sizes. The metrics value is optional everywhere it is accepted; a nil
// *Metrics records nothing.
package metrics
