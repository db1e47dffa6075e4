// Package metrics provides Prometheus metrics for enforcement passes and
// the contract monitor. Metric structs register themselves against a
// caller-supplied registry so tests can use isolated registries.
package metrics
