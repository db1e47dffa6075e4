// Package contract implements run-time contract monitoring for live
// datasets.
//
// # Overview
//
// A Contract declares a service-level agreement for a dataset: freshness,
// schema, availability, and quality thresholds. The Monitor schedules an
// independent job per (contract, check) pair, each with its own interval
// and timeout, and converts every detected breach into a structured Event
// plus a metrics update. Occurrence tracking (first detection, recurrence
// count) is persisted through the history package so it survives monitor
// restarts.
//
// Contract lifecycle states are externally declared, never computed:
// retired contracts are not scheduled, deprecated contracts get a notice
// on every violation, and sunset contracts have warnings escalated to
// errors.
//
// Run-time violations are observability signals only; they never block an
// already-running pipeline. A transient connectivity failure during any
// check surfaces as an availability violation, and the scheduler keeps
// ticking regardless of individual check outcomes.
package contract
