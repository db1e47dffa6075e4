package contract

import (
	"context"
	"time"
)

// LiveColumn is one column observed on the live dataset.
type LiveColumn struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// DatasetReader is the narrow interface the monitor needs from the
// platform's catalog/warehouse backend. The monitor depends only on this
// method set, never on a live plugin instance, so it is testable without
// any backend running.
type DatasetReader interface {
	// MaxTimestamp returns the newest value of the given timestamp column.
	MaxTimestamp(ctx context.Context, dataset, column string) (time.Time, error)

	// Schema returns the live schema of the dataset.
	Schema(ctx context.Context, dataset string) ([]LiveColumn, error)

	// Ping probes connectivity to the dataset.
	Ping(ctx context.Context, dataset string) error
}

// QualityResult is the outcome of a delegated quality-check invocation.
type QualityResult struct {
	// Passed reports whether the external check suite passed.
	Passed bool `json:"passed"`

	// Score is the numeric quality score in [0, 1].
	Score float64 `json:"score"`

	// Detail is an optional human-readable summary from the checker.
	Detail string `json:"detail,omitempty"`
}

// QualityRunner invokes the platform's external quality-check tooling for
// a dataset. The monitor only aggregates its pass/fail and score.
type QualityRunner interface {
	RunCheck(ctx context.Context, dataset string) (QualityResult, error)
}
