package contract

import (
	"context"
	"fmt"
	"time"

	"lakefront-data/warden/pkg/governance"
)

// runFreshnessCheck queries the dataset's newest timestamp and compares
// its age against the contract threshold. Stateless: one query per tick.
// A query failure is reported as an availability violation, never as a
// monitor error.
func runFreshnessCheck(ctx context.Context, reader DatasetReader, c *Contract, now time.Time) ([]governance.Violation, time.Duration) {
	maxTS, err := reader.MaxTimestamp(ctx, c.Dataset, c.Freshness.TimestampColumn)
	if err != nil {
		return []governance.Violation{unavailableViolation(c, fmt.Sprintf("freshness query failed: %v", err))}, 0
	}

	age := now.Sub(maxTS)
	if age <= c.Freshness.MaxAge {
		return nil, age
	}

	return []governance.Violation{{
		ErrorCode:  governance.CodeFreshnessBreach,
		PolicyType: governance.PolicyTypeCustom,
		ModelName:  c.Dataset,
		Message: fmt.Sprintf("dataset '%s' is %s old, exceeding the contract freshness threshold of %s",
			c.Dataset, age.Round(time.Minute), c.Freshness.MaxAge),
		Suggestion: "Check the upstream pipeline schedule and recent run outcomes",
		Severity:   governance.SeverityError,
	}}, age
}

// unavailableViolation converts a transient external failure into an
// availability violation.
func unavailableViolation(c *Contract, detail string) governance.Violation {
	return governance.Violation{
		ErrorCode:  governance.CodeUnavailable,
		PolicyType: governance.PolicyTypeCustom,
		ModelName:  c.Dataset,
		Message:    fmt.Sprintf("dataset '%s' is unreachable: %s", c.Dataset, detail),
		Suggestion: "Verify the dataset exists and the backend connection is healthy",
		Severity:   governance.SeverityError,
	}
}
