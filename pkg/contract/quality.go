package contract

import (
	"context"
	"fmt"

	"lakefront-data/warden/pkg/governance"
)

// runQualityCheck delegates to the external quality tooling and compares
// the aggregated score against the contract minimum. A failed invocation
// is an availability violation; a passing invocation with a low score is
// a quality violation.
func runQualityCheck(ctx context.Context, runner QualityRunner, c *Contract) ([]governance.Violation, float64) {
	result, err := runner.RunCheck(ctx, c.Dataset)
	if err != nil {
		return []governance.Violation{unavailableViolation(c, fmt.Sprintf("quality check invocation failed: %v", err))}, 0
	}

	if result.Passed && result.Score >= c.Quality.MinScore {
		return nil, result.Score
	}

	message := fmt.Sprintf("dataset '%s' quality score %.2f is below the contract minimum %.2f",
		c.Dataset, result.Score, c.Quality.MinScore)
	if !result.Passed {
		message = fmt.Sprintf("dataset '%s' failed its quality checks (score %.2f)", c.Dataset, result.Score)
	}
	if result.Detail != "" {
		message += ": " + result.Detail
	}

	return []governance.Violation{{
		ErrorCode:  governance.CodeQualityBelowTarget,
		PolicyType: governance.PolicyTypeCustom,
		ModelName:  c.Dataset,
		Message:    message,
		Suggestion: "Inspect the failing quality checks and the most recent loads",
		Severity:   governance.SeverityError,
	}}, result.Score
}
