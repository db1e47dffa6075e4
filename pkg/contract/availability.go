package contract

import (
	"context"
	"fmt"

	"lakefront-data/warden/pkg/governance"
)

// runAvailabilityCheck probes connectivity to the dataset. The probe
// carries its own short timeout, set by the monitor; the check itself is
// a single call.
func runAvailabilityCheck(ctx context.Context, reader DatasetReader, c *Contract) ([]governance.Violation, bool) {
	if err := reader.Ping(ctx, c.Dataset); err != nil {
		return []governance.Violation{unavailableViolation(c, fmt.Sprintf("connectivity probe failed: %v", err))}, false
	}
	return nil, true
}
