// Package history provides durable occurrence tracking for contract
// violations. It is the one place monitor state must survive process
// restarts: first-detected timestamps and occurrence counts are keyed by
// (contract, check, error code) and updated concurrently by independent
// contract-check tasks.
package history

import (
	"context"
	"fmt"
	"time"
)

// Record is the persisted occurrence state for one recurring violation.
type Record struct {
	// Contract is the contract the violation belongs to.
	Contract string

	// Check is the check type that produced it (freshness, drift, ...).
	Check string

	// ErrorCode is the violation's stable error code.
	ErrorCode string

	// FirstDetected is when this violation was first recorded.
	FirstDetected time.Time

	// LastSeen is when this violation was most recently recorded.
	LastSeen time.Time

	// Occurrences is how many times the violation has been recorded.
	Occurrences int
}

// Key identifies a record.
type Key struct {
	Contract  string
	Check     string
	ErrorCode string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Contract, k.Check, k.ErrorCode)
}

// Store persists violation occurrence state. Implementations must be safe
// for concurrent use: multiple contract-check tasks record violations
// independently and may complete at the same time.
type Store interface {
	// Record upserts an occurrence at the given instant and returns the
	// updated record. A new key gets FirstDetected = seenAt and
	// Occurrences = 1; an existing key keeps its FirstDetected and has
	// Occurrences incremented.
	Record(ctx context.Context, key Key, seenAt time.Time) (*Record, error)

	// Get returns the record for a key, or nil if none exists.
	Get(ctx context.Context, key Key) (*Record, error)

	// List returns all records for a contract, ordered by first detection.
	List(ctx context.Context, contract string) ([]*Record, error)

	// Clear removes the record for a key, used when a violation resolves.
	Clear(ctx context.Context, key Key) error

	// Close releases the store's resources.
	Close() error
}
