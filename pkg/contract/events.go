package contract

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lakefront-data/warden/pkg/governance"
)

// Event is a structured violation event suitable for ingestion by an
// external lineage/event system. The transport is the collaborator's
// concern; the monitor only produces the payload.
type Event struct {
	// ID is a unique event identifier.
	ID string `json:"id"`

	// Contract and ContractVersion identify the breached contract.
	Contract        string `json:"contract"`
	ContractVersion string `json:"contract_version"`

	// Dataset is the physical dataset checked.
	Dataset string `json:"dataset"`

	// Check is the check family that produced the violation.
	Check CheckType `json:"check"`

	// State is the contract's lifecycle state at emission time.
	State LifecycleState `json:"state"`

	// Violation is the underlying violation.
	Violation governance.Violation `json:"violation"`

	// EmittedAt is when the event was produced.
	EmittedAt time.Time `json:"emitted_at"`
}

// Emitter consumes violation events. Implementations forward them to the
// platform's lineage/event system.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// NewEvent builds an event for a violation detected on a contract.
func NewEvent(c *Contract, check CheckType, v governance.Violation) Event {
	return Event{
		ID:              uuid.NewString(),
		Contract:        c.Name,
		ContractVersion: c.Version,
		Dataset:         c.Dataset,
		Check:           check,
		State:           c.EffectiveState(),
		Violation:       v,
		EmittedAt:       time.Now().UTC(),
	}
}

// LogEmitter writes events to the structured log. It is the default
// emitter when no event-system integration is wired in.
type LogEmitter struct {
	logger *slog.Logger
}

// NewLogEmitter creates an emitter that logs events.
func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEmitter{logger: logger.With("component", "contract.events")}
}

// Emit logs the event at a level matching the violation severity.
func (e *LogEmitter) Emit(_ context.Context, event Event) error {
	attrs := []any{
		"event_id", event.ID,
		"contract", event.Contract,
		"contract_version", event.ContractVersion,
		"dataset", event.Dataset,
		"check", string(event.Check),
		"state", string(event.State),
		"error_code", event.Violation.ErrorCode,
		"message", event.Violation.Message,
		"occurrences", event.Violation.Occurrences,
	}
	if event.Violation.Severity == governance.SeverityError {
		e.logger.Error("contract violation", attrs...)
	} else {
		e.logger.Warn("contract violation", attrs...)
	}
	return nil
}
