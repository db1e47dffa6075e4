package contract

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"lakefront-data/warden/pkg/governance"
	"lakefront-data/warden/pkg/history"
)

// captureEmitter records every emitted event.
type captureEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (e *captureEmitter) Emit(_ context.Context, ev Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

func (e *captureEmitter) all() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Event(nil), e.events...)
}

func newTestMonitor(t *testing.T, reader DatasetReader, quality QualityRunner) (*Monitor, *captureEmitter, history.Store) {
	t.Helper()
	emitter := &captureEmitter{}
	store := history.NewMemoryStore()
	m, err := NewMonitor(MonitorConfig{}, reader, quality, emitter, store, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m, emitter, store
}

func staleReader() *fakeReader {
	return &fakeReader{maxTS: time.Now().Add(-48 * time.Hour)}
}

func TestNewMonitor_RequiredDependencies(t *testing.T) {
	if _, err := NewMonitor(MonitorConfig{}, nil, nil, nil, history.NewMemoryStore(), nil, nil); err == nil {
		t.Error("expected an error for a nil reader")
	}
	if _, err := NewMonitor(MonitorConfig{}, &fakeReader{}, nil, nil, nil, nil, nil); err == nil {
		t.Error("expected an error for a nil store")
	}
}

func TestMonitor_StartRejectsInvalidContracts(t *testing.T) {
	m, _, _ := newTestMonitor(t, &fakeReader{}, nil)

	err := m.Start(context.Background(), []Contract{{Name: "broken"}})
	if err == nil || !strings.Contains(err.Error(), "invalid contract") {
		t.Fatalf("error = %v, want invalid contract", err)
	}
}

func TestMonitor_StartRejectsQualityWithoutRunner(t *testing.T) {
	m, _, _ := newTestMonitor(t, &fakeReader{}, nil)

	err := m.Start(context.Background(), []Contract{{
		Name: "c", Dataset: "d", Quality: &QualitySpec{MinScore: 0.9},
	}})
	if err == nil || !strings.Contains(err.Error(), "quality runner") {
		t.Fatalf("error = %v, want quality runner error", err)
	}
}

func TestMonitor_StartTwice(t *testing.T) {
	m, _, _ := newTestMonitor(t, &fakeReader{}, nil)
	contracts := []Contract{*freshnessContract(time.Hour)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx, contracts); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	if err := m.Start(ctx, contracts); err == nil {
		t.Error("second Start should fail while running")
	}
}

func TestMonitor_RunAllChecksEmitsViolations(t *testing.T) {
	m, emitter, _ := newTestMonitor(t, staleReader(), nil)
	m.contracts = []Contract{*freshnessContract(time.Hour)}

	m.RunAllChecks()

	events := emitter.all()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Contract != "orders_daily" {
		t.Errorf("event contract = %q, want orders_daily", ev.Contract)
	}
	if ev.Check != CheckFreshness {
		t.Errorf("event check = %q, want freshness", ev.Check)
	}
	if ev.Violation.ErrorCode != governance.CodeFreshnessBreach {
		t.Errorf("error code = %q, want %q", ev.Violation.ErrorCode, governance.CodeFreshnessBreach)
	}
	if ev.ID == "" {
		t.Error("event ID should be assigned")
	}
}

func TestMonitor_OccurrenceTracking(t *testing.T) {
	m, emitter, store := newTestMonitor(t, staleReader(), nil)
	m.contracts = []Contract{*freshnessContract(time.Hour)}

	m.RunAllChecks()
	m.RunAllChecks()
	m.RunAllChecks()

	events := emitter.all()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	last := events[2].Violation
	if last.Occurrences != 3 {
		t.Errorf("occurrences = %d, want 3", last.Occurrences)
	}
	if !last.FirstDetected.Equal(events[0].Violation.FirstDetected) {
		t.Errorf("first detected drifted: %v vs %v", last.FirstDetected, events[0].Violation.FirstDetected)
	}

	rec, err := store.Get(context.Background(), history.Key{
		Contract: "orders_daily", Check: "freshness", ErrorCode: governance.CodeFreshnessBreach,
	})
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Occurrences != 3 {
		t.Errorf("store record = %+v, want 3 occurrences", rec)
	}
}

func TestMonitor_HistoryFailureStillEmits(t *testing.T) {
	emitter := &captureEmitter{}
	m, err := NewMonitor(MonitorConfig{}, staleReader(), nil, emitter, failingStore{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	m.contracts = []Contract{*freshnessContract(time.Hour)}

	m.RunAllChecks()
	if len(emitter.all()) != 1 {
		t.Fatal("a history-store failure must not swallow the event")
	}
}

type failingStore struct{}

func (failingStore) Record(context.Context, history.Key, time.Time) (*history.Record, error) {
	return nil, errors.New("disk full")
}
func (failingStore) Get(context.Context, history.Key) (*history.Record, error) { return nil, nil }
func (failingStore) List(context.Context, string) ([]*history.Record, error)   { return nil, nil }
func (failingStore) Clear(context.Context, history.Key) error                  { return nil }
func (failingStore) Close() error                                              { return nil }

func TestMonitor_RetiredContractsAreSkipped(t *testing.T) {
	m, emitter, _ := newTestMonitor(t, staleReader(), nil)
	retired := *freshnessContract(time.Hour)
	retired.State = StateRetired
	m.contracts = []Contract{retired}

	m.RunAllChecks()
	if events := emitter.all(); len(events) != 0 {
		t.Fatalf("retired contract should not run checks, got %d events", len(events))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx, []Contract{retired}); err != nil {
		t.Fatal(err)
	}
	m.Stop()
}

func TestMonitor_LifecycleAdjustments(t *testing.T) {
	base := governance.Violation{
		ErrorCode: governance.CodeSchemaDrift,
		Severity:  governance.SeverityWarning,
		Message:   "column drift",
	}

	tests := []struct {
		state        LifecycleState
		wantSeverity governance.Severity
		wantSuffix   string
	}{
		{state: StateActive, wantSeverity: governance.SeverityWarning},
		{state: StateDeprecated, wantSeverity: governance.SeverityWarning, wantSuffix: "deprecated"},
		{state: StateSunset, wantSeverity: governance.SeverityError, wantSuffix: "sunset"},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			c := &Contract{Name: "c", Dataset: "d", State: tt.state}
			got := applyLifecycle(c, base)
			if got.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", got.Severity, tt.wantSeverity)
			}
			if tt.wantSuffix != "" && !strings.Contains(got.Message, tt.wantSuffix) {
				t.Errorf("message %q should mention %q", got.Message, tt.wantSuffix)
			}
		})
	}

	// Errors stay errors under sunset.
	errViolation := base
	errViolation.Severity = governance.SeverityError
	got := applyLifecycle(&Contract{State: StateSunset}, errViolation)
	if got.Severity != governance.SeverityError {
		t.Errorf("error severity must be preserved, got %q", got.Severity)
	}
}

func TestMonitor_NoEmissionAfterStop(t *testing.T) {
	m, emitter, _ := newTestMonitor(t, staleReader(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx, []Contract{*freshnessContract(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	m.Stop()

	// The base context is cancelled; a late tick must drop its results.
	m.RunAllChecks()
	if events := emitter.all(); len(events) != 0 {
		t.Fatalf("no events may be emitted after shutdown, got %d", len(events))
	}
}

func TestMonitor_StopIsIdempotent(t *testing.T) {
	m, _, _ := newTestMonitor(t, &fakeReader{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx, []Contract{*freshnessContract(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	m.Stop()
	m.Stop()
}

func TestMonitor_Reload(t *testing.T) {
	m, emitter, _ := newTestMonitor(t, staleReader(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := m.Start(ctx, []Contract{*freshnessContract(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	replacement := *freshnessContract(time.Hour)
	replacement.Name = "orders_hourly"
	if err := m.Reload(ctx, []Contract{replacement}); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	m.RunAllChecks()
	events := emitter.all()
	if len(events) != 1 || events[0].Contract != "orders_hourly" {
		t.Fatalf("reload should replace the contract set, got %+v", events)
	}
}
