package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and single-run usage.
// State does not survive restarts; production monitors should use
// SQLiteStore.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Key]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[Key]*Record),
	}
}

// Record upserts an occurrence under the store lock.
func (s *MemoryStore) Record(_ context.Context, key Key, seenAt time.Time) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		rec = &Record{
			Contract:      key.Contract,
			Check:         key.Check,
			ErrorCode:     key.ErrorCode,
			FirstDetected: seenAt,
		}
		s.records[key] = rec
	}
	rec.Occurrences++
	rec.LastSeen = seenAt

	out := *rec
	return &out, nil
}

// Get returns a copy of the record for a key, or nil.
func (s *MemoryStore) Get(_ context.Context, key Key) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	out := *rec
	return &out, nil
}

// List returns copies of all records for a contract, ordered by first
// detection then key.
func (s *MemoryStore) List(_ context.Context, contract string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Record
	for key, rec := range s.records {
		if key.Contract != contract {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FirstDetected.Equal(out[j].FirstDetected) {
			return out[i].FirstDetected.Before(out[j].FirstDetected)
		}
		if out[i].Check != out[j].Check {
			return out[i].Check < out[j].Check
		}
		return out[i].ErrorCode < out[j].ErrorCode
	})
	return out, nil
}

// Clear removes the record for a key.
func (s *MemoryStore) Clear(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
