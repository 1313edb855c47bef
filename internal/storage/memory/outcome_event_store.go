package memory

import (
	"context"
	"sync"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/storage"
)

// OutcomeEventStore is an in-memory implementation of storage.OutcomeEventStore.
// Used by tests and by deployments that run without ClickHouse.
type OutcomeEventStore struct {
	mu     sync.RWMutex
	events []*domain.OutcomeEvent
}

// NewOutcomeEventStore creates a new in-memory outcome event store.
func NewOutcomeEventStore() *OutcomeEventStore {
	return &OutcomeEventStore{}
}

// Insert appends one validation outcome event.
func (s *OutcomeEventStore) Insert(_ context.Context, e *domain.OutcomeEvent) error {
	if e == nil || e.Status == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventCopy := *e
	s.events = append(s.events, &eventCopy)
	return nil
}

// CountByStatus returns outcome counts per status since the given timestamp (ms).
func (s *OutcomeEventStore) CountByStatus(_ context.Context, sinceMs int64) (map[domain.Status]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.Status]int64)
	for _, e := range s.events {
		if e.OccurredAt >= sinceMs {
			counts[e.Status]++
		}
	}
	return counts, nil
}

// Verify interface compliance at compile time.
var _ storage.OutcomeEventStore = (*OutcomeEventStore)(nil)
