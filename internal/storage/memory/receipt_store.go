package memory

import (
	"context"
	"sort"
	"sync"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/storage"
)

// ReceiptStore is an in-memory implementation of storage.ReceiptStore.
type ReceiptStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ReceiptRecord // keyed by receipt_id
}

// NewReceiptStore creates a new in-memory receipt store.
func NewReceiptStore() *ReceiptStore {
	return &ReceiptStore{
		data: make(map[string]*domain.ReceiptRecord),
	}
}

// Insert adds a validation outcome. Returns ErrDuplicateKey if receipt_id exists.
func (s *ReceiptStore) Insert(_ context.Context, r *domain.ReceiptRecord) error {
	if r == nil || r.ReceiptID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.ReceiptID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	recordCopy := *r
	s.data[r.ReceiptID] = &recordCopy
	return nil
}

// GetByID retrieves an outcome by receipt id. Returns ErrNotFound if not exists.
func (s *ReceiptStore) GetByID(_ context.Context, receiptID string) (*domain.ReceiptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[receiptID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	recordCopy := *r
	return &recordCopy, nil
}

// GetByStatus retrieves all outcomes with the given status.
func (s *ReceiptStore) GetByStatus(_ context.Context, status domain.Status) ([]*domain.ReceiptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ReceiptRecord
	for _, r := range s.data {
		if r.Status == status {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	// Sort by created_at ASC
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt < result[j].CreatedAt
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ReceiptStore = (*ReceiptStore)(nil)
