package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/storage"
)

// TransferStore is an in-memory implementation of storage.TransferStore.
type TransferStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TransferRecord // keyed by wallet|txid
}

// NewTransferStore creates a new in-memory transfer store.
func NewTransferStore() *TransferStore {
	return &TransferStore{
		data: make(map[string]*domain.TransferRecord),
	}
}

func transferKey(wallet, txid string) string {
	return wallet + "|" + strings.ToLower(txid)
}

// Insert adds a synced transfer. Returns ErrDuplicateKey if (wallet, txid) exists.
func (s *TransferStore) Insert(_ context.Context, t *domain.TransferRecord) error {
	if t == nil || t.TxID == "" || t.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := transferKey(t.WalletAddress, t.TxID)
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	recordCopy := *t
	s.data[key] = &recordCopy
	return nil
}

// InsertBulk adds multiple transfers, skipping rows that already exist.
// Returns the number of rows actually inserted.
func (s *TransferStore) InsertBulk(_ context.Context, transfers []*domain.TransferRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, t := range transfers {
		if t == nil || t.TxID == "" || t.WalletAddress == "" {
			return inserted, storage.ErrInvalidInput
		}
		key := transferKey(t.WalletAddress, t.TxID)
		if _, exists := s.data[key]; exists {
			continue
		}
		recordCopy := *t
		s.data[key] = &recordCopy
		inserted++
	}
	return inserted, nil
}

// GetByWallet retrieves all transfers for a wallet, newest first.
func (s *TransferStore) GetByWallet(_ context.Context, wallet string) ([]*domain.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TransferRecord
	for _, t := range s.data {
		if t.WalletAddress == wallet {
			recordCopy := *t
			result = append(result, &recordCopy)
		}
	}

	// Sort by block time DESC
	sort.Slice(result, func(i, j int) bool {
		return result[i].BlockTimestampMs > result[j].BlockTimestampMs
	})

	return result, nil
}

// GetByTxID retrieves the transfers recorded under a transaction id.
func (s *TransferStore) GetByTxID(_ context.Context, txid string) ([]*domain.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lowered := strings.ToLower(txid)
	var result []*domain.TransferRecord
	for _, t := range s.data {
		if strings.ToLower(t.TxID) == lowered {
			recordCopy := *t
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].WalletAddress < result[j].WalletAddress
	})

	return result, nil
}

// LatestBlockTimestamp returns the newest stored block timestamp for a wallet,
// or 0 when the wallet has no rows.
func (s *TransferStore) LatestBlockTimestamp(_ context.Context, wallet string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest int64
	for _, t := range s.data {
		if t.WalletAddress == wallet && t.BlockTimestampMs > latest {
			latest = t.BlockTimestampMs
		}
	}
	return latest, nil
}

// Verify interface compliance at compile time.
var _ storage.TransferStore = (*TransferStore)(nil)
