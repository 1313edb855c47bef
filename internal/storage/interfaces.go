package storage

import (
	"context"

	"tron-receipt-validator/internal/domain"
)

// ReceiptStore provides access to receipt_validations storage.
type ReceiptStore interface {
	// Insert adds a validation outcome. Returns ErrDuplicateKey if
	// receipt_id exists.
	Insert(ctx context.Context, r *domain.ReceiptRecord) error

	// GetByID retrieves an outcome by receipt id. Returns ErrNotFound if
	// not exists.
	GetByID(ctx context.Context, receiptID string) (*domain.ReceiptRecord, error)

	// GetByStatus retrieves all outcomes with the given status, ordered by
	// created_at ASC.
	GetByStatus(ctx context.Context, status domain.Status) ([]*domain.ReceiptRecord, error)
}

// TransferStore provides access to wallet_transfers storage.
type TransferStore interface {
	// Insert adds a synced transfer. Returns ErrDuplicateKey if
	// (wallet_address, txid) exists.
	Insert(ctx context.Context, t *domain.TransferRecord) error

	// InsertBulk adds multiple transfers, skipping rows that already exist.
	// Returns the number of rows actually inserted.
	InsertBulk(ctx context.Context, transfers []*domain.TransferRecord) (int, error)

	// GetByWallet retrieves all transfers for a wallet, ordered by block
	// time DESC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.TransferRecord, error)

	// GetByTxID retrieves the transfers recorded under a transaction id.
	GetByTxID(ctx context.Context, txid string) ([]*domain.TransferRecord, error)

	// LatestBlockTimestamp returns the newest block timestamp stored for a
	// wallet, or 0 when the wallet has no rows. Used for incremental sync.
	LatestBlockTimestamp(ctx context.Context, wallet string) (int64, error)
}

// OutcomeEventStore provides access to the validation_events analytics log.
type OutcomeEventStore interface {
	// Insert appends one validation outcome event.
	Insert(ctx context.Context, e *domain.OutcomeEvent) error

	// CountByStatus returns outcome counts per status since the given
	// timestamp (ms).
	CountByStatus(ctx context.Context, sinceMs int64) (map[domain.Status]int64, error)
}
