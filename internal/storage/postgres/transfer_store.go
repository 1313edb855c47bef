package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/storage"
)

// TransferStore implements storage.TransferStore using PostgreSQL.
type TransferStore struct {
	pool *Pool
}

// NewTransferStore creates a new TransferStore.
func NewTransferStore(pool *Pool) *TransferStore {
	return &TransferStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransferStore = (*TransferStore)(nil)

// Insert adds a synced transfer. Returns ErrDuplicateKey if (wallet, txid) exists.
func (s *TransferStore) Insert(ctx context.Context, t *domain.TransferRecord) error {
	if t == nil || t.TxID == "" || t.WalletAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO wallet_transfers (
			wallet_address, txid, from_address, to_address, amount_raw, amount, block_timestamp_ms, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		t.WalletAddress,
		t.TxID,
		t.FromAddress,
		t.ToAddress,
		t.AmountRaw,
		t.Amount.String(),
		t.BlockTimestampMs,
		t.SyncedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// InsertBulk adds multiple transfers, skipping rows that already exist.
// Returns the number of rows actually inserted.
func (s *TransferStore) InsertBulk(ctx context.Context, transfers []*domain.TransferRecord) (int, error) {
	query := `
		INSERT INTO wallet_transfers (
			wallet_address, txid, from_address, to_address, amount_raw, amount, block_timestamp_ms, synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (wallet_address, txid) DO NOTHING
	`

	inserted := 0
	for _, t := range transfers {
		if t == nil || t.TxID == "" || t.WalletAddress == "" {
			return inserted, storage.ErrInvalidInput
		}
		tag, err := s.pool.Exec(ctx, query,
			t.WalletAddress,
			t.TxID,
			t.FromAddress,
			t.ToAddress,
			t.AmountRaw,
			t.Amount.String(),
			t.BlockTimestampMs,
			t.SyncedAt,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert transfer batch row: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// GetByWallet retrieves all transfers for a wallet, newest first.
func (s *TransferStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.TransferRecord, error) {
	query := `
		SELECT wallet_address, txid, from_address, to_address, amount_raw, amount, block_timestamp_ms, synced_at
		FROM wallet_transfers
		WHERE wallet_address = $1
		ORDER BY block_timestamp_ms DESC, txid ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get transfers by wallet: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// GetByTxID retrieves the transfers recorded under a transaction id.
func (s *TransferStore) GetByTxID(ctx context.Context, txid string) ([]*domain.TransferRecord, error) {
	query := `
		SELECT wallet_address, txid, from_address, to_address, amount_raw, amount, block_timestamp_ms, synced_at
		FROM wallet_transfers
		WHERE lower(txid) = lower($1)
		ORDER BY wallet_address ASC
	`

	rows, err := s.pool.Query(ctx, query, txid)
	if err != nil {
		return nil, fmt.Errorf("get transfers by txid: %w", err)
	}
	defer rows.Close()

	return scanTransfers(rows)
}

// LatestBlockTimestamp returns the newest stored block timestamp for a wallet,
// or 0 when the wallet has no rows.
func (s *TransferStore) LatestBlockTimestamp(ctx context.Context, wallet string) (int64, error) {
	query := `
		SELECT COALESCE(MAX(block_timestamp_ms), 0)
		FROM wallet_transfers
		WHERE wallet_address = $1
	`

	var latest int64
	if err := s.pool.QueryRow(ctx, query, wallet).Scan(&latest); err != nil {
		return 0, fmt.Errorf("get latest block timestamp: %w", err)
	}
	return latest, nil
}

// scanTransfers scans multiple rows into a slice of TransferRecord.
func scanTransfers(rows pgx.Rows) ([]*domain.TransferRecord, error) {
	var transfers []*domain.TransferRecord

	for rows.Next() {
		var t domain.TransferRecord
		var amountStr string

		err := rows.Scan(
			&t.WalletAddress,
			&t.TxID,
			&t.FromAddress,
			&t.ToAddress,
			&t.AmountRaw,
			&amountStr,
			&t.BlockTimestampMs,
			&t.SyncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transfer row: %w", err)
		}

		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse transfer amount %q: %w", amountStr, err)
		}
		t.Amount = amount
		transfers = append(transfers, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer rows: %w", err)
	}

	return transfers, nil
}
