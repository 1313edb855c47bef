package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/storage"
)

// ReceiptStore implements storage.ReceiptStore using PostgreSQL.
type ReceiptStore struct {
	pool *Pool
}

// NewReceiptStore creates a new ReceiptStore.
func NewReceiptStore(pool *Pool) *ReceiptStore {
	return &ReceiptStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReceiptStore = (*ReceiptStore)(nil)

// Insert adds a validation outcome. Returns ErrDuplicateKey if receipt_id exists.
func (s *ReceiptStore) Insert(ctx context.Context, r *domain.ReceiptRecord) error {
	if r == nil || r.ReceiptID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO receipt_validations (
			receipt_id, status, txid, to_address, amount, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		r.ReceiptID,
		string(r.Status),
		r.TxID,
		r.ToAddress,
		r.Amount,
		r.Reason,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert receipt validation: %w", err)
	}
	return nil
}

// GetByID retrieves an outcome by receipt id. Returns ErrNotFound if not exists.
func (s *ReceiptStore) GetByID(ctx context.Context, receiptID string) (*domain.ReceiptRecord, error) {
	query := `
		SELECT receipt_id, status, txid, to_address, amount, reason, created_at
		FROM receipt_validations
		WHERE receipt_id = $1
	`

	row := s.pool.QueryRow(ctx, query, receiptID)
	r, err := scanReceipt(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get receipt by id: %w", err)
	}
	return r, nil
}

// GetByStatus retrieves all outcomes with the given status.
func (s *ReceiptStore) GetByStatus(ctx context.Context, status domain.Status) ([]*domain.ReceiptRecord, error) {
	query := `
		SELECT receipt_id, status, txid, to_address, amount, reason, created_at
		FROM receipt_validations
		WHERE status = $1
		ORDER BY created_at ASC, receipt_id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("get receipts by status: %w", err)
	}
	defer rows.Close()

	return scanReceipts(rows)
}

// scanReceipt scans a single row into a ReceiptRecord.
func scanReceipt(row pgx.Row) (*domain.ReceiptRecord, error) {
	var r domain.ReceiptRecord
	var statusStr string

	err := row.Scan(
		&r.ReceiptID,
		&statusStr,
		&r.TxID,
		&r.ToAddress,
		&r.Amount,
		&r.Reason,
		&r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = domain.Status(statusStr)
	return &r, nil
}

// scanReceipts scans multiple rows into a slice of ReceiptRecord.
func scanReceipts(rows pgx.Rows) ([]*domain.ReceiptRecord, error) {
	var records []*domain.ReceiptRecord

	for rows.Next() {
		var r domain.ReceiptRecord
		var statusStr string

		err := rows.Scan(
			&r.ReceiptID,
			&statusStr,
			&r.TxID,
			&r.ToAddress,
			&r.Amount,
			&r.Reason,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan receipt row: %w", err)
		}

		r.Status = domain.Status(statusStr)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipt rows: %w", err)
	}

	return records, nil
}
