package clickhouse

import (
	"context"
	"fmt"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/storage"
)

// OutcomeEventStore implements storage.OutcomeEventStore using ClickHouse.
// The validation_events table is append-only; MergeTree does not enforce
// uniqueness and the pipeline never needs it here.
type OutcomeEventStore struct {
	conn *Conn
}

// NewOutcomeEventStore creates a new OutcomeEventStore.
func NewOutcomeEventStore(conn *Conn) *OutcomeEventStore {
	return &OutcomeEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.OutcomeEventStore = (*OutcomeEventStore)(nil)

// Insert appends one validation outcome event.
func (s *OutcomeEventStore) Insert(ctx context.Context, e *domain.OutcomeEvent) error {
	if e == nil || e.Status == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO validation_events (
			receipt_id, status, txid, discovered, duration_ms, occurred_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	discovered := uint8(0)
	if e.Discovered {
		discovered = 1
	}
	err = batch.Append(
		e.ReceiptID, string(e.Status), e.TxID,
		discovered, uint64(e.DurationMs), uint64(e.OccurredAt),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// CountByStatus returns outcome counts per status since the given timestamp (ms).
func (s *OutcomeEventStore) CountByStatus(ctx context.Context, sinceMs int64) (map[domain.Status]int64, error) {
	query := `
		SELECT status, count(*)
		FROM validation_events
		WHERE occurred_at >= ?
		GROUP BY status
	`

	rows, err := s.conn.Query(ctx, query, uint64(sinceMs))
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int64)
	for rows.Next() {
		var statusStr string
		var count uint64
		if err := rows.Scan(&statusStr, &count); err != nil {
			return nil, fmt.Errorf("scan status count row: %w", err)
		}
		counts[domain.Status(statusStr)] = int64(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status count rows: %w", err)
	}

	return counts, nil
}
