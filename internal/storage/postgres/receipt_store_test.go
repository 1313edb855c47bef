package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/storage"
)

func TestReceiptStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewReceiptStore(pool)
	ctx := context.Background()

	record := &domain.ReceiptRecord{
		ReceiptID: "rcpt-001",
		Status:    domain.StatusConfirmed,
		TxID:      ptr("b3a1c5d7e9f102030405060708090a0b0c0d0e0f10111213141516171819aabb"),
		ToAddress: ptr("TWd4WrZ9wn84f5x1hZhL4DHvk738ns5jwb"),
		Amount:    ptr("150"),
		Reason:    nil,
		CreatedAt: 1730800065000,
	}

	err := store.Insert(ctx, record)
	require.NoError(t, err)

	retrieved, err := store.GetByID(ctx, "rcpt-001")
	require.NoError(t, err)

	assert.Equal(t, record.ReceiptID, retrieved.ReceiptID)
	assert.Equal(t, record.Status, retrieved.Status)
	assert.Equal(t, *record.TxID, *retrieved.TxID)
	assert.Equal(t, *record.ToAddress, *retrieved.ToAddress)
	assert.Equal(t, *record.Amount, *retrieved.Amount)
	assert.Nil(t, retrieved.Reason)
	assert.Equal(t, record.CreatedAt, retrieved.CreatedAt)
}

func TestReceiptStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewReceiptStore(pool)
	ctx := context.Background()

	record := &domain.ReceiptRecord{
		ReceiptID: "rcpt-dup",
		Status:    domain.StatusChainRejected,
		Reason:    ptr("transaction not found on chain"),
		CreatedAt: 1730800065000,
	}

	err := store.Insert(ctx, record)
	require.NoError(t, err)

	err = store.Insert(ctx, record)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestReceiptStore_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewReceiptStore(pool)

	_, err := store.GetByID(context.Background(), "nonexistent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReceiptStore_NullableFields(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewReceiptStore(pool)
	ctx := context.Background()

	// OCR_FAILURE rows carry no txid, recipient or amount.
	record := &domain.ReceiptRecord{
		ReceiptID: "rcpt-ocr",
		Status:    domain.StatusOCRFailure,
		Reason:    ptr("claim missing recipient and amount"),
		CreatedAt: 1730800065000,
	}

	err := store.Insert(ctx, record)
	require.NoError(t, err)

	retrieved, err := store.GetByID(ctx, "rcpt-ocr")
	require.NoError(t, err)

	assert.Nil(t, retrieved.TxID)
	assert.Nil(t, retrieved.ToAddress)
	assert.Nil(t, retrieved.Amount)
	require.NotNil(t, retrieved.Reason)
	assert.Equal(t, "claim missing recipient and amount", *retrieved.Reason)
}

func TestReceiptStore_GetByStatus(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewReceiptStore(pool)
	ctx := context.Background()

	records := []*domain.ReceiptRecord{
		{ReceiptID: "rcpt-c2", Status: domain.StatusConfirmed, CreatedAt: 2000},
		{ReceiptID: "rcpt-c1", Status: domain.StatusConfirmed, CreatedAt: 1000},
		{ReceiptID: "rcpt-m1", Status: domain.StatusManualRequired, CreatedAt: 1500},
	}
	for _, r := range records {
		err := store.Insert(ctx, r)
		require.NoError(t, err)
	}

	confirmed, err := store.GetByStatus(ctx, domain.StatusConfirmed)
	require.NoError(t, err)

	require.Len(t, confirmed, 2)
	assert.Equal(t, "rcpt-c1", confirmed[0].ReceiptID)
	assert.Equal(t, "rcpt-c2", confirmed[1].ReceiptID)

	manual, err := store.GetByStatus(ctx, domain.StatusManualRequired)
	require.NoError(t, err)
	require.Len(t, manual, 1)

	empty, err := store.GetByStatus(ctx, domain.StatusOutgoing)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
