package memory

import (
	"context"
	"errors"
	"testing"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/storage"
)

func strPtr(s string) *string { return &s }

func TestReceiptStore_InsertAndGet(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()

	r := &domain.ReceiptRecord{
		ReceiptID: "rcpt-1",
		Status:    domain.StatusConfirmed,
		TxID:      strPtr("aa01"),
		ToAddress: strPtr("TWd4WrZ9wn84f5x1hZhL4DHvk738ns5jwb"),
		Amount:    strPtr("150"),
		CreatedAt: 1730800065000,
	}

	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "rcpt-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.StatusConfirmed {
		t.Errorf("Status = %s", got.Status)
	}
	if got.TxID == nil || *got.TxID != "aa01" {
		t.Errorf("TxID = %v", got.TxID)
	}
}

func TestReceiptStore_DuplicateKey(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()

	r := &domain.ReceiptRecord{ReceiptID: "rcpt-1", Status: domain.StatusConfirmed}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.Insert(ctx, r); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestReceiptStore_NotFound(t *testing.T) {
	store := NewReceiptStore()

	_, err := store.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestReceiptStore_InvalidInput(t *testing.T) {
	store := NewReceiptStore()

	if err := store.Insert(context.Background(), nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil record, got %v", err)
	}
	if err := store.Insert(context.Background(), &domain.ReceiptRecord{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty id, got %v", err)
	}
}

func TestReceiptStore_GetByStatus(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()

	records := []*domain.ReceiptRecord{
		{ReceiptID: "r3", Status: domain.StatusConfirmed, CreatedAt: 3000},
		{ReceiptID: "r1", Status: domain.StatusConfirmed, CreatedAt: 1000},
		{ReceiptID: "r2", Status: domain.StatusChainRejected, CreatedAt: 2000},
	}
	for _, r := range records {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByStatus(ctx, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("GetByStatus failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// created_at ASC
	if got[0].ReceiptID != "r1" || got[1].ReceiptID != "r3" {
		t.Errorf("order = [%s %s], want [r1 r3]", got[0].ReceiptID, got[1].ReceiptID)
	}
}

func TestReceiptStore_CopyOnWrite(t *testing.T) {
	store := NewReceiptStore()
	ctx := context.Background()

	r := &domain.ReceiptRecord{ReceiptID: "rcpt-1", Status: domain.StatusConfirmed}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating the inserted record must not affect the stored copy.
	r.Status = domain.StatusError

	got, err := store.GetByID(ctx, "rcpt-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.StatusConfirmed {
		t.Errorf("stored record mutated: Status = %s", got.Status)
	}
}
