package claim

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"tron-receipt-validator/internal/domain"
)

const (
	testWallet = "TWd4WrZ9wn84f5x1hZhL4DHvk738ns5jwb"
	testTxID   = "b3a1c5d7e9f102030405060708090a0b0c0d0e0f10111213141516171819aabb"
)

func TestNormalize_Complete(t *testing.T) {
	c := domain.Claim{
		TxID:      testTxID,
		ToAddress: testWallet,
		Amount:    decimal.RequireFromString("150.00"),
	}

	got, err := Normalize(c)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got.TxID != testTxID {
		t.Errorf("TxID = %q, want %q", got.TxID, testTxID)
	}
	if got.ToAddress != testWallet {
		t.Errorf("ToAddress = %q, want %q", got.ToAddress, testWallet)
	}
}

func TestNormalize_TxIDFromExplorerURL(t *testing.T) {
	c := domain.Claim{
		ExplorerURL: "https://tronscan.org/#/transaction/" + testTxID,
		ToAddress:   testWallet,
		Amount:      decimal.RequireFromString("72.5"),
	}

	got, err := Normalize(c)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got.TxID != testTxID {
		t.Errorf("TxID not recovered from URL: got %q", got.TxID)
	}
}

func TestNormalize_NoTxIDIsNotAnError(t *testing.T) {
	c := domain.Claim{
		ToAddress: testWallet,
		Amount:    decimal.RequireFromString("10"),
	}

	got, err := Normalize(c)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got.TxID != "" {
		t.Errorf("TxID = %q, want empty", got.TxID)
	}
}

func TestNormalize_HexRecipientNormalized(t *testing.T) {
	c := domain.Claim{
		ToAddress: "41a614f803b6fd780986a42c78ec9c7f77e6ded13c",
		Amount:    decimal.RequireFromString("10"),
	}

	got, err := Normalize(c)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got.ToAddress != "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t" {
		t.Errorf("ToAddress = %q, want base58 form", got.ToAddress)
	}
}

func TestNormalize_Incomplete(t *testing.T) {
	tests := []struct {
		name string
		c    domain.Claim
	}{
		{"missing recipient", domain.Claim{Amount: decimal.RequireFromString("10")}},
		{"bad recipient", domain.Claim{ToAddress: "not-an-address", Amount: decimal.RequireFromString("10")}},
		{"zero amount", domain.Claim{ToAddress: testWallet}},
		{"negative amount", domain.Claim{ToAddress: testWallet, Amount: decimal.RequireFromString("-5")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.c)
			if !errors.Is(err, ErrIncomplete) {
				t.Errorf("expected ErrIncomplete, got %v", err)
			}
		})
	}
}

func TestNormalize_SenderBestEffort(t *testing.T) {
	// A sender that cannot be normalized is kept as printed.
	c := domain.Claim{
		FromAddress: "illegible-ocr-text",
		ToAddress:   testWallet,
		Amount:      decimal.RequireFromString("10"),
	}

	got, err := Normalize(c)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if got.FromAddress != "illegible-ocr-text" {
		t.Errorf("FromAddress = %q, want original", got.FromAddress)
	}
}
