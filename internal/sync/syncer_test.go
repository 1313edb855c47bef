package sync

import (
	"context"
	"testing"

	"tron-receipt-validator/internal/config"
	"tron-receipt-validator/internal/storage/memory"
	"tron-receipt-validator/internal/tron"
	"tron-receipt-validator/internal/tron/stub"
)

const testWallet = "TWd4WrZ9wn84f5x1hZhL4DHvk738ns5jwb"

func testSyncer(client tron.Client, store *memory.TransferStore) *Syncer {
	return New(Options{
		Client: client,
		Store:  store,
		Ledger: config.DefaultLedger(),
		Config: Config{MaxPages: 3, PageLimit: 200, PageDelay: 0},
	})
}

func transferRow(txid, value string, ts int64) tron.TransferRow {
	return tron.TransferRow{
		TransactionID:    txid,
		TokenContract:    config.DefaultContractAddress,
		From:             "TSenderSenderSenderSenderSenderSen",
		To:               testWallet,
		Value:            value,
		BlockTimestampMs: ts,
	}
}

func TestSyncWallet_PersistsTransfers(t *testing.T) {
	client := stub.NewClient()
	client.AddTransferPage(testWallet, tron.TransferPage{Rows: []tron.TransferRow{
		transferRow("AA01", "150000000", 3000),
		transferRow("bb02", "72500000", 2000),
	}})

	store := memory.NewTransferStore()
	syncer := testSyncer(client, store)

	inserted, err := syncer.SyncWallet(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("SyncWallet failed: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}

	rows, err := store.GetByWallet(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("stored %d rows, want 2", len(rows))
	}

	// Ids are lowercased, block time orders the listing newest first.
	if rows[0].TxID != "aa01" {
		t.Errorf("rows[0].TxID = %q, want aa01", rows[0].TxID)
	}
	if rows[0].AmountRaw != 150000000 {
		t.Errorf("AmountRaw = %d", rows[0].AmountRaw)
	}
	if rows[0].Amount.String() != "150" {
		t.Errorf("Amount = %s, want 150", rows[0].Amount)
	}
}

func TestSyncWallet_DeduplicatesAcrossPages(t *testing.T) {
	// The same transfer appearing on two pages (cursor overlap) is stored once.
	client := stub.NewClient()
	client.AddTransferPage(testWallet, tron.TransferPage{
		Rows:        []tron.TransferRow{transferRow("aa01", "150000000", 3000)},
		Fingerprint: "fp1",
	})
	client.AddTransferPage(testWallet, tron.TransferPage{
		Rows: []tron.TransferRow{
			transferRow("AA01", "150000000", 3000),
			transferRow("cc03", "10000000", 1000),
		},
	})

	store := memory.NewTransferStore()
	syncer := testSyncer(client, store)

	inserted, err := syncer.SyncWallet(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("SyncWallet failed: %v", err)
	}
	if inserted != 2 {
		t.Errorf("inserted = %d, want 2", inserted)
	}
}

func TestSyncWallet_SkipsForeignAndGarbageRows(t *testing.T) {
	foreign := transferRow("dd04", "150000000", 1000)
	foreign.TokenContract = "TOtherContractOtherContractOtherCo"

	client := stub.NewClient()
	client.AddTransferPage(testWallet, tron.TransferPage{Rows: []tron.TransferRow{
		foreign,
		transferRow("ee05", "not-a-number", 2000),
		transferRow("", "150000000", 3000),
		transferRow("ff06", "150000000", 4000),
	}})

	store := memory.NewTransferStore()
	syncer := testSyncer(client, store)

	inserted, err := syncer.SyncWallet(context.Background(), testWallet)
	if err != nil {
		t.Fatalf("SyncWallet failed: %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}
}

func TestSyncWallet_BoundedPages(t *testing.T) {
	client := stub.NewClient()
	for i := 0; i < 5; i++ {
		client.AddTransferPage(testWallet, tron.TransferPage{Fingerprint: "more"})
	}

	store := memory.NewTransferStore()
	syncer := testSyncer(client, store)

	if _, err := syncer.SyncWallet(context.Background(), testWallet); err != nil {
		t.Fatalf("SyncWallet failed: %v", err)
	}
	if client.ListCalls != 3 {
		t.Errorf("ListCalls = %d, want 3 (MaxPages)", client.ListCalls)
	}
}

func TestSyncWallet_TransportError(t *testing.T) {
	client := stub.NewClient()
	client.FailTransfers = true

	store := memory.NewTransferStore()
	syncer := testSyncer(client, store)

	if _, err := syncer.SyncWallet(context.Background(), testWallet); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestSyncAll_MultipleWallets(t *testing.T) {
	const otherWallet = "TOtherWalletOtherWalletOtherWalletX"

	client := stub.NewClient()
	client.AddTransferPage(otherWallet, tron.TransferPage{Rows: []tron.TransferRow{{
		TransactionID:    "aa01",
		TokenContract:    config.DefaultContractAddress,
		From:             "TSenderSenderSenderSenderSenderSen",
		To:               otherWallet,
		Value:            "5000000",
		BlockTimestampMs: 1000,
	}}})

	store := memory.NewTransferStore()
	syncer := testSyncer(client, store)

	total, err := syncer.SyncAll(context.Background(), []string{testWallet, otherWallet})
	if err != nil {
		t.Fatalf("SyncAll failed: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}
