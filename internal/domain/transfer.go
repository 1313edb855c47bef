package domain

import "github.com/shopspring/decimal"

// TransferEvent is a TRC-20 Transfer emitted by a transaction.
// RawValue is in smallest units (micro-USDT for the USDT contract).
type TransferEvent struct {
	ContractAddress string // token contract, base58 form
	FromAddress     string // sender, any accepted encoding
	ToAddress       string // recipient, any accepted encoding
	RawValue        int64  // unscaled smallest-unit amount
}

// TransferRecord is one row of synced TRC-20 transfer history for a tracked
// wallet. Corresponds to the wallet_transfers table in PostgreSQL.
type TransferRecord struct {
	TxID             string          // transaction id (lowercased), part of PK
	WalletAddress    string          // tracked wallet, normalized base58, part of PK
	FromAddress      string          // sender, base58
	ToAddress        string          // recipient, base58
	AmountRaw        int64           // smallest-unit amount
	Amount           decimal.Decimal // human-readable USDT amount
	BlockTimestampMs int64           // block time in Unix milliseconds
	SyncedAt         int64           // record creation timestamp (ms)
}

// Incoming reports whether the transfer credits the tracked wallet.
func (t *TransferRecord) Incoming() bool {
	return t.ToAddress == t.WalletAddress
}
