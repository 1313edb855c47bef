package tron

// ReceiptSuccess is the receipt result code of a successful transaction.
const ReceiptSuccess = "SUCCESS"

// EventTransfer is the TRC-20 Transfer event name.
const EventTransfer = "Transfer"

// TransactionInfo is the receipt-level view of an executed transaction.
type TransactionInfo struct {
	ID               string // transaction id
	BlockNumber      int64
	BlockTimestampMs int64  // block time in Unix milliseconds
	ReceiptResult    string // "SUCCESS" or a failure code
	Fee              int64  // total fee in sun
}

// Succeeded reports whether the transaction executed successfully on-chain.
func (i *TransactionInfo) Succeeded() bool {
	return i != nil && i.ReceiptResult == ReceiptSuccess
}

// EventLog is one event emitted by a transaction.
type EventLog struct {
	ContractAddress  string            // emitting contract, base58 form
	EventName        string            // e.g. "Transfer"
	BlockTimestampMs int64             // block time in Unix milliseconds
	Result           map[string]string // decoded event arguments by name
}

// TransferRow is one row of an account's TRC-20 transfer listing.
type TransferRow struct {
	TransactionID    string
	TokenContract    string // token_info.address, base58 form
	From             string
	To               string
	Value            string // smallest-unit amount as decimal string
	BlockTimestampMs int64
}

// TransferListOpts defines filters and the continuation cursor for
// ListTransferEvents.
type TransferListOpts struct {
	Contract       string // restrict to this token contract
	Limit          int    // page size
	OnlyConfirmed  bool   // skip unconfirmed transfers
	OrderBy        string // e.g. "block_timestamp,desc"
	MinTimestampMs int64  // lower time bound in ms, 0 = unset
	Fingerprint    string // continuation token from the previous page
}

// TransferPage is one page of transfer rows plus the continuation token.
// An empty Fingerprint means there are no further pages.
type TransferPage struct {
	Rows        []TransferRow
	Fingerprint string
}

// BlockHeader is a new-block notification from the WebSocket watcher.
type BlockHeader struct {
	Number      int64  // block height
	TimestampMs int64  // block time in Unix milliseconds
	Hash        string // block hash, 0x-prefixed hex
}
