package tron

import "context"

// Client defines the ledger query surface used by validation components.
// Implementations must be safe for concurrent use by multiple validation
// pipelines.
type Client interface {
	// GetTransactionInfo retrieves receipt info for a transaction id.
	// Returns (nil, nil) when the transaction is unknown to the ledger.
	GetTransactionInfo(ctx context.Context, txid string) (*TransactionInfo, error)

	// GetTransactionEvents retrieves the events emitted by a transaction.
	GetTransactionEvents(ctx context.Context, txid string) ([]EventLog, error)

	// ListTransferEvents lists TRC-20 transfers touching an address,
	// filtered and paginated per opts.
	ListTransferEvents(ctx context.Context, address string, opts *TransferListOpts) (*TransferPage, error)

	// GetNowBlock retrieves the current block height.
	GetNowBlock(ctx context.Context) (int64, error)
}
