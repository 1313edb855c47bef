package domain

// ReceiptRecord is a persisted validation outcome for one receipt.
// Corresponds to the receipt_validations table in PostgreSQL.
type ReceiptRecord struct {
	ReceiptID string  // PRIMARY KEY, caller-assigned receipt identifier
	Status    Status  // terminal classification
	TxID      *string // confirmed or discovered transaction id (nullable)
	ToAddress *string // normalized recipient, when the claim yielded one (nullable)
	Amount    *string // claimed amount as decimal string (nullable)
	Reason    *string // failure reason for non-CONFIRMED statuses (nullable)
	CreatedAt int64   // record creation timestamp (ms)
}
