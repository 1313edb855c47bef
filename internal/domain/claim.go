package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Claim is the structured payment claim extracted from a receipt image.
// Fields mirror what the extraction service can recover; any of them may be
// absent except Amount, which is zero when unreadable.
type Claim struct {
	TxID        string          // 64-hex transaction id, empty if not on the receipt
	ExplorerURL string          // explorer link, used to recover TxID when absent
	FromAddress string          // sender address as printed, any accepted encoding
	ToAddress   string          // recipient address as printed, any accepted encoding
	Amount      decimal.Decimal // human-readable USDT amount, always non-negative
	Timestamp   *time.Time      // approximate UTC time of the transfer (nullable)
}

// HasTxID reports whether the claim carries a transaction id.
func (c *Claim) HasTxID() bool {
	return c.TxID != ""
}
