package claim

import (
	"errors"
	"fmt"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/tron"
)

// ErrIncomplete is returned when a claim lacks a usable recipient address or
// a positive amount. It marks an extraction defect, not a transport fault.
var ErrIncomplete = errors.New("claim incomplete")

// Normalize validates and completes a raw extracted claim:
//   - recovers TxID from ExplorerURL when absent,
//   - normalizes ToAddress to the checksummed base58 form,
//   - requires Amount > 0.
//
// An absent TxID after URL recovery is not an error; it signals that the
// identifier must be discovered. A failed recipient normalization or a
// non-positive amount yields ErrIncomplete.
func Normalize(c domain.Claim) (domain.Claim, error) {
	if !c.HasTxID() && c.ExplorerURL != "" {
		c.TxID = ExtractTxIDFromURL(c.ExplorerURL)
	}

	if c.ToAddress == "" {
		return c, fmt.Errorf("%w: missing recipient address", ErrIncomplete)
	}
	to, err := tron.NormalizeAddress(c.ToAddress)
	if err != nil {
		return c, fmt.Errorf("%w: recipient: %s", ErrIncomplete, err)
	}
	c.ToAddress = to

	// Sender is informational only; normalize when possible, keep as
	// printed otherwise.
	if c.FromAddress != "" {
		if from, err := tron.NormalizeAddress(c.FromAddress); err == nil {
			c.FromAddress = from
		}
	}

	if !c.Amount.IsPositive() {
		return c, fmt.Errorf("%w: non-positive amount %s", ErrIncomplete, c.Amount)
	}

	return c, nil
}
