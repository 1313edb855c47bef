// Package validation confirms that a known transaction succeeded on-chain
// and that its emitted transfer event matches the claim.
package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"tron-receipt-validator/internal/amount"
	"tron-receipt-validator/internal/config"
	"tron-receipt-validator/internal/tron"
)

// Sentinel rejections. Both are expected business outcomes, distinct from
// transport faults.
var (
	// ErrChainRejected means the transaction was not found or did not
	// execute successfully.
	ErrChainRejected = errors.New("transaction not found or failed on-chain")

	// ErrNoMatchingEvent means the transaction succeeded but none of its
	// events matches the claimed contract, recipient and amount.
	ErrNoMatchingEvent = errors.New("no transfer event matches the claim")
)

// VerifiedTransfer is the on-chain transfer that satisfied the claim.
type VerifiedTransfer struct {
	TxID             string
	ToAddress        string // normalized recipient
	RawValue         string // smallest-unit amount as reported by the ledger
	BlockTimestampMs int64
}

// Validator checks claims against transaction receipts and event logs.
// It is stateless and safe for concurrent use.
type Validator struct {
	client tron.Client
	ledger config.Ledger
}

// NewValidator creates a Validator over the given ledger client.
func NewValidator(client tron.Client, ledger config.Ledger) *Validator {
	return &Validator{client: client, ledger: ledger}
}

// FetchAndValidate fetches the transaction's receipt and events and returns
// the first Transfer event of the configured contract whose normalized
// recipient equals expectedTo and whose raw value is within tolerance of the
// expected amount. Failures map to ErrChainRejected or ErrNoMatchingEvent;
// any other error is a transport fault.
func (v *Validator) FetchAndValidate(ctx context.Context, txid, expectedTo string, expected decimal.Decimal) (*VerifiedTransfer, error) {
	info, err := v.client.GetTransactionInfo(ctx, txid)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction info: %w", err)
	}
	if !info.Succeeded() {
		return nil, ErrChainRejected
	}

	events, err := v.client.GetTransactionEvents(ctx, txid)
	if err != nil {
		return nil, fmt.Errorf("fetch transaction events: %w", err)
	}

	target := amount.ToRaw(expected, v.ledger.Decimals)

	for _, ev := range events {
		if ev.ContractAddress != v.ledger.ContractAddress || ev.EventName != tron.EventTransfer {
			continue
		}

		to, err := tron.NormalizeAddress(ev.Result["to"])
		if err != nil || to != expectedTo {
			continue
		}
		if !amount.MatchesRaw(ev.Result["value"], target, v.ledger.AmountToleranceRaw) {
			continue
		}

		return &VerifiedTransfer{
			TxID:             txid,
			ToAddress:        to,
			RawValue:         ev.Result["value"],
			BlockTimestampMs: ev.BlockTimestampMs,
		}, nil
	}

	return nil, ErrNoMatchingEvent
}
