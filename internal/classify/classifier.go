// Package classify orchestrates claim normalization, candidate discovery and
// transaction validation into a single terminal classification.
package classify

import (
	"context"
	"errors"
	"time"

	"tron-receipt-validator/internal/claim"
	"tron-receipt-validator/internal/discovery"
	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/validation"
	"tron-receipt-validator/internal/wallet"
)

// Fixed reason strings for the non-success statuses.
const (
	ReasonOCRFailure      = "Missing recipient address or amount from OCR."
	ReasonOutgoing        = "Recipient address not in our wallet list."
	ReasonDiscoveryFailed = "Could not find a matching transaction on-chain."
	ReasonManualRequired  = "Incoming transaction but no TxID found on receipt."
	ReasonChainRejected   = "Transaction not found or failed on-chain."
	ReasonEventMismatch   = "TxID was valid but event details did not match."
)

// Options controls a single classification call.
type Options struct {
	// Discover enables the candidate search when the claim has no
	// transaction id.
	Discover bool

	// MessageTime approximates the transfer time when the receipt itself
	// carries no timestamp (e.g. the time the receipt was received). Zero
	// means "now".
	MessageTime time.Time
}

// Classifier runs the validation pipeline. All state is read-only after
// construction, so one Classifier may serve many concurrent pipelines.
type Classifier struct {
	wallets   *wallet.Set
	finder    *discovery.Finder
	validator *validation.Validator
}

// New creates a Classifier.
func New(wallets *wallet.Set, finder *discovery.Finder, validator *validation.Validator) *Classifier {
	return &Classifier{
		wallets:   wallets,
		finder:    finder,
		validator: validator,
	}
}

// Classify maps a raw extracted claim to exactly one terminal status.
// The transition order is fixed: OCR_FAILURE and OUTGOING are decided before
// any network query; discovery runs only when enabled and the id is absent;
// validation runs only once an id is known. Every fault is absorbed here and
// reported as StatusError — Classify never fails.
func (c *Classifier) Classify(ctx context.Context, raw domain.Claim, opts Options) domain.ValidationResult {
	normalized, err := claim.Normalize(raw)
	if err != nil {
		// claim.Normalize only fails with ErrIncomplete.
		return domain.ValidationResult{Status: domain.StatusOCRFailure, Reason: ReasonOCRFailure}
	}

	if !c.wallets.Contains(normalized.ToAddress) {
		return domain.ValidationResult{Status: domain.StatusOutgoing, Reason: ReasonOutgoing}
	}

	txid := normalized.TxID
	if txid == "" && opts.Discover {
		approx := opts.MessageTime
		if normalized.Timestamp != nil {
			approx = *normalized.Timestamp
		}

		candidates, err := c.finder.FindCandidates(ctx, normalized.ToAddress, normalized.Amount, approx)
		if err != nil {
			return errorResult(err)
		}
		if len(candidates) == 0 {
			return domain.ValidationResult{Status: domain.StatusDiscoveryFailed, Reason: ReasonDiscoveryFailed}
		}
		// Candidates are sorted by block time descending; take the most recent.
		txid = candidates[0].TxID
	}

	if txid == "" {
		return domain.ValidationResult{Status: domain.StatusManualRequired, Reason: ReasonManualRequired}
	}

	_, err = c.validator.FetchAndValidate(ctx, txid, normalized.ToAddress, normalized.Amount)
	switch {
	case errors.Is(err, validation.ErrChainRejected):
		return domain.ValidationResult{Status: domain.StatusChainRejected, TxID: txid, Reason: ReasonChainRejected}
	case errors.Is(err, validation.ErrNoMatchingEvent):
		return domain.ValidationResult{Status: domain.StatusValidationFailed, TxID: txid, Reason: ReasonEventMismatch}
	case err != nil:
		return errorResult(err)
	}

	amt := normalized.Amount
	return domain.ValidationResult{
		Status: domain.StatusConfirmed,
		TxID:   txid,
		Amount: &amt,
	}
}

// errorResult wraps an unexpected fault into the ERROR terminal state.
func errorResult(err error) domain.ValidationResult {
	return domain.ValidationResult{Status: domain.StatusError, Reason: err.Error()}
}
