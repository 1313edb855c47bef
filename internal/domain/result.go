package domain

import "github.com/shopspring/decimal"

// Status is the terminal classification of a receipt validation.
// Every validation call ends in exactly one of these states; there are no
// retries between them.
type Status string

const (
	// StatusConfirmed means the transaction succeeded on-chain and a transfer
	// event matched the claimed recipient and amount.
	StatusConfirmed Status = "CONFIRMED"

	// StatusOCRFailure means the extracted claim is missing its recipient or
	// has a non-positive amount.
	StatusOCRFailure Status = "OCR_FAILURE"

	// StatusOutgoing means the claimed recipient is not one of our wallets.
	StatusOutgoing Status = "OUTGOING"

	// StatusDiscoveryFailed means no transaction id was supplied, discovery
	// ran, and no candidate matched.
	StatusDiscoveryFailed Status = "DISCOVERY_FAILED"

	// StatusManualRequired means no transaction id was supplied and discovery
	// was not requested.
	StatusManualRequired Status = "MANUAL_REQUIRED"

	// StatusChainRejected means the transaction was not found or did not
	// succeed on-chain.
	StatusChainRejected Status = "CHAIN_REJECTED"

	// StatusValidationFailed means the transaction succeeded but no emitted
	// event matched the claim.
	StatusValidationFailed Status = "VALIDATION_FAILED"

	// StatusError means an unexpected fault (network, parsing) was caught at
	// the classification boundary.
	StatusError Status = "ERROR"
)

// ValidationResult is the sole artifact that crosses the validation boundary.
// It is immutable once constructed: exactly one status is set, and Reason is
// populated for every non-CONFIRMED status.
type ValidationResult struct {
	Status Status           `json:"status"`
	TxID   string           `json:"txid,omitempty"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Reason string           `json:"reason,omitempty"`
}

// Confirmed reports whether the result is a verified inbound payment.
func (r *ValidationResult) Confirmed() bool {
	return r.Status == StatusConfirmed
}
