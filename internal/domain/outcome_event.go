package domain

// OutcomeEvent is one analytics row recorded per validation call.
// Corresponds to the validation_events table in ClickHouse.
type OutcomeEvent struct {
	ReceiptID  string // caller-assigned receipt identifier
	Status     Status // terminal classification
	TxID       string // confirmed or discovered transaction id, may be empty
	Discovered bool   // true when the id came from candidate discovery
	DurationMs int64  // wall time of the validation call
	OccurredAt int64  // event timestamp (ms)
}
