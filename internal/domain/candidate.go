package domain

// Candidate is a possible matching transfer found by on-chain discovery.
// Candidates are ephemeral: they exist only within a single validation call.
type Candidate struct {
	TxID             string // matching transaction id
	BlockTimestampMs int64  // block time in Unix milliseconds
}
