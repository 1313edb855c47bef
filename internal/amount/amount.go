// Package amount converts between human-readable token amounts and the
// ledger's smallest integer units, and applies the matching tolerance.
package amount

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ToRaw converts a human-readable amount to smallest units:
// round(amount × 10^decimals).
func ToRaw(d decimal.Decimal, decimals int32) int64 {
	return d.Shift(decimals).Round(0).IntPart()
}

// FromRaw converts smallest units back to a human-readable amount.
func FromRaw(raw int64, decimals int32) decimal.Decimal {
	return decimal.New(raw, -decimals)
}

// WithinTolerance reports |raw − target| ≤ tolerance. The tolerance is an
// absolute smallest-unit count, not a percentage.
func WithinTolerance(raw, target, tolerance int64) bool {
	diff := raw - target
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// MatchesRaw parses a smallest-unit decimal string as reported by the ledger
// and compares it against target. Unparseable values never match.
func MatchesRaw(rawValue string, target, tolerance int64) bool {
	raw, err := strconv.ParseInt(strings.TrimSpace(rawValue), 10, 64)
	if err != nil {
		return false
	}
	return WithinTolerance(raw, target, tolerance)
}
