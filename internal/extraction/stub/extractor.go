// Package stub provides a fixed-output extraction.Extractor for testing.
package stub

import (
	"context"

	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/extraction"
)

// Extractor returns a fixed claim or error for every image.
type Extractor struct {
	Claim domain.Claim
	Err   error

	// Calls counts ExtractClaim invocations.
	Calls int
}

// ExtractClaim returns the configured claim without touching any model.
func (e *Extractor) ExtractClaim(_ context.Context, _ []byte) (domain.Claim, error) {
	e.Calls++
	if e.Err != nil {
		return domain.Claim{}, e.Err
	}
	return e.Claim, nil
}

// Compile-time interface check.
var _ extraction.Extractor = (*Extractor)(nil)
