// Package extraction turns receipt images into structured payment claims
// via an external vision model. The core pipeline depends only on the
// Extractor interface; tests substitute a stub.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"tron-receipt-validator/internal/claim"
	"tron-receipt-validator/internal/domain"
)

// Extractor yields a structured payment claim from receipt image bytes.
type Extractor interface {
	ExtractClaim(ctx context.Context, image []byte) (domain.Claim, error)
}

// jsonObjectPattern grabs the first {...} block from a model reply that
// wrapped its JSON in prose.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// codeFencePattern strips a leading ```json fence and a trailing ```.
var codeFencePattern = regexp.MustCompile("(?s)^```(?:json)?\\s*|\\s*```$")

// rawClaim is the wire shape the extraction prompt demands. Every field is
// nullable; amount may arrive as a number or a quoted string.
type rawClaim struct {
	TxID        *string         `json:"txid"`
	ExplorerURL *string         `json:"explorer_url"`
	FromAddress *string         `json:"from_address"`
	ToAddress   *string         `json:"to_address"`
	Amount      json.RawMessage `json:"amount"`
	Timestamp   *string         `json:"timestamp"`
}

// DecodeClaim parses a model reply into a Claim. It tolerates code fences
// and surrounding prose, treats null/absent fields as empty, and strips any
// embedded sign from the amount so Claim.Amount is never negative.
func DecodeClaim(reply string) (domain.Claim, error) {
	s := strings.TrimSpace(reply)
	s = codeFencePattern.ReplaceAllString(s, "")

	var raw rawClaim
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		m := jsonObjectPattern.FindString(s)
		if m == "" {
			return domain.Claim{}, fmt.Errorf("no JSON object in model reply: %w", err)
		}
		if err := json.Unmarshal([]byte(m), &raw); err != nil {
			return domain.Claim{}, fmt.Errorf("parse model reply: %w", err)
		}
	}

	c := domain.Claim{
		TxID:        deref(raw.TxID),
		ExplorerURL: deref(raw.ExplorerURL),
		FromAddress: deref(raw.FromAddress),
		ToAddress:   deref(raw.ToAddress),
		Amount:      parseAmount(raw.Amount),
	}
	if raw.Timestamp != nil {
		c.Timestamp = claim.ParseUTC(*raw.Timestamp)
	}
	return c, nil
}

// parseAmount accepts a JSON number or a quoted decimal string, returning
// its absolute value. Anything else becomes zero, which normalization
// rejects downstream.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero
	}
	s = strings.Trim(s, `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Abs()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
