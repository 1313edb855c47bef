// Package claim validates and completes payment claims extracted from
// receipt images before they reach the on-chain pipeline.
package claim

import (
	"regexp"
	"strings"
	"time"
)

// txidPattern matches a 64-hex transaction hash in an explorer URL path,
// e.g. tronscan.org/#/transaction/<hash>.
var txidPattern = regexp.MustCompile(`/transaction/([0-9a-fA-F]{64})`)

// ExtractTxIDFromURL recovers a transaction id from an explorer URL.
// Returns the empty string when no 64-hex id is present.
func ExtractTxIDFromURL(url string) string {
	m := txidPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// utcLayouts are the accepted receipt timestamp shapes, tried in order.
// Receipts print either a bare "2025-11-05 11:47:45" (assumed UTC) or an
// ISO-8601 form with zone.
var utcLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseUTC parses a receipt timestamp into UTC. A "T" date/time separator
// and a trailing "Z" are accepted. Returns nil when the string is empty or
// unparseable.
func ParseUTC(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.Replace(s, "T", " ", 1)
	s = strings.Replace(s, "Z", "+00:00", 1)

	for _, layout := range utcLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
