package claim

import (
	"testing"
	"time"
)

func TestExtractTxIDFromURL(t *testing.T) {
	const txid = "b3a1c5d7e9f102030405060708090a0b0c0d0e0f10111213141516171819aabb"

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"tronscan hash route", "https://tronscan.org/#/transaction/" + txid, txid},
		{"plain path", "https://tronscan.io/transaction/" + txid + "?lang=en", txid},
		{"no txid", "https://tronscan.org/#/address/TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", ""},
		{"short hash", "https://tronscan.org/#/transaction/abc123", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTxIDFromURL(tt.url); got != tt.want {
				t.Errorf("ExtractTxIDFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestParseUTC(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // RFC3339, empty means nil expected
	}{
		{"bare datetime", "2025-11-05 11:47:45", "2025-11-05T11:47:45Z"},
		{"iso with T and Z", "2025-11-05T11:47:45Z", "2025-11-05T11:47:45Z"},
		{"explicit offset", "2025-11-05 19:47:45+08:00", "2025-11-05T11:47:45Z"},
		{"no seconds", "2025-11-05 11:47", "2025-11-05T11:47:00Z"},
		{"padded", "  2025-11-05 11:47:45  ", "2025-11-05T11:47:45Z"},
		{"empty", "", ""},
		{"garbage", "yesterday", ""},
		{"date only", "2025-11-05", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUTC(tt.input)
			if tt.want == "" {
				if got != nil {
					t.Errorf("ParseUTC(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("ParseUTC(%q) = nil, want %s", tt.input, tt.want)
			}
			want, err := time.Parse(time.RFC3339, tt.want)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseUTC(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}
