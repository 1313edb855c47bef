package amount

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToRaw(t *testing.T) {
	tests := []struct {
		amount   string
		decimals int32
		want     int64
	}{
		{"150.00", 6, 150000000},
		{"72.5", 6, 72500000},
		{"0.000001", 6, 1},
		{"0", 6, 0},
		{"1.0000005", 6, 1000001}, // rounds half away from zero
		{"19.99", 2, 1999},
	}

	for _, tt := range tests {
		d := decimal.RequireFromString(tt.amount)
		if got := ToRaw(d, tt.decimals); got != tt.want {
			t.Errorf("ToRaw(%s, %d) = %d, want %d", tt.amount, tt.decimals, got, tt.want)
		}
	}
}

func TestFromRaw(t *testing.T) {
	got := FromRaw(150000000, 6)
	if !got.Equal(decimal.RequireFromString("150")) {
		t.Errorf("FromRaw(150000000, 6) = %s, want 150", got)
	}

	got = FromRaw(1, 6)
	if !got.Equal(decimal.RequireFromString("0.000001")) {
		t.Errorf("FromRaw(1, 6) = %s, want 0.000001", got)
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		raw, target, tolerance int64
		want                   bool
	}{
		{150000000, 150000000, 1, true},
		{150000001, 150000000, 1, true},
		{149999999, 150000000, 1, true},
		{150000002, 150000000, 1, false},
		{149999998, 150000000, 1, false},
		{100, 100, 0, true},
		{101, 100, 0, false},
	}

	for _, tt := range tests {
		if got := WithinTolerance(tt.raw, tt.target, tt.tolerance); got != tt.want {
			t.Errorf("WithinTolerance(%d, %d, %d) = %v, want %v",
				tt.raw, tt.target, tt.tolerance, got, tt.want)
		}
	}
}

func TestMatchesRaw(t *testing.T) {
	tests := []struct {
		value  string
		target int64
		want   bool
	}{
		{"150000000", 150000000, true},
		{"150000001", 150000000, true},
		{"150000002", 150000000, false},
		{" 150000000 ", 150000000, true},
		{"", 150000000, false},
		{"abc", 150000000, false},
		{"150.5", 150, false}, // ledger values are integers
	}

	for _, tt := range tests {
		if got := MatchesRaw(tt.value, tt.target, 1); got != tt.want {
			t.Errorf("MatchesRaw(%q, %d, 1) = %v, want %v", tt.value, tt.target, got, tt.want)
		}
	}
}
