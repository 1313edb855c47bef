// Package config holds injectable configuration for the validation service.
// Ledger constants are plain values passed into component constructors so
// tests can point components at alternate contracts and endpoints.
package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Ledger describes the chain, token contract and query surface that all
// validation components operate against.
type Ledger struct {
	// BaseURL is the TronGrid-compatible REST API base URL.
	BaseURL string

	// APIKey is sent as TRON-PRO-API-KEY on every request. Optional.
	APIKey string

	// ContractAddress is the base58 token contract all transfers must match.
	ContractAddress string

	// Decimals is the token's smallest-unit scale (6 for USDT).
	Decimals int32

	// AmountToleranceRaw is the absolute smallest-unit tolerance used when
	// comparing claimed against on-chain amounts.
	AmountToleranceRaw int64
}

// Discovery bounds the candidate search when a receipt carries no
// transaction id.
type Discovery struct {
	// WindowMinutes is the radius of the time window around the approximate
	// receipt timestamp.
	WindowMinutes int

	// MaxPages bounds pagination over the recipient's transfer history.
	MaxPages int

	// PageLimit is the page size requested from the transfer listing.
	PageLimit int

	// PageDelay is the pause between consecutive pages, to respect
	// third-party rate limits.
	PageDelay time.Duration
}

// Mainnet USDT defaults, matching the production ledger.
const (
	DefaultBaseURL         = "https://api.trongrid.io"
	DefaultContractAddress = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	DefaultDecimals        = 6
	DefaultToleranceRaw    = 1
)

// DefaultLedger returns the mainnet USDT ledger configuration.
func DefaultLedger() Ledger {
	return Ledger{
		BaseURL:            DefaultBaseURL,
		ContractAddress:    DefaultContractAddress,
		Decimals:           DefaultDecimals,
		AmountToleranceRaw: DefaultToleranceRaw,
	}
}

// DefaultDiscovery returns the production discovery bounds.
func DefaultDiscovery() Discovery {
	return Discovery{
		WindowMinutes: 180,
		MaxPages:      5,
		PageLimit:     200,
		PageDelay:     200 * time.Millisecond,
	}
}

// LoadEnv loads variables from a .env file in the working directory if one
// exists. Existing environment variables are never overridden.
func LoadEnv() {
	// godotenv returns an error when the file is absent; that is fine.
	_ = godotenv.Load()
}
