// Package discovery searches a recipient's on-chain transfer history for the
// transaction matching a claim that carries no transaction id.
package discovery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tron-receipt-validator/internal/amount"
	"tron-receipt-validator/internal/config"
	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/tron"
)

// Finder performs the bounded, time-windowed, amount-tolerant candidate
// search. It is stateless and safe for concurrent use.
type Finder struct {
	client tron.Client
	ledger config.Ledger
	cfg    config.Discovery

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFinder creates a Finder over the given ledger client and bounds.
func NewFinder(client tron.Client, ledger config.Ledger, cfg config.Discovery) *Finder {
	return &Finder{
		client: client,
		ledger: ledger,
		cfg:    cfg,
		sleep:  sleepCtx,
	}
}

// FindCandidates pages through the recipient's TRC-20 transfer history and
// returns candidates whose contract and recipient match exactly and whose
// raw value is within the configured tolerance of the claimed amount.
//
// approx bounds the search window: rows older than approx − WindowMinutes
// are pruned server-side via min_timestamp. A zero approx means "now".
// The result is sorted by block time descending; an empty result is a valid
// "no match" outcome, not an error. Transport faults abort the search.
func (f *Finder) FindCandidates(ctx context.Context, toAddress string, claimed decimal.Decimal, approx time.Time) ([]domain.Candidate, error) {
	if approx.IsZero() {
		approx = time.Now().UTC()
	}

	window := time.Duration(f.cfg.WindowMinutes) * time.Minute
	opts := &tron.TransferListOpts{
		Contract:       f.ledger.ContractAddress,
		Limit:          f.cfg.PageLimit,
		OnlyConfirmed:  true,
		OrderBy:        "block_timestamp,desc",
		MinTimestampMs: approx.Add(-window).UnixMilli(),
	}

	target := amount.ToRaw(claimed, f.ledger.Decimals)

	var candidates []domain.Candidate
	for page := 0; page < f.cfg.MaxPages; page++ {
		if page > 0 && f.cfg.PageDelay > 0 {
			// Pace pagination to respect third-party rate limits.
			if err := f.sleep(ctx, f.cfg.PageDelay); err != nil {
				return nil, err
			}
		}

		result, err := f.client.ListTransferEvents(ctx, toAddress, opts)
		if err != nil {
			return nil, fmt.Errorf("list transfers page %d: %w", page+1, err)
		}

		for _, row := range result.Rows {
			if row.TokenContract != f.ledger.ContractAddress || row.To != toAddress {
				continue
			}
			if !amount.MatchesRaw(row.Value, target, f.ledger.AmountToleranceRaw) {
				continue
			}
			candidates = append(candidates, domain.Candidate{
				TxID:             row.TransactionID,
				BlockTimestampMs: row.BlockTimestampMs,
			})
		}

		if result.Fingerprint == "" {
			break
		}
		opts.Fingerprint = result.Fingerprint
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].BlockTimestampMs > candidates[j].BlockTimestampMs
	})

	return candidates, nil
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
