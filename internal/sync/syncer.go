// Package sync pulls TRC-20 transfer history for monitored wallets from the
// ledger into local storage, so incoming payments can be inspected without
// re-querying the chain.
package sync

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"tron-receipt-validator/internal/amount"
	"tron-receipt-validator/internal/config"
	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/storage"
	"tron-receipt-validator/internal/tron"
)

// Syncer pages through a wallet's token transfers and persists the new ones.
type Syncer struct {
	client tron.Client
	store  storage.TransferStore
	ledger config.Ledger
	cfg    Config
	logger *log.Logger

	// sleep is swappable in tests to avoid real page delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// Config bounds one sync run.
type Config struct {
	MaxPages  int           // pages fetched per wallet per run
	PageLimit int           // rows requested per page
	PageDelay time.Duration // pause between page fetches
}

// DefaultConfig returns the sync bounds used in production.
func DefaultConfig() Config {
	return Config{
		MaxPages:  20,
		PageLimit: 200,
		PageDelay: 200 * time.Millisecond,
	}
}

// Options contains configuration for creating a Syncer.
type Options struct {
	Client tron.Client
	Store  storage.TransferStore
	Ledger config.Ledger
	Config Config
	Logger *log.Logger
}

// New creates a Syncer.
func New(opts Options) *Syncer {
	cfg := opts.Config
	if cfg.MaxPages == 0 {
		cfg = DefaultConfig()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Syncer{
		client: opts.Client,
		store:  opts.Store,
		ledger: opts.Ledger,
		cfg:    cfg,
		logger: logger,
		sleep:  sleepCtx,
	}
}

// SyncWallet fetches new token transfers for one wallet and stores them.
// Only transfers newer than the latest stored block timestamp are requested,
// so repeated runs are incremental. Returns the number of rows inserted.
func (s *Syncer) SyncWallet(ctx context.Context, wallet string) (int, error) {
	latest, err := s.store.LatestBlockTimestamp(ctx, wallet)
	if err != nil {
		return 0, fmt.Errorf("latest block timestamp for %s: %w", wallet, err)
	}

	opts := &tron.TransferListOpts{
		Contract:      s.ledger.ContractAddress,
		Limit:         s.cfg.PageLimit,
		OnlyConfirmed: true,
		OrderBy:       "block_timestamp,desc",
	}
	if latest > 0 {
		opts.MinTimestampMs = latest + 1
	}

	seen := make(map[string]struct{})
	inserted := 0
	now := time.Now().UnixMilli()

	for page := 0; page < s.cfg.MaxPages; page++ {
		if page > 0 && s.cfg.PageDelay > 0 {
			if err := s.sleep(ctx, s.cfg.PageDelay); err != nil {
				return inserted, err
			}
		}

		result, err := s.client.ListTransferEvents(ctx, wallet, opts)
		if err != nil {
			return inserted, fmt.Errorf("list transfers for %s: %w", wallet, err)
		}

		var records []*domain.TransferRecord
		for _, row := range result.Rows {
			txid := strings.ToLower(row.TransactionID)
			if txid == "" {
				continue
			}
			if _, dup := seen[txid]; dup {
				continue
			}
			seen[txid] = struct{}{}

			if row.TokenContract != s.ledger.ContractAddress {
				continue
			}

			raw, err := strconv.ParseInt(row.Value, 10, 64)
			if err != nil {
				s.logger.Printf("skipping transfer %s: unparseable value %q", txid, row.Value)
				continue
			}

			records = append(records, &domain.TransferRecord{
				TxID:             txid,
				WalletAddress:    wallet,
				FromAddress:      row.From,
				ToAddress:        row.To,
				AmountRaw:        raw,
				Amount:           amount.FromRaw(raw, s.ledger.Decimals),
				BlockTimestampMs: row.BlockTimestampMs,
				SyncedAt:         now,
			})
		}

		if len(records) > 0 {
			n, err := s.store.InsertBulk(ctx, records)
			if err != nil {
				return inserted, fmt.Errorf("store transfers for %s: %w", wallet, err)
			}
			inserted += n
		}

		if result.Fingerprint == "" {
			break
		}
		opts.Fingerprint = result.Fingerprint
	}

	return inserted, nil
}

// SyncAll runs SyncWallet for each wallet in order. A failing wallet is
// logged and skipped so one bad address doesn't stall the rest.
func (s *Syncer) SyncAll(ctx context.Context, wallets []string) (int, error) {
	total := 0
	for _, w := range wallets {
		n, err := s.SyncWallet(ctx, w)
		total += n
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			s.logger.Printf("sync wallet %s: %v", w, err)
			continue
		}
		if n > 0 {
			s.logger.Printf("synced %d new transfers for %s", n, w)
		}
	}
	return total, nil
}

// sleepCtx sleeps for d or returns early when ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
