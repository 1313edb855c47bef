// Package main provides a one-shot transfer history sync: it pulls new TRC-20
// transfers for the monitored wallets from the ledger into PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tron-receipt-validator/internal/config"
	"tron-receipt-validator/internal/storage"
	"tron-receipt-validator/internal/storage/memory"
	"tron-receipt-validator/internal/storage/migrations"
	pgstore "tron-receipt-validator/internal/storage/postgres"
	walletsync "tron-receipt-validator/internal/sync"
	"tron-receipt-validator/internal/tron"
	"tron-receipt-validator/internal/wallet"
)

func main() {
	config.LoadEnv()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (dry run)")
	walletsPath := flag.String("wallets", os.Getenv("WALLETS_FILE"), "Path to JSON array of monitored wallet addresses")
	walletList := flag.String("wallet-list", os.Getenv("WALLETS"), "Comma-separated monitored wallet addresses")
	baseURL := flag.String("base-url", config.DefaultBaseURL, "Ledger REST API base URL")
	maxPages := flag.Int("max-pages", walletsync.DefaultConfig().MaxPages, "Pages fetched per wallet")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall sync timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[sync] ", log.LstdFlags)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for a dry run)")
	}

	wallets, err := loadWallets(*walletsPath, *walletList)
	if err != nil {
		logger.Fatalf("Load wallets: %v", err)
	}
	if wallets.Len() == 0 {
		logger.Fatal("No wallet addresses given. Use --wallets or --wallet-list")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, stopping...", sig)
		cancel()
	}()

	store, cleanup, err := createStore(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create store: %v", err)
	}
	defer cleanup()

	ledger := config.DefaultLedger()
	ledger.BaseURL = *baseURL
	ledger.APIKey = os.Getenv("TRONGRID_API_KEY")

	cfg := walletsync.DefaultConfig()
	cfg.MaxPages = *maxPages

	syncer := walletsync.New(walletsync.Options{
		Client: tron.NewGridClient(ledger.BaseURL, ledger.APIKey),
		Store:  store,
		Ledger: ledger,
		Config: cfg,
		Logger: logger,
	})

	start := time.Now()
	inserted, err := syncer.SyncAll(ctx, wallets.Addresses())
	if err != nil {
		logger.Fatalf("Sync failed after %d inserts: %v", inserted, err)
	}

	logger.Printf("Sync completed in %v: %d new transfers across %d wallets",
		time.Since(start), inserted, wallets.Len())
}

// loadWallets builds the monitored wallet set from a JSON file, a
// comma-separated list, or both.
func loadWallets(path, list string) (*wallet.Set, error) {
	var addresses []string

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read wallets file: %w", err)
		}
		if err := json.Unmarshal(data, &addresses); err != nil {
			return nil, fmt.Errorf("parse wallets file: %w", err)
		}
	}

	if list != "" {
		for _, a := range strings.Split(list, ",") {
			a = strings.TrimSpace(a)
			if a != "" {
				addresses = append(addresses, a)
			}
		}
	}

	return wallet.NewSet(addresses)
}

// createStore opens the transfer store, running migrations first.
func createStore(ctx context.Context, postgresDSN string, useMemory bool) (storage.TransferStore, func(), error) {
	if useMemory {
		return memory.NewTransferStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	return pgstore.NewTransferStore(pool), func() { pool.Close() }, nil
}
