// Package main provides the unified validation service:
// - HTTP API: POST /validate classifies a receipt claim and records the outcome
// - Sync (scheduled): pulls monitored wallets' transfer history into storage
// - Block watcher (continuous): tracks chain head over WebSocket
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	gosync "sync"
	"syscall"
	"time"

	"tron-receipt-validator/internal/claim"
	"tron-receipt-validator/internal/classify"
	"tron-receipt-validator/internal/config"
	"tron-receipt-validator/internal/discovery"
	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/extraction"
	"tron-receipt-validator/internal/observability"
	"tron-receipt-validator/internal/storage"
	chstore "tron-receipt-validator/internal/storage/clickhouse"
	"tron-receipt-validator/internal/storage/memory"
	"tron-receipt-validator/internal/storage/migrations"
	pgstore "tron-receipt-validator/internal/storage/postgres"
	walletsync "tron-receipt-validator/internal/sync"
	"tron-receipt-validator/internal/tron"
	"tron-receipt-validator/internal/validation"
	"tron-receipt-validator/internal/wallet"
)

// Server holds all components of the validation service.
type Server struct {
	classifier *classify.Classifier
	extractor  extraction.Extractor
	syncer     *walletsync.Syncer
	wallets    *wallet.Set
	stores     *allStores
	logger     *log.Logger

	discoverDefault bool

	// State
	mu          gosync.Mutex
	started     time.Time
	lastSyncRun time.Time
	syncRunning bool
	syncRuns    int
	validations int
}

// allStores holds all storage implementations.
type allStores struct {
	receiptStore  storage.ReceiptStore
	transferStore storage.TransferStore
	outcomeStore  storage.OutcomeEventStore
}

func main() {
	config.LoadEnv()

	listenAddr := flag.String("listen-addr", ":8080", "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	walletsPath := flag.String("wallets", os.Getenv("WALLETS_FILE"), "Path to JSON array of monitored wallet addresses")
	walletList := flag.String("wallet-list", os.Getenv("WALLETS"), "Comma-separated monitored wallet addresses")
	baseURL := flag.String("base-url", envOr("TRONGRID_BASE_URL", config.DefaultBaseURL), "Ledger REST API base URL")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("TRON_WS_ENDPOINT"), "Ledger JSON-RPC WebSocket endpoint for block tracking (optional)")
	syncInterval := flag.Duration("sync-interval", 10*time.Minute, "Wallet transfer sync interval")
	discoverDefault := flag.Bool("discover-txid", true, "Default discovery behavior when a request does not specify it")
	geminiModel := flag.String("gemini-model", extraction.DefaultGeminiModel, "Extraction model name")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	wallets, err := loadWallets(*walletsPath, *walletList)
	if err != nil {
		logger.Fatalf("Load wallets: %v", err)
	}
	if wallets.Len() == 0 {
		logger.Fatal("No wallet addresses given. Use --wallets or --wallet-list")
	}
	logger.Printf("Monitoring %d wallet addresses", wallets.Len())

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	ledger := config.DefaultLedger()
	ledger.BaseURL = *baseURL
	ledger.APIKey = os.Getenv("TRONGRID_API_KEY")

	client := tron.NewGridClient(ledger.BaseURL, ledger.APIKey)
	finder := discovery.NewFinder(client, ledger, config.DefaultDiscovery())
	validator := validation.NewValidator(client, ledger)

	var extractor extraction.Extractor
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		extractor = extraction.NewGeminiExtractor(*geminiModel, apiKey)
	}

	server := &Server{
		classifier: classify.New(wallets, finder, validator),
		extractor:  extractor,
		syncer: walletsync.New(walletsync.Options{
			Client: client,
			Store:  stores.transferStore,
			Ledger: ledger,
			Logger: log.New(os.Stdout, "[sync] ", log.LstdFlags),
		}),
		wallets:         wallets,
		stores:          stores,
		logger:          logger,
		discoverDefault: *discoverDefault,
		started:         time.Now(),
	}

	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	go server.runSyncScheduler(ctx, *syncInterval)

	if *wsEndpoint != "" {
		go server.runBlockWatcher(ctx, *wsEndpoint)
	}

	err = server.serveHTTP(ctx, *listenAddr)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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

// createStores creates all required stores and runs migrations.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			receiptStore:  memory.NewReceiptStore(),
			transferStore: memory.NewTransferStore(),
			outcomeStore:  memory.NewOutcomeEventStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		receiptStore:  pgstore.NewReceiptStore(pool),
		transferStore: pgstore.NewTransferStore(pool),
		outcomeStore:  chstore.NewOutcomeEventStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// runSyncScheduler syncs wallet transfer history on a fixed interval.
func (s *Server) runSyncScheduler(ctx context.Context, interval time.Duration) {
	s.logger.Printf("Starting sync scheduler (interval: %v)...", interval)

	// Run immediately on start
	s.runSync(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

// runSync executes one sync pass over all monitored wallets.
func (s *Server) runSync(ctx context.Context) {
	s.mu.Lock()
	if s.syncRunning {
		s.mu.Unlock()
		s.logger.Println("Sync already running, skipping...")
		return
	}
	s.syncRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncRunning = false
		s.lastSyncRun = time.Now()
		s.syncRuns++
		s.mu.Unlock()
	}()

	start := time.Now()
	inserted, err := s.syncer.SyncAll(ctx, s.wallets.Addresses())
	if err != nil {
		s.logger.Printf("Sync error: %v", err)
		observability.RecordSyncRun("error", inserted)
		return
	}

	s.logger.Printf("Sync completed in %v: %d new transfers", time.Since(start), inserted)
	observability.RecordSyncRun("success", inserted)
	observability.DefaultMetrics.LastSuccessfulSync.Set(float64(time.Now().Unix()))
}

// runBlockWatcher tracks the chain head over WebSocket until ctx is done.
func (s *Server) runBlockWatcher(ctx context.Context, endpoint string) {
	logger := log.New(os.Stdout, "[watcher] ", log.LstdFlags)

	watcher, err := tron.NewBlockWatcher(ctx, endpoint, nil, logger)
	if err != nil {
		s.logger.Printf("Block watcher disabled: %v", err)
		return
	}
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case header, ok := <-watcher.Blocks():
			if !ok {
				return
			}
			observability.RecordBlock(header.Number)
		}
	}
}

// serveHTTP runs the HTTP API until ctx is cancelled.
func (s *Server) serveHTTP(ctx context.Context, addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/validate", s.handleValidate)

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("Starting HTTP server on %s", addr)
	return srv.ListenAndServe()
}

// ValidateRequest is the JSON body of POST /validate. Exactly one of Claim or
// ImageBase64 must be set.
type ValidateRequest struct {
	ReceiptID   string          `json:"receipt_id"`
	Claim       json.RawMessage `json:"claim,omitempty"`
	ImageBase64 string          `json:"image_base64,omitempty"`
	Discover    *bool           `json:"discover_txid,omitempty"`
	MessageTime string          `json:"message_time,omitempty"`
}

// handleValidate classifies one receipt and records the outcome.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ReceiptID == "" {
		http.Error(w, "receipt_id is required", http.StatusBadRequest)
		return
	}

	rawClaim, err := s.obtainClaim(r.Context(), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := classify.Options{Discover: s.discoverDefault}
	if req.Discover != nil {
		opts.Discover = *req.Discover
	}
	discovered := opts.Discover && rawClaim.TxID == "" && rawClaim.ExplorerURL == ""
	if req.MessageTime != "" {
		if t := claim.ParseUTC(req.MessageTime); t != nil {
			opts.MessageTime = *t
		}
	}

	start := time.Now()
	result := s.classifier.Classify(r.Context(), rawClaim, opts)
	elapsed := time.Since(start)

	s.recordOutcome(r.Context(), req.ReceiptID, rawClaim, result, discovered, elapsed)

	s.mu.Lock()
	s.validations++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// obtainClaim decodes the inline claim or extracts one from the uploaded image.
func (s *Server) obtainClaim(ctx context.Context, req *ValidateRequest) (domain.Claim, error) {
	if len(req.Claim) > 0 {
		return extraction.DecodeClaim(string(req.Claim))
	}

	if req.ImageBase64 == "" {
		return domain.Claim{}, fmt.Errorf("either claim or image_base64 is required")
	}
	if s.extractor == nil {
		return domain.Claim{}, fmt.Errorf("image extraction is not configured (GEMINI_API_KEY missing)")
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("decode image_base64: %w", err)
	}
	return s.extractor.ExtractClaim(ctx, image)
}

// recordOutcome persists the validation result and its analytics event.
// Storage faults are logged, not surfaced: the classification already
// happened and the caller gets the result either way.
func (s *Server) recordOutcome(ctx context.Context, receiptID string, c domain.Claim, result domain.ValidationResult, discovered bool, elapsed time.Duration) {
	now := time.Now().UnixMilli()

	record := &domain.ReceiptRecord{
		ReceiptID: receiptID,
		Status:    result.Status,
		CreatedAt: now,
	}
	if result.TxID != "" {
		txid := result.TxID
		record.TxID = &txid
	}
	if c.ToAddress != "" {
		to := c.ToAddress
		record.ToAddress = &to
	}
	if result.Amount != nil {
		amt := result.Amount.String()
		record.Amount = &amt
	}
	if result.Reason != "" {
		reason := result.Reason
		record.Reason = &reason
	}

	if err := s.stores.receiptStore.Insert(ctx, record); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("store receipt %s: %v", receiptID, err)
	}

	event := &domain.OutcomeEvent{
		ReceiptID:  receiptID,
		Status:     result.Status,
		TxID:       result.TxID,
		Discovered: discovered,
		DurationMs: elapsed.Milliseconds(),
		OccurredAt: now,
	}
	if err := s.stores.outcomeStore.Insert(ctx, event); err != nil {
		s.logger.Printf("store outcome event %s: %v", receiptID, err)
	}

	observability.RecordValidation(string(result.Status), elapsed.Seconds())
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status      string    `json:"status"`
	Uptime      string    `json:"uptime"`
	Wallets     int       `json:"wallets"`
	Validations int       `json:"validations"`
	LastSyncRun time.Time `json:"last_sync_run,omitempty"`
	SyncRuns    int       `json:"sync_runs"`
	SyncRunning bool      `json:"sync_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:      "running",
		Uptime:      time.Since(s.started).String(),
		Wallets:     s.wallets.Len(),
		Validations: s.validations,
		LastSyncRun: s.lastSyncRun,
		SyncRuns:    s.syncRuns,
		SyncRunning: s.syncRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
