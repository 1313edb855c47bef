// Package main provides a one-shot receipt validation CLI: it extracts a
// payment claim from a receipt image (or reads a pre-extracted claim JSON),
// runs the classification pipeline against the ledger and prints a single
// JSON result line to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"tron-receipt-validator/internal/claim"
	"tron-receipt-validator/internal/classify"
	"tron-receipt-validator/internal/config"
	"tron-receipt-validator/internal/discovery"
	"tron-receipt-validator/internal/domain"
	"tron-receipt-validator/internal/extraction"
	"tron-receipt-validator/internal/tron"
	"tron-receipt-validator/internal/validation"
	"tron-receipt-validator/internal/wallet"
)

func main() {
	config.LoadEnv()

	walletsPath := flag.String("wallets", "", "Path to JSON array of monitored wallet addresses")
	walletList := flag.String("wallet-list", "", "Comma-separated monitored wallet addresses (alternative to --wallets)")
	claimPath := flag.String("claim", "", "Path to a pre-extracted claim JSON (skips image extraction)")
	discoverTxID := flag.Bool("discover-txid", false, "Search the recipient's transfer history when the receipt has no TxID")
	messageTime := flag.String("message-time", "", "Approximate receipt time, UTC (e.g. '2025-11-05 11:47:45')")
	baseURL := flag.String("base-url", config.DefaultBaseURL, "Ledger REST API base URL")
	geminiModel := flag.String("gemini-model", extraction.DefaultGeminiModel, "Extraction model name")
	timeout := flag.Duration("timeout", 90*time.Second, "Overall validation timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[validate] ", log.LstdFlags)

	wallets, err := loadWallets(*walletsPath, *walletList)
	if err != nil {
		logger.Fatalf("Load wallets: %v", err)
	}
	if wallets.Len() == 0 {
		logger.Fatal("No wallet addresses given. Use --wallets or --wallet-list")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	rawClaim, err := obtainClaim(ctx, *claimPath, *geminiModel, flag.Arg(0), logger)
	if err != nil {
		logger.Fatalf("Obtain claim: %v", err)
	}

	ledger := config.DefaultLedger()
	ledger.BaseURL = *baseURL
	ledger.APIKey = os.Getenv("TRONGRID_API_KEY")

	client := tron.NewGridClient(ledger.BaseURL, ledger.APIKey)
	finder := discovery.NewFinder(client, ledger, config.DefaultDiscovery())
	validator := validation.NewValidator(client, ledger)
	classifier := classify.New(wallets, finder, validator)

	opts := classify.Options{Discover: *discoverTxID}
	if *messageTime != "" {
		if t := claim.ParseUTC(*messageTime); t != nil {
			opts.MessageTime = *t
		} else {
			logger.Fatalf("Unparseable --message-time %q", *messageTime)
		}
	}

	result := classifier.Classify(ctx, rawClaim, opts)

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(result); err != nil {
		logger.Fatalf("Encode result: %v", err)
	}

	if !result.Confirmed() {
		os.Exit(1)
	}
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

// obtainClaim reads a claim from a JSON file or extracts one from the receipt
// image given as the positional argument.
func obtainClaim(ctx context.Context, claimPath, model, imagePath string, logger *log.Logger) (domain.Claim, error) {
	if claimPath != "" {
		data, err := os.ReadFile(claimPath)
		if err != nil {
			return domain.Claim{}, fmt.Errorf("read claim file: %w", err)
		}
		return extraction.DecodeClaim(string(data))
	}

	if imagePath == "" {
		return domain.Claim{}, fmt.Errorf("receipt image path required (or use --claim)")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return domain.Claim{}, fmt.Errorf("GEMINI_API_KEY is required for image extraction")
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("read receipt image: %w", err)
	}

	logger.Printf("Extracting claim from %s...", imagePath)
	extractor := extraction.NewGeminiExtractor(model, apiKey)
	return extractor.ExtractClaim(ctx, image)
}
