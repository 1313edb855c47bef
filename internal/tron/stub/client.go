// Package stub provides an in-memory tron.Client for testing.
package stub

import (
	"context"
	"errors"

	"tron-receipt-validator/internal/tron"
)

// ErrUnavailable simulates a transport fault when set on a method.
var ErrUnavailable = errors.New("ledger unavailable")

// Client implements tron.Client from fixed in-memory data.
type Client struct {
	Infos     map[string]*tron.TransactionInfo
	Events    map[string][]tron.EventLog
	Transfers map[string][]tron.TransferPage // pages per address, served in order
	NowBlock  int64

	// FailInfo, FailEvents and FailTransfers make the corresponding call
	// return ErrUnavailable.
	FailInfo      bool
	FailEvents    bool
	FailTransfers bool

	// ListCalls counts ListTransferEvents invocations (one per page).
	ListCalls int

	pageIdx map[string]int
}

// NewClient creates an empty stub client.
func NewClient() *Client {
	return &Client{
		Infos:     make(map[string]*tron.TransactionInfo),
		Events:    make(map[string][]tron.EventLog),
		Transfers: make(map[string][]tron.TransferPage),
		pageIdx:   make(map[string]int),
	}
}

// GetTransactionInfo retrieves receipt info from the stub store.
// Unknown ids return (nil, nil), matching the production client.
func (c *Client) GetTransactionInfo(_ context.Context, txid string) (*tron.TransactionInfo, error) {
	if c.FailInfo {
		return nil, ErrUnavailable
	}
	return c.Infos[txid], nil
}

// GetTransactionEvents retrieves events from the stub store.
func (c *Client) GetTransactionEvents(_ context.Context, txid string) ([]tron.EventLog, error) {
	if c.FailEvents {
		return nil, ErrUnavailable
	}
	return c.Events[txid], nil
}

// ListTransferEvents serves the configured pages for an address in order.
// The fingerprint in opts is ignored; pages advance per call, which matches
// how discovery consumes the cursor.
func (c *Client) ListTransferEvents(_ context.Context, address string, _ *tron.TransferListOpts) (*tron.TransferPage, error) {
	if c.FailTransfers {
		return nil, ErrUnavailable
	}

	c.ListCalls++
	pages := c.Transfers[address]
	idx := c.pageIdx[address]
	if idx >= len(pages) {
		return &tron.TransferPage{}, nil
	}
	c.pageIdx[address] = idx + 1
	page := pages[idx]
	return &page, nil
}

// GetNowBlock returns the configured block height.
func (c *Client) GetNowBlock(_ context.Context) (int64, error) {
	return c.NowBlock, nil
}

// AddTransferPage appends a page to an address's transfer listing.
func (c *Client) AddTransferPage(address string, page tron.TransferPage) {
	c.Transfers[address] = append(c.Transfers[address], page)
}

// Compile-time interface check.
var _ tron.Client = (*Client)(nil)
