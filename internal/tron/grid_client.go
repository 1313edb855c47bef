package tron

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// apiKeyHeader carries the TronGrid API key.
const apiKeyHeader = "TRON-PRO-API-KEY"

// GridClient implements Client against the TronGrid REST API.
type GridClient struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// GridOption configures GridClient.
type GridOption func(*GridClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) GridOption {
	return func(c *GridClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) GridOption {
	return func(c *GridClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) GridOption {
	return func(c *GridClient) {
		c.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) GridOption {
	return func(c *GridClient) {
		c.client = client
	}
}

// NewGridClient creates a TronGrid REST client.
func NewGridClient(baseURL, apiKey string, opts ...GridOption) *GridClient {
	c := &GridClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Client = (*GridClient)(nil)

// do performs one HTTP request with retries and exponential backoff and
// decodes the JSON body into result.
func (c *GridClient) do(ctx context.Context, method, path string, query url.Values, body interface{}, result interface{}) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		var bodyReader io.Reader
		if reqBody != nil {
			bodyReader = bytes.NewReader(reqBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if reqBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set(apiKeyHeader, c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
		}

		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// GetTransactionInfo retrieves receipt info for a transaction id.
// TronGrid answers unknown ids with an empty object; that maps to (nil, nil).
func (c *GridClient) GetTransactionInfo(ctx context.Context, txid string) (*TransactionInfo, error) {
	var result txInfoResult
	err := c.do(ctx, http.MethodPost, "/wallet/gettransactioninfobyid",
		nil, map[string]string{"value": txid}, &result)
	if err != nil {
		return nil, err
	}

	if result.ID == "" {
		return nil, nil
	}

	info := &TransactionInfo{
		ID:               result.ID,
		BlockNumber:      result.BlockNumber,
		BlockTimestampMs: result.BlockTimeStamp,
		Fee:              result.Fee,
	}
	if result.Receipt != nil {
		info.ReceiptResult = result.Receipt.Result
	}
	return info, nil
}

// txInfoResult is the raw response of gettransactioninfobyid.
type txInfoResult struct {
	ID             string         `json:"id"`
	BlockNumber    int64          `json:"blockNumber"`
	BlockTimeStamp int64          `json:"blockTimeStamp"`
	Fee            int64          `json:"fee"`
	Receipt        *txInfoReceipt `json:"receipt"`
}

type txInfoReceipt struct {
	Result string `json:"result"`
}

// GetTransactionEvents retrieves the events emitted by a transaction.
func (c *GridClient) GetTransactionEvents(ctx context.Context, txid string) ([]EventLog, error) {
	var result eventsResult
	path := "/v1/transactions/" + url.PathEscape(txid) + "/events"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &result); err != nil {
		return nil, err
	}

	events := make([]EventLog, 0, len(result.Data))
	for _, raw := range result.Data {
		events = append(events, EventLog{
			ContractAddress:  raw.ContractAddress,
			EventName:        raw.EventName,
			BlockTimestampMs: raw.BlockTimestamp,
			Result:           raw.Result,
		})
	}
	return events, nil
}

// eventsResult is the raw response of /v1/transactions/{txid}/events.
type eventsResult struct {
	Data []eventItem `json:"data"`
}

type eventItem struct {
	ContractAddress string            `json:"contract_address"`
	EventName       string            `json:"event_name"`
	BlockTimestamp  int64             `json:"block_timestamp"`
	Result          map[string]string `json:"result"`
}

// ListTransferEvents lists TRC-20 transfers touching an address.
func (c *GridClient) ListTransferEvents(ctx context.Context, address string, opts *TransferListOpts) (*TransferPage, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Contract != "" {
			query.Set("contract_address", opts.Contract)
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.OnlyConfirmed {
			query.Set("only_confirmed", "true")
		}
		if opts.OrderBy != "" {
			query.Set("order_by", opts.OrderBy)
		}
		if opts.MinTimestampMs > 0 {
			query.Set("min_timestamp", strconv.FormatInt(opts.MinTimestampMs, 10))
		}
		if opts.Fingerprint != "" {
			query.Set("fingerprint", opts.Fingerprint)
		}
	}

	var result transfersResult
	path := "/v1/accounts/" + url.PathEscape(address) + "/transactions/trc20"
	if err := c.do(ctx, http.MethodGet, path, query, nil, &result); err != nil {
		return nil, err
	}

	page := &TransferPage{Rows: make([]TransferRow, 0, len(result.Data))}
	for _, raw := range result.Data {
		row := TransferRow{
			TransactionID:    raw.TransactionID,
			From:             raw.From,
			To:               raw.To,
			Value:            raw.Value,
			BlockTimestampMs: raw.BlockTimestamp,
		}
		if raw.TokenInfo != nil {
			row.TokenContract = raw.TokenInfo.Address
		}
		page.Rows = append(page.Rows, row)
	}
	if result.Meta != nil {
		page.Fingerprint = result.Meta.Fingerprint
	}
	return page, nil
}

// transfersResult is the raw response of /v1/accounts/{addr}/transactions/trc20.
type transfersResult struct {
	Data []transferItem `json:"data"`
	Meta *transfersMeta `json:"meta"`
}

type transferItem struct {
	TransactionID  string     `json:"transaction_id"`
	TokenInfo      *tokenInfo `json:"token_info"`
	From           string     `json:"from"`
	To             string     `json:"to"`
	Value          string     `json:"value"`
	BlockTimestamp int64      `json:"block_timestamp"`
}

type tokenInfo struct {
	Address string `json:"address"`
}

type transfersMeta struct {
	Fingerprint string `json:"fingerprint"`
}

// GetNowBlock retrieves the current block height.
func (c *GridClient) GetNowBlock(ctx context.Context) (int64, error) {
	var result nowBlockResult
	err := c.do(ctx, http.MethodPost, "/wallet/getnowblock",
		nil, map[string]string{}, &result)
	if err != nil {
		return 0, err
	}
	return result.BlockHeader.RawData.Number, nil
}

// nowBlockResult is the raw response of getnowblock.
type nowBlockResult struct {
	BlockHeader struct {
		RawData struct {
			Number int64 `json:"number"`
		} `json:"raw_data"`
	} `json:"block_header"`
}
