package tron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WatcherConfig configures WebSocket block watcher behavior.
type WatcherConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is the maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWatcherConfig returns default watcher configuration.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       120 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// BlockWatcher streams new block headers from a TRON node's JSON-RPC
// WebSocket endpoint (eth_subscribe newHeads). It reconnects with
// exponential backoff and resubscribes after connection loss.
type BlockWatcher struct {
	endpoint string
	config   WatcherConfig
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	out  chan BlockHeader
	done chan struct{}
	wg   sync.WaitGroup
}

// NewBlockWatcher connects to the endpoint, subscribes to new block headers
// and starts the read and ping loops.
func NewBlockWatcher(ctx context.Context, endpoint string, config *WatcherConfig, logger *log.Logger) (*BlockWatcher, error) {
	cfg := DefaultWatcherConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	w := &BlockWatcher{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		out:      make(chan BlockHeader, 64),
		done:     make(chan struct{}),
	}

	if err := w.connect(ctx); err != nil {
		return nil, err
	}
	if err := w.subscribe(); err != nil {
		w.closeConn()
		return nil, err
	}

	w.wg.Add(1)
	go w.readLoop()

	w.wg.Add(1)
	go w.pingLoop()

	return w, nil
}

// Blocks returns the channel of new block headers. The channel is closed
// when the watcher shuts down.
func (w *BlockWatcher) Blocks() <-chan BlockHeader {
	return w.out
}

// Close shuts the watcher down and closes the Blocks channel.
func (w *BlockWatcher) Close() error {
	if w.closed.Swap(true) {
		return nil // already closed
	}
	close(w.done)
	w.closeConn()
	w.wg.Wait()
	close(w.out)
	return nil
}

// connect establishes the WebSocket connection.
func (w *BlockWatcher) connect(ctx context.Context) error {
	w.connMu.Lock()
	defer w.connMu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	w.conn = conn
	return nil
}

func (w *BlockWatcher) closeConn() {
	w.connMu.Lock()
	defer w.connMu.Unlock()
	if w.conn != nil {
		w.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		w.conn.Close()
		w.conn = nil
	}
}

// subscribe sends the newHeads subscription request.
func (w *BlockWatcher) subscribe() error {
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_subscribe",
		Params:  []interface{}{"newHeads"},
	}

	w.connMu.Lock()
	defer w.connMu.Unlock()
	if w.conn == nil {
		return fmt.Errorf("not connected")
	}
	w.conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
	if err := w.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// readLoop reads messages and dispatches header notifications, reconnecting
// on connection loss.
func (w *BlockWatcher) readLoop() {
	defer w.wg.Done()

	reconnectDelay := w.config.ReconnectDelay

	for !w.closed.Load() {
		w.connMu.Lock()
		conn := w.conn
		w.connMu.Unlock()

		if conn == nil {
			if !w.reconnect(reconnectDelay) {
				return
			}
			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > w.config.MaxReconnectDelay {
				reconnectDelay = w.config.MaxReconnectDelay
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(w.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if w.closed.Load() {
				return
			}
			w.logger.Printf("[watcher] read error, reconnecting: %v", err)
			w.connMu.Lock()
			if w.conn != nil {
				w.conn.Close()
				w.conn = nil
			}
			w.connMu.Unlock()
			continue
		}

		// Reset backoff after a successful read.
		reconnectDelay = w.config.ReconnectDelay

		w.handleMessage(message)
	}
}

// reconnect waits for the backoff delay, dials and resubscribes.
// Returns false when the watcher is shutting down.
func (w *BlockWatcher) reconnect(delay time.Duration) bool {
	select {
	case <-w.done:
		return false
	case <-time.After(delay):
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.connect(ctx); err != nil {
		w.logger.Printf("[watcher] reconnect failed: %v", err)
		return true
	}
	if err := w.subscribe(); err != nil {
		w.logger.Printf("[watcher] resubscribe failed: %v", err)
		w.closeConn()
		return true
	}
	return true
}

// handleMessage parses a notification and forwards the block header.
func (w *BlockWatcher) handleMessage(message []byte) {
	var notif wsHeadNotification
	if err := json.Unmarshal(message, &notif); err != nil {
		return
	}
	if notif.Method != "eth_subscription" || notif.Params == nil {
		return
	}

	head := notif.Params.Result
	header := BlockHeader{
		Number:      parseHexQuantity(head.Number),
		TimestampMs: parseHexQuantity(head.Timestamp) * 1000,
		Hash:        head.Hash,
	}

	select {
	case w.out <- header:
	case <-w.done:
	default:
		// Slow consumer: drop the oldest pending header.
		select {
		case <-w.out:
		default:
		}
		select {
		case w.out <- header:
		default:
		}
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (w *BlockWatcher) pingLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.connMu.Lock()
			if w.conn != nil {
				w.conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
				// A failed ping means the connection is dead; the reader
				// handles reconnecting.
				w.conn.WriteMessage(websocket.PingMessage, nil)
			}
			w.connMu.Unlock()
		}
	}
}

// parseHexQuantity parses a 0x-prefixed hex quantity, returning 0 on error.
func parseHexQuantity(s string) int64 {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0
	}
	return n
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsHeadNotification struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  *wsHeadParams `json:"params"`
}

type wsHeadParams struct {
	Subscription string       `json:"subscription"`
	Result       wsHeadResult `json:"result"`
}

type wsHeadResult struct {
	Number    string `json:"number"`
	Timestamp string `json:"timestamp"`
	Hash      string `json:"hash"`
}
