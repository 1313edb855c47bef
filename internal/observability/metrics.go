// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Validation metrics
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration prometheus.Histogram

	// Discovery metrics
	DiscoveryRuns      *prometheus.CounterVec
	DiscoveryPages     prometheus.Histogram
	CandidatesMatched  prometheus.Histogram

	// Ledger client metrics
	LedgerCallLatency *prometheus.HistogramVec
	LedgerCallErrors  *prometheus.CounterVec

	// Sync metrics
	TransfersSynced prometheus.Counter
	SyncRunsTotal   *prometheus.CounterVec

	// Block watcher metrics
	BlocksSeen      prometheus.Counter
	HighestBlock    prometheus.Gauge
	WSReconnects    prometheus.Counter

	// Health metrics
	LastSuccessfulSync prometheus.Gauge
	UptimeSeconds      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "receipt_validator"
	}

	return &Metrics{
		// Validation metrics
		ValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "results_total",
			Help:      "Total number of validations by terminal status",
		}, []string{"status"}),
		ValidationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "duration_seconds",
			Help:      "End-to-end validation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Discovery metrics
		DiscoveryRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "runs_total",
			Help:      "Total number of candidate discovery runs by outcome",
		}, []string{"outcome"}),
		DiscoveryPages: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "pages_fetched",
			Help:      "Transfer history pages fetched per discovery run",
			Buckets:   []float64{1, 2, 3, 4, 5, 10},
		}),
		CandidatesMatched: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_matched",
			Help:      "Matching candidates found per discovery run",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		}),

		// Ledger client metrics
		LedgerCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "call_latency_seconds",
			Help:      "Ledger API call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		LedgerCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "call_errors_total",
			Help:      "Total number of ledger API call errors",
		}, []string{"method"}),

		// Sync metrics
		TransfersSynced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "transfers_synced_total",
			Help:      "Total number of transfer rows persisted by sync",
		}),
		SyncRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Total number of wallet sync runs by status",
		}, []string{"status"}),

		// Block watcher metrics
		BlocksSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "blocks_seen_total",
			Help:      "Total number of new block headers received",
		}),
		HighestBlock: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "highest_block",
			Help:      "Highest block number seen",
		}),
		WSReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "watcher",
			Name:      "ws_reconnects_total",
			Help:      "Total number of WebSocket reconnects",
		}),

		// Health metrics
		LastSuccessfulSync: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_sync_timestamp",
			Help:      "Unix timestamp of last successful transfer sync",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordValidation records one validation outcome with its duration.
func RecordValidation(status string, seconds float64) {
	DefaultMetrics.ValidationsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ValidationDuration.Observe(seconds)
}

// RecordDiscovery records a discovery run.
func RecordDiscovery(outcome string, pages, matched int) {
	DefaultMetrics.DiscoveryRuns.WithLabelValues(outcome).Inc()
	DefaultMetrics.DiscoveryPages.Observe(float64(pages))
	DefaultMetrics.CandidatesMatched.Observe(float64(matched))
}

// RecordLedgerCall records ledger API call latency.
func RecordLedgerCall(method string, seconds float64, err error) {
	DefaultMetrics.LedgerCallLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.LedgerCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordSyncRun records one wallet sync run.
func RecordSyncRun(status string, inserted int) {
	DefaultMetrics.SyncRunsTotal.WithLabelValues(status).Inc()
	if inserted > 0 {
		DefaultMetrics.TransfersSynced.Add(float64(inserted))
	}
}

// RecordBlock records a new block header observation.
func RecordBlock(number int64) {
	DefaultMetrics.BlocksSeen.Inc()
	DefaultMetrics.HighestBlock.Set(float64(number))
}

// RecordWSReconnect increments the WebSocket reconnect counter.
func RecordWSReconnect() {
	DefaultMetrics.WSReconnects.Inc()
}
