// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "token_ingest"

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Transport metrics
	RPCRequests *prometheus.CounterVec
	RPCRetries  *prometheus.CounterVec
	RPCLatency  *prometheus.HistogramVec

	// Ingestion metrics
	ItemsProcessed    *prometheus.CounterVec
	LPTokensDetected  *prometheus.CounterVec
	PoolNotifications *prometheus.CounterVec

	// Batch queue metrics
	BatchRowsFlushed *prometheus.CounterVec
	BatchFlushErrors *prometheus.CounterVec
	BatchQueueRows   *prometheus.GaugeVec

	// Health metrics
	LastSuccessfulRun *prometheus.GaugeVec
}

// NewMetrics creates metrics registered on reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	f := promauto.With(reg)

	return &Metrics{
		RPCRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "JSON-RPC attempts by endpoint host, method and outcome",
		}, []string{"target", "method", "outcome"}),
		RPCRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "retries_total",
			Help:      "JSON-RPC retries by endpoint host and method",
		}, []string{"target", "method"}),
		RPCLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "latency_seconds",
			Help:      "JSON-RPC call latency including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		ItemsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "items_processed_total",
			Help:      "Work items processed by service and status",
		}, []string{"service", "status"}),
		LPTokensDetected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "lp_tokens_detected_total",
			Help:      "LP token mints detected by AMM family",
		}, []string{"family"}),
		PoolNotifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "pool_notifications_total",
			Help:      "Pool account notifications by AMM family and status",
		}, []string{"family", "status"}),

		BatchRowsFlushed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "rows_flushed_total",
			Help:      "Rows written to the sink by table",
		}, []string{"table"}),
		BatchFlushErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "flush_errors_total",
			Help:      "Rejected batch flushes by table",
		}, []string{"table"}),
		BatchQueueRows: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "queue_rows",
			Help:      "Rows buffered per table",
		}, []string{"table"}),

		LastSuccessfulRun: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last completed pass by service",
		}, []string{"service"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// targetHost drops path and query from an endpoint URL; they often carry
// API keys.
func targetHost(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Host
}

// RecordRPCAttempt implements rpc.Recorder.
func (m *Metrics) RecordRPCAttempt(target, method, outcome string) {
	m.RPCRequests.WithLabelValues(targetHost(target), method, outcome).Inc()
}

// RecordRPCRetry implements rpc.Recorder.
func (m *Metrics) RecordRPCRetry(target, method string) {
	m.RPCRetries.WithLabelValues(targetHost(target), method).Inc()
}

// RecordRPCLatency implements rpc.Recorder.
func (m *Metrics) RecordRPCLatency(method string, d time.Duration) {
	m.RPCLatency.WithLabelValues(method).Observe(d.Seconds())
}

// RecordFlush implements batch.Metrics.
func (m *Metrics) RecordFlush(table string, rows int) {
	m.BatchRowsFlushed.WithLabelValues(table).Add(float64(rows))
}

// RecordFlushError implements batch.Metrics.
func (m *Metrics) RecordFlushError(table string) {
	m.BatchFlushErrors.WithLabelValues(table).Inc()
}

// SetQueueRows implements batch.Metrics.
func (m *Metrics) SetQueueRows(table string, rows int) {
	m.BatchQueueRows.WithLabelValues(table).Set(float64(rows))
}

// RecordItem counts one processed work item.
func (m *Metrics) RecordItem(service, status string) {
	m.ItemsProcessed.WithLabelValues(service, status).Inc()
}

// RecordLPDetected counts a detected LP token.
func (m *Metrics) RecordLPDetected(family string) {
	m.LPTokensDetected.WithLabelValues(family).Inc()
}

// RecordPoolNotification counts a pool account notification.
func (m *Metrics) RecordPoolNotification(family, status string) {
	m.PoolNotifications.WithLabelValues(family, status).Inc()
}

// RecordRunCompleted stamps the last successful pass of service.
func (m *Metrics) RecordRunCompleted(service string, at time.Time) {
	m.LastSuccessfulRun.WithLabelValues(service).Set(float64(at.Unix()))
}
