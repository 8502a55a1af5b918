package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	if out.Gauge != nil {
		return out.GetGauge().GetValue()
	}
	return out.GetCounter().GetValue()
}

func TestMetrics_Recorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "")

	m.RecordRPCAttempt("https://rpc.example.com/v1/secret-key", "getAccountInfo", "ok")
	m.RecordRPCAttempt("https://rpc.example.com/v1/secret-key", "getAccountInfo", "ok")
	m.RecordRPCRetry("https://rpc.example.com/v1/secret-key", "getAccountInfo")
	m.RecordRPCLatency("getAccountInfo", 120*time.Millisecond)
	m.RecordFlush("token_metadata", 5)
	m.RecordFlushError("token_metadata")
	m.SetQueueRows("token_metadata", 3)
	m.RecordItem("solana-metadata", "ok")
	m.RecordLPDetected("raydium_amm_v4")

	assert.Equal(t, 2.0, value(t, m.RPCRequests.WithLabelValues("rpc.example.com", "getAccountInfo", "ok")))
	assert.Equal(t, 1.0, value(t, m.RPCRetries.WithLabelValues("rpc.example.com", "getAccountInfo")))
	assert.Equal(t, 5.0, value(t, m.BatchRowsFlushed.WithLabelValues("token_metadata")))
	assert.Equal(t, 1.0, value(t, m.BatchFlushErrors.WithLabelValues("token_metadata")))
	assert.Equal(t, 3.0, value(t, m.BatchQueueRows.WithLabelValues("token_metadata")))
	assert.Equal(t, 1.0, value(t, m.ItemsProcessed.WithLabelValues("solana-metadata", "ok")))
	assert.Equal(t, 1.0, value(t, m.LPTokensDetected.WithLabelValues("raydium_amm_v4")))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	// Registering twice on one registry would panic; separate registries do not.
	NewMetrics(prometheus.NewRegistry(), "")
	NewMetrics(prometheus.NewRegistry(), "")
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "")
	m.RecordItem("balances", "error")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `token_ingest_ingestion_items_processed_total{service="balances",status="error"} 1`)
}
