package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"token-ingest/internal/cache"
	"token-ingest/internal/config"
	"token-ingest/internal/pda"
	"token-ingest/internal/storage"
	"token-ingest/internal/storage/memory"
)

func TestParseWorkItems(t *testing.T) {
	items, err := parseWorkItems(modeSolanaMetadata, "", "So11111111111111111111111111111111111111112, ,EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, storage.WorkItem{Chain: "solana", Kind: storage.KindMint, Key: "So11111111111111111111111111111111111111112"}, items[0])

	items, err = parseWorkItems(modeEVMTokens, "ethereum", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	require.NoError(t, err)
	assert.Equal(t, storage.KindContract, items[0].Kind)
	assert.Equal(t, "ethereum", items[0].Chain)

	items, err = parseWorkItems(modeBalances, "", "holder1:tokenA")
	require.NoError(t, err)
	assert.Equal(t, storage.WorkItem{
		Chain: "solana",
		Kind:  storage.KindBalance,
		Key:   "holder1",
		Extra: map[string]string{"token": "tokenA"},
	}, items[0])

	for name, tc := range map[string][3]string{
		"evm without chain":   {modeEVMTokens, "", "0x00"},
		"balance without sep": {modeBalances, "base", "holder-only"},
		"lp-watch with keys":  {modeLPWatch, "", "anything"},
	} {
		_, err := parseWorkItems(tc[0], tc[1], tc[2])
		assert.Error(t, err, name)
	}
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	srv := httptest.NewServer(newRouter(reg, modeLPWatch))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"status": "ok", "mode": modeLPWatch}, body)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/health", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCurveFor(t *testing.T) {
	off := false
	assert.IsType(t, pda.Ed25519Curve{}, curveFor(config.SolanaConfig{}))
	assert.IsType(t, pda.AlwaysOffCurve{}, curveFor(config.SolanaConfig{StrictCurve: &off}))
}

func TestConcurrencyFor(t *testing.T) {
	cfg := config.Default()
	cfg.Solana.Concurrency = 4
	cfg.Work.Concurrency = 12
	assert.Equal(t, 4, concurrencyFor(&cfg, modeSolanaMetadata))
	assert.Equal(t, 12, concurrencyFor(&cfg, modeEVMTokens))
	assert.Equal(t, 12, concurrencyFor(&cfg, modeBalances))
}

func TestOpenMemoryBackends(t *testing.T) {
	store, err := openStorage(context.Background(), config.StorageConfig{Driver: "memory"}, zap.NewNop())
	require.NoError(t, err)
	defer store.close()
	assert.IsType(t, &memory.Sink{}, store.sink)
	assert.IsType(t, &memory.WorkSource{}, store.work)

	c, closeCache, err := openCache(context.Background(), config.CacheConfig{Driver: "memory", Size: 10})
	require.NoError(t, err)
	defer closeCache()
	assert.IsType(t, &cache.LRU{}, c)
}

func TestRun_UnknownMode(t *testing.T) {
	cfg := config.Default()
	err := run(context.Background(), &cfg, options{mode: "backfill"}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown mode")
}

func TestRun_DryRunSolanaMetadataStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.MetricsAddr = ""
	cfg.Solana.RPCURL = "http://127.0.0.1:1"
	cfg.Retry.MaxAttempts = 1

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := run(ctx, &cfg, options{mode: modeSolanaMetadata}, zap.NewNop())
	assert.NoError(t, err)
}
