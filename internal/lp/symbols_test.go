package lp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-ingest/internal/cache"
	"token-ingest/internal/solana"
)

func TestSymbolResolver_KnownMints(t *testing.T) {
	fetcher := &fakeFetcher{}
	r := NewSymbolResolver(nil, fetcher, nil)

	assert.Equal(t, "SOL", r.Symbol(context.Background(), solana.WSOLMint))
	assert.Equal(t, "USDC", r.Symbol(context.Background(), solana.USDCMint))
	assert.Equal(t, 0, fetcher.calls)
}

func TestSymbolResolver_CachesMetadataSymbols(t *testing.T) {
	ctx := context.Background()
	mint := addr(60)
	c := cache.NewLRU(16, 0)
	fetcher := &fakeFetcher{symbols: map[solana.Address]string{mint: "JUP"}}
	r := NewSymbolResolver(c, fetcher, nil)

	assert.Equal(t, "JUP", r.Symbol(ctx, mint))
	assert.Equal(t, "JUP", r.Symbol(ctx, mint))
	assert.Equal(t, 1, fetcher.calls)

	v, ok, err := c.Get(ctx, "symbol:"+mint.String())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "JUP", v)
}

func TestSymbolResolver_FallbackNotCached(t *testing.T) {
	ctx := context.Background()
	mint := addr(61)
	c := cache.NewLRU(16, 0)
	fetcher := &fakeFetcher{err: errors.New("timeout")}
	r := NewSymbolResolver(c, fetcher, nil)

	assert.Equal(t, mint.Short(), r.Symbol(ctx, mint))
	assert.Equal(t, 0, c.Len())

	fetcher.err = nil
	assert.Equal(t, mint.Short(), r.Symbol(ctx, mint))
	assert.Equal(t, 2, fetcher.calls)
}
