package lp

import (
	"context"

	"go.uber.org/zap"

	"token-ingest/internal/cache"
	"token-ingest/internal/solana"
	"token-ingest/internal/tokenmeta"
)

const symbolKeyPrefix = "symbol:"

// MetadataFetcher is satisfied by *tokenmeta.Fetcher.
type MetadataFetcher interface {
	Fetch(ctx context.Context, mint solana.Address, decimalsHint int) (*tokenmeta.TokenMetadata, error)
}

// SymbolResolver maps mints to display symbols.
//
// Lookup order: well-known mints, cache, token metadata, then the shortened
// address. Symbols found in metadata are written back to the cache.
type SymbolResolver struct {
	cache   cache.Cache
	fetcher MetadataFetcher
	logger  *zap.Logger
}

// NewSymbolResolver creates a resolver. c and fetcher may be nil.
func NewSymbolResolver(c cache.Cache, fetcher MetadataFetcher, logger *zap.Logger) *SymbolResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SymbolResolver{cache: c, fetcher: fetcher, logger: logger}
}

// Symbol returns the display symbol for mint. Lookup failures degrade to the
// shortened address and are logged.
func (r *SymbolResolver) Symbol(ctx context.Context, mint solana.Address) string {
	if s, ok := solana.KnownSymbols[mint]; ok {
		return s
	}

	key := symbolKeyPrefix + mint.String()
	if r.cache != nil {
		s, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("symbol cache get failed", zap.String("mint", mint.String()), zap.Error(err))
		} else if ok {
			return s
		}
	}

	if r.fetcher != nil {
		md, err := r.fetcher.Fetch(ctx, mint, 0)
		if err != nil {
			r.logger.Warn("symbol metadata lookup failed", zap.String("mint", mint.String()), zap.Error(err))
		} else if md.Symbol != "" {
			if r.cache != nil {
				if err := r.cache.Set(ctx, key, md.Symbol); err != nil {
					r.logger.Warn("symbol cache set failed", zap.String("mint", mint.String()), zap.Error(err))
				}
			}
			return md.Symbol
		}
	}

	return mint.Short()
}
