package lp

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"token-ingest/internal/decoder"
	"token-ingest/internal/solana"
)

// LPCheck is the result of IsLPToken. Pool is the mint authority account
// owned by the AMM program.
type LPCheck struct {
	IsLPToken bool
	Pool      *solana.Address
}

// LPMetadata is the synthesized display metadata of an LP token.
type LPMetadata struct {
	Name   string
	Symbol string
	Pool   PoolInfo
}

// Detector detects and describes LP tokens of one AMM family.
type Detector struct {
	family  Family
	reader  solana.AccountReader
	symbols *SymbolResolver
	logger  *zap.Logger
}

// NewDetector creates a Detector. A nil symbols resolver resolves only
// well-known mints and shortened addresses.
func NewDetector(family Family, reader solana.AccountReader, symbols *SymbolResolver, logger *zap.Logger) *Detector {
	if symbols == nil {
		symbols = NewSymbolResolver(nil, nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{family: family, reader: reader, symbols: symbols, logger: logger}
}

// Family returns the detector's AMM family.
func (d *Detector) Family() Family {
	return d.family
}

// IsLPToken reports whether mint's authority is an account owned by the
// family's program. A missing mint, a mint without authority or a missing
// authority account is not an LP token.
func (d *Detector) IsLPToken(ctx context.Context, mint solana.Address) (LPCheck, error) {
	mintAccount, err := d.reader.GetAccountInfo(ctx, mint)
	if err != nil {
		return LPCheck{}, fmt.Errorf("get mint %s: %w", mint, err)
	}
	if mintAccount == nil {
		return LPCheck{}, nil
	}

	authority, ok := decoder.MintAuthority(mintAccount.Data)
	if !ok {
		return LPCheck{}, nil
	}

	authorityAccount, err := d.reader.GetAccountInfo(ctx, authority)
	if err != nil {
		return LPCheck{}, fmt.Errorf("get mint authority %s: %w", authority, err)
	}
	if authorityAccount == nil || authorityAccount.Owner != d.family.Program() {
		return LPCheck{}, nil
	}
	return LPCheck{IsLPToken: true, Pool: &authority}, nil
}

// DeriveLPMetadata fetches and parses pool, then synthesizes its LP name and
// symbol. Returns nil when the account is missing, owned by another program
// or too short.
func (d *Detector) DeriveLPMetadata(ctx context.Context, pool solana.Address) (*LPMetadata, error) {
	account, err := d.reader.GetAccountInfo(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("get pool %s: %w", pool, err)
	}
	if account == nil || account.Owner != d.family.Program() {
		return nil, nil
	}
	info := d.family.ParsePool(account.Data)
	if info == nil {
		d.logger.Debug("pool account too short",
			zap.String("family", d.family.ID()),
			zap.String("pool", pool.String()),
			zap.Int("size", len(account.Data)))
		return nil, nil
	}
	info.Pool = pool
	return d.Describe(ctx, *info), nil
}

// Describe synthesizes LP metadata for an already parsed pool.
func (d *Detector) Describe(ctx context.Context, info PoolInfo) *LPMetadata {
	symbols := make([]string, len(info.Mints))
	for i, m := range info.Mints {
		symbols[i] = d.symbols.Symbol(ctx, m)
	}
	pair := strings.Join(symbols, "-")
	return &LPMetadata{
		Name:   fmt.Sprintf("%s %s LP", d.family.Name(), pair),
		Symbol: pair + "-LP",
		Pool:   info,
	}
}
