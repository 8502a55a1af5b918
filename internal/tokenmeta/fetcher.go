// Package tokenmeta resolves display metadata for Solana mints from Metaplex
// metadata accounts and Token-2022 embedded metadata.
package tokenmeta

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"token-ingest/internal/decoder"
	"token-ingest/internal/pda"
	"token-ingest/internal/solana"
)

// Source identifies where metadata was found.
type Source string

const (
	SourceMetaplex  Source = "metaplex"
	SourceToken2022 Source = "token2022"
	SourceNone      Source = "none"
)

// TokenMetadata is the resolved metadata of a mint.
type TokenMetadata struct {
	Mint     string
	Name     string
	Symbol   string
	URI      string
	Decimals int
	Source   Source
}

// Fetcher looks up token metadata through an AccountReader.
type Fetcher struct {
	reader solana.AccountReader
	curve  pda.CurveChecker
	logger *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithCurve sets the curve check used for metadata PDA derivation.
func WithCurve(c pda.CurveChecker) Option {
	return func(f *Fetcher) {
		f.curve = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(reader solana.AccountReader, opts ...Option) *Fetcher {
	f := &Fetcher{
		reader: reader,
		curve:  pda.Ed25519Curve{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns metadata for mint. The mint and its Metaplex PDA are read in
// one request. Metaplex wins over Token-2022; with neither present the result
// has SourceNone and empty strings. decimalsHint is used when the mint
// account is missing or undecodable. Only transport and derivation errors are
// returned.
func (f *Fetcher) Fetch(ctx context.Context, mint solana.Address, decimalsHint int) (*TokenMetadata, error) {
	metadataPDA, err := solana.MetadataAddress(mint, f.curve)
	if err != nil {
		return nil, err
	}

	accounts, err := f.reader.GetMultipleAccountsInfo(ctx, []solana.Address{mint, metadataPDA})
	if err != nil {
		return nil, fmt.Errorf("fetch mint %s: %w", mint, err)
	}
	if len(accounts) != 2 {
		return nil, fmt.Errorf("fetch mint %s: expected 2 accounts, got %d", mint, len(accounts))
	}
	mintAccount, metadataAccount := accounts[0], accounts[1]

	result := &TokenMetadata{
		Mint:     mint.String(),
		Decimals: decimalsHint,
		Source:   SourceNone,
	}
	if mintAccount != nil {
		if m := decoder.ParseMint(mintAccount.Data); m != nil {
			result.Decimals = int(m.Decimals)
		}
	}

	if metadataAccount != nil && metadataAccount.Owner == solana.MetaplexProgram {
		if md := decoder.ParseMetaplexMetadata(metadataAccount.Data); md != nil {
			result.Name, result.Symbol, result.URI = md.Name, md.Symbol, md.URI
			result.Source = SourceMetaplex
			return result, nil
		}
	}

	if mintAccount != nil {
		if md := parseToken2022(mintAccount); md != nil {
			result.Name, result.Symbol, result.URI = md.Name, md.Symbol, md.URI
			result.Source = SourceToken2022
			return result, nil
		}
	}

	f.logger.Debug("no metadata found", zap.String("mint", result.Mint))
	return result, nil
}

// parseToken2022 tries the compact type offset first, then the padded one
// written by the on-chain program.
func parseToken2022(account *solana.AccountInfo) *decoder.Token2022Metadata {
	if md := decoder.ParseToken2022Extensions(account.Data, account.Owner); md != nil {
		return md
	}
	return decoder.ParseToken2022ExtensionsAt(account.Data, account.Owner, decoder.TypeOffsetPadded)
}
