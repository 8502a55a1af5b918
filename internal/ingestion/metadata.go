package ingestion

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"token-ingest/internal/lp"
	"token-ingest/internal/solana"
	"token-ingest/internal/storage"
	"token-ingest/internal/tokenmeta"
)

// LPDetector detects LP tokens of one AMM family. *lp.Detector implements it.
type LPDetector interface {
	Family() lp.Family
	IsLPToken(ctx context.Context, mint solana.Address) (lp.LPCheck, error)
	DeriveLPMetadata(ctx context.Context, pool solana.Address) (*lp.LPMetadata, error)
}

// SolanaMetadataConfig configures SolanaMetadataService.
type SolanaMetadataConfig struct {
	Work        storage.WorkSource
	Fetcher     lp.MetadataFetcher
	Detectors   []LPDetector
	Queue       Enqueuer
	Limit       int
	Concurrency int
	Logger      *zap.Logger
	Metrics     Metrics
}

// SolanaMetadataService resolves metadata of pending Solana mints.
type SolanaMetadataService struct {
	cfg        SolanaMetadataConfig
	dispatcher *Dispatcher
	logger     *zap.Logger
	metrics    Metrics
}

// NewSolanaMetadataService creates the service.
func NewSolanaMetadataService(cfg SolanaMetadataConfig) *SolanaMetadataService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	return &SolanaMetadataService{
		cfg: cfg,
		dispatcher: &Dispatcher{
			Service:     "solana_metadata",
			Concurrency: cfg.Concurrency,
			Logger:      cfg.Logger,
			Metrics:     cfg.Metrics,
		},
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
}

// RunOnce processes one batch of pending mints. Mints without Metaplex or
// Token-2022 metadata are checked against every LP family; a detected LP
// token also gets an lp_tokens row.
func (s *SolanaMetadataService) RunOnce(ctx context.Context) (Result, error) {
	items, err := s.cfg.Work.Pending(ctx, storage.KindMint, s.cfg.Limit)
	if err != nil {
		return Result{}, fmt.Errorf("pending mints: %w", err)
	}
	r := newRun()
	return s.dispatcher.Run(ctx, items, func(ctx context.Context, item storage.WorkItem) error {
		return s.process(ctx, r, item)
	})
}

func (s *SolanaMetadataService) process(ctx context.Context, r run, item storage.WorkItem) error {
	mint, err := solana.ParseAddress(item.Key)
	if err != nil {
		return fmt.Errorf("parse mint: %w", err)
	}

	md, err := s.cfg.Fetcher.Fetch(ctx, mint, decimalsHint(item))
	if err != nil {
		return err
	}
	if err := s.cfg.Queue.Add(ctx, TableTokenMetadata, r.stamp(storage.Row{
		"mint":     md.Mint,
		"name":     md.Name,
		"symbol":   md.Symbol,
		"uri":      md.URI,
		"decimals": int64(md.Decimals),
		"source":   string(md.Source),
	})); err != nil {
		return err
	}

	if md.Source != tokenmeta.SourceNone {
		return nil
	}
	return s.detectLP(ctx, r, mint)
}

// detectLP stops at the first family that claims the mint.
func (s *SolanaMetadataService) detectLP(ctx context.Context, r run, mint solana.Address) error {
	for _, d := range s.cfg.Detectors {
		check, err := d.IsLPToken(ctx, mint)
		if err != nil {
			return err
		}
		if !check.IsLPToken {
			continue
		}
		meta, err := d.DeriveLPMetadata(ctx, *check.Pool)
		if err != nil {
			return err
		}
		if meta == nil {
			s.logger.Debug("lp pool not decodable",
				zap.String("family", d.Family().ID()),
				zap.String("mint", mint.String()),
				zap.String("pool", check.Pool.String()))
			return nil
		}
		s.metrics.RecordLPDetected(d.Family().ID())
		return s.cfg.Queue.Add(ctx, TableLPTokens, r.stamp(storage.Row{
			"mint":   mint.String(),
			"family": d.Family().ID(),
			"pool":   check.Pool.String(),
			"name":   meta.Name,
			"symbol": meta.Symbol,
		}))
	}
	return nil
}

// decimalsHint reads the optional "decimals" extra; -1 when absent.
func decimalsHint(item storage.WorkItem) int {
	if v, ok := item.Extra["decimals"]; ok {
		if d, err := strconv.Atoi(v); err == nil {
			return d
		}
	}
	return -1
}
