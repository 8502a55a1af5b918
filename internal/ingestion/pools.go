package ingestion

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"token-ingest/internal/cache"
	"token-ingest/internal/lp"
	"token-ingest/internal/solana"
	"token-ingest/internal/storage"
)

// Pool notification status labels.
const (
	PoolStored    = "stored"
	PoolDuplicate = "duplicate"
	PoolUnparsed  = "unparsed"
	PoolFailed    = "failed"
)

// PoolDescriber names parsed pools of one family. *lp.Detector implements it.
type PoolDescriber interface {
	Family() lp.Family
	Describe(ctx context.Context, info lp.PoolInfo) *lp.LPMetadata
}

// PoolWatcherConfig configures PoolWatcher.
type PoolWatcherConfig struct {
	WS         solana.WSClient
	Describers []PoolDescriber
	// Seen suppresses pools already stored by this process. Nil uses an
	// unbounded-age LRU.
	Seen    cache.Cache
	Queue   Enqueuer
	Logger  *zap.Logger
	Metrics Metrics
}

// PoolWatcher streams pool accounts of every family and stores each new pool.
type PoolWatcher struct {
	cfg     PoolWatcherConfig
	logger  *zap.Logger
	metrics Metrics
}

// NewPoolWatcher creates the watcher.
func NewPoolWatcher(cfg PoolWatcherConfig) *PoolWatcher {
	if cfg.Seen == nil {
		cfg.Seen = cache.NewLRU(cache.DefaultSize, 0)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	return &PoolWatcher{cfg: cfg, logger: cfg.Logger, metrics: cfg.Metrics}
}

// Run subscribes to every family's program and blocks until ctx is
// cancelled or all subscriptions end. Per-notification failures are logged.
func (w *PoolWatcher) Run(ctx context.Context) error {
	r := newRun()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range w.cfg.Describers {
		f := d.Family()
		ch, err := w.cfg.WS.SubscribeProgram(gctx, solana.ProgramFilter{
			Program:  f.Program(),
			DataSize: f.DataSize(),
		})
		if err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("subscribe %s: %w", f.ID(), err)
		}
		w.logger.Info("watching pools",
			zap.String("family", f.ID()),
			zap.String("program", f.Program().String()),
			zap.Uint64("data_size", f.DataSize()))

		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case n, ok := <-ch:
					if !ok {
						return nil
					}
					status := w.handle(gctx, r, d, n)
					w.metrics.RecordPoolNotification(f.ID(), status)
				}
			}
		})
	}
	return g.Wait()
}

func (w *PoolWatcher) handle(ctx context.Context, r run, d PoolDescriber, n solana.ProgramNotification) string {
	f := d.Family()
	if n.Account.Owner != f.Program() {
		return StatusSkipped
	}
	info := f.ParsePool(n.Account.Data)
	if info == nil {
		return PoolUnparsed
	}
	info.Pool = n.Pubkey

	key := "pool:" + f.ID() + ":" + n.Pubkey.String()
	if _, seen, err := w.cfg.Seen.Get(ctx, key); err != nil {
		w.logger.Warn("pool cache read failed", zap.String("pool", n.Pubkey.String()), zap.Error(err))
	} else if seen {
		return PoolDuplicate
	}

	meta := d.Describe(ctx, *info)
	row := storage.Row{
		"pool":    n.Pubkey.String(),
		"family":  f.ID(),
		"mint_a":  mintAt(info.Mints, 0),
		"mint_b":  mintAt(info.Mints, 1),
		"lp_mint": "",
		"name":    meta.Name,
		"symbol":  meta.Symbol,
		"slot":    n.Slot,
	}
	if info.LPMint != nil {
		row["lp_mint"] = info.LPMint.String()
	}
	if err := w.cfg.Queue.Add(ctx, TableLPPools, r.stamp(row)); err != nil {
		w.logger.Warn("enqueue pool failed", zap.String("pool", n.Pubkey.String()), zap.Error(err))
		return PoolFailed
	}
	if err := w.cfg.Seen.Set(ctx, key, meta.Symbol); err != nil {
		w.logger.Warn("pool cache write failed", zap.String("pool", n.Pubkey.String()), zap.Error(err))
	}
	w.logger.Debug("pool stored",
		zap.String("family", f.ID()),
		zap.String("pool", n.Pubkey.String()),
		zap.String("symbol", meta.Symbol),
		zap.Int64("slot", n.Slot))
	return PoolStored
}

func mintAt(mints []solana.Address, i int) string {
	if i >= len(mints) {
		return ""
	}
	return mints[i].String()
}
