package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"token-ingest/internal/batch"
	"token-ingest/internal/cache"
	"token-ingest/internal/config"
	"token-ingest/internal/evm"
	"token-ingest/internal/ingestion"
	"token-ingest/internal/lp"
	"token-ingest/internal/observability"
	"token-ingest/internal/pda"
	"token-ingest/internal/rpc"
	"token-ingest/internal/solana"
	"token-ingest/internal/storage"
	chstore "token-ingest/internal/storage/clickhouse"
	"token-ingest/internal/storage/memory"
	"token-ingest/internal/storage/migrations"
	pgstore "token-ingest/internal/storage/postgres"
	"token-ingest/internal/tokenmeta"
)

const (
	modeSolanaMetadata = "solana-metadata"
	modeEVMTokens      = "evm-tokens"
	modeBalances       = "balances"
	modeLPWatch        = "lp-watch"
)

const shutdownTimeout = 15 * time.Second

type options struct {
	mode  string
	keys  string
	chain string
}

// run wires the selected service and blocks until ctx is cancelled or a
// non-looping service returns.
func run(ctx context.Context, cfg *config.Config, opts options, logger *zap.Logger) error {
	switch opts.mode {
	case modeSolanaMetadata, modeEVMTokens, modeBalances, modeLPWatch:
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg, observability.DefaultNamespace)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: newRouter(reg, opts.mode)}
		go func() {
			logger.Info("starting ops server", zap.String("addr", cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("ops server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	store, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.close()

	if opts.keys != "" {
		mem, ok := store.work.(*memory.WorkSource)
		if !ok {
			return errors.New("-keys requires the memory storage driver")
		}
		items, err := parseWorkItems(opts.mode, opts.chain, opts.keys)
		if err != nil {
			return err
		}
		mem.Add(items...)
	}

	queue := batch.New(store.sink, batch.Options{
		MaxSize:  cfg.Batch.MaxSize,
		Interval: cfg.Batch.Interval(),
		Format:   storage.FormatJSONEachRow,
		Logger:   logger,
		Metrics:  metrics,
	})
	queue.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := queue.Shutdown(shutdownCtx); err != nil {
			logger.Error("final flush failed", zap.Error(err))
		}
		if mem, ok := store.sink.(*memory.Sink); ok {
			logger.Info("dry run complete", zap.Int("requests", len(mem.Requests())))
		}
	}()

	symbols, closeCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer closeCache()

	logger.Info("starting service",
		zap.String("mode", opts.mode),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("cache", cfg.Cache.Driver))

	interval := cfg.Work.PollInterval()
	switch opts.mode {
	case modeSolanaMetadata:
		client := newSolanaClient(cfg, metrics, logger)
		fetcher := tokenmeta.NewFetcher(client, tokenmeta.WithCurve(curveFor(cfg.Solana)), tokenmeta.WithLogger(logger))
		resolver := lp.NewSymbolResolver(symbols, fetcher, logger)
		var detectors []ingestion.LPDetector
		for _, f := range lp.Families() {
			detectors = append(detectors, lp.NewDetector(f, client, resolver, logger))
		}
		svc := ingestion.NewSolanaMetadataService(ingestion.SolanaMetadataConfig{
			Work:        store.work,
			Fetcher:     fetcher,
			Detectors:   detectors,
			Queue:       queue,
			Limit:       cfg.Work.Limit,
			Concurrency: concurrencyFor(cfg, opts.mode),
			Logger:      logger,
			Metrics:     metrics,
		})
		return ingestion.Loop(ctx, interval, logger, svc.RunOnce)

	case modeEVMTokens:
		clients := make(map[string]ingestion.TokenInfoReader)
		for chain, c := range newEVMClients(cfg, metrics, logger) {
			clients[chain] = c
		}
		svc := ingestion.NewEVMTokenService(ingestion.EVMTokenConfig{
			Work:        store.work,
			Clients:     clients,
			Queue:       queue,
			Limit:       cfg.Work.Limit,
			Concurrency: concurrencyFor(cfg, opts.mode),
			Logger:      logger,
			Metrics:     metrics,
		})
		return ingestion.Loop(ctx, interval, logger, svc.RunOnce)

	case modeBalances:
		clients := make(map[string]ingestion.BalanceReader)
		for chain, c := range newEVMClients(cfg, metrics, logger) {
			clients[chain] = c
		}
		svc := ingestion.NewBalanceService(ingestion.BalanceConfig{
			Work:        store.work,
			EVM:         clients,
			Solana:      newSolanaClient(cfg, metrics, logger),
			Curve:       curveFor(cfg.Solana),
			Queue:       queue,
			Limit:       cfg.Work.Limit,
			Concurrency: concurrencyFor(cfg, opts.mode),
			Logger:      logger,
			Metrics:     metrics,
		})
		return ingestion.Loop(ctx, interval, logger, svc.RunOnce)

	default:
		client := newSolanaClient(cfg, metrics, logger)
		resolver := lp.NewSymbolResolver(symbols,
			tokenmeta.NewFetcher(client, tokenmeta.WithCurve(curveFor(cfg.Solana)), tokenmeta.WithLogger(logger)),
			logger)

		wsCfg := solana.DefaultWSConfig()
		wsCfg.Logger = logger
		ws, err := solana.NewWSClient(ctx, cfg.Solana.WSURL, &wsCfg)
		if err != nil {
			return fmt.Errorf("connect websocket: %w", err)
		}
		defer ws.Close()

		var describers []ingestion.PoolDescriber
		for _, f := range lp.Families() {
			describers = append(describers, lp.NewDetector(f, client, resolver, logger))
		}
		watcher := ingestion.NewPoolWatcher(ingestion.PoolWatcherConfig{
			WS:         ws,
			Describers: describers,
			Seen:       symbols,
			Queue:      queue,
			Logger:     logger,
			Metrics:    metrics,
		})
		return watcher.Run(ctx)
	}
}

type backend struct {
	sink  storage.Sink
	work  storage.WorkSource
	close func()
}

func openStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*backend, error) {
	switch cfg.Driver {
	case "clickhouse":
		var (
			conn *chstore.Conn
			err  error
		)
		if cfg.Migrate {
			conn, err = migrations.RunClickhouse(ctx, cfg.DSN)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.DSN)
		}
		if err != nil {
			return nil, fmt.Errorf("open clickhouse: %w", err)
		}
		return &backend{
			sink:  chstore.NewSink(conn),
			work:  chstore.NewWorkSource(conn),
			close: func() { conn.Close() },
		}, nil

	case "postgres":
		pool, err := pgstore.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.Migrate {
			if err := migrations.RunPostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		return &backend{
			sink:  pgstore.NewSink(pool),
			work:  pgstore.NewWorkSource(pool),
			close: pool.Close,
		}, nil

	default:
		logger.Warn("using in-memory storage; rows are not persisted")
		return &backend{
			sink:  memory.NewSink(),
			work:  memory.NewWorkSource(),
			close: func() {},
		}, nil
	}
}

func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, func(), error) {
	if cfg.Driver == "redis" {
		r, err := cache.NewRedis(ctx, cfg.RedisURL, "token-ingest:", cfg.TTL())
		if err != nil {
			return nil, nil, fmt.Errorf("open redis cache: %w", err)
		}
		return r, func() { r.Close() }, nil
	}
	return cache.NewLRU(cfg.Size, cfg.TTL()), func() {}, nil
}

func newTransport(cfg *config.Config, rps float64, burst int, metrics *observability.Metrics, logger *zap.Logger) *rpc.Transport {
	return rpc.NewTransport(
		rpc.WithPolicy(cfg.Retry.Policy()),
		rpc.WithRateLimit(rps, burst),
		rpc.WithRecorder(metrics),
		rpc.WithLogger(logger),
	)
}

func newSolanaClient(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) *solana.HTTPClient {
	return solana.NewHTTPClient(cfg.Solana.RPCURL,
		solana.WithCaller(newTransport(cfg, cfg.Solana.RPS, cfg.Solana.Burst, metrics, logger)))
}

func newEVMClients(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) map[string]*evm.Client {
	clients := make(map[string]*evm.Client, len(cfg.EVM))
	for _, ch := range cfg.EVM {
		clients[ch.Chain] = evm.NewClient(ch.Chain, ch.RPCURL,
			evm.WithCaller(newTransport(cfg, ch.RPS, ch.Burst, metrics, logger)),
			evm.WithLogger(logger))
	}
	return clients
}

// concurrencyFor returns the dispatcher bound of a pass mode.
func concurrencyFor(cfg *config.Config, mode string) int {
	if mode == modeSolanaMetadata {
		return cfg.Solana.Concurrency
	}
	return cfg.Work.Concurrency
}

func curveFor(cfg config.SolanaConfig) pda.CurveChecker {
	if cfg.Strict() {
		return pda.Ed25519Curve{}
	}
	return pda.AlwaysOffCurve{}
}

// parseWorkItems turns a -keys list into work items for mode.
func parseWorkItems(mode, chain, keys string) ([]storage.WorkItem, error) {
	var items []storage.WorkItem
	for _, k := range strings.Split(keys, ",") {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		switch mode {
		case modeSolanaMetadata:
			items = append(items, storage.WorkItem{Chain: ingestion.ChainSolana, Kind: storage.KindMint, Key: k})
		case modeEVMTokens:
			if chain == "" {
				return nil, errors.New("-chain is required for evm-tokens keys")
			}
			items = append(items, storage.WorkItem{Chain: chain, Kind: storage.KindContract, Key: k})
		case modeBalances:
			holder, token, ok := strings.Cut(k, ":")
			if !ok || holder == "" || token == "" {
				return nil, fmt.Errorf("balance key %q: want holder:token", k)
			}
			c := chain
			if c == "" {
				c = ingestion.ChainSolana
			}
			items = append(items, storage.WorkItem{
				Chain: c,
				Kind:  storage.KindBalance,
				Key:   holder,
				Extra: map[string]string{"token": token},
			})
		default:
			return nil, fmt.Errorf("mode %s takes no keys", mode)
		}
	}
	return items, nil
}
