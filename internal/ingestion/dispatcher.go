// Package ingestion runs the work passes that turn pending work items into
// stored rows: Solana metadata, EVM token info, balances and live pools.
package ingestion

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"token-ingest/internal/storage"
)

// Item status labels.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// DefaultConcurrency is used when a Dispatcher has no limit set.
const DefaultConcurrency = 8

// Metrics receives ingestion measurements.
type Metrics interface {
	RecordItem(service, status string)
	RecordLPDetected(family string)
	RecordPoolNotification(family, status string)
	RecordRunCompleted(service string, at time.Time)
}

type nopMetrics struct{}

func (nopMetrics) RecordItem(string, string)             {}
func (nopMetrics) RecordLPDetected(string)               {}
func (nopMetrics) RecordPoolNotification(string, string) {}
func (nopMetrics) RecordRunCompleted(string, time.Time)  {}

// Result summarizes one pass over a set of work items.
type Result struct {
	Total     int
	Succeeded int
	Failed    int
}

// Dispatcher runs a function over work items with bounded concurrency.
// A failing item is logged and counted; only cancellation of ctx stops a run.
type Dispatcher struct {
	Service     string
	Concurrency int
	Logger      *zap.Logger
	Metrics     Metrics
}

// Run calls fn for every item, at most Concurrency at a time. It returns
// ctx.Err() when the context is cancelled before all items finish.
func (d *Dispatcher) Run(ctx context.Context, items []storage.WorkItem, fn func(context.Context, storage.WorkItem) error) (Result, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var metrics Metrics = nopMetrics{}
	if d.Metrics != nil {
		metrics = d.Metrics
	}
	limit := d.Concurrency
	if limit < 1 {
		limit = DefaultConcurrency
	}

	var succeeded, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// g.Go may block on the limit past a cancellation.
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, item); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				failed.Add(1)
				metrics.RecordItem(d.Service, StatusError)
				logger.Warn("work item failed",
					zap.String("service", d.Service),
					zap.String("chain", item.Chain),
					zap.String("kind", item.Kind),
					zap.String("key", item.Key),
					zap.Error(err))
				return nil
			}
			succeeded.Add(1)
			metrics.RecordItem(d.Service, StatusOK)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	res := Result{Total: len(items), Succeeded: int(succeeded.Load()), Failed: int(failed.Load())}
	if err == nil {
		metrics.RecordRunCompleted(d.Service, time.Now())
	}
	logger.Info("pass complete",
		zap.String("service", d.Service),
		zap.Int("total", res.Total),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed))
	return res, err
}
