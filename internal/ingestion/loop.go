package ingestion

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Loop calls fn immediately and then every interval until ctx is cancelled.
// A failed pass is logged and the loop continues. Loop returns nil on
// cancellation.
func Loop(ctx context.Context, interval time.Duration, logger *zap.Logger, fn func(context.Context) (Result, error)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := fn(ctx); err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			logger.Error("pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
