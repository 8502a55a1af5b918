package ingestion

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"token-ingest/internal/evm"
	"token-ingest/internal/storage"
)

// ErrUnknownChain is returned for a work item whose chain has no client.
var ErrUnknownChain = errors.New("unknown chain")

// TokenInfoReader reads ERC-20 metadata. *evm.Client implements it.
type TokenInfoReader interface {
	TokenInfo(ctx context.Context, token evm.Address) (*evm.TokenInfo, error)
}

// EVMTokenConfig configures EVMTokenService.
type EVMTokenConfig struct {
	Work storage.WorkSource
	// Clients maps a work item chain to its endpoint client.
	Clients     map[string]TokenInfoReader
	Queue       Enqueuer
	Limit       int
	Concurrency int
	Logger      *zap.Logger
	Metrics     Metrics
}

// EVMTokenService resolves metadata of pending EVM contracts.
type EVMTokenService struct {
	cfg        EVMTokenConfig
	dispatcher *Dispatcher
}

// NewEVMTokenService creates the service.
func NewEVMTokenService(cfg EVMTokenConfig) *EVMTokenService {
	return &EVMTokenService{
		cfg: cfg,
		dispatcher: &Dispatcher{
			Service:     "evm_tokens",
			Concurrency: cfg.Concurrency,
			Logger:      cfg.Logger,
			Metrics:     cfg.Metrics,
		},
	}
}

// RunOnce processes one batch of pending contracts.
func (s *EVMTokenService) RunOnce(ctx context.Context) (Result, error) {
	items, err := s.cfg.Work.Pending(ctx, storage.KindContract, s.cfg.Limit)
	if err != nil {
		return Result{}, fmt.Errorf("pending contracts: %w", err)
	}
	r := newRun()
	return s.dispatcher.Run(ctx, items, func(ctx context.Context, item storage.WorkItem) error {
		return s.process(ctx, r, item)
	})
}

func (s *EVMTokenService) process(ctx context.Context, r run, item storage.WorkItem) error {
	client, ok := s.cfg.Clients[item.Chain]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChain, item.Chain)
	}
	token, err := evm.ParseAddress(item.Key)
	if err != nil {
		return err
	}
	info, err := client.TokenInfo(ctx, token)
	if err != nil {
		return err
	}
	return s.cfg.Queue.Add(ctx, TableEVMTokens, r.stamp(storage.Row{
		"chain":        item.Chain,
		"address":      token.String(),
		"name":         info.Name,
		"symbol":       info.Symbol,
		"decimals":     int64(info.Decimals),
		"total_supply": bigString(info.TotalSupply),
	}))
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}
