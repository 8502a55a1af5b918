package ingestion

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"go.uber.org/zap"

	"token-ingest/internal/decoder"
	"token-ingest/internal/evm"
	"token-ingest/internal/pda"
	"token-ingest/internal/solana"
	"token-ingest/internal/storage"
)

// ErrMissingToken is returned for a balance item without a "token" extra.
var ErrMissingToken = errors.New("balance item has no token")

// BalanceReader reads ERC-20 balances. *evm.Client implements it.
type BalanceReader interface {
	BalanceOf(ctx context.Context, token, holder evm.Address) (*big.Int, error)
}

// BalanceConfig configures BalanceService. Balance items carry the holder
// in Key and the token in Extra["token"]; Solana items may name the token
// program in Extra["token_program"].
type BalanceConfig struct {
	Work        storage.WorkSource
	EVM         map[string]BalanceReader
	Solana      solana.AccountReader
	Curve       pda.CurveChecker
	Queue       Enqueuer
	Limit       int
	Concurrency int
	Logger      *zap.Logger
	Metrics     Metrics
}

// BalanceService refreshes token balances on every pass.
type BalanceService struct {
	cfg        BalanceConfig
	dispatcher *Dispatcher
}

// NewBalanceService creates the service. A nil Curve derives associated
// token accounts with the ed25519 check.
func NewBalanceService(cfg BalanceConfig) *BalanceService {
	if cfg.Curve == nil {
		cfg.Curve = pda.Ed25519Curve{}
	}
	return &BalanceService{
		cfg: cfg,
		dispatcher: &Dispatcher{
			Service:     "balances",
			Concurrency: cfg.Concurrency,
			Logger:      cfg.Logger,
			Metrics:     cfg.Metrics,
		},
	}
}

// RunOnce processes one batch of balance items.
func (s *BalanceService) RunOnce(ctx context.Context) (Result, error) {
	items, err := s.cfg.Work.Pending(ctx, storage.KindBalance, s.cfg.Limit)
	if err != nil {
		return Result{}, fmt.Errorf("pending balances: %w", err)
	}
	r := newRun()
	return s.dispatcher.Run(ctx, items, func(ctx context.Context, item storage.WorkItem) error {
		return s.process(ctx, r, item)
	})
}

func (s *BalanceService) process(ctx context.Context, r run, item storage.WorkItem) error {
	token, ok := item.Extra["token"]
	if !ok || token == "" {
		return ErrMissingToken
	}

	var (
		row storage.Row
		err error
	)
	if item.Chain == ChainSolana {
		row, err = s.solanaBalance(ctx, item, token)
	} else {
		row, err = s.evmBalance(ctx, item, token)
	}
	if err != nil {
		return err
	}
	row["chain"] = item.Chain
	return s.cfg.Queue.Add(ctx, TableBalances, r.stamp(row))
}

func balanceRow(holder, token, balance string) storage.Row {
	return storage.Row{"holder": holder, "token": token, "balance": balance}
}

func (s *BalanceService) evmBalance(ctx context.Context, item storage.WorkItem, token string) (storage.Row, error) {
	client, ok := s.cfg.EVM[item.Chain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChain, item.Chain)
	}
	holder, err := evm.ParseAddress(item.Key)
	if err != nil {
		return nil, fmt.Errorf("holder: %w", err)
	}
	tokenAddr, err := evm.ParseAddress(token)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	bal, err := client.BalanceOf(ctx, tokenAddr, holder)
	if err != nil {
		return nil, err
	}
	return balanceRow(holder.String(), tokenAddr.String(), bal.String()), nil
}

// solanaBalance reads the holder's associated token account. A missing
// account is a zero balance.
func (s *BalanceService) solanaBalance(ctx context.Context, item storage.WorkItem, token string) (storage.Row, error) {
	if s.cfg.Solana == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChain, item.Chain)
	}
	owner, err := solana.ParseAddress(item.Key)
	if err != nil {
		return nil, fmt.Errorf("holder: %w", err)
	}
	mint, err := solana.ParseAddress(token)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	program := solana.TokenProgram
	if p, ok := item.Extra["token_program"]; ok && p != "" {
		if program, err = solana.ParseAddress(p); err != nil {
			return nil, fmt.Errorf("token program: %w", err)
		}
	}

	ata, err := solana.AssociatedTokenAddress(owner, mint, program, s.cfg.Curve)
	if err != nil {
		return nil, err
	}
	account, err := s.cfg.Solana.GetAccountInfo(ctx, ata)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return balanceRow(owner.String(), mint.String(), "0"), nil
	}
	ta := decoder.ParseTokenAccount(account.Data)
	if ta == nil {
		return nil, fmt.Errorf("token account %s: %d bytes", ata, len(account.Data))
	}
	if ta.Mint != mint {
		return nil, fmt.Errorf("token account %s holds mint %s", ata, ta.Mint)
	}
	return balanceRow(owner.String(), mint.String(), strconv.FormatUint(ta.Amount, 10)), nil
}
