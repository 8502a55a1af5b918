package ingestion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"token-ingest/internal/storage"
)

// Tables written by the services.
const (
	TableTokenMetadata = "token_metadata"
	TableLPTokens      = "lp_tokens"
	TableLPPools       = "lp_pools"
	TableEVMTokens     = "evm_tokens"
	TableBalances      = "token_balances"
)

// ChainSolana is the work item chain of Solana mints and balances.
const ChainSolana = "solana"

// Enqueuer buffers rows for insertion. *batch.Queue implements it.
type Enqueuer interface {
	Add(ctx context.Context, table string, row storage.Row) error
}

// run identifies one pass; every row written in it carries the same run_id.
type run struct {
	id string
}

func newRun() run {
	return run{id: uuid.NewString()}
}

func (r run) stamp(row storage.Row) storage.Row {
	row["run_id"] = r.id
	row["ingested_at"] = time.Now().UTC()
	return row
}
