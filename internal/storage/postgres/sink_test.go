package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-ingest/internal/storage"
	"token-ingest/internal/storage/postgres"
)

func TestSink_InsertAndPendingWork(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := pool.Exec(ctx, `
		INSERT INTO work_items (chain, kind, key, extra) VALUES
			('ethereum', 'contract', '0xbb', '{}'),
			('ethereum', 'contract', '0xaa', '{"note":"usdc"}'),
			('ethereum', 'contract', '0xcc', '{}')
	`)
	require.NoError(t, err)

	err = postgres.NewSink(pool).Insert(ctx, storage.InsertRequest{
		Table:  "evm_tokens",
		Format: storage.FormatJSONEachRow,
		Rows: []storage.Row{{
			"chain": "ethereum", "address": "0xcc", "name": "C", "symbol": "C", "decimals": int64(18),
			"total_supply": "1000", "run_id": "r1", "ingested_at": time.Now().UTC(),
		}},
	})
	require.NoError(t, err)

	items, err := postgres.NewWorkSource(pool).Pending(ctx, storage.KindContract, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "0xaa", items[0].Key)
	assert.Equal(t, "usdc", items[0].Extra["note"])
	assert.Equal(t, "0xbb", items[1].Key)

	items, err = postgres.NewWorkSource(pool).Pending(ctx, storage.KindContract, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSink_MissingColumnFailsWholeBatch(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	err := postgres.NewSink(pool).Insert(ctx, storage.InsertRequest{
		Table:  "token_balances",
		Format: storage.FormatJSONEachRow,
		Rows: []storage.Row{
			{"chain": "solana", "holder": "h", "token": "t", "balance": "1", "run_id": "r", "ingested_at": time.Now()},
			{"chain": "solana", "holder": "h", "token": "t", "run_id": "r", "ingested_at": time.Now()},
		},
	})
	require.Error(t, err)

	var n int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM token_balances").Scan(&n))
	assert.Equal(t, 0, n)
}
