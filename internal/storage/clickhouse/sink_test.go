package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-ingest/internal/storage"
	"token-ingest/internal/storage/clickhouse"
)

func TestSink_InsertAndPendingWork(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	sink := clickhouse.NewSink(conn)
	now := time.Now().UTC()

	err := sink.Insert(ctx, storage.InsertRequest{
		Table:  "work_items",
		Format: storage.FormatJSONEachRow,
		Rows: []storage.Row{
			{"chain": "solana", "kind": storage.KindMint, "key": "mintB", "extra": map[string]string{}},
			{"chain": "solana", "kind": storage.KindMint, "key": "mintA", "extra": map[string]string{"decimals": "6"}},
			{"chain": "solana", "kind": storage.KindMint, "key": "mintC", "extra": map[string]string{}},
		},
	})
	require.NoError(t, err)

	err = sink.Insert(ctx, storage.InsertRequest{
		Table:  "token_metadata",
		Format: storage.FormatJSONEachRow,
		Rows: []storage.Row{{
			"mint": "mintC", "name": "C", "symbol": "C", "uri": "", "decimals": int64(9),
			"source": "metaplex", "run_id": "r1", "ingested_at": now,
		}},
	})
	require.NoError(t, err)

	items, err := clickhouse.NewWorkSource(conn).Pending(ctx, storage.KindMint, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "mintA", items[0].Key)
	assert.Equal(t, "6", items[0].Extra["decimals"])
	assert.Equal(t, "mintB", items[1].Key)
}

func TestSink_UnknownColumnFails(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	err := clickhouse.NewSink(conn).Insert(context.Background(), storage.InsertRequest{
		Table:  "token_metadata",
		Format: storage.FormatJSONEachRow,
		Rows:   []storage.Row{{"no_such_column": "x"}},
	})
	assert.Error(t, err)
}
