package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	stmts, err := splitStatements(`
-- header
CREATE TABLE a (x String);

CREATE TABLE b (y String DEFAULT 'it''s');
`)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CREATE TABLE a (x String)",
		"CREATE TABLE b (y String DEFAULT 'it''s')",
	}, stmts)
}

func TestSplitStatements_SemicolonInString(t *testing.T) {
	_, err := splitStatements("SELECT 'a;b';")
	assert.ErrorIs(t, err, errSemicolonInString)
}

func TestEmbeddedClickhouseSchema(t *testing.T) {
	var tables []string
	err := forEachFile(clickhouseFS, "clickhouse", func(_, body string) error {
		stmts, err := splitStatements(body)
		if err != nil {
			return err
		}
		for _, s := range stmts {
			if strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS ") {
				name := strings.Fields(strings.TrimPrefix(s, "CREATE TABLE IF NOT EXISTS "))[0]
				tables = append(tables, name)
			}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"work_items", "token_metadata", "lp_tokens", "lp_pools", "evm_tokens", "token_balances"}, tables)
}

func TestEmbeddedPostgresSchema(t *testing.T) {
	var files []string
	err := forEachFile(postgresFS, "postgres", func(name, body string) error {
		files = append(files, name)
		assert.Contains(t, body, "CREATE OR REPLACE VIEW pending_work")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_ingest.sql"}, files)
}
