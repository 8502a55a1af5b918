// Package migrations holds the embedded table schemas and applies them.
// Every statement is idempotent, so migrations run on each start.
package migrations

import "embed"

//go:embed clickhouse/*.sql
var clickhouseFS embed.FS

//go:embed postgres/*.sql
var postgresFS embed.FS
