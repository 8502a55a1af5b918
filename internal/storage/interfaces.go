// Package storage defines the row sink and work source used by ingestion
// services. Backends live in the memory, clickhouse and postgres packages.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"sort"
)

// FormatJSONEachRow is the insert format for rows of JSON-compatible values
// keyed by column name.
const FormatJSONEachRow = "JSONEachRow"

// Work item kinds.
const (
	KindMint     = "mint"
	KindContract = "contract"
	KindBalance  = "balance"
	KindPool     = "pool"
)

// Row is one record keyed by column name.
type Row map[string]any

// InsertRequest is a batch of rows for one table.
type InsertRequest struct {
	Table  string
	Format string
	Rows   []Row
}

// Sink accepts batches of rows.
type Sink interface {
	// Insert writes all rows or fails. Rows are not retried by the sink.
	Insert(ctx context.Context, req InsertRequest) error
}

// WorkItem is a pending unit of ingestion work.
type WorkItem struct {
	Chain string
	Kind  string
	Key   string
	Extra map[string]string
}

// WorkSource lists pending work.
type WorkSource interface {
	// Pending returns up to limit items of kind, ordered by key.
	Pending(ctx context.Context, kind string, limit int) ([]WorkItem, error)
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the table name, format and row count, and returns the
// sorted union of column names across rows.
func (r InsertRequest) Validate() ([]string, error) {
	if !identifier.MatchString(r.Table) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidInput, r.Table)
	}
	if r.Format != FormatJSONEachRow {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, r.Format)
	}
	if len(r.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows for %s", ErrInvalidInput, r.Table)
	}
	cols := Columns(r.Rows)
	for _, c := range cols {
		if !identifier.MatchString(c) {
			return nil, fmt.Errorf("%w: column %q", ErrInvalidInput, c)
		}
	}
	return cols, nil
}

// Columns returns the sorted union of keys across rows.
func Columns(rows []Row) []string {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Values returns row values in column order; missing columns are nil.
func (r Row) Values(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = r[c]
	}
	return out
}
