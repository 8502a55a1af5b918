package clickhouse

import (
	"context"
	"fmt"
	"strings"

	"token-ingest/internal/storage"
)

// Sink implements storage.Sink with native batch inserts.
type Sink struct {
	conn *Conn
}

// NewSink creates a new Sink.
func NewSink(conn *Conn) *Sink {
	return &Sink{conn: conn}
}

// Compile-time interface check.
var _ storage.Sink = (*Sink)(nil)

// Insert sends all rows in one batch. The column list is the sorted union of
// row keys; every column must exist in the table.
func (s *Sink) Insert(ctx context.Context, req storage.InsertRequest) error {
	cols, err := req.Validate()
	if err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO %s (%s)", req.Table, strings.Join(cols, ", "))
	batch, err := s.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare batch %s: %w", req.Table, err)
	}

	for _, row := range req.Rows {
		if err := batch.Append(row.Values(cols)...); err != nil {
			batch.Abort()
			return fmt.Errorf("append to batch %s: %w", req.Table, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch %s: %w", req.Table, err)
	}
	return nil
}
