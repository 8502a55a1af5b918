package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"token-ingest/internal/storage"
)

// Sink implements storage.Sink with COPY FROM.
type Sink struct {
	pool *Pool
}

// NewSink creates a new Sink.
func NewSink(pool *Pool) *Sink {
	return &Sink{pool: pool}
}

// Compile-time interface check.
var _ storage.Sink = (*Sink)(nil)

// Insert copies all rows in one statement; a failure inserts nothing.
func (s *Sink) Insert(ctx context.Context, req storage.InsertRequest) error {
	cols, err := req.Validate()
	if err != nil {
		return err
	}

	values := make([][]any, len(req.Rows))
	for i, row := range req.Rows {
		values[i] = row.Values(cols)
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{req.Table}, cols, pgx.CopyFromRows(values))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", req.Table, err)
	}
	if int(n) != len(values) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", req.Table, n, len(values))
	}
	return nil
}
