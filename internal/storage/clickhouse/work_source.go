package clickhouse

import (
	"context"
	"fmt"

	"token-ingest/internal/storage"
)

// WorkSource implements storage.WorkSource over the pending_work view.
type WorkSource struct {
	conn *Conn
}

// NewWorkSource creates a new WorkSource.
func NewWorkSource(conn *Conn) *WorkSource {
	return &WorkSource{conn: conn}
}

// Compile-time interface check.
var _ storage.WorkSource = (*WorkSource)(nil)

// Pending returns up to limit items of kind ordered by key.
func (s *WorkSource) Pending(ctx context.Context, kind string, limit int) ([]storage.WorkItem, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT chain, kind, key, extra
		FROM pending_work
		WHERE kind = ?
		ORDER BY key
		LIMIT ?
	`, kind, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("query pending work: %w", err)
	}
	defer rows.Close()

	var items []storage.WorkItem
	for rows.Next() {
		var it storage.WorkItem
		if err := rows.Scan(&it.Chain, &it.Kind, &it.Key, &it.Extra); err != nil {
			return nil, fmt.Errorf("scan pending work: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending work: %w", err)
	}
	return items, nil
}
