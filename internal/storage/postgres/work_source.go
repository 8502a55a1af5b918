package postgres

import (
	"context"
	"fmt"

	"token-ingest/internal/storage"
)

// WorkSource implements storage.WorkSource over the pending_work view.
type WorkSource struct {
	pool *Pool
}

// NewWorkSource creates a new WorkSource.
func NewWorkSource(pool *Pool) *WorkSource {
	return &WorkSource{pool: pool}
}

// Compile-time interface check.
var _ storage.WorkSource = (*WorkSource)(nil)

// Pending returns up to limit items of kind ordered by key.
func (s *WorkSource) Pending(ctx context.Context, kind string, limit int) ([]storage.WorkItem, error) {
	query := `
		SELECT chain, kind, key, extra
		FROM pending_work
		WHERE kind = $1
		ORDER BY key
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, kind, limit)
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
