package memory

import (
	"context"
	"sync"

	"token-ingest/internal/storage"
)

// Sink is an in-memory implementation of storage.Sink. It records every
// accepted request.
type Sink struct {
	mu       sync.RWMutex
	requests []storage.InsertRequest

	// Err, when set, rejects every insert.
	Err error
}

// NewSink creates an empty in-memory sink.
func NewSink() *Sink {
	return &Sink{}
}

// Compile-time interface check.
var _ storage.Sink = (*Sink)(nil)

// Insert validates and records req.
func (s *Sink) Insert(_ context.Context, req storage.InsertRequest) error {
	if _, err := req.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	rows := make([]storage.Row, len(req.Rows))
	for i, r := range req.Rows {
		row := make(storage.Row, len(r))
		for k, v := range r {
			row[k] = v
		}
		rows[i] = row
	}
	req.Rows = rows
	s.requests = append(s.requests, req)
	return nil
}

// Requests returns accepted requests in arrival order.
func (s *Sink) Requests() []storage.InsertRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.InsertRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Rows returns every row inserted into table, in insertion order.
func (s *Sink) Rows(table string) []storage.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []storage.Row
	for _, req := range s.requests {
		if req.Table == table {
			out = append(out, req.Rows...)
		}
	}
	return out
}
