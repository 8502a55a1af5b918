// Package batch buffers rows per table and writes them to a storage sink in
// batches, on size, on a timer, and on shutdown.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"token-ingest/internal/storage"
)

// Defaults applied by New.
const (
	DefaultMaxSize  = 1000
	DefaultInterval = 5 * time.Second
)

// ErrClosed is returned by Add after Shutdown.
var ErrClosed = errors.New("batch queue closed")

// FlushError reports rows the sink rejected. The rows are dropped.
type FlushError struct {
	Table string
	Rows  int
	Err   error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("flush %d rows to %s: %v", e.Rows, e.Table, e.Err)
}

func (e *FlushError) Unwrap() error {
	return e.Err
}

// Metrics receives queue events.
type Metrics interface {
	RecordFlush(table string, rows int)
	RecordFlushError(table string)
	SetQueueRows(table string, rows int)
}

type nopMetrics struct{}

func (nopMetrics) RecordFlush(string, int)  {}
func (nopMetrics) RecordFlushError(string)  {}
func (nopMetrics) SetQueueRows(string, int) {}

// Options configures a Queue.
type Options struct {
	// MaxSize is the buffered row count that triggers a flush of a table.
	MaxSize int
	// Interval is the period of the background flush started by Start.
	Interval time.Duration
	// Format is passed to the sink with every request.
	Format  string
	Logger  *zap.Logger
	Metrics Metrics
}

// Queue buffers rows per table. Rows of one table reach the sink in Add
// order and at most one sink call per table runs at a time. A rejected batch
// is reported and dropped, not retried.
type Queue struct {
	sink    storage.Sink
	opts    Options
	logger  *zap.Logger
	metrics Metrics

	mu      sync.Mutex
	buffers map[string][]storage.Row
	locks   map[string]*sync.Mutex
	closed  bool
	started bool

	stop chan struct{}
	done chan struct{}
}

// New creates a Queue. Zero options take defaults.
func New(sink storage.Sink, opts Options) *Queue {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Format == "" {
		opts.Format = storage.FormatJSONEachRow
	}
	q := &Queue{
		sink:    sink,
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		buffers: make(map[string][]storage.Row),
		locks:   make(map[string]*sync.Mutex),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if q.logger == nil {
		q.logger = zap.NewNop()
	}
	if q.metrics == nil {
		q.metrics = nopMetrics{}
	}
	return q
}

// Start launches the interval flush. Calling it again has no effect.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	go q.run()
}

func (q *Queue) run() {
	defer close(q.done)
	ticker := time.NewTicker(q.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stop:
			return
		case <-ticker.C:
			// Failures are logged and counted in send.
			_ = q.FlushAll(context.Background())
		}
	}
}

// Add appends row to the table buffer. Reaching MaxSize flushes the table
// before Add returns, unless a flush of that table is already running; that
// flush or the next trigger picks the rows up.
func (q *Queue) Add(ctx context.Context, table string, row storage.Row) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.buffers[table] = append(q.buffers[table], row)
	n := len(q.buffers[table])
	lock := q.tableLock(table)
	q.mu.Unlock()

	q.metrics.SetQueueRows(table, n)
	if n < q.opts.MaxSize {
		return nil
	}
	if !lock.TryLock() {
		return nil
	}
	defer lock.Unlock()
	return q.drain(ctx, table, q.opts.MaxSize)
}

// Flush writes every buffered row of table. An empty buffer is a no-op.
func (q *Queue) Flush(ctx context.Context, table string) error {
	q.mu.Lock()
	lock := q.tableLock(table)
	q.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return q.drain(ctx, table, 1)
}

// FlushAll flushes every table and joins the failures.
func (q *Queue) FlushAll(ctx context.Context) error {
	q.mu.Lock()
	tables := make([]string, 0, len(q.buffers))
	for t, rows := range q.buffers {
		if len(rows) > 0 {
			tables = append(tables, t)
		}
	}
	q.mu.Unlock()
	sort.Strings(tables)

	var errs []error
	for _, t := range tables {
		if err := q.Flush(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Shutdown stops the interval flush, rejects further rows and flushes what
// is buffered.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	already := q.closed
	q.closed = true
	started := q.started
	q.mu.Unlock()

	if !already {
		close(q.stop)
		if started {
			select {
			case <-q.done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return q.FlushAll(ctx)
}

// QueueSize returns the number of buffered rows for table.
func (q *Queue) QueueSize(table string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffers[table])
}

// tableLock returns the flush lock of table. Caller holds q.mu.
func (q *Queue) tableLock(table string) *sync.Mutex {
	l, ok := q.locks[table]
	if !ok {
		l = &sync.Mutex{}
		q.locks[table] = l
	}
	return l
}

// drain sends the buffer of table while it holds at least min rows, then
// keeps going for full buffers that filled up during the send. Caller holds
// the table lock.
func (q *Queue) drain(ctx context.Context, table string, min int) error {
	for {
		rows := q.take(table, min)
		if rows == nil {
			return nil
		}
		if err := q.send(ctx, table, rows); err != nil {
			return err
		}
		min = q.opts.MaxSize
	}
}

// take swaps out the buffer of table if it holds at least min rows.
func (q *Queue) take(table string, min int) []storage.Row {
	q.mu.Lock()
	defer q.mu.Unlock()
	rows := q.buffers[table]
	if len(rows) < min {
		return nil
	}
	q.buffers[table] = nil
	q.metrics.SetQueueRows(table, 0)
	return rows
}

func (q *Queue) send(ctx context.Context, table string, rows []storage.Row) error {
	start := time.Now()
	err := q.sink.Insert(ctx, storage.InsertRequest{
		Table:  table,
		Format: q.opts.Format,
		Rows:   rows,
	})
	if err != nil {
		q.metrics.RecordFlushError(table)
		q.logger.Error("batch flush failed",
			zap.String("table", table),
			zap.Int("rows", len(rows)),
			zap.Error(err))
		return &FlushError{Table: table, Rows: len(rows), Err: err}
	}

	q.metrics.RecordFlush(table, len(rows))
	q.logger.Debug("batch flushed",
		zap.String("table", table),
		zap.Int("rows", len(rows)),
		zap.Duration("took", time.Since(start)))
	return nil
}
