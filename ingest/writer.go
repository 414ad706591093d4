package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/J0ET0M/qubic-demo-explorer-sub003/config"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/interfaces"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/metrics"
	"github.com/J0ET0M/qubic-demo-explorer-sub003/model"
)

const (
	defaultBatchSize       = 100
	defaultFlushInterval   = 5 * time.Second
	defaultFlushRetries    = 3
	defaultFlushRetryDelay = time.Second
)

// ErrTickGap is returned when consecutive records are not contiguous.
// A gap means a record was missed; continuing would silently lose data.
var ErrTickGap = errors.New("ingest: tick gap in record stream")

// Writer converts the ordered inbound record stream into atomically flushed
// batches and advances the checkpoint after each durable flush.
type Writer struct {
	cfg         config.IngestConfig
	sink        interfaces.TickSink
	checkpoints interfaces.CheckpointStore

	batch        *batch
	lastFlush    time.Time
	lastAppended uint64
	appendedAny  bool

	ticksProcessed atomic.Uint64
	checkpoint     atomic.Uint64
	checkpointSet  atomic.Bool
}

func NewWriter(cfg config.IngestConfig, sink interfaces.TickSink, checkpoints interfaces.CheckpointStore) *Writer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.FlushRetries <= 0 {
		cfg.FlushRetries = defaultFlushRetries
	}
	if cfg.FlushRetryDelay <= 0 {
		cfg.FlushRetryDelay = defaultFlushRetryDelay
	}
	return &Writer{
		cfg:         cfg,
		sink:        sink,
		checkpoints: checkpoints,
		batch:       newBatch(cfg.BatchSize),
		lastFlush:   time.Now(),
	}
}

// TicksProcessed returns the number of records durably flushed so far.
func (w *Writer) TicksProcessed() uint64 {
	return w.ticksProcessed.Load()
}

// Checkpoint returns the last checkpointed tick, ok=false before any flush.
func (w *Writer) Checkpoint() (uint64, bool) {
	return w.checkpoint.Load(), w.checkpointSet.Load()
}

// Consume reads records until the channel closes or ctx is cancelled, then
// performs a final flush of any partial batch. Gap detection and flush retry
// exhaustion are fatal.
func (w *Writer) Consume(ctx context.Context, records <-chan model.TickRecord) error {
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.drain(records)
		case <-ticker.C:
			if !w.batch.empty() {
				if err := w.flush(ctx); err != nil {
					return err
				}
				ticker.Reset(w.cfg.FlushInterval)
			}
		case r, ok := <-records:
			if !ok {
				return w.finalFlush()
			}
			before := w.lastFlush
			if err := w.accept(ctx, r); err != nil {
				return err
			}
			// accept may have flushed on batch size or mode transition;
			// restart the interval clock so the next partial batch is not
			// held past FlushInterval.
			if !w.lastFlush.Equal(before) {
				ticker.Reset(w.cfg.FlushInterval)
			}
		}
	}
}

func (w *Writer) accept(ctx context.Context, r model.TickRecord) error {
	// Catch-up to live transition: flush the backlog batch immediately so
	// live records do not sit behind it.
	if !w.batch.empty() && !r.IsCatchUp && w.batch.records[w.batch.size()-1].IsCatchUp {
		slog.Info("caught up to live head, flushing backlog batch", "tick", r.Tick)
		if err := w.flush(ctx); err != nil {
			return err
		}
	}

	if w.appendedAny {
		expected := w.lastAppended + 1
		if r.Tick != expected {
			return fmt.Errorf("%w: expected tick %d, got %d", ErrTickGap, expected, r.Tick)
		}
	}
	w.batch.append(r)
	w.lastAppended = r.Tick
	w.appendedAny = true

	if w.batch.size() >= w.cfg.BatchSize {
		return w.flush(ctx)
	}
	return nil
}

// drain empties whatever is already buffered in the channel after
// cancellation, then flushes. The producer closes the channel promptly on
// cancellation, so this terminates.
func (w *Writer) drain(records <-chan model.TickRecord) error {
	for r := range records {
		if err := w.accept(context.Background(), r); err != nil {
			return err
		}
	}
	return w.finalFlush()
}

func (w *Writer) finalFlush() error {
	if w.batch.empty() {
		return nil
	}
	slog.Info("final flush", "records", w.batch.size())
	return w.flush(context.Background())
}

// flush writes the current batch atomically with bounded retries, then
// advances the checkpoint. A checkpoint write failure is not fatal: the data
// is durable and idempotent sink writes bound the replay window to one batch.
func (w *Writer) flush(ctx context.Context) error {
	if w.batch.empty() {
		return nil
	}
	size := w.batch.size()
	last := w.batch.lastTick()

	var err error
	for attempt := 1; attempt <= w.cfg.FlushRetries; attempt++ {
		start := time.Now()
		err = w.sink.InsertTickBatch(ctx, w.batch.records)
		metrics.ObserveFlush(time.Since(start), size, err)
		if err == nil {
			break
		}
		slog.Warn("batch flush failed", "attempt", attempt, "records", size, "error", err)
		if attempt < w.cfg.FlushRetries {
			select {
			case <-time.After(w.cfg.FlushRetryDelay):
			case <-ctx.Done():
			}
		}
	}
	if err != nil {
		return fmt.Errorf("flush of %d records ending at tick %d failed after %d attempts: %w",
			size, last, w.cfg.FlushRetries, err)
	}

	w.ticksProcessed.Add(uint64(size))
	metrics.AddTicksProcessed(size)
	w.batch.reset()
	w.lastFlush = time.Now()
	slog.Debug("batch flushed", "records", size, "lastTick", last)

	w.advanceCheckpoint(ctx, last)
	return nil
}

func (w *Writer) advanceCheckpoint(ctx context.Context, tick uint64) {
	var err error
	for attempt := 1; attempt <= w.cfg.FlushRetries; attempt++ {
		if err = w.checkpoints.SetCheckpoint(ctx, tick); err == nil {
			w.checkpoint.Store(tick)
			w.checkpointSet.Store(true)
			metrics.SetCheckpoint(tick)
			return
		}
	}
	// Accepted re-delivery window: data is written, only the marker lags.
	slog.Warn("checkpoint write failed, restart will replay last batch", "tick", tick, "error", err)
}
