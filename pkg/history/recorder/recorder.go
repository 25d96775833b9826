package recorder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/history"
	"mercator-hq/texsolve/pkg/telemetry/metrics"
)

// Write results reported to the history_writes_total metric.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultDropped = "dropped"
)

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("history recorder closed")

// Recorder writes conversion records to storage asynchronously so that
// conversions never wait on the database.
type Recorder struct {
	storage    history.Storage
	config     *config.RecorderConfig
	metrics    *metrics.Collector
	recordChan chan *history.Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// New creates a recorder and starts its background writer. A nil cfg uses
// the defaults and a nil collector disables metrics.
func New(storage history.Storage, cfg *config.RecorderConfig, collector *metrics.Collector) *Recorder {
	if cfg == nil {
		cfg = &config.Default().History.Recorder
	}
	if collector == nil {
		collector = metrics.Discard()
	}

	r := &Recorder{
		storage:    storage,
		config:     cfg,
		metrics:    collector,
		recordChan: make(chan *history.Record, cfg.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "history.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Debug("history recorder initialized",
		"async_buffer", cfg.AsyncBuffer,
		"write_timeout", cfg.WriteTimeout,
		"max_field_length", cfg.MaxFieldLength,
	)
	return r
}

// Storage returns the backend the recorder writes to.
func (r *Recorder) Storage() history.Storage {
	return r.storage
}

// Record completes the record's derived fields and enqueues it for writing.
// It assigns an ID and timestamp when missing, hashes the full input, and
// truncates long text fields. The record must not be modified afterwards.
//
// Record returns without waiting for storage. It fails only when the queue
// stays full for WriteTimeout or the recorder is closed.
func (r *Recorder) Record(ctx context.Context, record *history.Record) error {
	r.prepare(record)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.metrics.RecordHistoryWrite(ResultDropped)
		return history.NewRecorderError(record.ID, ErrClosed)
	}

	select {
	case r.recordChan <- record:
		r.metrics.SetHistoryQueueDepth(len(r.recordChan))
		r.logger.Debug("history record enqueued",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
		return nil
	case <-time.After(r.config.WriteTimeout):
		r.metrics.RecordHistoryWrite(ResultDropped)
		r.logger.Error("history channel full, dropping record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return history.NewRecorderError(record.ID, context.DeadlineExceeded)
	case <-ctx.Done():
		r.metrics.RecordHistoryWrite(ResultDropped)
		return history.NewRecorderError(record.ID, ctx.Err())
	}
}

// Close stops accepting records, writes everything still queued and waits
// for the writer to exit. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Debug("history recorder shut down")
	return nil
}

func (r *Recorder) prepare(record *history.Record) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.Status == "" {
		record.Status = history.StatusOK
		if record.ErrorType != "" {
			record.Status = history.StatusError
		}
	}
	if record.InputHash == "" {
		record.InputHash = HashString(record.Input)
	}

	max := r.config.MaxFieldLength
	record.Input = TruncateString(record.Input, max)
	record.Cleaned = TruncateString(record.Cleaned, max)
	record.Output = TruncateString(record.Output, max)
	record.ErrorMessage = TruncateString(record.ErrorMessage, max)
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Debug("draining history channel", "pending_count", len(r.recordChan))
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.metrics.SetHistoryQueueDepth(0)
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *history.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := r.storage.Store(ctx, record)
	r.metrics.SetHistoryQueueDepth(len(r.recordChan))
	if err != nil {
		r.metrics.RecordHistoryWrite(ResultError)
		r.logger.Error("failed to store history record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}
	r.metrics.RecordHistoryWrite(ResultOK)

	duration := time.Since(start)
	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow history write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
