package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mosaic-hq/bento/pkg/entry"
	"mosaic-hq/bento/pkg/layout"
)

// RecorderConfig contains configuration for the run recorder.
type RecorderConfig struct {
	// Enabled enables run recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 256
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a run to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		AsyncBuffer:  256,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes validation runs to storage asynchronously so recording
// never blocks validation.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	runChan chan *Run
	wg      sync.WaitGroup
	done    chan struct{}
	logger  *slog.Logger
}

// NewRecorder creates a recorder backed by the given storage.
func NewRecorder(storage Storage, config *RecorderConfig, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		runChan: make(chan *Run, config.AsyncBuffer),
		done:    make(chan struct{}),
		logger:  logger.With("component", "history.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("run recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record builds a run from a validation result and enqueues it for
// storage. It returns the run so callers can include its ID in responses.
//
// This method returns immediately and does not block on storage writes.
func (r *Recorder) Record(ref entry.Reference, contentType, layoutType string, entryCount int, result layout.Result, duration time.Duration) *Run {
	run := &Run{
		ID:          uuid.New().String(),
		RecordedAt:  time.Now().UTC(),
		Space:       ref.Space,
		Entry:       ref.Entry,
		Field:       ref.Field,
		ContentType: contentType,
		LayoutType:  layoutType,
		EntryCount:  entryCount,
		Valid:       result.Valid(),
		Duration:    duration,
		Violations:  result.Violations,
	}

	if !r.config.Enabled {
		return run
	}

	select {
	case r.runChan <- run:
		r.logger.Debug("run enqueued for writing",
			"run_id", run.ID,
			"field", run.Field,
			"valid", run.Valid,
		)
	default:
		r.logger.Error("run channel full, dropping run",
			"run_id", run.ID,
			"field", run.Field,
		)
	}

	return run
}

// worker drains the run channel and writes runs to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case run := <-r.runChan:
			r.write(run)
		case <-r.done:
			// Drain remaining runs before exiting.
			for {
				select {
				case run := <-r.runChan:
					r.write(run)
				default:
					return
				}
			}
		}
	}
}

// write persists one run with the configured timeout.
func (r *Recorder) write(run *Run) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, run); err != nil {
		r.logger.Error("failed to store run",
			"run_id", run.ID,
			"error", err,
		)
		return
	}

	r.logger.Debug("run stored", "run_id", run.ID)
}

// Close stops the worker after draining queued runs.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}
