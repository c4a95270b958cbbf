package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"mosaic-hq/bento/pkg/entry"
	"mosaic-hq/bento/pkg/history"
	"mosaic-hq/bento/pkg/layout"
	"mosaic-hq/bento/pkg/layout/registry"
)

// Fetcher retrieves the current linked entries for a field reference.
// *entry.Client implements it.
type Fetcher interface {
	FetchLinks(ctx context.Context, ref entry.Reference) ([]entry.Entry, error)
}

// trackedField is the monitor's state for one watched field.
type trackedField struct {
	ref         entry.Reference
	contentType string

	// startedGen counts revalidations started for this field.
	startedGen uint64

	// adoptedGen is the generation of the latest adopted result.
	adoptedGen uint64

	latest *history.Run
}

// Monitor revalidates tracked fields and publishes adopted results.
type Monitor struct {
	registry *registry.Registry
	fetcher  Fetcher
	recorder *history.Recorder
	logger   *slog.Logger

	mu      sync.Mutex
	tracked map[entry.Reference]*trackedField
	subs    []chan *history.Run
}

// New creates a monitor. The recorder may be nil when history is
// disabled.
func New(reg *registry.Registry, fetcher Fetcher, recorder *history.Recorder, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		registry: reg,
		fetcher:  fetcher,
		recorder: recorder,
		logger:   logger.With("component", "monitor"),
		tracked:  make(map[entry.Reference]*trackedField),
	}
}

// Track registers a field for revalidation. Tracking the same reference
// again updates its content type.
func (m *Monitor) Track(ref entry.Reference, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tf, ok := m.tracked[ref]; ok {
		tf.contentType = contentType
		return
	}
	m.tracked[ref] = &trackedField{ref: ref, contentType: contentType}

	m.logger.Info("tracking field",
		"reference", ref.String(),
		"content_type", contentType,
	)
}

// Untrack stops revalidating a field.
func (m *Monitor) Untrack(ref entry.Reference) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tracked, ref)
}

// Tracked returns the currently tracked references.
func (m *Monitor) Tracked() []entry.Reference {
	m.mu.Lock()
	defer m.mu.Unlock()

	refs := make([]entry.Reference, 0, len(m.tracked))
	for ref := range m.tracked {
		refs = append(refs, ref)
	}
	return refs
}

// Latest returns the most recently adopted run for a tracked field.
func (m *Monitor) Latest(ref entry.Reference) (*history.Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tf, ok := m.tracked[ref]
	if !ok || tf.latest == nil {
		return nil, false
	}
	return tf.latest, true
}

// Subscribe returns a channel receiving every adopted run. Slow
// subscribers drop results rather than blocking revalidation.
func (m *Monitor) Subscribe() <-chan *history.Run {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *history.Run, 16)
	m.subs = append(m.subs, ch)
	return ch
}

// Revalidate fetches the current entries for a tracked field, validates
// them, and adopts the result unless a newer revalidation finished
// first. It returns the run it produced, adopted or not.
func (m *Monitor) Revalidate(ctx context.Context, ref entry.Reference) (*history.Run, error) {
	m.mu.Lock()
	tf, ok := m.tracked[ref]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("field %s is not tracked", ref)
	}
	tf.startedGen++
	gen := tf.startedGen
	contentType := tf.contentType
	m.mu.Unlock()

	cfg, ok := m.registry.Select(contentType, ref.Field)
	if !ok {
		return nil, fmt.Errorf("no layout configured for (%s, %s)", contentType, ref.Field)
	}

	start := time.Now()
	entries, err := m.fetcher.FetchLinks(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries for %s: %w", ref, err)
	}

	result := layout.Validate(cfg, entries, entry.ContentTypeOf)
	duration := time.Since(start)

	var run *history.Run
	if m.recorder != nil {
		run = m.recorder.Record(ref, contentType, cfg.LayoutType, len(entries), result, duration)
	} else {
		run = &history.Run{
			RecordedAt:  time.Now().UTC(),
			Space:       ref.Space,
			Entry:       ref.Entry,
			Field:       ref.Field,
			ContentType: contentType,
			LayoutType:  cfg.LayoutType,
			EntryCount:  len(entries),
			Valid:       result.Valid(),
			Duration:    duration,
			Violations:  result.Violations,
		}
	}

	m.adopt(tf, gen, run)

	return run, nil
}

// adopt installs a run as the field's latest result unless a newer
// generation already has been adopted.
func (m *Monitor) adopt(tf *trackedField, gen uint64, run *history.Run) {
	m.mu.Lock()

	if gen <= tf.adoptedGen {
		m.mu.Unlock()
		m.logger.Debug("discarding stale revalidation result",
			"reference", tf.ref.String(),
			"generation", gen,
			"adopted_generation", tf.adoptedGen,
		)
		return
	}

	tf.adoptedGen = gen
	tf.latest = run
	subs := make([]chan *history.Run, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	m.logger.Info("field revalidated",
		"reference", tf.ref.String(),
		"layout", run.LayoutType,
		"valid", run.Valid,
		"violations", len(run.Violations),
	)

	for _, ch := range subs {
		select {
		case ch <- run:
		default:
		}
	}
}
