package registry

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherConfig contains configuration for the layout file watcher.
type WatcherConfig struct {
	// DebounceInterval is the quiet period to wait after a file change
	// before reloading. Editors tend to emit several events per save.
	// Default: 250ms
	DebounceInterval time.Duration

	// Extensions is the list of file extensions that trigger a reload.
	// Default: [".yaml", ".yml"]
	Extensions []string
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: 250 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
	}
}

// Watcher reloads a Registry when its layout directory changes. Reload
// failures are logged and the previous registry contents stay in effect.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	config   *WatcherConfig
	logger   *slog.Logger
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// onReload, when set, runs after every successful reload. Used by the
	// monitor to trigger revalidation of tracked fields.
	onReload func()

	// onReloadError, when set, runs after every failed reload. The
	// previous registry contents stay in effect either way.
	onReloadError func(error)
}

// NewWatcher creates a watcher for the registry's layout directory.
func NewWatcher(reg *Registry, config *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		registry: reg,
		watcher:  fsw,
		config:   config,
		logger:   logger.With("component", "layout.watcher"),
		debounce: newDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// OnReload registers a callback that runs after every successful reload.
// It must be called before Watch.
func (w *Watcher) OnReload(fn func()) {
	w.onReload = fn
}

// OnReloadError registers a callback that runs after every failed
// reload. It must be called before Watch.
func (w *Watcher) OnReloadError(fn func(error)) {
	w.onReloadError = fn
}

// Watch blocks, reloading the registry whenever a layout file changes,
// until the context is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.watcher.Add(w.registry.dir); err != nil {
		return fmt.Errorf("failed to watch layout directory %q: %w", w.registry.dir, err)
	}

	w.logger.Info("layout watcher started",
		"dir", w.registry.dir,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("layout watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("layout watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("layout file event", "path", event.Name, "op", event.Op.String())

			w.debounce.trigger(func() {
				if err := w.registry.Reload(); err != nil {
					w.logger.Error("layout reload failed, keeping previous layouts", "error", err)
					if w.onReloadError != nil {
						w.onReloadError(err)
					}
					return
				}
				if w.onReload != nil {
					w.onReload()
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching despite errors.
			w.logger.Error("layout watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// shouldProcessEvent filters events down to content changes of layout
// files.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(event.Name))
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// debouncer collapses rapid event bursts into a single callback after a
// quiet period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
