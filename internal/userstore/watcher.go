package userstore

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a Store when its credential file changes on disk, so user
// and password edits take effect without a restart.
type Watcher struct {
	store  *Store
	logger *zap.Logger
	done   chan struct{}
	wg     sync.WaitGroup

	// Debounce settings to avoid multiple reloads on editor save dances.
	debounce   time.Duration
	reloadMu   sync.Mutex
	lastReload time.Time
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets the logger for the watcher.
func WithLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a watcher for the store's credential file.
func NewWatcher(store *Store, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:    store,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
		debounce: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching in a background goroutine. It watches the directory
// containing the file rather than the file itself, which survives the
// rename-over-write most editors and config management tools do.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("userstore: create watcher: %w", err)
	}

	dir := filepath.Dir(w.store.Path())
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return fmt.Errorf("userstore: watch %s: %w", dir, err)
	}

	w.logger.Info("users file watcher started", zap.String("file", w.store.Path()))

	base := filepath.Base(w.store.Path())
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fw.Close()
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				w.debouncedReload()
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("users file watcher error", zap.Error(err))
			case <-w.done:
				return
			}
		}
	}()
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	close(w.done)
	w.wg.Wait()
}

// debouncedReload collapses bursts of events into a single reload. A failed
// reload keeps the previous snapshot and logs the parse error.
func (w *Watcher) debouncedReload() {
	w.reloadMu.Lock()
	if time.Since(w.lastReload) < w.debounce {
		w.reloadMu.Unlock()
		return
	}
	w.lastReload = time.Now()
	w.reloadMu.Unlock()

	if err := w.store.Reload(); err != nil {
		w.logger.Error("users file reload failed, keeping previous snapshot", zap.Error(err))
		return
	}
	w.logger.Info("users file reloaded", zap.Int("users", w.store.Len()))
}
