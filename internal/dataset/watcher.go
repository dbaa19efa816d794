package dataset

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"clusterdash/internal/logger"
)

// Watcher reloads the store when its dataset file changes on disk.
// The parent directory is watched because editors often replace files
// instead of writing them in place.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	store    *Store
	logger   *logger.Logger
	path     string
	debounce time.Duration
	pending  time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	reloads  int
	onReload func(*Context)
}

// NewWatcher creates a watcher for the store's loaded path.
func NewWatcher(store *Store, log *logger.Logger) (*Watcher, error) {
	if store.Path() == "" {
		return nil, ErrNotLoaded
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.Discard()
	}

	path, err := filepath.Abs(store.Path())
	if err != nil {
		path = filepath.Clean(store.Path())
	}

	return &Watcher{
		watcher:  fw,
		store:    store,
		logger:   log.With("component", "watcher"),
		path:     path,
		debounce: 250 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce changes how long the file must stay quiet before a reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.debounce = d
}

// OnReload registers a callback invoked after each successful reload.
func (w *Watcher) OnReload(fn func(*Context)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.onReload = fn
}

// Reloads returns how many successful reloads have happened.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.reloads
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()

		return err
	}

	w.logger.Info("watching dataset", "path", w.path)

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing watcher", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name, err := filepath.Abs(event.Name)
	if err != nil {
		name = filepath.Clean(event.Name)
	}

	if name != w.path {
		return
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("dataset changed", "op", event.Op.String())

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	ctx, err := w.store.Reload()
	if err != nil {
		w.logger.Error("reload failed, keeping previous dataset", "error", err)
		return
	}

	w.mu.Lock()
	w.reloads++
	fn := w.onReload
	w.mu.Unlock()

	if fn != nil {
		fn(ctx)
	}
}
