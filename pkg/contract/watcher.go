package contract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefinitionWatcher watches a contract-definition file for changes and
// reloads the monitor's contract set. Changes are debounced so an editor
// writing in several syscalls triggers one reload.
type DefinitionWatcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewDefinitionWatcher creates a watcher for the given definition file.
func NewDefinitionWatcher(path string, logger *slog.Logger) (*DefinitionWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("definition path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &DefinitionWatcher{
		path:     path,
		debounce: 250 * time.Millisecond,
		watcher:  watcher,
		logger:   logger.With("component", "contract.watcher"),
	}, nil
}

// Watch blocks until ctx is cancelled, invoking onReload after each
// debounced change to the watched file. Reload failures are logged and
// watching continues with the previous contract set.
func (w *DefinitionWatcher) Watch(ctx context.Context, onReload func() error) error {
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
	}()

	// Watch the directory, not the file: editors replace files on save
	// and the original inode's watch would be lost.
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("contract definition watcher started", "path", w.path)

	var timer *time.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("contract definition watcher stopped")
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerCh:
			w.logger.Info("contract definitions changed, reloading", "path", w.path)
			if err := onReload(); err != nil {
				w.logger.Error("contract reload failed, keeping previous definitions",
					"path", w.path,
					"error", err,
				)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
