package config

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/docbind/docbind/errors"
	"github.com/docbind/docbind/logger"
)

// defaultDebouncePeriod spaces out editor save bursts so one logical
// change triggers one reload.
const defaultDebouncePeriod = 500 * time.Millisecond

// ReloadFunc runs after a watched file change settles. Returning an error
// logs it; watching continues.
type ReloadFunc func(path string) error

// Watcher watches a single file and debounces change bursts into one
// reload. generate --watch uses it to re-read the mapping file and
// regenerate output while running.
type Watcher struct {
	path           string
	watcher        *fsnotify.Watcher
	mu             sync.Mutex
	callbacks      []ReloadFunc
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	log            *zap.SugaredLogger
}

// NewWatcher starts watching path. Register callbacks with OnChange, then
// call Start to begin delivery.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrConfigLoad, "create file watcher: %v", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, errors.Wrapf(errors.ErrConfigLoad, "watch %s: %v", path, err)
	}
	return &Watcher{
		path:           path,
		watcher:        fw,
		debouncePeriod: defaultDebouncePeriod,
		log:            logger.Named("config"),
	}, nil
}

// OnChange registers a callback invoked after each settled change.
func (w *Watcher) OnChange(fn ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start begins delivering change events in a background goroutine.
func (w *Watcher) Start() {
	w.log.Infow("Watching file for changes", "file", w.path)
	go w.watchLoop()
}

// Stop ends watching. A pending debounced reload is cancelled.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.log.Debugw("Watched file changed", "file", event.Name, "op", event.Op.String())
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("File watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	callbacks := make([]ReloadFunc, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.log.Infow("File change settled, reloading", "file", w.path)
	for _, fn := range callbacks {
		if err := fn(w.path); err != nil {
			w.log.Errorw("Reload callback failed", "file", w.path, "error", err)
		}
	}
}
