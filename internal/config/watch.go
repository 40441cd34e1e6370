package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/axonhq/axon/internal/logger"
)

const (
	watchDebounce     = 200 * time.Millisecond
	watchPollFallback = 10 * time.Second
)

// Watcher reloads the config file when it changes and re-applies the fields
// that are safe to change at runtime (currently the log level). Transport,
// listen address, and database URL require a restart and are ignored here.
type Watcher struct {
	path string
	log  *logger.Logger

	mu            sync.Mutex
	lastApplied   string
	debounceTimer *time.Timer
	applyMu       sync.Mutex
}

// NewWatcher creates a watcher for the config file at path. The watcher does
// nothing until Run is called.
func NewWatcher(path string, log *logger.Logger) *Watcher {
	return &Watcher{path: path, log: log}
}

// Run watches the config file until ctx is cancelled. File events are
// debounced because editors typically fire several writes per save. If
// fsnotify cannot be initialized the watcher degrades to polling.
func (w *Watcher) Run(ctx context.Context) {
	watchDir := filepath.Dir(w.path)
	fileName := filepath.Base(w.path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warn("config watch: fsnotify unavailable, polling instead", zap.Error(err))
		watcher = nil
	} else if err := watcher.Add(watchDir); err != nil {
		w.log.Warn("config watch: cannot watch directory, polling instead",
			zap.String("dir", watchDir), zap.Error(err))
		_ = watcher.Close()
		watcher = nil
	}

	if watcher != nil {
		defer watcher.Close()
		go w.eventLoop(ctx, watcher, fileName)
	}

	ticker := time.NewTicker(watchPollFallback)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reload()
		}
	}
}

func (w *Watcher) eventLoop(ctx context.Context, watcher *fsnotify.Watcher, fileName string) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.triggerDebounced()
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) triggerDebounced() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(watchDebounce, w.reload)
}

// reload re-reads the file and applies the log level if it changed. The whole
// cycle is serialized so the debounce timer and the poll tick cannot apply the
// same change twice.
func (w *Watcher) reload() {
	w.applyMu.Lock()
	defer w.applyMu.Unlock()

	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config watch: reload failed", zap.Error(err))
		return
	}

	w.mu.Lock()
	unchanged := cfg.Log.Level == w.lastApplied
	w.mu.Unlock()
	if unchanged || cfg.Log.Level == w.log.Level() {
		return
	}

	if err := w.log.SetLevel(cfg.Log.Level); err != nil {
		w.log.Warn("config watch: ignoring bad log level", zap.String("level", cfg.Log.Level))
		return
	}
	w.mu.Lock()
	w.lastApplied = cfg.Log.Level
	w.mu.Unlock()
	w.log.Info("log level changed", zap.String("level", cfg.Log.Level))
}
