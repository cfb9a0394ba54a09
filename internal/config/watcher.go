package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the daemon config file and reloads it on change.
// Invalid configs are reported to the error callback and the last good
// config stays current.
type Watcher struct {
	mu     sync.RWMutex
	logger *slog.Logger

	watcher    *fsnotify.Watcher
	configPath string

	// Editors often write in several steps; changes are coalesced.
	debounce time.Duration

	currentConfig *DaemonConfig

	onReloadCallback func(newConfig *DaemonConfig)
	onErrorCallback  func(err error)

	done    chan struct{}
	stopped chan struct{}
	running bool
}

// NewWatcher creates a config watcher for configPath.
// An empty path watches the default location.
func NewWatcher(configPath string, logger *slog.Logger) (*Watcher, error) {
	if configPath == "" {
		var err error
		configPath, err = DaemonConfigPath()
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		logger:     logger,
		watcher:    fw,
		configPath: configPath,
		debounce:   200 * time.Millisecond,
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}, nil
}

// SetDebounce sets how long to wait after the last event before reloading.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// SetReloadCallback sets the callback invoked with each successfully reloaded config.
func (w *Watcher) SetReloadCallback(callback func(newConfig *DaemonConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReloadCallback = callback
}

// SetErrorCallback sets the callback invoked when a reload fails.
func (w *Watcher) SetErrorCallback(callback func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onErrorCallback = callback
}

// Start begins watching. initialConfig becomes the current config.
func (w *Watcher) Start(ctx context.Context, initialConfig *DaemonConfig) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.currentConfig = initialConfig
	w.mu.Unlock()

	// Watch the directory containing the file (more reliable for writes)
	dir := filepath.Dir(w.configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		w.logger.Debug("failed to create config directory", "dir", dir, "error", err)
	}
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go w.watch(ctx)

	w.logger.Debug("config watcher started", "path", w.configPath)
	return nil
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.stopped
	w.logger.Debug("config watcher stopped")
	return err
}

// CurrentConfig returns the last valid configuration.
func (w *Watcher) CurrentConfig() *DaemonConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.currentConfig
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.stopped)

	filename := filepath.Base(w.configPath)
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.mu.RLock()
				debounce := w.debounce
				w.mu.RUnlock()
				pending = time.After(debounce)
			}

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

// reload parses the config file and dispatches the result.
func (w *Watcher) reload() {
	cfg, err := LoadDaemonConfig(w.configPath)

	w.mu.Lock()
	reloadCallback := w.onReloadCallback
	errorCallback := w.onErrorCallback
	if err == nil {
		w.currentConfig = cfg
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("config reload failed, keeping previous config", "path", w.configPath, "error", err)
		if errorCallback != nil {
			errorCallback(err)
		}
		return
	}

	w.logger.Info("config reloaded", "path", w.configPath)
	if reloadCallback != nil {
		reloadCallback(cfg)
	}
}
