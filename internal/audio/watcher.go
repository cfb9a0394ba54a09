package audio

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches sound files and invalidates cached buffers when they change.
type Watcher struct {
	mu     sync.Mutex
	logger *slog.Logger

	onChange func(path string)

	watcher *fsnotify.Watcher
	// Watched file paths, and reference counts of their parent directories
	paths map[string]bool
	dirs  map[string]int

	done    chan struct{}
	stopped chan struct{}
	running bool
}

// NewWatcher creates a watcher that calls onChange with the path of every
// modified sound file.
func NewWatcher(onChange func(path string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		onChange: onChange,
		paths:    make(map[string]bool),
		dirs:     make(map[string]int),
	}
}

// Watch adds a path to the watch list.
func (w *Watcher) Watch(path string) {
	if path == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paths[path] {
		return
	}
	w.paths[path] = true

	dir := filepath.Dir(path)
	w.dirs[dir]++
	if w.dirs[dir] == 1 && w.watcher != nil {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch sound directory", "dir", dir, "error", err)
		}
	}
}

// Unwatch removes a path from the watch list.
func (w *Watcher) Unwatch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.paths[path] {
		return
	}
	delete(w.paths, path)

	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return
	}
	delete(w.dirs, dir)
	if w.watcher != nil {
		_ = w.watcher.Remove(dir)
	}
}

// Start begins watching. Paths added before Start are picked up.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			w.logger.Warn("failed to watch sound directory", "dir", dir, "error", err)
		}
	}

	w.watcher = fw
	w.running = true
	w.done = make(chan struct{})
	w.stopped = make(chan struct{})

	go w.watch(ctx, fw, w.done, w.stopped)

	w.logger.Debug("audio watcher started", "dirs", len(w.dirs))
	return nil
}

// Stop stops watching audio files.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.done)
	fw := w.watcher
	w.watcher = nil
	stopped := w.stopped
	w.mu.Unlock()

	_ = fw.Close()
	<-stopped
	w.logger.Debug("audio watcher stopped")
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) watch(ctx context.Context, fw *fsnotify.Watcher, done, stopped chan struct{}) {
	defer close(stopped)

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			w.mu.Lock()
			watched := w.paths[event.Name]
			w.mu.Unlock()

			if watched && w.onChange != nil {
				w.logger.Debug("sound file changed, invalidating cache", "path", event.Name)
				w.onChange(event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("audio watcher error", "error", err)

		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}
