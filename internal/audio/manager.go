package audio

import (
	"context"
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/model"
)

// player is the playback backend; *Player in production.
type player interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
	InvalidateCache(path string)
	ClearCache()
	Close()
}

// Manager plays a sound for each notification according to its kind.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  player
	watcher *Watcher

	enabled bool
	sounds  map[model.Kind]string
}

// NewManager creates a new audio manager.
func NewManager(cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return newManager(cfg, NewPlayer(logger), logger)
}

func newManager(cfg *config.DaemonConfig, p player, logger *slog.Logger) *Manager {
	m := &Manager{
		logger: logger,
		player: p,
		sounds: make(map[model.Kind]string),
	}
	m.watcher = NewWatcher(p.InvalidateCache, logger)
	m.applyConfig(cfg)
	return m
}

// applyConfig resolves the per-kind sound table from cfg.
func (m *Manager) applyConfig(cfg *config.DaemonConfig) {
	if cfg == nil {
		return
	}

	sounds := make(map[model.Kind]string)
	for _, kind := range model.Kinds() {
		path := cfg.GetSoundForKind(kind)
		if path == "" {
			continue
		}
		if !SupportedFormat(path) {
			m.logger.Warn("unsupported sound format", "kind", kind, "path", path)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "kind", kind, "path", path)
			continue
		}
		sounds[kind] = path
		m.logger.Debug("loaded sound", "kind", kind, "path", path)
	}

	// Config uses 0-100, player uses 0.0-1.0
	m.player.SetVolume(float64(cfg.Audio.Volume) / 100.0)

	m.mu.Lock()
	m.enabled = cfg.Audio.Enabled
	m.sounds = sounds
	m.mu.Unlock()
}

// snapshot returns a copy of the sound table.
func (m *Manager) snapshot() map[model.Kind]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sounds := make(map[model.Kind]string, len(m.sounds))
	maps.Copy(sounds, m.sounds)
	return sounds
}

// Start preloads the configured sounds and starts watching them.
func (m *Manager) Start(ctx context.Context) error {
	sounds := m.snapshot()

	for _, path := range sounds {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}

	if err := m.watcher.Start(ctx); err != nil {
		return err
	}

	m.logger.Info("audio manager started", "sounds", len(sounds))
	return nil
}

// Stop shuts down the audio manager.
func (m *Manager) Stop() {
	m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// PlayForKind plays the sound configured for kind, if any.
func (m *Manager) PlayForKind(kind model.Kind) error {
	m.mu.RLock()
	enabled := m.enabled
	path, ok := m.sounds[kind]
	m.mu.RUnlock()

	if !enabled {
		return nil
	}
	if !ok {
		m.logger.Debug("no sound configured for kind", "kind", kind)
		return nil
	}
	return m.player.Play(path)
}

// UpdateConfig applies a hot-reloaded configuration.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	old := m.snapshot()
	m.player.ClearCache()
	m.applyConfig(cfg)

	for _, path := range old {
		m.watcher.Unwatch(path)
	}
	for _, path := range m.snapshot() {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound on reload", "path", path, "error", err)
		}
		m.watcher.Watch(path)
	}

	m.logger.Debug("audio manager config updated")
}
