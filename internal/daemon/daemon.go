package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/toastd/internal/audio"
	"github.com/jmylchreest/toastd/internal/config"
	"github.com/jmylchreest/toastd/internal/dbus"
	"github.com/jmylchreest/toastd/internal/model"
	"github.com/jmylchreest/toastd/internal/stack"
)

// soundPlayer is the part of audio.Manager the daemon drives.
type soundPlayer interface {
	Start(ctx context.Context) error
	Stop()
	PlayForKind(kind model.Kind) error
	UpdateConfig(cfg *config.DaemonConfig)
}

// busServer is the part of dbus.Server the daemon drives.
type busServer interface {
	Start() error
	Stop() error
	EmitNotificationRemoved(id, reason string) error
}

// Options configures a Daemon.
type Options struct {
	// ConfigPath is the watched configuration file. Empty means the default location.
	ConfigPath string
	// Version is reported over D-Bus and in the startup notification.
	Version string
	// NotifyStartup raises a toast once the daemon is running.
	NotifyStartup bool
	Logger        *slog.Logger
	// StackOptions are passed to the stack manager.
	StackOptions []stack.Option
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Version == "" {
		o.Version = "dev"
	}
	return o
}

// Daemon owns the notification stack and everything that feeds or observes it.
type Daemon struct {
	logger *slog.Logger
	opts   Options

	mu  sync.RWMutex
	cfg *config.DaemonConfig

	stack    *stack.Manager
	audio    soundPlayer
	server   busServer
	watcher  *config.Watcher
	notifier *InternalNotifier
}

// New creates a daemon for cfg. Nothing is started until Start.
func New(cfg *config.DaemonConfig, opts Options) *Daemon {
	opts = opts.withDefaults()
	d := newDaemon(cfg, opts, audio.NewManager(cfg, opts.Logger.With("component", "audio")))

	if cfg.DBus.Enabled {
		server := dbus.NewServer(d, opts.Logger.With("component", "dbus"))
		info := dbus.DefaultServerInfo()
		info.Version = opts.Version
		server.SetServerInfo(info)
		d.server = server
	}
	return d
}

func newDaemon(cfg *config.DaemonConfig, opts Options, player soundPlayer) *Daemon {
	stackOpts := append([]stack.Option{stack.WithLogger(opts.Logger.With("component", "stack"))}, opts.StackOptions...)

	d := &Daemon{
		logger: opts.Logger,
		opts:   opts,
		cfg:    cfg,
		stack:  stack.NewManager(cfg.StackSettings(), stackOpts...),
		audio:  player,
	}
	d.notifier = NewInternalNotifier(d, opts.Logger)
	d.stack.SetRemovalCallback(d.onRemoved)
	return d
}

// Stack returns the underlying stack manager.
func (d *Daemon) Stack() *stack.Manager {
	return d.stack
}

// Config returns the active configuration.
func (d *Daemon) Config() *config.DaemonConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Start brings up audio, the bus service and the config watcher.
// Only a failure to claim the bus name is fatal.
func (d *Daemon) Start(ctx context.Context) error {
	if err := d.audio.Start(ctx); err != nil {
		d.logger.Warn("failed to start audio manager", "error", err)
	}

	if d.server != nil {
		if err := d.server.Start(); err != nil {
			d.audio.Stop()
			return fmt.Errorf("failed to start D-Bus server: %w", err)
		}
	}

	watcher, err := config.NewWatcher(d.opts.ConfigPath, d.logger.With("component", "config"))
	if err != nil {
		d.logger.Warn("config hot-reload disabled", "error", err)
	} else {
		watcher.SetReloadCallback(d.applyConfig)
		watcher.SetErrorCallback(d.notifier.NotifyConfigError)
		if err := watcher.Start(ctx, d.Config()); err != nil {
			d.logger.Warn("config hot-reload disabled", "error", err)
			_ = watcher.Stop()
		} else {
			d.watcher = watcher
		}
	}

	d.logger.Info("toastd started",
		"version", d.opts.Version,
		"max_visible", d.stack.Config().MaxVisible,
		"dbus", d.server != nil,
	)
	if d.opts.NotifyStartup {
		d.notifier.NotifyStartup(d.opts.Version)
	}
	return nil
}

// Stop shuts everything down. Remaining notifications are dropped.
func (d *Daemon) Stop() {
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Debug("config watcher stop", "error", err)
		}
	}
	if d.server != nil {
		if err := d.server.Stop(); err != nil {
			d.logger.Warn("failed to stop D-Bus server", "error", err)
		}
	}
	d.audio.Stop()
	d.stack.Close()
	d.logger.Info("toastd stopped")
}

// Run starts the daemon and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// applyConfig is the hot-reload callback.
func (d *Daemon) applyConfig(cfg *config.DaemonConfig) {
	d.mu.Lock()
	old := d.cfg
	d.cfg = cfg
	d.mu.Unlock()

	d.stack.Reconfigure(cfg.StackSettings())
	d.audio.UpdateConfig(cfg)

	if old != nil && old.DBus.Enabled != cfg.DBus.Enabled {
		d.logger.Warn("dbus.enabled changes require a restart")
	}

	d.logger.Info("configuration reloaded")
	d.notifier.NotifyConfigReloaded()
}

// onRemoved forwards removals to bus subscribers.
func (d *Daemon) onRemoved(id string, reason stack.RemovalReason) {
	d.logger.Debug("notification removed", "id", id, "reason", reason)
	if d.server == nil {
		return
	}
	if err := d.server.EmitNotificationRemoved(id, reason.String()); err != nil {
		d.logger.Debug("failed to emit removal", "id", id, "error", err)
	}
}

// Enqueue adds req to the stack and plays the sound for its kind.
func (d *Daemon) Enqueue(req model.Request) (string, error) {
	id, err := d.stack.Enqueue(req)
	if err != nil {
		return "", err
	}
	// Validated by the stack, so only the empty kind is rewritten.
	kind, _ := model.ParseKind(string(req.Kind))
	if err := d.audio.PlayForKind(kind); err != nil {
		d.logger.Warn("failed to play sound", "kind", kind, "error", err)
		d.notifier.NotifyAudioError(err)
	}
	return id, nil
}

// Dismiss removes a notification from the stack.
func (d *Daemon) Dismiss(id string) bool {
	return d.stack.Dismiss(id)
}

// DismissAll clears the stack.
func (d *Daemon) DismissAll() int {
	return d.stack.DismissAll()
}

// InvokeAction runs a notification's action.
func (d *Daemon) InvokeAction(id string) (bool, error) {
	return d.stack.InvokeAction(id)
}

// Snapshot returns the visible set.
func (d *Daemon) Snapshot() []model.View {
	return d.stack.Snapshot()
}
