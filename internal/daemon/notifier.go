package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages.
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages.
	NotificationLevelWarning
	// NotificationLevelError is for error messages.
	NotificationLevelError
)

// Kind maps the level to the notification kind it is shown as.
func (l NotificationLevel) Kind() model.Kind {
	switch l {
	case NotificationLevelWarning:
		return model.KindWarning
	case NotificationLevelError:
		return model.KindError
	default:
		return model.KindInfo
	}
}

// internalSource is the Source recorded on toasts the daemon raises itself.
const internalSource = "toastd"

// Enqueuer accepts new notifications.
type Enqueuer interface {
	Enqueue(req model.Request) (string, error)
}

// InternalNotifier raises toasts about daemon events on the stack.
// Repeats of the same key are suppressed for minInterval.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time

	target Enqueuer

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier posting to target.
func NewInternalNotifier(target Enqueuer, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		now:            time.Now,
		target:         target,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify raises a toast unless key was used within the rate-limit window.
// It reports whether a toast was enqueued.
func (n *InternalNotifier) Notify(key, title, body string, level NotificationLevel) bool {
	n.mu.Lock()
	if !n.enabled || n.target == nil {
		n.mu.Unlock()
		return false
	}
	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "title", title)
		return false
	}
	n.lastNotifyTime[key] = now
	target := n.target
	n.mu.Unlock()

	// Enqueue may re-enter the notifier through the audio path.
	id, err := target.Enqueue(model.Request{
		Kind:   level.Kind(),
		Title:  title,
		Body:   body,
		Source: internalSource,
	})
	if err != nil {
		n.logger.Warn("failed to raise internal notification", "key", key, "error", err)
		return false
	}

	n.logger.Debug("raised internal notification", "key", key, "id", id, "level", level)
	return true
}

// NotifyConfigReloaded announces a successful configuration reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"toastd configuration has been successfully reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError announces a rejected configuration file.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyStartup announces that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify(
		"startup",
		"toastd Started",
		"Notification stack v"+version+" is now running.",
		NotificationLevelInfo,
	)
}

// NotifyAudioError announces a failed sound playback.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify(
		"audio-error",
		"Audio Error",
		"Failed to play notification sound: "+err.Error(),
		NotificationLevelError,
	)
}
