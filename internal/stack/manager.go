// Package stack implements the bounded notification stack: a FIFO visible set
// of at most MaxVisible records with computed layout offsets and per-record
// lifecycle controllers.
package stack

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toastd/internal/lifecycle"
	"github.com/jmylchreest/toastd/internal/model"
)

// Default layout values.
const (
	MaxVisible = 3
	OffsetStep = 100
)

// ErrManagerClosed is returned when operations are attempted on a closed manager.
var ErrManagerClosed = errors.New("stack manager is closed")

// Config holds the stack layout and timing settings.
type Config struct {
	MaxVisible      int
	OffsetStep      int
	DefaultDuration time.Duration
	Transitions     lifecycle.Transitions
}

// DefaultConfig returns the built-in stack settings.
func DefaultConfig() Config {
	return Config{
		MaxVisible:      MaxVisible,
		OffsetStep:      OffsetStep,
		DefaultDuration: model.DefaultDuration,
		Transitions:     lifecycle.DefaultTransitions(),
	}
}

// normalize replaces out-of-range values with defaults.
func (c Config) normalize() Config {
	def := DefaultConfig()
	if c.MaxVisible < 1 {
		c.MaxVisible = def.MaxVisible
	}
	if c.OffsetStep <= 0 {
		c.OffsetStep = def.OffsetStep
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = def.DefaultDuration
	}
	if c.Transitions.Enter < 0 {
		c.Transitions.Enter = 0
	}
	if c.Transitions.Exit < 0 {
		c.Transitions.Exit = 0
	}
	return c
}

// entry pairs a visible record with its lifecycle controller.
type entry struct {
	notification *model.Notification
	controller   *lifecycle.Controller
}

// removal is a pending removal callback, delivered once the lock is released.
type removal struct {
	id     string
	reason RemovalReason
}

// Manager owns the visible set. It is the only writer of queue membership.
// All mutation is serialized on one mutex, including timer callbacks.
type Manager struct {
	mu     sync.Mutex
	config Config
	logger *slog.Logger

	scheduler lifecycle.Scheduler
	ids       *model.IDGenerator
	now       func() time.Time

	// Insertion-ordered, oldest first
	visible []*entry

	onRemoved   RemovalCallback
	subscribers []chan ChangeEvent
	closed      bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithScheduler sets the scheduler handed to every lifecycle controller.
func WithScheduler(s lifecycle.Scheduler) Option {
	return func(m *Manager) {
		if s != nil {
			m.scheduler = s
		}
	}
}

// WithClock sets the function used to stamp CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a new stack manager.
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		config:    cfg.normalize(),
		logger:    slog.Default(),
		scheduler: lifecycle.SystemScheduler,
		ids:       model.NewIDGenerator(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetRemovalCallback sets the observer for removals.
func (m *Manager) SetRemovalCallback(cb RemovalCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRemoved = cb
}

// Config returns the active configuration.
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Enqueue validates req, makes it visible and returns its new id.
// When the stack is full the oldest record is evicted immediately.
func (m *Manager) Enqueue(req model.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrManagerClosed
	}

	id, err := m.ids.Next()
	if err != nil {
		m.mu.Unlock()
		return "", err
	}

	evicted := m.evictLocked(m.config.MaxVisible - 1)

	n := model.NewNotification(id, req, req.EffectiveDuration(m.config.DefaultDuration), m.now())
	ctrl := lifecycle.NewController(id, n.Duration,
		lifecycle.WithScheduler(m.scheduler),
		lifecycle.WithTransitions(m.config.Transitions),
		lifecycle.WithLogger(m.logger),
		lifecycle.OnRemoved(m.handleRemoved),
		lifecycle.OnStateChange(m.handleStateChange),
	)
	m.visible = append(m.visible, &entry{notification: n, controller: ctrl})
	m.recomputeOffsetsLocked()
	ctrl.Start()

	m.logger.Debug("enqueued notification",
		"id", id,
		"kind", n.Kind,
		"offset", n.LayoutOffset,
		"duration", n.Duration,
		"visible", len(m.visible),
	)

	m.notifyChangeLocked(ChangeEvent{Type: ChangeTypeAdd, ID: id, Count: 1})
	cb := m.onRemoved
	m.mu.Unlock()

	deliver(cb, evicted)
	return id, nil
}

// Dismiss removes the notification with the given id and starts its exit
// transition. Unknown or already removed ids are a no-op.
// Returns true if a notification was removed.
func (m *Manager) Dismiss(id string) bool {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 || m.closed {
		m.mu.Unlock()
		m.logger.Debug("dismiss ignored, unknown id", "id", id)
		return false
	}

	e := m.removeAtLocked(idx)
	e.controller.Dismiss()
	m.recomputeOffsetsLocked()

	m.logger.Debug("dismissed notification", "id", id, "visible", len(m.visible))

	m.notifyChangeLocked(ChangeEvent{Type: ChangeTypeRemove, ID: id, Reason: ReasonDismissed, Count: 1})
	cb := m.onRemoved
	m.mu.Unlock()

	deliver(cb, []removal{{id: id, reason: ReasonDismissed}})
	return true
}

// DismissAll clears the visible set in one step. Returns the number removed.
func (m *Manager) DismissAll() int {
	m.mu.Lock()
	if m.closed || len(m.visible) == 0 {
		m.mu.Unlock()
		return 0
	}

	cleared := m.visible
	m.visible = nil

	removed := make([]removal, 0, len(cleared))
	for _, e := range cleared {
		e.controller.Dismiss()
		removed = append(removed, removal{id: e.notification.ID, reason: ReasonDismissedAll})
	}

	m.logger.Debug("dismissed all notifications", "count", len(cleared))

	m.notifyChangeLocked(ChangeEvent{Type: ChangeTypeClear, Reason: ReasonDismissedAll, Count: len(cleared)})
	cb := m.onRemoved
	m.mu.Unlock()

	deliver(cb, removed)
	return len(cleared)
}

// InvokeAction runs the notification's action if it is still active and has
// not run before. It does not dismiss. Unknown ids return false.
func (m *Manager) InvokeAction(id string) (bool, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false, ErrManagerClosed
	}
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return false, nil
	}
	e := m.visible[idx]
	m.mu.Unlock()

	if !e.notification.HasAction() {
		return false, nil
	}

	// Run outside the lock so the action may call back into the manager.
	return e.controller.InvokeAction(e.notification.Action.Run), nil
}

// Snapshot returns the visible records in insertion order with their offsets.
func (m *Manager) Snapshot() []model.View {
	m.mu.Lock()
	defer m.mu.Unlock()

	views := make([]model.View, 0, len(m.visible))
	for _, e := range m.visible {
		views = append(views, e.notification.ToView(viewState(e.controller.State())))
	}
	return views
}

// viewState reports the state of a record that is still in the visible set.
// A controller that finished its exit transition is Removed before the
// manager dequeues it; until then it is shown as exiting.
func viewState(s lifecycle.State) string {
	if s == lifecycle.StateRemoved {
		return lifecycle.StateExiting.String()
	}
	return s.String()
}

// Len returns the number of visible records.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.visible)
}

// Reconfigure applies new layout settings. Offsets are recomputed at once and
// the oldest records are evicted if the new capacity is smaller.
// Timers of records already visible are left untouched.
func (m *Manager) Reconfigure(cfg Config) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	old := m.config
	m.config = cfg.normalize()
	evicted := m.evictLocked(m.config.MaxVisible)
	m.recomputeOffsetsLocked()

	m.logger.Debug("stack reconfigured",
		"old_max_visible", old.MaxVisible,
		"new_max_visible", m.config.MaxVisible,
		"offset_step", m.config.OffsetStep,
		"evicted", len(evicted),
	)

	m.notifyChangeLocked(ChangeEvent{Type: ChangeTypeReconfigure, Count: len(evicted)})
	cb := m.onRemoved
	m.mu.Unlock()

	deliver(cb, evicted)
}

// Subscribe returns a channel that receives change events.
// Events are dropped for subscribers whose buffer is full.
func (m *Manager) Subscribe() <-chan ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan ChangeEvent, 16)
	if m.closed {
		close(ch)
		return ch
	}
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Manager) Unsubscribe(ch <-chan ChangeEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close cancels every lifecycle, clears the stack and closes subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	for _, e := range m.visible {
		e.controller.Abort()
	}
	m.visible = nil

	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil

	m.logger.Debug("stack manager closed")
}

// handleRemoved receives the removal signal from a controller whose exit
// transition finished. Only expired records are still present at that point.
func (m *Manager) handleRemoved(id string) {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 || m.closed {
		m.mu.Unlock()
		return
	}

	m.removeAtLocked(idx)
	m.recomputeOffsetsLocked()

	m.logger.Debug("notification expired", "id", id, "visible", len(m.visible))

	m.notifyChangeLocked(ChangeEvent{Type: ChangeTypeRemove, ID: id, Reason: ReasonExpired, Count: 1})
	cb := m.onRemoved
	m.mu.Unlock()

	deliver(cb, []removal{{id: id, reason: ReasonExpired}})
}

// handleStateChange forwards timer-driven state changes to subscribers.
func (m *Manager) handleStateChange(id string, _ lifecycle.State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.indexLocked(id) < 0 {
		return
	}
	m.notifyChangeLocked(ChangeEvent{Type: ChangeTypeState, ID: id})
}

// evictLocked drops the oldest records until at most keep remain.
// Evicted controllers are aborted: no exit transition, no removal signal.
// Caller must hold the lock.
func (m *Manager) evictLocked(keep int) []removal {
	if keep < 0 {
		keep = 0
	}

	var evicted []removal
	for len(m.visible) > keep {
		e := m.removeAtLocked(0)
		e.controller.Abort()
		evicted = append(evicted, removal{id: e.notification.ID, reason: ReasonEvicted})

		m.logger.Debug("evicted oldest notification", "id", e.notification.ID)
		m.notifyChangeLocked(ChangeEvent{Type: ChangeTypeRemove, ID: e.notification.ID, Reason: ReasonEvicted, Count: 1})
	}
	return evicted
}

// indexLocked returns the position of id in the visible set, or -1.
// Caller must hold the lock.
func (m *Manager) indexLocked(id string) int {
	for i, e := range m.visible {
		if e.notification.ID == id {
			return i
		}
	}
	return -1
}

// removeAtLocked removes and returns the entry at idx, preserving order.
// Caller must hold the lock.
func (m *Manager) removeAtLocked(idx int) *entry {
	e := m.visible[idx]
	copy(m.visible[idx:], m.visible[idx+1:])
	m.visible[len(m.visible)-1] = nil
	m.visible = m.visible[:len(m.visible)-1]
	return e
}

// recomputeOffsetsLocked assigns index * OffsetStep to every visible record.
// Caller must hold the lock.
func (m *Manager) recomputeOffsetsLocked() {
	for i, e := range m.visible {
		e.notification.LayoutOffset = i * m.config.OffsetStep
	}
}

// notifyChangeLocked fans an event out to subscribers without blocking.
// Caller must hold the lock.
func (m *Manager) notifyChangeLocked(event ChangeEvent) {
	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

func deliver(cb RemovalCallback, removed []removal) {
	if cb == nil {
		return
	}
	for _, r := range removed {
		cb(r.id, r.reason)
	}
}
