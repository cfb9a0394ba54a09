package lifecycle

import (
	"log/slog"
	"sync"
	"time"
)

// State is the lifecycle state of a visible notification.
type State int

const (
	// StateEntering means the entrance transition is running.
	StateEntering State = iota
	// StateVisible means the notification is fully shown.
	StateVisible
	// StateExiting means the exit transition is running.
	StateExiting
	// StateRemoved is terminal.
	StateRemoved
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateVisible:
		return "visible"
	case StateExiting:
		return "exiting"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Active reports whether the notification can still be acted upon.
func (s State) Active() bool {
	return s == StateEntering || s == StateVisible
}

// Default transition durations.
const (
	DefaultEnterTransition = 150 * time.Millisecond
	DefaultExitTransition  = 150 * time.Millisecond
)

// Transitions holds the fixed presentational transition durations.
type Transitions struct {
	Enter time.Duration
	Exit  time.Duration
}

// DefaultTransitions returns the built-in transition durations.
func DefaultTransitions() Transitions {
	return Transitions{Enter: DefaultEnterTransition, Exit: DefaultExitTransition}
}

// RemovedCallback is called once the exit transition completes.
type RemovedCallback func(id string)

// StateCallback is called when a timer moves the controller to a new state.
type StateCallback func(id string, state State)

// Controller drives one notification from Entering to Removed.
//
// Callbacks only ever run from timer callbacks and never while the controller
// holds its own lock, so the owner may call Dismiss or Abort while holding its
// own lock.
type Controller struct {
	mu     sync.Mutex
	logger *slog.Logger

	id          string
	duration    time.Duration
	transitions Transitions
	scheduler   Scheduler

	onRemoved RemovedCallback
	onState   StateCallback

	state       State
	expired     bool
	actionFired bool

	enterTimer  Timer
	expiryTimer Timer
	exitTimer   Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler sets the scheduler used for all timers.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithTransitions overrides the transition durations.
func WithTransitions(t Transitions) Option {
	return func(c *Controller) {
		c.transitions = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// OnRemoved sets the removal signal receiver.
func OnRemoved(cb RemovedCallback) Option {
	return func(c *Controller) {
		c.onRemoved = cb
	}
}

// OnStateChange sets the receiver for timer-driven state changes.
func OnStateChange(cb StateCallback) Option {
	return func(c *Controller) {
		c.onState = cb
	}
}

// NewController creates a controller for the notification id that auto-dismisses
// after duration. Call Start to begin the entrance transition and countdown.
func NewController(id string, duration time.Duration, opts ...Option) *Controller {
	c := &Controller{
		logger:      slog.Default(),
		id:          id,
		duration:    duration,
		transitions: DefaultTransitions(),
		scheduler:   SystemScheduler,
		state:       StateEntering,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the notification id this controller drives.
func (c *Controller) ID() string {
	return c.id
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Expired reports whether the exit was triggered by the countdown.
func (c *Controller) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Start begins the entrance transition and the auto-dismiss countdown.
// Both run concurrently; the entrance never delays expiry.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateEntering || c.expiryTimer != nil {
		return
	}

	c.enterTimer = c.scheduler.AfterFunc(c.transitions.Enter, c.handleEntered)
	c.expiryTimer = c.scheduler.AfterFunc(c.duration, c.handleExpired)

	c.logger.Debug("lifecycle started",
		"id", c.id,
		"duration", c.duration,
	)
}

// Dismiss cancels the countdown and starts the exit transition.
// It returns false if the controller was already exiting or removed.
func (c *Controller) Dismiss() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active() {
		return false
	}

	c.beginExitLocked()
	c.logger.Debug("lifecycle dismissed", "id", c.id)
	return true
}

// Abort cancels every pending timer and moves straight to Removed.
// No exit transition runs and no removal signal is sent.
func (c *Controller) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRemoved {
		return
	}

	c.stopTimersLocked()
	c.state = StateRemoved
	c.logger.Debug("lifecycle aborted", "id", c.id)
}

// InvokeAction runs fn at most once, and only while the notification is active.
// It does not dismiss. Returns true if fn ran.
func (c *Controller) InvokeAction(fn func()) bool {
	c.mu.Lock()
	if fn == nil || c.actionFired || !c.state.Active() {
		c.mu.Unlock()
		return false
	}
	c.actionFired = true
	c.mu.Unlock()

	fn()
	c.logger.Debug("action invoked", "id", c.id)
	return true
}

// ActionFired reports whether the action already ran.
func (c *Controller) ActionFired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.actionFired
}

func (c *Controller) handleEntered() {
	c.mu.Lock()
	if c.state != StateEntering {
		c.mu.Unlock()
		return
	}
	c.state = StateVisible
	cb := c.onState
	c.mu.Unlock()

	if cb != nil {
		cb(c.id, StateVisible)
	}
}

func (c *Controller) handleExpired() {
	c.mu.Lock()
	// A dismiss that lost the race with the timer already moved us on.
	if !c.state.Active() {
		c.mu.Unlock()
		return
	}
	c.expired = true
	c.beginExitLocked()
	cb := c.onState
	c.mu.Unlock()

	c.logger.Debug("lifecycle expired", "id", c.id)
	if cb != nil {
		cb(c.id, StateExiting)
	}
}

func (c *Controller) handleExited() {
	c.mu.Lock()
	if c.state != StateExiting {
		c.mu.Unlock()
		return
	}
	c.state = StateRemoved
	cb := c.onRemoved
	c.mu.Unlock()

	if cb != nil {
		cb(c.id)
	}
}

// beginExitLocked moves to Exiting and schedules the exit transition.
// Caller must hold the lock.
func (c *Controller) beginExitLocked() {
	c.stopTimersLocked()
	c.state = StateExiting
	c.exitTimer = c.scheduler.AfterFunc(c.transitions.Exit, c.handleExited)
}

// stopTimersLocked cancels all pending timers. Caller must hold the lock.
func (c *Controller) stopTimersLocked() {
	for _, t := range []Timer{c.enterTimer, c.expiryTimer, c.exitTimer} {
		if t != nil {
			t.Stop()
		}
	}
	c.enterTimer = nil
	c.expiryTimer = nil
	c.exitTimer = nil
}
