// Package model defines the core data structures for toastd.
package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
)

// DefaultDuration is the time-to-live applied when a request leaves it unset.
const DefaultDuration = 5000 * time.Millisecond

// Kind is the presentation category of a notification.
// It never influences stacking order.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindBooking Kind = "booking"
)

// Kinds returns all valid kinds in display order.
func Kinds() []Kind {
	return []Kind{KindSuccess, KindInfo, KindWarning, KindError, KindBooking}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts a user-supplied string to a Kind.
// An empty string maps to KindInfo.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return KindInfo, nil
	}
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidConfiguration, s)
	}
	return k, nil
}

// Action is an optional user-triggerable side effect attached to a notification.
type Action struct {
	Label string
	Run   func()
}

// Request is what callers hand to the stack manager.
// ID and layout offset are assigned by the manager.
type Request struct {
	Kind           Kind
	Title          string
	Body           string
	CountdownLabel string
	MediaRef       string
	Action         *Action
	Duration       time.Duration // Zero or negative means DefaultDuration
	Source         string
}

// Validation errors.
var (
	// ErrInvalidConfiguration is returned when a request is missing required fields.
	ErrInvalidConfiguration = errors.New("invalid notification configuration")
)

// Validate checks that the request can be enqueued.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidConfiguration)
	}
	if r.Kind != "" && !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidConfiguration, r.Kind)
	}
	if r.Action != nil && r.Action.Label == "" {
		return fmt.Errorf("%w: action label cannot be empty", ErrInvalidConfiguration)
	}
	return nil
}

// EffectiveDuration returns the request's duration, or fallback when unset.
func (r *Request) EffectiveDuration(fallback time.Duration) time.Duration {
	if r.Duration > 0 {
		return r.Duration
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultDuration
}

// Notification is a visible record owned by the stack manager.
type Notification struct {
	ID             string
	Kind           Kind
	Title          string
	Body           string
	CountdownLabel string
	MediaRef       string
	Action         *Action
	Duration       time.Duration
	Source         string
	CreatedAt      time.Time
	LayoutOffset   int
}

// NewNotification builds a record from a validated request.
func NewNotification(id string, req Request, duration time.Duration, now time.Time) *Notification {
	kind := req.Kind
	if kind == "" {
		kind = KindInfo
	}
	return &Notification{
		ID:             id,
		Kind:           kind,
		Title:          req.Title,
		Body:           req.Body,
		CountdownLabel: req.CountdownLabel,
		MediaRef:       req.MediaRef,
		Action:         req.Action,
		Duration:       duration,
		Source:         req.Source,
		CreatedAt:      now,
	}
}

// HasAction reports whether the record carries an action.
func (n *Notification) HasAction() bool {
	return n.Action != nil && n.Action.Run != nil
}

// View is the read-only projection handed to presentation layers.
type View struct {
	ID             string    `json:"id" yaml:"id"`
	Kind           Kind      `json:"kind" yaml:"kind"`
	Title          string    `json:"title" yaml:"title"`
	Body           string    `json:"body,omitempty" yaml:"body,omitempty"`
	CountdownLabel string    `json:"countdown_label,omitempty" yaml:"countdown_label,omitempty"`
	MediaRef       string    `json:"media_ref,omitempty" yaml:"media_ref,omitempty"`
	ActionLabel    string    `json:"action_label,omitempty" yaml:"action_label,omitempty"`
	LayoutOffset   int       `json:"layout_offset" yaml:"layout_offset"`
	State          string    `json:"state" yaml:"state"`
	DurationMs     int64     `json:"duration_ms" yaml:"duration_ms"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	Source         string    `json:"source,omitempty" yaml:"source,omitempty"`
}

// ToView projects the record for rendering.
func (n *Notification) ToView(state string) View {
	v := View{
		ID:             n.ID,
		Kind:           n.Kind,
		Title:          n.Title,
		Body:           n.Body,
		CountdownLabel: n.CountdownLabel,
		MediaRef:       n.MediaRef,
		LayoutOffset:   n.LayoutOffset,
		State:          state,
		DurationMs:     n.Duration.Milliseconds(),
		CreatedAt:      n.CreatedAt,
		Source:         n.Source,
	}
	if n.Action != nil {
		v.ActionLabel = n.Action.Label
	}
	return v
}

// BodyTruncated returns the body truncated to maxLen characters.
// If the body is longer, it is truncated and "..." is appended.
func (v View) BodyTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	return Truncate(strings.Join(strings.Fields(v.Body), " "), maxLen)
}

// Truncate shortens s to at most maxLen runes, ending in "..." when cut.
// Multi-byte characters are never split.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IDGenerator hands out monotonic ULIDs. Safe for concurrent use.
type IDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewIDGenerator creates a generator backed by crypto/rand.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Next returns a fresh identifier that sorts after every previous one.
func (g *IDGenerator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}
