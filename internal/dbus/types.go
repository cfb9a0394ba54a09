package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/toastd/internal/model"
)

const (
	// Interface is the toastd interface name.
	Interface = "io.github.jmylchreest.Toastd"
	// Path is the toastd object path.
	Path = dbus.ObjectPath("/io/github/jmylchreest/Toastd")
	// BusName is the bus name to claim.
	BusName = "io.github.jmylchreest.Toastd"

	// ErrorInvalidConfiguration is returned when an enqueue request is rejected.
	ErrorInvalidConfiguration = Interface + ".Error.InvalidConfiguration"
	// ErrorFailed is returned for any other engine failure.
	ErrorFailed = Interface + ".Error.Failed"

	// SignalNotificationRemoved is emitted for every removal from the visible set.
	SignalNotificationRemoved = "NotificationRemoved"
	// SignalActionInvoked is emitted when a bus-enqueued action fires.
	SignalActionInvoked = "ActionInvoked"
)

// EnqueueArgs holds the raw arguments of an Enqueue call.
type EnqueueArgs struct {
	Kind           string
	Title          string
	Body           string
	CountdownLabel string
	MediaRef       string
	ActionLabel    string
	DurationMs     int32 // <= 0 = server default
}

// Request converts the arguments to an engine request.
// The action, if labeled, runs run when invoked.
func (a EnqueueArgs) Request(run func()) (model.Request, error) {
	kind, err := model.ParseKind(a.Kind)
	if err != nil {
		return model.Request{}, err
	}

	req := model.Request{
		Kind:           kind,
		Title:          a.Title,
		Body:           a.Body,
		CountdownLabel: a.CountdownLabel,
		MediaRef:       a.MediaRef,
		Source:         "dbus",
	}
	if a.DurationMs > 0 {
		req.Duration = time.Duration(a.DurationMs) * time.Millisecond
	}
	if a.ActionLabel != "" {
		req.Action = &model.Action{Label: a.ActionLabel, Run: run}
	}
	return req, nil
}

// Values returns the arguments in wire order.
func (a EnqueueArgs) Values() []any {
	return []any{a.Kind, a.Title, a.Body, a.CountdownLabel, a.MediaRef, a.ActionLabel, a.DurationMs}
}

// Removal is a decoded NotificationRemoved signal.
type Removal struct {
	ID     string
	Reason string
}

// parseRemoval decodes a NotificationRemoved signal body.
func parseRemoval(sig *dbus.Signal) (Removal, bool) {
	if sig == nil || sig.Name != Interface+"."+SignalNotificationRemoved || len(sig.Body) < 2 {
		return Removal{}, false
	}
	id, ok := sig.Body[0].(string)
	if !ok {
		return Removal{}, false
	}
	reason, ok := sig.Body[1].(string)
	if !ok {
		return Removal{}, false
	}
	return Removal{ID: id, Reason: reason}, true
}

// ServerInfo contains information about the toastd server.
type ServerInfo struct {
	Name       string // "toastd"
	Vendor     string // "jmylchreest"
	Version    string // Build version
	APIVersion string // Interface revision
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:       "toastd",
		Vendor:     "jmylchreest",
		Version:    "dev",
		APIVersion: "1",
	}
}
