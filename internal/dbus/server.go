package dbus

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/toastd/internal/model"
)

// Stack is the engine contract exported on the bus.
type Stack interface {
	Enqueue(req model.Request) (string, error)
	Dismiss(id string) bool
	DismissAll() int
	InvokeAction(id string) (bool, error)
	Snapshot() []model.View
}

// signalEmitter is satisfied by *dbus.Conn.
type signalEmitter interface {
	Emit(path dbus.ObjectPath, name string, values ...any) error
}

// Server exports a Stack on the session bus.
type Server struct {
	conn    *dbus.Conn
	emitter signalEmitter
	logger  *slog.Logger
	stack   Stack

	mu         sync.RWMutex
	serverInfo ServerInfo
	running    bool
}

// NewServer creates a new Server for stack.
func NewServer(stack Stack, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:     logger,
		stack:      stack,
		serverInfo: DefaultServerInfo(),
	}
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *Server) SetServerInfo(info ServerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverInfo = info
}

// Start connects to the session bus and exports the service.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, Path, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: string(Path),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: toastdMethods(),
				Signals: toastdSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.emitter = conn
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus server started", "interface", Interface, "path", Path)
	return nil
}

// Stop releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// Don't close the connection as it's shared (SessionBus)
	}
	s.emitter = nil

	s.logger.Info("D-Bus server stopped")
	return nil
}

// GetServerInformation returns information about the server.
// D-Bus method: GetServerInformation() -> (ssss)
func (s *Server) GetServerInformation() (string, string, string, string, *dbus.Error) {
	s.mu.RLock()
	info := s.serverInfo
	s.mu.RUnlock()
	return info.Name, info.Vendor, info.Version, info.APIVersion, nil
}

// Enqueue makes a new notification visible.
// D-Bus method: Enqueue(ssssssi) -> s
func (s *Server) Enqueue(
	kind string,
	title string,
	body string,
	countdown string,
	media string,
	actionLabel string,
	durationMs int32,
) (string, *dbus.Error) {
	args := EnqueueArgs{
		Kind:           kind,
		Title:          title,
		Body:           body,
		CountdownLabel: countdown,
		MediaRef:       media,
		ActionLabel:    actionLabel,
		DurationMs:     durationMs,
	}

	// The id is only known after Enqueue returns; the action reads it lazily.
	var assigned atomic.Pointer[string]
	req, err := args.Request(func() {
		if id := assigned.Load(); id != nil {
			s.emitActionInvoked(*id, actionLabel)
		}
	})
	if err != nil {
		return "", toDBusError(err)
	}

	id, err := s.stack.Enqueue(req)
	if err != nil {
		s.logger.Debug("Enqueue rejected", "title", title, "error", err)
		return "", toDBusError(err)
	}
	assigned.Store(&id)

	s.logger.Debug("Enqueue called", "id", id, "kind", req.Kind, "title", title)
	return id, nil
}

// Dismiss removes a notification. Unknown ids are ignored.
// D-Bus method: Dismiss(s)
func (s *Server) Dismiss(id string) *dbus.Error {
	s.logger.Debug("Dismiss called", "id", id)
	s.stack.Dismiss(id)
	return nil
}

// DismissAll clears the visible set.
// D-Bus method: DismissAll()
func (s *Server) DismissAll() *dbus.Error {
	n := s.stack.DismissAll()
	s.logger.Debug("DismissAll called", "count", n)
	return nil
}

// InvokeAction runs a notification's action.
// D-Bus method: InvokeAction(s) -> b
func (s *Server) InvokeAction(id string) (bool, *dbus.Error) {
	fired, err := s.stack.InvokeAction(id)
	if err != nil {
		return false, toDBusError(err)
	}
	s.logger.Debug("InvokeAction called", "id", id, "fired", fired)
	return fired, nil
}

// List returns the visible set encoded as JSON.
// D-Bus method: List() -> s
func (s *Server) List() (string, *dbus.Error) {
	data, err := json.Marshal(s.stack.Snapshot())
	if err != nil {
		return "", toDBusError(err)
	}
	return string(data), nil
}

// toDBusError maps engine errors to named D-Bus errors.
func toDBusError(err error) *dbus.Error {
	name := ErrorFailed
	if errors.Is(err, model.ErrInvalidConfiguration) {
		name = ErrorInvalidConfiguration
	}
	return dbus.NewError(name, []any{err.Error()})
}

// toastdMethods returns the D-Bus method introspection data.
func toastdMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
				{Name: "api_version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Enqueue",
			Args: []introspect.Arg{
				{Name: "kind", Type: "s", Direction: "in"},
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "body", Type: "s", Direction: "in"},
				{Name: "countdown", Type: "s", Direction: "in"},
				{Name: "media", Type: "s", Direction: "in"},
				{Name: "action_label", Type: "s", Direction: "in"},
				{Name: "duration_ms", Type: "i", Direction: "in"},
				{Name: "id", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Dismiss",
			Args: []introspect.Arg{
				{Name: "id", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "DismissAll",
		},
		{
			Name: "InvokeAction",
			Args: []introspect.Arg{
				{Name: "id", Type: "s", Direction: "in"},
				{Name: "fired", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "List",
			Args: []introspect.Arg{
				{Name: "snapshot", Type: "s", Direction: "out"},
			},
		},
	}
}

// toastdSignals returns the D-Bus signal introspection data.
func toastdSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: SignalNotificationRemoved,
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "reason", Type: "s"},
			},
		},
		{
			Name: SignalActionInvoked,
			Args: []introspect.Arg{
				{Name: "id", Type: "s"},
				{Name: "label", Type: "s"},
			},
		},
	}
}
