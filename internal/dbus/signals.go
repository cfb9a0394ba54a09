package dbus

import (
	"fmt"
)

// EmitNotificationRemoved emits the NotificationRemoved signal.
// Wire it as the stack's removal callback.
func (s *Server) EmitNotificationRemoved(id string, reason string) error {
	s.mu.RLock()
	emitter := s.emitter
	s.mu.RUnlock()

	if emitter == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := emitter.Emit(Path, Interface+"."+SignalNotificationRemoved, id, reason)
	if err != nil {
		return fmt.Errorf("failed to emit NotificationRemoved signal: %w", err)
	}

	s.logger.Debug("emitted NotificationRemoved signal", "id", id, "reason", reason)
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
func (s *Server) EmitActionInvoked(id string, label string) error {
	s.mu.RLock()
	emitter := s.emitter
	s.mu.RUnlock()

	if emitter == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := emitter.Emit(Path, Interface+"."+SignalActionInvoked, id, label)
	if err != nil {
		return fmt.Errorf("failed to emit ActionInvoked signal: %w", err)
	}

	s.logger.Debug("emitted ActionInvoked signal", "id", id, "label", label)
	return nil
}

func (s *Server) emitActionInvoked(id, label string) {
	if err := s.EmitActionInvoked(id, label); err != nil {
		s.logger.Warn("failed to emit ActionInvoked signal", "id", id, "error", err)
	}
}
