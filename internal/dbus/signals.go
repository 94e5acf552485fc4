package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// EmitDismissed emits the Dismissed signal once a snackbar has left the
// screen. reason is one of expired, dismissed, tapped, swiped, action or
// closed.
func (s *Server) EmitDismissed(id uint32, reason string) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := s.conn.Emit(DBusPath, DBusInterface+".Dismissed", id, reason); err != nil {
		return fmt.Errorf("failed to emit Dismissed signal: %w", err)
	}

	s.logger.Debug("emitted Dismissed signal", "id", id, "reason", reason)
	return nil
}

// EmitActionInvoked emits the ActionInvoked signal.
func (s *Server) EmitActionInvoked(id uint32, actionKey string) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := s.conn.Emit(DBusPath, DBusInterface+".ActionInvoked", id, actionKey); err != nil {
		return fmt.Errorf("failed to emit ActionInvoked signal: %w", err)
	}

	s.logger.Debug("emitted ActionInvoked signal", "id", id, "action_key", actionKey)
	return nil
}

// Connection returns the underlying D-Bus connection.
func (s *Server) Connection() *dbus.Conn {
	return s.conn
}
