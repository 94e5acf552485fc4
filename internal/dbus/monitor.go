package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// SignalKind identifies a snackbar signal.
type SignalKind int

const (
	// SignalDismissed is the Dismissed signal; Value holds the reason.
	SignalDismissed SignalKind = iota
	// SignalActionInvoked is the ActionInvoked signal; Value holds the key.
	SignalActionInvoked
)

// String returns the signal member name.
func (k SignalKind) String() string {
	switch k {
	case SignalDismissed:
		return "Dismissed"
	case SignalActionInvoked:
		return "ActionInvoked"
	default:
		return "unknown"
	}
}

// SignalEvent is a decoded snackbar signal.
type SignalEvent struct {
	Kind  SignalKind
	ID    uint32
	Value string
}

// Monitor follows the signals emitted by snackbard.
type Monitor struct {
	conn   *dbus.Conn
	logger *slog.Logger

	signals chan *dbus.Signal
	events  chan SignalEvent
	done    chan struct{}
	once    sync.Once
}

// NewMonitor creates a monitor on conn.
func NewMonitor(conn *dbus.Conn, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		conn:    conn,
		logger:  logger,
		signals: make(chan *dbus.Signal, 16),
		events:  make(chan SignalEvent, 16),
		done:    make(chan struct{}),
	}
}

// Start subscribes to the snackbar signals.
func (m *Monitor) Start() error {
	err := m.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(DBusPath),
		dbus.WithMatchInterface(DBusInterface),
	)
	if err != nil {
		return fmt.Errorf("failed to add match rule: %w", err)
	}

	m.conn.Signal(m.signals)
	go m.process()

	m.logger.Debug("snackbar signal monitor started")
	return nil
}

// Events returns the decoded signals. The channel is closed by Stop.
func (m *Monitor) Events() <-chan SignalEvent {
	return m.events
}

func (m *Monitor) process() {
	defer close(m.events)
	for {
		select {
		case sig, ok := <-m.signals:
			if !ok {
				return
			}
			ev, ok := parseSignal(sig)
			if !ok {
				continue
			}
			select {
			case m.events <- ev:
			case <-m.done:
				return
			}
		case <-m.done:
			return
		}
	}
}

// parseSignal decodes a Dismissed or ActionInvoked signal.
func parseSignal(sig *dbus.Signal) (SignalEvent, bool) {
	if sig == nil || sig.Path != DBusPath || len(sig.Body) < 2 {
		return SignalEvent{}, false
	}

	var ev SignalEvent
	switch sig.Name {
	case DBusInterface + ".Dismissed":
		ev.Kind = SignalDismissed
	case DBusInterface + ".ActionInvoked":
		ev.Kind = SignalActionInvoked
	default:
		return SignalEvent{}, false
	}

	id, ok := sig.Body[0].(uint32)
	if !ok {
		return SignalEvent{}, false
	}
	value, ok := sig.Body[1].(string)
	if !ok {
		return SignalEvent{}, false
	}
	ev.ID = id
	ev.Value = value
	return ev, true
}

// Stop unsubscribes and closes the event channel.
func (m *Monitor) Stop() error {
	var err error
	m.once.Do(func() {
		m.conn.RemoveSignal(m.signals)
		err = m.conn.RemoveMatchSignal(
			dbus.WithMatchObjectPath(DBusPath),
			dbus.WithMatchInterface(DBusInterface),
		)
		close(m.done)
	})
	return err
}

// WaitDismissed blocks until the snackbar with the given id is dismissed and
// returns the reason. onAction, when set, is called for every action
// invoked on it first.
func WaitDismissed(ctx context.Context, events <-chan SignalEvent, id uint32, onAction func(key string)) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return "", fmt.Errorf("signal monitor stopped before snackbar %d was dismissed", id)
			}
			if ev.ID != id {
				continue
			}
			switch ev.Kind {
			case SignalActionInvoked:
				if onAction != nil {
					onAction(ev.Value)
				}
			case SignalDismissed:
				return ev.Value, nil
			}
		}
	}
}
