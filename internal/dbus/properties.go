package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const propertiesInterface = "org.freedesktop.DBus.Properties"

// boolProperty follows one boolean property of a remote object: it reads
// the initial value and then listens for PropertiesChanged.
type boolProperty struct {
	conn     *dbus.Conn
	dest     string
	path     dbus.ObjectPath
	iface    string
	name     string
	logger   *slog.Logger
	onChange func(value bool)

	signals chan *dbus.Signal
	done    chan struct{}
	once    sync.Once
}

func newBoolProperty(conn *dbus.Conn, dest string, path dbus.ObjectPath, iface, name string, logger *slog.Logger, onChange func(bool)) *boolProperty {
	return &boolProperty{
		conn:     conn,
		dest:     dest,
		path:     path,
		iface:    iface,
		name:     name,
		logger:   logger,
		onChange: onChange,
		signals:  make(chan *dbus.Signal, 8),
		done:     make(chan struct{}),
	}
}

// start subscribes first so no change between Get and AddMatch is lost.
func (p *boolProperty) start() error {
	err := p.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(p.path),
		dbus.WithMatchInterface(propertiesInterface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchArg(0, p.iface),
	)
	if err != nil {
		return fmt.Errorf("failed to watch %s.%s: %w", p.iface, p.name, err)
	}
	p.conn.Signal(p.signals)
	go p.process()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var v dbus.Variant
	err = p.conn.Object(p.dest, p.path).
		CallWithContext(ctx, propertiesInterface+".Get", 0, p.iface, p.name).
		Store(&v)
	if err != nil {
		// The service may appear later; PropertiesChanged still applies
		p.logger.Debug("property not readable yet", "property", p.iface+"."+p.name, "error", err)
		return nil
	}
	if b, ok := v.Value().(bool); ok {
		p.onChange(b)
	}
	return nil
}

func (p *boolProperty) process() {
	for {
		select {
		case sig, ok := <-p.signals:
			if !ok {
				return
			}
			if sig.Path != p.path {
				continue
			}
			if value, ok := changedBool(sig, p.iface, p.name); ok {
				p.onChange(value)
			}
		case <-p.done:
			return
		}
	}
}

func (p *boolProperty) stop() {
	p.once.Do(func() {
		p.conn.RemoveSignal(p.signals)
		_ = p.conn.RemoveMatchSignal(
			dbus.WithMatchObjectPath(p.path),
			dbus.WithMatchInterface(propertiesInterface),
			dbus.WithMatchMember("PropertiesChanged"),
			dbus.WithMatchArg(0, p.iface),
		)
		close(p.done)
	})
}

// changedBool extracts a boolean property from a PropertiesChanged signal.
func changedBool(sig *dbus.Signal, iface, name string) (bool, bool) {
	if sig == nil || sig.Name != propertiesInterface+".PropertiesChanged" || len(sig.Body) < 2 {
		return false, false
	}
	if changedIface, ok := sig.Body[0].(string); !ok || changedIface != iface {
		return false, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return false, false
	}
	v, ok := changed[name]
	if !ok {
		return false, false
	}
	b, ok := v.Value().(bool)
	return b, ok
}
