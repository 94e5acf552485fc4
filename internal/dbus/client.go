package dbus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// Client calls a running snackbard over its own session bus connection.
type Client struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	logger *slog.Logger
}

// NewClient opens a private session bus connection.
func NewClient(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &Client{
		conn:   conn,
		obj:    conn.Object(DBusBusName, DBusPath),
		logger: logger,
	}, nil
}

// Conn returns the client's connection, e.g. for a Monitor.
func (c *Client) Conn() *dbus.Conn {
	return c.conn
}

// Show asks the daemon to show a snackbar and returns its id.
func (c *Client) Show(ctx context.Context, req *ShowRequest) (uint32, error) {
	var id uint32
	err := c.obj.CallWithContext(ctx, DBusInterface+".Show", 0,
		req.Message,
		req.Icon,
		req.ActionStrings(),
		req.Duration.String(),
		req.AnimationName(),
		req.Hints(),
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to show snackbar: %w", errorFromDBus(err))
	}

	c.logger.Debug("snackbar requested", "id", id)
	return id, nil
}

// Dismiss asks the daemon to dismiss a snackbar.
func (c *Client) Dismiss(ctx context.Context, id uint32) error {
	call := c.obj.CallWithContext(ctx, DBusInterface+".Dismiss", 0, id)
	if call.Err != nil {
		return fmt.Errorf("failed to dismiss snackbar %d: %w", id, errorFromDBus(call.Err))
	}
	return nil
}

// InvokeAction presses an action button of a snackbar on screen.
func (c *Client) InvokeAction(ctx context.Context, id uint32, actionKey string) error {
	call := c.obj.CallWithContext(ctx, DBusInterface+".InvokeAction", 0, id, actionKey)
	if call.Err != nil {
		return fmt.Errorf("failed to invoke action %q on %d: %w", actionKey, id, errorFromDBus(call.Err))
	}
	return nil
}

// ServerInformation returns the daemon's name, vendor and version.
func (c *Client) ServerInformation(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	err := c.obj.CallWithContext(ctx, DBusInterface+".GetServerInformation", 0).
		Store(&info.Name, &info.Vendor, &info.Version)
	if err != nil {
		return ServerInfo{}, fmt.Errorf("snackbard is not running: %w", err)
	}
	return info, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
