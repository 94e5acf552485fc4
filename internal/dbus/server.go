package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// DBusInterface is the snackbar interface name.
	DBusInterface = "io.github.jmylchreest.Snackbar"
	// DBusPath is the snackbar object path.
	DBusPath = "/io/github/jmylchreest/Snackbar"
	// DBusBusName is the bus name to claim.
	DBusBusName = "io.github.jmylchreest.Snackbar"
)

// ShowHandler is called for every accepted Show request and returns the id
// of the snackbar.
type ShowHandler func(req *ShowRequest) uint32

// DismissHandler is called when Dismiss is requested.
type DismissHandler func(id uint32)

// ActionHandler presses the action with the given key. It returns false when
// no snackbar with that id is on screen.
type ActionHandler func(id uint32, actionKey string) bool

// Limiter decides whether a sender may show another snackbar.
type Limiter interface {
	Allow(sender string) bool
}

// Server implements the io.github.jmylchreest.Snackbar D-Bus interface.
type Server struct {
	conn   *dbus.Conn
	logger *slog.Logger

	// Handlers
	showHandler    ShowHandler
	dismissHandler DismissHandler
	actionHandler  ActionHandler
	limiter        Limiter

	mu         sync.RWMutex
	serverInfo ServerInfo
	running    bool
}

// NewServer creates a new Server.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:     logger,
		serverInfo: DefaultServerInfo(),
	}
}

// SetShowHandler sets the handler called for accepted Show requests.
func (s *Server) SetShowHandler(handler ShowHandler) {
	s.showHandler = handler
}

// SetDismissHandler sets the handler called when Dismiss is requested.
func (s *Server) SetDismissHandler(handler DismissHandler) {
	s.dismissHandler = handler
}

// SetActionHandler sets the handler called when InvokeAction is requested.
func (s *Server) SetActionHandler(handler ActionHandler) {
	s.actionHandler = handler
}

// SetLimiter sets the per-sender rate limiter. Nil disables limiting.
func (s *Server) SetLimiter(limiter Limiter) {
	s.limiter = limiter
}

// SetServerInfo sets the server information returned by GetServerInformation.
func (s *Server) SetServerInfo(info ServerInfo) {
	s.serverInfo = info
}

// Start connects to the session bus and exports the snackbar service.
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
	s.conn = conn

	if err := conn.Export(s, DBusPath, DBusInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: DBusPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    DBusInterface,
				Methods: snackbarMethods(),
				Signals: snackbarSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), DBusPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(DBusBusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", DBusBusName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus snackbar server started", "interface", DBusInterface, "path", DBusPath)
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
		if _, err := s.conn.ReleaseName(DBusBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// The session bus connection is shared
	}

	s.logger.Info("D-Bus snackbar server stopped")
	return nil
}

// GetCapabilities returns the list of capabilities supported by this server.
// D-Bus method: GetCapabilities() -> as
func (s *Server) GetCapabilities() ([]string, *dbus.Error) {
	return ServerCapabilities, nil
}

// GetServerInformation returns information about the server.
// D-Bus method: GetServerInformation() -> (sss)
func (s *Server) GetServerInformation() (string, string, string, *dbus.Error) {
	return s.serverInfo.Name, s.serverInfo.Vendor, s.serverInfo.Version, nil
}

// Show handles incoming snackbar requests.
// D-Bus method: Show(sssassa{sv}) -> u
func (s *Server) Show(
	sender dbus.Sender,
	message string,
	icon string,
	actions []string,
	duration string,
	animation string,
	hints map[string]dbus.Variant,
) (uint32, *dbus.Error) {
	if s.limiter != nil && !s.limiter.Allow(string(sender)) {
		s.logger.Debug("Show rate limited", "sender", sender)
		return 0, newError(ErrorRateLimited, ErrRateLimited)
	}

	req, err := ParseShowRequest(message, icon, actions, duration, animation, hints)
	if err != nil {
		s.logger.Debug("Show rejected", "sender", sender, "error", err)
		return 0, newError(ErrorInvalidArgs, err)
	}
	req.Sender = string(sender)

	if s.showHandler == nil {
		return 0, dbus.MakeFailedError(fmt.Errorf("no display available"))
	}

	id := s.showHandler(req)
	s.logger.Debug("Show called",
		"sender", sender,
		"id", id,
		"duration", req.Duration,
		"actions", len(req.Actions),
	)
	return id, nil
}

// Dismiss starts the exit animation of a snackbar. Unknown ids are ignored.
// D-Bus method: Dismiss(u) -> nothing
func (s *Server) Dismiss(id uint32) *dbus.Error {
	s.logger.Debug("Dismiss called", "id", id)
	if s.dismissHandler != nil {
		s.dismissHandler(id)
	}
	return nil
}

// InvokeAction presses an action button of the snackbar on screen.
// D-Bus method: InvokeAction(us) -> nothing
func (s *Server) InvokeAction(id uint32, actionKey string) *dbus.Error {
	s.logger.Debug("InvokeAction called", "id", id, "action_key", actionKey)
	if s.actionHandler == nil || !s.actionHandler(id, actionKey) {
		return newError(ErrorNotFound, ErrUnknownSnackbar)
	}
	return nil
}

func snackbarMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "GetCapabilities",
			Args: []introspect.Arg{
				{Name: "capabilities", Type: "as", Direction: "out"},
			},
		},
		{
			Name: "GetServerInformation",
			Args: []introspect.Arg{
				{Name: "name", Type: "s", Direction: "out"},
				{Name: "vendor", Type: "s", Direction: "out"},
				{Name: "version", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Show",
			Args: []introspect.Arg{
				{Name: "message", Type: "s", Direction: "in"},
				{Name: "icon", Type: "s", Direction: "in"},
				{Name: "actions", Type: "as", Direction: "in"},
				{Name: "duration", Type: "s", Direction: "in"},
				{Name: "animation", Type: "s", Direction: "in"},
				{Name: "hints", Type: "a{sv}", Direction: "in"},
				{Name: "id", Type: "u", Direction: "out"},
			},
		},
		{
			Name: "Dismiss",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
			},
		},
		{
			Name: "InvokeAction",
			Args: []introspect.Arg{
				{Name: "id", Type: "u", Direction: "in"},
				{Name: "action_key", Type: "s", Direction: "in"},
			},
		},
	}
}

func snackbarSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "Dismissed",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "reason", Type: "s"},
			},
		},
		{
			Name: "ActionInvoked",
			Args: []introspect.Arg{
				{Name: "id", Type: "u"},
				{Name: "action_key", Type: "s"},
			},
		},
	}
}
