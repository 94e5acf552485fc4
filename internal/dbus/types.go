package dbus

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Request errors. They are returned to D-Bus callers as
// io.github.jmylchreest.Snackbar.Error.InvalidArgs.
var (
	ErrEmptyMessage  = errors.New("message cannot be empty")
	ErrOddActions    = errors.New("actions must be key/label pairs")
	ErrTooManyAction = errors.New("at most two actions are supported")
)

// ShowRequest is a parsed Show call.
type ShowRequest struct {
	Sender     string
	ReplacesID uint32

	Message  string
	Icon     string
	Actions  []model.Action
	Duration snackbar.Duration
	// Style is used when HasStyle is set; otherwise the configured style.
	Style    snackbar.AnimationStyle
	HasStyle bool
	Level    string

	// Nil means the configured behavior.
	DismissOnSwipe *bool
	DismissOnTap   *bool

	SoundFile     string
	SuppressSound bool
	// Transient requests are not written to history.
	Transient bool
}

// ParseShowRequest validates the arguments of a Show call. An empty
// duration means middle; an empty animation means the configured style.
func ParseShowRequest(message, icon string, actions []string, duration, animation string, hints map[string]dbus.Variant) (*ShowRequest, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if len(actions)%2 != 0 {
		return nil, ErrOddActions
	}
	if len(actions) > 4 {
		return nil, ErrTooManyAction
	}

	req := &ShowRequest{
		Message:  message,
		Icon:     icon,
		Duration: snackbar.Middle,
		Level:    model.NormalizeLevel(hintString(hints, "level")),
	}

	for i := 0; i+1 < len(actions); i += 2 {
		req.Actions = append(req.Actions, model.Action{Key: actions[i], Label: actions[i+1]})
	}

	if duration != "" {
		d, err := snackbar.ParseDuration(duration)
		if err != nil {
			return nil, err
		}
		req.Duration = d
	}

	if animation != "" {
		style, err := snackbar.ParseStyle(animation)
		if err != nil {
			return nil, err
		}
		req.Style = style
		req.HasStyle = true
	}

	req.DismissOnSwipe = hintBool(hints, "dismiss-on-swipe")
	req.DismissOnTap = hintBool(hints, "dismiss-on-tap")
	req.ReplacesID = hintUint32(hints, "replaces-id")
	req.SoundFile = hintString(hints, "sound-file")
	if b := hintBool(hints, "suppress-sound"); b != nil {
		req.SuppressSound = *b
	}
	if b := hintBool(hints, "transient"); b != nil {
		req.Transient = *b
	}

	return req, nil
}

// Hints encodes the request's optional fields for a Show call.
func (r *ShowRequest) Hints() map[string]dbus.Variant {
	hints := map[string]dbus.Variant{}
	if r.Level != "" {
		hints["level"] = dbus.MakeVariant(r.Level)
	}
	if r.DismissOnSwipe != nil {
		hints["dismiss-on-swipe"] = dbus.MakeVariant(*r.DismissOnSwipe)
	}
	if r.DismissOnTap != nil {
		hints["dismiss-on-tap"] = dbus.MakeVariant(*r.DismissOnTap)
	}
	if r.ReplacesID > 0 {
		hints["replaces-id"] = dbus.MakeVariant(r.ReplacesID)
	}
	if r.SoundFile != "" {
		hints["sound-file"] = dbus.MakeVariant(r.SoundFile)
	}
	if r.SuppressSound {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}
	if r.Transient {
		hints["transient"] = dbus.MakeVariant(true)
	}
	return hints
}

// ActionStrings flattens the actions into alternating key/label pairs.
func (r *ShowRequest) ActionStrings() []string {
	out := make([]string, 0, len(r.Actions)*2)
	for _, a := range r.Actions {
		out = append(out, a.Key, a.Label)
	}
	return out
}

// AnimationName returns the animation argument for a Show call.
func (r *ShowRequest) AnimationName() string {
	if !r.HasStyle {
		return ""
	}
	return r.Style.String()
}

func hintString(hints map[string]dbus.Variant, key string) string {
	if v, ok := hints[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

func hintBool(hints map[string]dbus.Variant, key string) *bool {
	if v, ok := hints[key]; ok {
		if b, ok := v.Value().(bool); ok {
			return &b
		}
	}
	return nil
}

func hintUint32(hints map[string]dbus.Variant, key string) uint32 {
	if v, ok := hints[key]; ok {
		switch val := v.Value().(type) {
		case uint32:
			return val
		case int32:
			if val > 0 {
				return uint32(val)
			}
		}
	}
	return 0
}

// ServerCapabilities lists the optional features advertised by snackbard.
var ServerCapabilities = []string{
	"actions",     // Up to two action buttons
	"icon-static", // Static icons
	"persistence", // History is written to disk
	"sound",       // Per-level sounds
	"swipe",       // Swipe to dismiss
}

// ServerInfo contains information about the snackbar server.
type ServerInfo struct {
	Name    string // "snackbard"
	Vendor  string // "snackbar"
	Version string // Build version
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:    "snackbard",
		Vendor:  "snackbar",
		Version: "0.0.1",
	}
}

// Error names returned to callers.
const (
	ErrorRateLimited = DBusInterface + ".Error.RateLimited"
	ErrorInvalidArgs = DBusInterface + ".Error.InvalidArgs"
	ErrorNotFound    = DBusInterface + ".Error.NotFound"
)

func newError(name string, err error) *dbus.Error {
	return dbus.NewError(name, []interface{}{err.Error()})
}

// ErrRateLimited is returned by Show when the sender exceeds its budget.
var ErrRateLimited = errors.New("rate limited")

// ErrUnknownSnackbar is returned by InvokeAction for ids that are not on screen.
var ErrUnknownSnackbar = errors.New("no such snackbar")

// errorFromDBus maps a D-Bus error back to a sentinel where one exists.
func errorFromDBus(err error) error {
	var name string
	var dbusErr dbus.Error
	var dbusErrPtr *dbus.Error
	switch {
	case errors.As(err, &dbusErr):
		name = dbusErr.Name
	case errors.As(err, &dbusErrPtr):
		name = dbusErrPtr.Name
	}
	switch name {
	case ErrorRateLimited:
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case ErrorNotFound:
		return fmt.Errorf("%w: %v", ErrUnknownSnackbar, err)
	}
	return err
}
