package dbus

import (
	"context"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/snackbar/internal/model"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

func TestParseShowRequest(t *testing.T) {
	tests := []struct {
		name      string
		message   string
		actions   []string
		duration  string
		animation string
		hints     map[string]dbus.Variant
		wantErr   error
		check     func(t *testing.T, req *ShowRequest)
	}{
		{
			name:    "defaults",
			message: "Saved",
			check: func(t *testing.T, req *ShowRequest) {
				assert.Equal(t, snackbar.Middle, req.Duration)
				assert.False(t, req.HasStyle)
				assert.Equal(t, model.LevelInfo, req.Level)
				assert.Nil(t, req.DismissOnSwipe)
				assert.Nil(t, req.DismissOnTap)
				assert.Empty(t, req.Actions)
			},
		},
		{
			name:      "full request",
			message:   "Message deleted",
			actions:   []string{"undo", "Undo", "open", "Open"},
			duration:  "forever",
			animation: "slide-top-down",
			hints: map[string]dbus.Variant{
				"level":            dbus.MakeVariant("warning"),
				"dismiss-on-swipe": dbus.MakeVariant(false),
				"dismiss-on-tap":   dbus.MakeVariant(true),
				"replaces-id":      dbus.MakeVariant(uint32(7)),
				"sound-file":       dbus.MakeVariant("/tmp/ding.wav"),
				"transient":        dbus.MakeVariant(true),
			},
			check: func(t *testing.T, req *ShowRequest) {
				assert.Equal(t, snackbar.Forever, req.Duration)
				assert.True(t, req.HasStyle)
				assert.Equal(t, snackbar.SlideTopDown, req.Style)
				assert.Equal(t, model.LevelWarning, req.Level)
				require.NotNil(t, req.DismissOnSwipe)
				assert.False(t, *req.DismissOnSwipe)
				require.NotNil(t, req.DismissOnTap)
				assert.True(t, *req.DismissOnTap)
				assert.Equal(t, uint32(7), req.ReplacesID)
				assert.Equal(t, "/tmp/ding.wav", req.SoundFile)
				assert.True(t, req.Transient)
				assert.Equal(t, []model.Action{{Key: "undo", Label: "Undo"}, {Key: "open", Label: "Open"}}, req.Actions)
			},
		},
		{
			name:    "wrong hint types are ignored",
			message: "x",
			hints: map[string]dbus.Variant{
				"level":          dbus.MakeVariant(3),
				"dismiss-on-tap": dbus.MakeVariant("yes"),
				"replaces-id":    dbus.MakeVariant(int32(-1)),
			},
			check: func(t *testing.T, req *ShowRequest) {
				assert.Equal(t, model.LevelInfo, req.Level)
				assert.Nil(t, req.DismissOnTap)
				assert.Zero(t, req.ReplacesID)
			},
		},
		{name: "empty message", message: "  ", wantErr: ErrEmptyMessage},
		{name: "odd actions", message: "x", actions: []string{"undo"}, wantErr: ErrOddActions},
		{name: "three actions", message: "x", actions: []string{"a", "A", "b", "B", "c", "C"}, wantErr: ErrTooManyAction},
		{name: "bad duration", message: "x", duration: "eternal", wantErr: snackbar.ErrUnknownDuration},
		{name: "bad animation", message: "x", animation: "spin", wantErr: snackbar.ErrUnknownStyle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseShowRequest(tt.message, "", tt.actions, tt.duration, tt.animation, tt.hints)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, req)
		})
	}
}

func TestShowRequest_EncodeParse(t *testing.T) {
	swipe := false
	in := &ShowRequest{
		Message:        "Uploaded",
		Icon:           "emblem-ok",
		Actions:        []model.Action{{Key: "open", Label: "Open"}},
		Duration:       snackbar.Long,
		Style:          snackbar.FadeInOut,
		HasStyle:       true,
		Level:          model.LevelSuccess,
		DismissOnSwipe: &swipe,
		ReplacesID:     3,
		SuppressSound:  true,
	}

	out, err := ParseShowRequest(in.Message, in.Icon, in.ActionStrings(), in.Duration.String(), in.AnimationName(), in.Hints())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

type fakeLimiter struct {
	allow   bool
	senders []string
}

func (l *fakeLimiter) Allow(sender string) bool {
	l.senders = append(l.senders, sender)
	return l.allow
}

func TestServer_Show(t *testing.T) {
	s := NewServer(nil)
	limiter := &fakeLimiter{allow: true}
	s.SetLimiter(limiter)

	var got *ShowRequest
	s.SetShowHandler(func(req *ShowRequest) uint32 {
		got = req
		return 42
	})

	id, dErr := s.Show(":1.7", "Saved", "", nil, "short", "", nil)
	require.Nil(t, dErr)
	assert.Equal(t, uint32(42), id)
	require.NotNil(t, got)
	assert.Equal(t, ":1.7", got.Sender)
	assert.Equal(t, snackbar.Short, got.Duration)
	assert.Equal(t, []string{":1.7"}, limiter.senders)
}

func TestServer_ShowErrors(t *testing.T) {
	s := NewServer(nil)
	s.SetShowHandler(func(*ShowRequest) uint32 { return 1 })

	_, dErr := s.Show(":1.7", "", "", nil, "", "", nil)
	require.NotNil(t, dErr)
	assert.Equal(t, ErrorInvalidArgs, dErr.Name)

	s.SetLimiter(&fakeLimiter{allow: false})
	_, dErr = s.Show(":1.7", "Saved", "", nil, "", "", nil)
	require.NotNil(t, dErr)
	assert.Equal(t, ErrorRateLimited, dErr.Name)
	assert.ErrorIs(t, errorFromDBus(dErr), ErrRateLimited)
}

func TestServer_DismissAndInvoke(t *testing.T) {
	s := NewServer(nil)

	var dismissed []uint32
	s.SetDismissHandler(func(id uint32) { dismissed = append(dismissed, id) })
	s.SetActionHandler(func(id uint32, key string) bool { return id == 5 && key == "undo" })

	assert.Nil(t, s.Dismiss(9))
	assert.Equal(t, []uint32{9}, dismissed)

	assert.Nil(t, s.InvokeAction(5, "undo"))
	dErr := s.InvokeAction(6, "undo")
	require.NotNil(t, dErr)
	assert.Equal(t, ErrorNotFound, dErr.Name)
}

func TestServer_GetServerInformation(t *testing.T) {
	s := NewServer(nil)
	s.SetServerInfo(ServerInfo{Name: "snackbard", Vendor: "snackbar", Version: "1.2.3"})

	name, vendor, version, dErr := s.GetServerInformation()
	require.Nil(t, dErr)
	assert.Equal(t, "snackbard", name)
	assert.Equal(t, "snackbar", vendor)
	assert.Equal(t, "1.2.3", version)
}

func TestServer_EmitWithoutConnection(t *testing.T) {
	s := NewServer(nil)
	assert.Error(t, s.EmitDismissed(1, "expired"))
	assert.Error(t, s.EmitActionInvoked(1, "undo"))
}

func TestParseSignal(t *testing.T) {
	tests := []struct {
		name   string
		sig    *dbus.Signal
		want   SignalEvent
		wantOK bool
	}{
		{
			name:   "dismissed",
			sig:    &dbus.Signal{Path: DBusPath, Name: DBusInterface + ".Dismissed", Body: []interface{}{uint32(3), "swiped"}},
			want:   SignalEvent{Kind: SignalDismissed, ID: 3, Value: "swiped"},
			wantOK: true,
		},
		{
			name:   "action",
			sig:    &dbus.Signal{Path: DBusPath, Name: DBusInterface + ".ActionInvoked", Body: []interface{}{uint32(3), "undo"}},
			want:   SignalEvent{Kind: SignalActionInvoked, ID: 3, Value: "undo"},
			wantOK: true,
		},
		{
			name: "other path",
			sig:  &dbus.Signal{Path: "/elsewhere", Name: DBusInterface + ".Dismissed", Body: []interface{}{uint32(3), "swiped"}},
		},
		{
			name: "other member",
			sig:  &dbus.Signal{Path: DBusPath, Name: DBusInterface + ".Shown", Body: []interface{}{uint32(3), "x"}},
		},
		{
			name: "bad body",
			sig:  &dbus.Signal{Path: DBusPath, Name: DBusInterface + ".Dismissed", Body: []interface{}{"3", "swiped"}},
		},
		{name: "nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseSignal(tt.sig)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestWaitDismissed(t *testing.T) {
	events := make(chan SignalEvent, 4)
	events <- SignalEvent{Kind: SignalDismissed, ID: 1, Value: "expired"}
	events <- SignalEvent{Kind: SignalActionInvoked, ID: 2, Value: "undo"}
	events <- SignalEvent{Kind: SignalDismissed, ID: 2, Value: "action"}

	var keys []string
	reason, err := WaitDismissed(context.Background(), events, 2, func(key string) {
		keys = append(keys, key)
	})
	require.NoError(t, err)
	assert.Equal(t, "action", reason)
	assert.Equal(t, []string{"undo"}, keys)
}

func TestWaitDismissed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := WaitDismissed(ctx, make(chan SignalEvent), 1, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitDismissed_Closed(t *testing.T) {
	events := make(chan SignalEvent)
	close(events)

	_, err := WaitDismissed(context.Background(), events, 1, nil)
	assert.Error(t, err)
}

func TestChangedBool(t *testing.T) {
	changed := func(iface string, props map[string]dbus.Variant) *dbus.Signal {
		return &dbus.Signal{
			Name: propertiesInterface + ".PropertiesChanged",
			Body: []interface{}{iface, props, []string{}},
		}
	}

	v, ok := changedBool(changed(oskInterface, map[string]dbus.Variant{"Visible": dbus.MakeVariant(true)}), oskInterface, "Visible")
	assert.True(t, ok)
	assert.True(t, v)

	_, ok = changedBool(changed("other.Iface", map[string]dbus.Variant{"Visible": dbus.MakeVariant(true)}), oskInterface, "Visible")
	assert.False(t, ok)

	_, ok = changedBool(changed(oskInterface, map[string]dbus.Variant{"Other": dbus.MakeVariant(true)}), oskInterface, "Visible")
	assert.False(t, ok)

	_, ok = changedBool(changed(oskInterface, map[string]dbus.Variant{"Visible": dbus.MakeVariant("yes")}), oskInterface, "Visible")
	assert.False(t, ok)

	_, ok = changedBool(&dbus.Signal{Name: "x.y.Z"}, oskInterface, "Visible")
	assert.False(t, ok)
}

func TestKeyboardWatcher(t *testing.T) {
	w := NewKeyboardWatcher(280, nil)

	var events []snackbar.Event
	sub := w.Subscribe(func(ev snackbar.Event) { events = append(events, ev) })

	w.SetVisible(true)
	w.SetVisible(true)
	w.SetVisible(false)

	require.Len(t, events, 2)
	assert.Equal(t, snackbar.Event{Kind: snackbar.KeyboardShown, KeyboardHeight: 280}, events[0])
	assert.Equal(t, snackbar.KeyboardHidden, events[1].Kind)

	sub.Release()
	sub.Release()
	w.SetVisible(true)
	assert.Len(t, events, 2)
	assert.True(t, w.Visible())
}

func TestKeyboardWatcher_SubscribeWhileVisible(t *testing.T) {
	w := NewKeyboardWatcher(200, nil)
	w.SetVisible(true)
	w.SetHeight(240)

	var got []snackbar.Event
	w.Subscribe(func(ev snackbar.Event) { got = append(got, ev) })

	require.Len(t, got, 1)
	assert.Equal(t, 240.0, got[0].KeyboardHeight)
}
