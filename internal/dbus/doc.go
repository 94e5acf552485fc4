// Package dbus implements the io.github.jmylchreest.Snackbar D-Bus interface.
// It provides the server snackbard exports (Show, Dismiss, InvokeAction and
// GetServerInformation, with the Dismissed and ActionInvoked signals), the
// client used by the snackbar CLI, and watchers for the screen reader and
// on-screen keyboard state published by other services on the session bus.
package dbus
