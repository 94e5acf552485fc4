package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the playground.
type KeyMap struct {
	// Composing
	Send    key.Binding
	Compose key.Binding
	Back    key.Binding

	// Gestures
	Tap        key.Binding
	SwipeLeft  key.Binding
	SwipeRight key.Binding
	SwipeUp    key.Binding
	SwipeDown  key.Binding
	Action     key.Binding
	Second     key.Binding
	Dismiss    key.Binding
	CloseAll   key.Binding
	Keyboard   key.Binding

	// Options
	Duration key.Binding
	Style    key.Binding
	Level    key.Binding
	Actions  key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tap, k.SwipeRight, k.Action, k.Compose, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Compose, k.Back},
		{k.Tap, k.SwipeLeft, k.SwipeRight, k.SwipeUp, k.SwipeDown},
		{k.Action, k.Second, k.Dismiss, k.CloseAll, k.Keyboard},
		{k.Duration, k.Style, k.Level, k.Actions},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "show snackbar"),
		),
		Compose: key.NewBinding(
			key.WithKeys("i", "n"),
			key.WithHelp("i", "compose"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop composing"),
		),
		Tap: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "tap"),
		),
		SwipeLeft: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "swipe left"),
		),
		SwipeRight: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "swipe right"),
		),
		SwipeUp: key.NewBinding(
			key.WithKeys("shift+up"),
			key.WithHelp("shift+↑", "swipe up"),
		),
		SwipeDown: key.NewBinding(
			key.WithKeys("shift+down"),
			key.WithHelp("shift+↓", "swipe down"),
		),
		Action: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "action"),
		),
		Second: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "second action"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dismiss"),
		),
		CloseAll: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close all"),
		),
		Keyboard: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "toggle keyboard"),
		),
		Duration: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "duration"),
		),
		Style: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "animation"),
		),
		Level: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "level"),
		),
		Actions: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "actions"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
