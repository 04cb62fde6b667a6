package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	Pause         key.Binding
	Hex           key.Binding
	Echo          key.Binding
	LineEnding    key.Binding
	Filter        key.Binding
	Send          key.Binding
	Reconnect     key.Binding
	AutoReconnect key.Binding
	Clear         key.Binding
	Help          key.Binding
	Escape        key.Binding
	Enter         key.Binding
	Quit          key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause output"),
		),
		Hex: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "hex view"),
		),
		Echo: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "local echo"),
		),
		LineEnding: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "line ending"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Send: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "send"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reconnect"),
		),
		AutoReconnect: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "auto-reconnect"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
