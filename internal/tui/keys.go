package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the preview key bindings.
type KeyMap struct {
	NextApp      key.Binding
	PreviousApp  key.Binding
	NextCategory key.Binding
	Release      key.Binding
	Refresh      key.Binding
	Quit         key.Binding
}

// DefaultKeyMap mirrors the desktop shortcuts: tab cycles apps, space jumps
// category, enter stands in for releasing the modifier.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextApp: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next app"),
		),
		PreviousApp: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous app"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "next category"),
		),
		Release: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "switch"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k KeyMap) help() []key.Binding {
	return []key.Binding{k.NextApp, k.PreviousApp, k.NextCategory, k.Release, k.Refresh, k.Quit}
}
