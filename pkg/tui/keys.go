package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Search    key.Binding
	Focus     key.Binding
	More      key.Binding
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
}

var Keys = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Search:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
	Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
	More:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "load more")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	PageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
}
