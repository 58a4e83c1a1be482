package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	search  key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	retry   key.Binding
	open    key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		search:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "create")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "back")),
		retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open login")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "create another")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.yes, k.no},
		{k.retry, k.open, k.quit},
	}
}
