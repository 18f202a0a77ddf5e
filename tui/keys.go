package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	TempoUp   key.Binding
	TempoDown key.Binding
	Quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		TempoUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		TempoDown: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TempoUp, k.TempoDown, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
