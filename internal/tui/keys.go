package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds all key bindings for the TUI.
type keyMap struct {
	Quit        key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Period12H   key.Binding
	Period24H   key.Binding
	PeriodToday key.Binding
	NextPeriod  key.Binding
}

// keys is the global key map.
var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload period"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Period12H:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "last 12h")),
	Period24H:   key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "last 24h")),
	PeriodToday: key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "today")),
	NextPeriod: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next period"),
	),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Period12H, k.Period24H, k.PeriodToday, k.NextPeriod},
		{k.Refresh, k.Help, k.Quit},
	}
}
