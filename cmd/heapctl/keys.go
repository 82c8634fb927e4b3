package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the stepper's keyboard shortcuts
type KeyMap struct {
	Next   key.Binding
	RunAll key.Binding
	Reset  key.Binding
	Table  key.Binding
	Copy   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("n", " ", "right", "l"),
			key.WithHelp("n/space", "next step"),
		),
		RunAll: key.NewBinding(
			key.WithKeys("r", "end"),
			key.WithHelp("r", "run to end"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R", "home"),
			key.WithHelp("R", "restart"),
		),
		Table: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle block table"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy block table"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.RunAll, k.Help, k.Quit}
}

// FullHelp returns every binding, for the help overlay.
func (k KeyMap) FullHelp() []key.Binding {
	return []key.Binding{k.Next, k.RunAll, k.Reset, k.Table, k.Copy, k.Help, k.Quit}
}
