package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the bindings of the filter panel.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Decrease   key.Binding
	Increase   key.Binding
	Search     key.Binding
	Regenerate key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Quit       key.Binding
}

// DefaultKeyMap is the initial key layout.
var DefaultKeyMap = KeyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "subir")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "bajar")),
	Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("espacio", "activar")),
	Decrease:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "menos")),
	Increase:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "más")),
	Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "buscar nombre")),
	Regenerate: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "nuevos datos")),
	Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "aplicar")),
	Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancelar")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "salir")),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Decrease, k.Increase, k.Search, k.Regenerate, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.Decrease, k.Increase},
		{k.Search, k.Confirm, k.Cancel},
		{k.Regenerate, k.Quit},
	}
}
