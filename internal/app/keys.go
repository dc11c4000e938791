package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	Start     key.Binding
	Pause     key.Binding
	Randomize key.Binding
	Edit      key.Binding
	Algorithm key.Binding
	Speed     key.Binding
	Help      key.Binding
	Log       key.Binding
	Up        key.Binding
	Down      key.Binding
	Escape    key.Binding
	Submit    key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Start: key.NewBinding(
			key.WithKeys("s", "enter"),
			key.WithHelp("s", "start sort"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "pause / resume"),
		),
		Randomize: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "random array"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "i"),
			key.WithHelp("e", "edit array"),
		),
		Algorithm: key.NewBinding(
			key.WithKeys("a", "tab"),
			key.WithHelp("a/tab", "next algorithm"),
		),
		Speed: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle speed"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Log: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "event log"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close / cancel"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply array"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap for the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Randomize, k.Edit, k.Algorithm, k.Speed, k.Log, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.Randomize, k.Edit},
		{k.Algorithm, k.Speed, k.Log, k.Help},
		{k.Up, k.Down, k.Escape, k.Submit, k.Quit},
	}
}

// All lists every binding for the help overlay.
func (k KeyMap) All() []key.Binding {
	var out []key.Binding
	for _, col := range k.FullHelp() {
		out = append(out, col...)
	}
	return out
}
