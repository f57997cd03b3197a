// Package keymap defines the key bindings of each screen context and the
// help entries rendered from them.
package keymap

import "github.com/charmbracelet/bubbles/key"

// Context names a set of active bindings.
type Context string

const (
	ContextMain     Context = "main"
	ContextSettings Context = "settings"
)

// Main holds bindings for the flag overview.
type Main struct {
	Settings    key.Binding
	NextHint    key.Binding
	DismissHint key.Binding
	ToggleGroup key.Binding
	Reload      key.Binding
	Theme       key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// Settings holds bindings for the settings modal. Focus movement and
// activation are handled by the modal itself; these are listed for help.
type Settings struct {
	Move    key.Binding
	Toggle  key.Binding
	Apply   key.Binding
	CopyURL key.Binding
	Cancel  key.Binding
}

// DefaultMain returns the main screen bindings.
func DefaultMain() Main {
	return Main{
		Settings: key.NewBinding(
			key.WithKeys("s", ","),
			key.WithHelp("s", "settings"),
		),
		NextHint: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next hint"),
		),
		DismissHint: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss hints"),
		),
		ToggleGroup: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "expand/collapse"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "reload"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// DefaultSettings returns the settings modal bindings.
func DefaultSettings() Settings {
	return Settings{
		Move: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "up", "down"),
			key.WithHelp("tab", "move"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space", "enter"),
			key.WithHelp("space", "toggle"),
		),
		Apply: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "apply"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy release link"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k Main) ShortHelp() []key.Binding {
	return []key.Binding{k.Settings, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k Main) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Settings, k.Theme, k.Reload, k.ToggleGroup},
		{k.NextHint, k.DismissHint},
		{k.Help, k.Quit},
	}
}

// ShortHelp implements help.KeyMap.
func (k Settings) ShortHelp() []key.Binding {
	return []key.Binding{k.Move, k.Toggle, k.Apply, k.CopyURL, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k Settings) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
