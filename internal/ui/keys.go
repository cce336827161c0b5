package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the shell's keyboard shortcuts.
// Each binding includes the actual keys and help text for display.
type KeyMap struct {
	// Preferences
	Theme       key.Binding
	AutoRefresh key.Binding
	Profile     key.Binding

	// Page
	Reload key.Binding
	Copy   key.Binding

	// Updates
	Notes       key.Binding
	CopyRelease key.Binding

	Escape key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default shell keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Next theme"),
		),
		AutoRefresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Auto refresh"),
		),
		Profile: key.NewBinding(
			key.WithKeys("p", "tab"),
			key.WithHelp("p", "Next profile"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r", "f5"),
			key.WithHelp("Ctrl+R", "Reload page"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy URL"),
		),
		Notes: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Release notes"),
		),
		CopyRelease: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Copy release URL"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "Close"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Theme, k.AutoRefresh, k.Profile, k.Copy, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Theme, k.AutoRefresh, k.Profile},
		{k.Reload, k.Copy},
		{k.Notes, k.CopyRelease},
		{k.Help, k.Escape, k.Quit},
	}
}

// SetupKeyMap defines the first-run form's shortcuts.
type SetupKeyMap struct {
	Next      key.Binding
	Prev      key.Binding
	ThemeUp   key.Binding
	ThemeDown key.Binding
	Submit    key.Binding
	Cancel    key.Binding
}

// DefaultSetupKeyMap returns the default setup keybindings.
func DefaultSetupKeyMap() SetupKeyMap {
	return SetupKeyMap{
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("⇥ (Tab)", "Next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("⇧⇥", "Previous field"),
		),
		ThemeUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑/↓", "Choose theme"),
		),
		ThemeDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↑/↓", "Choose theme"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("⏎ (Enter)", "Save"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("Esc", "Cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k SetupKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.ThemeDown, k.Submit, k.Cancel}
}

// FullHelp implements help.KeyMap.
func (k SetupKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.ThemeUp, k.Submit, k.Cancel}}
}
