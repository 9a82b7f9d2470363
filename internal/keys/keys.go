// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// BrowserKeyMap defines the keybindings of the registrar browser.
type BrowserKeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Filters
	Search        key.Binding
	CycleProvider key.Binding
	CycleKind     key.Binding
	CycleSize     key.Binding
	CycleCategory key.Binding
	CycleSort     key.Binding
	ToggleOrder   key.Binding
	ClearFilters  key.Binding
	ConfirmSearch key.Binding
	CancelSearch  key.Binding

	// Actions
	Details key.Binding
	Export  key.Binding
	Reload  key.Binding
	Logout  key.Binding

	// General
	Help   key.Binding
	Escape key.Binding
	Quit   key.Binding
}

// LoginKeyMap defines the keybindings of the login gate.
type LoginKeyMap struct {
	Login key.Binding
	Quit  key.Binding
}

// Browser holds the default browser bindings.
var Browser = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "move down"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("l", "right", "pgdown"),
		key.WithHelp("l/→", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("h", "left", "pgup"),
		key.WithHelp("h/←", "previous page"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "first page"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "last page"),
	),

	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	CycleProvider: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "cycle provider"),
	),
	CycleKind: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "cycle kind"),
	),
	CycleSize: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "cycle size"),
	),
	CycleCategory: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cycle category"),
	),
	CycleSort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "cycle sort"),
	),
	ToggleOrder: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "toggle order"),
	),
	ClearFilters: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "clear filters"),
	),
	ConfirmSearch: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply search"),
	),
	CancelSearch: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "leave search"),
	),

	Details: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle details"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export csv"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Logout: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "log out"),
	),

	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Login holds the login gate bindings.
var Login = LoginKeyMap{
	Login: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "log in"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns keybindings for the short help view.
func (k BrowserKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Details, k.Export, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k BrowserKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage, k.Top, k.Bottom},
		{k.Search, k.CycleProvider, k.CycleKind, k.CycleSize, k.CycleCategory, k.CycleSort, k.ToggleOrder, k.ClearFilters},
		{k.Details, k.Export, k.Reload, k.Logout, k.Help, k.Quit},
	}
}

// ShortHelp returns keybindings for the login gate footer.
func (k LoginKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Login, k.Quit}
}

// FullHelp returns the login gate bindings.
func (k LoginKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Login, k.Quit}}
}
