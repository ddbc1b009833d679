// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package adjui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the main view. Overlays (forms,
// prompts, confirmations) capture input while open and use the
// Submit, Cancel, and field navigation bindings.
type KeyMap struct {
	// Action list movement.
	Up   key.Binding
	Down key.Binding

	// Panel text scrolling.
	PageUp   key.Binding
	PageDown key.Binding

	// Panel switching.
	NextPanel     key.Binding
	PreviousPanel key.Binding

	// Activate runs the highlighted action.
	Activate key.Binding

	// Location history.
	Back    key.Binding
	Forward key.Binding

	// Entry points that open a prompt or form.
	AddCandidate    key.Binding
	SelectCanonical key.Binding
	SearchTerm      key.Binding
	SearchForm      key.Binding
	NewCanonical    key.Binding
	Hierarchy       key.Binding
	AddRelationship key.Binding

	// Export of the focused search panel's results.
	SelectAll key.Binding
	Export    key.Binding

	Reload key.Binding

	// Overlay bindings.
	Submit    key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Confirm   key.Binding
	Decline   key.Binding

	// DeleteCanonical deletes the canonical event open in the edit
	// form, after confirmation.
	DeleteCanonical key.Binding

	Help key.Binding
	Quit key.Binding
}

// ShortHelp implements help.KeyMap.
func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Activate, keys.NextPanel, keys.AddCandidate, keys.SearchTerm, keys.Back, keys.Help, keys.Quit}
}

// FullHelp implements help.KeyMap.
func (keys KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Up, keys.Down, keys.PageUp, keys.PageDown, keys.NextPanel, keys.PreviousPanel},
		{keys.Activate, keys.AddCandidate, keys.SelectCanonical, keys.NewCanonical, keys.Reload},
		{keys.SearchTerm, keys.SearchForm, keys.SelectAll, keys.Export},
		{keys.Hierarchy, keys.AddRelationship, keys.Back, keys.Forward, keys.Help, keys.Quit},
	}
}

// DefaultKeyMap is the built-in key binding set. Vim-style movement
// (j/k) alongside arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "scroll up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "scroll down"),
	),
	NextPanel: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next panel"),
	),
	PreviousPanel: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "previous panel"),
	),
	Activate: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "run action"),
	),
	Back: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "back"),
	),
	Forward: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "forward"),
	),
	AddCandidate: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add candidate"),
	),
	SelectCanonical: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "select canonical"),
	),
	SearchTerm: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	SearchForm: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "search filters"),
	),
	NewCanonical: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new canonical"),
	),
	Hierarchy: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "view hierarchy"),
	),
	AddRelationship: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "add relationship"),
	),
	SelectAll: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "select all for export"),
	),
	Export: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "export"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "submit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("Tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("S-Tab", "previous field"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "yes"),
	),
	Decline: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n", "no"),
	),
	DeleteCanonical: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("C-x", "delete event"),
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
