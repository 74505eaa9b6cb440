// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the full help.
	Help key.Binding

	// Focus switches between the explorer and the file view.
	Focus key.Binding

	// Up and Down move the explorer cursor or scroll the file view.
	Up   key.Binding
	Down key.Binding

	// PageUp and PageDown scroll the file view by a page.
	PageUp   key.Binding
	PageDown key.Binding

	// Select opens a file or toggles a folder.
	Select key.Binding

	// PrevTab and NextTab cycle through open documents.
	PrevTab key.Binding
	NextTab key.Binding

	// CloseTab closes the active document.
	CloseTab key.Binding

	// CloseAll closes every document.
	CloseAll key.Binding

	// ForceRender shows the active document as text.
	ForceRender key.Binding

	// Retry reloads a document whose fetch failed.
	Retry key.Binding

	// Filter starts a fuzzy file search in the explorer.
	Filter key.Binding

	// Copy copies the active document's text to the clipboard.
	Copy key.Binding

	// Settings opens the settings panel.
	Settings key.Binding

	// Cancel leaves the filter.
	Cancel key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "focus"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev tab"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close"),
		),
		CloseAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "close all"),
		),
		ForceRender: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "as text"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "find file"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy"),
		),
		Settings: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "settings"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp returns the hints shown in the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Select, k.PrevTab, k.NextTab, k.CloseTab, k.Help, k.Quit}
}

// ViewerHelp returns the hints shown while the file view has focus.
func (k *KeyMap) ViewerHelp() []key.Binding {
	return []key.Binding{k.Focus, k.ForceRender, k.Retry, k.Copy, k.CloseTab, k.Quit}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Select, k.Focus, k.Filter, k.Cancel},
		{k.PrevTab, k.NextTab, k.CloseTab, k.CloseAll},
		{k.ForceRender, k.Retry, k.Copy},
		{k.Settings, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
