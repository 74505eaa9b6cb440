// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// Pane identifies which pane receives key input.
type Pane int

const (
	// PaneExplorer is the repository tree.
	PaneExplorer Pane = iota
	// PaneViewer is the tab bar and file view.
	PaneViewer
)

// String returns the string representation of the pane.
func (p Pane) String() string {
	switch p {
	case PaneExplorer:
		return "explorer"
	case PaneViewer:
		return "viewer"
	default:
		return "unknown"
	}
}

// Next returns the other pane.
func (p Pane) Next() Pane {
	if p == PaneExplorer {
		return PaneViewer
	}
	return PaneExplorer
}

// TreeLoaded carries the result of loading a repository tree.
type TreeLoaded struct {
	Repo domain.RepoRef
	Err  error
}

// OpenRequested asks the app to open a file in a tab.
type OpenRequested struct {
	Desc domain.FileDescriptor
}

// SessionChanged relays one session event. Views re-read session state.
type SessionChanged struct {
	Event driving.SessionEvent
}

// SessionEnded signals the session's event channel closed.
type SessionEnded struct{}

// ForceRenderDone reports the outcome of a manual "render as text".
type ForceRenderDone struct {
	Path string
	Err  error
}

// SettingsReloaded carries settings re-read after the config file changed.
type SettingsReloaded struct {
	Settings *domain.AppSettings
	Err      error
}

// Copied reports the outcome of copying a document to the clipboard.
type Copied struct {
	Path string
	Err  error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
