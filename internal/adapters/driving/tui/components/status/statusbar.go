// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
	StateInfo    State = "info"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	repo    string
	tabs    int
	pane    messages.Pane
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state, repository and tab count.
func (s *Bar) renderLeft() string {
	switch s.state {
	case StateLoading:
		msg := s.message
		if msg == "" {
			msg = "Loading..."
		}
		return s.styles.Muted.Render(msg)
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		}
		return s.styles.Error.Render("Error")
	case StateInfo:
		return s.styles.Success.Render(s.message)
	}

	parts := make([]string, 0, 2)
	if s.repo != "" {
		parts = append(parts, s.styles.Normal.Render(s.repo))
	}
	switch s.tabs {
	case 0:
		parts = append(parts, s.styles.Muted.Render("no open files"))
	case 1:
		parts = append(parts, s.styles.Muted.Render("1 tab"))
	default:
		parts = append(parts, s.styles.Muted.Render(fmt.Sprintf("%d tabs", s.tabs)))
	}
	return strings.Join(parts, s.styles.Muted.Render(" · "))
}

// renderRight renders keybinding hints for the focused pane.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.pane == messages.PaneViewer && s.tabs > 0 {
		bindings = s.keymap.ViewerHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a custom message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetRepo sets the repository label.
func (s *Bar) SetRepo(repo string) {
	s.repo = repo
}

// SetTabs sets the open tab count.
func (s *Bar) SetTabs(count int) {
	s.tabs = count
}

// Tabs returns the open tab count.
func (s *Bar) Tabs() int {
	return s.tabs
}

// SetPane selects which pane's hints are shown.
func (s *Bar) SetPane(p messages.Pane) {
	s.pane = p
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets the status bar to the ready state.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}

// SetStyles replaces the styles, e.g. after a theme change.
func (s *Bar) SetStyles(st *styles.Styles) {
	s.styles = st
}
