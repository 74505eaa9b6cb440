// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// Key constants for key handling.
const (
	keyUp    = "up"
	keyDown  = "down"
	keyEnter = "enter"
	keyEsc   = "esc"
	tokenKey = "github.token"
)

// descriptions label each config key.
var descriptions = map[string]string{
	"viewer.max_file_size": "Files at or above this many bytes are not downloaded",
	"viewer.theme":         "Colour theme: dark or light",
	"cache.enabled":        "Keep fetched files in the local cache",
	"cache.dir":            "Cache directory, empty for the config directory",
	"github.token":         "Personal access token",
	"github.api_url":       "API base URL for GitHub Enterprise",
}

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	keys   []string
	values map[string]string
	err    error
	notice string

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.CharLimit = 256
	input.Prompt = "> "

	return &View{
		styles:          s,
		settingsService: settingsService,
		input:           input,
		width:           60,
		height:          20,
	}
}

// Init reloads the settings.
func (v *View) Init() tea.Cmd {
	v.load()
	return nil
}

// load re-reads every setting from the service.
func (v *View) load() {
	if v.settingsService == nil {
		v.err = fmt.Errorf("settings service not available")
		return
	}
	values, err := v.settingsService.Values()
	if err != nil {
		v.err = err
		return
	}
	v.keys = v.settingsService.Keys()
	v.values = values
	v.err = nil
	v.selected = max(0, min(v.selected, len(v.keys)-1))
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if v.editing {
			var cmd tea.Cmd
			v.input, cmd = v.input.Update(msg)
			return v, cmd
		}
		return v, nil
	}

	if v.editing {
		return v.handleEditKey(keyMsg)
	}
	return v.handleKeyMsg(keyMsg)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyUp, "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(v.keys)-1 {
			v.selected++
		}
	case keyEnter, "e":
		return v, v.startEdit()
	case "d":
		if key, ok := v.SelectedKey(); ok {
			return v, v.apply(key, v.settingsService.Reset(key), "reset")
		}
	}
	return v, nil
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		v.stopEdit()
		return v, nil
	case keyEnter:
		key, _ := v.SelectedKey()
		value := v.input.Value()
		v.stopEdit()
		return v, v.apply(key, v.settingsService.Set(key, value), "saved")
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) startEdit() tea.Cmd {
	key, ok := v.SelectedKey()
	if !ok {
		return nil
	}
	v.editing = true
	v.notice = ""
	v.input.Reset()
	v.input.EchoMode = textinput.EchoNormal
	if key == tokenKey {
		v.input.EchoMode = textinput.EchoPassword
		v.input.Placeholder = "paste token"
	} else {
		v.input.SetValue(v.values[key])
		v.input.Placeholder = ""
	}
	return v.input.Focus()
}

func (v *View) stopEdit() {
	v.editing = false
	v.input.Blur()
	v.input.Reset()
}

// apply reports a Set or Reset outcome and asks the app to re-read settings.
func (v *View) apply(key string, err error, verb string) tea.Cmd {
	if err != nil {
		v.notice = ""
		v.err = err
		return nil
	}
	v.load()
	v.notice = fmt.Sprintf("%s %s", key, verb)

	service := v.settingsService
	return func() tea.Msg {
		settings, err := service.Get()
		return messages.SettingsReloaded{Settings: settings, Err: err}
	}
}

// SelectedKey returns the config key under the cursor.
func (v *View) SelectedKey() (string, bool) {
	if v.selected < 0 || v.selected >= len(v.keys) {
		return "", false
	}
	return v.keys[v.selected], true
}

// Editing reports whether a value is being edited. The app routes every
// key here while it is.
func (v *View) Editing() bool {
	return v.editing
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %v", v.err)))
		b.WriteString("\n\n")
	}

	keyWidth := 0
	for _, k := range v.keys {
		keyWidth = max(keyWidth, len(k))
	}

	for i, k := range v.keys {
		value := v.values[k]
		if value == "" {
			value = "(not set)"
		}
		line := fmt.Sprintf("%-*s  %s", keyWidth, k, value)
		line = runewidth.Truncate(line, max(10, v.width-2), "…")
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	if k, ok := v.SelectedKey(); ok {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(descriptions[k]))
		b.WriteString("\n")
	}

	if v.editing {
		b.WriteString("\n")
		b.WriteString(v.input.View())
		b.WriteString("\n")
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderHelp() string {
	if v.editing {
		return v.styles.Help.Render("[enter] save  [esc] cancel")
	}
	return v.styles.Help.Render("[↑/↓] select  [enter] edit  [d] reset to default  [esc] close")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = max(10, width-4)
}

// SetStyles replaces the styles, e.g. after a theme change.
func (v *View) SetStyles(s *styles.Styles) {
	v.styles = s
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
