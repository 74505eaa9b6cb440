// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// Theme defines the colour palette and styling for the TUI.
type Theme struct {
	// Name is the settings value that selects this theme.
	Name domain.Theme

	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Background is the background colour.
	Background lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Success indicates positive outcomes.
	Success lipgloss.Color

	// Warning indicates caution.
	Warning lipgloss.Color

	// Error indicates problems.
	Error lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DefaultTheme returns the dark colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Name:       domain.ThemeDark,
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Background: lipgloss.Color("#1E1E2E"), // Dark gray
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Success:    lipgloss.Color("#A6E3A1"), // Green
		Warning:    lipgloss.Color("#F9E2AF"), // Yellow
		Error:      lipgloss.Color("#F38BA8"), // Red
		Border:     lipgloss.Color("#45475A"), // Border gray
		Bar:        lipgloss.Color("#181825"),
	}
}

// LightTheme returns a palette for light terminals.
func LightTheme() *Theme {
	return &Theme{
		Name:       domain.ThemeLight,
		Primary:    lipgloss.Color("#6D28D9"),
		Secondary:  lipgloss.Color("#0E7490"),
		Background: lipgloss.Color("#EFF1F5"),
		Foreground: lipgloss.Color("#4C4F69"),
		Muted:      lipgloss.Color("#8C8FA1"),
		Success:    lipgloss.Color("#40A02B"),
		Warning:    lipgloss.Color("#DF8E1D"),
		Error:      lipgloss.Color("#D20F39"),
		Border:     lipgloss.Color("#BCC0CC"),
		Bar:        lipgloss.Color("#DCE0E8"),
	}
}

// ThemeFor returns the palette for a settings value. Unknown values get
// the dark theme.
func ThemeFor(t domain.Theme) *Theme {
	if t == domain.ThemeLight {
		return LightTheme()
	}
	return DefaultTheme()
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for headers.
	Title lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Selected style for the highlighted explorer row.
	Selected lipgloss.Style

	// Error style for error messages.
	Error lipgloss.Style

	// Success style for success messages.
	Success lipgloss.Style

	// Warning style for warning messages.
	Warning lipgloss.Style

	// StatusBar style for the status bar.
	StatusBar lipgloss.Style

	// Help style for help text.
	Help lipgloss.Style

	// Folder and File style explorer rows.
	Folder lipgloss.Style
	File   lipgloss.Style

	// ActiveTab and Tab style the tab bar.
	ActiveTab lipgloss.Style
	Tab       lipgloss.Style

	// Pane and FocusedPane frame the explorer and file view.
	Pane        lipgloss.Style
	FocusedPane lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	pane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Folder: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		File: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary).
			Padding(0, 1),

		Tab: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Pane: pane,

		FocusedPane: pane.BorderForeground(theme.Primary),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
