// Package explorer provides the repository tree view for the TUI.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// maxMatches caps the fuzzy finder's result list.
const maxMatches = 200

// View is the repository explorer.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	explorer driving.ExplorerService

	rows    []driving.TreeRow
	cursor  int
	offset  int
	width   int
	height  int
	loading bool
	err     error

	filter  *input.FilterInput
	files   []domain.FileDescriptor
	paths   []string
	matches fuzzy.Matches
}

// NewView creates an explorer view.
func NewView(s *styles.Styles, km *keymap.KeyMap, explorer driving.ExplorerService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:   s,
		keymap:   km,
		explorer: explorer,
		filter:   input.NewFilterInput(s),
		width:    30,
		height:   20,
	}
}

// Load returns a command that loads repo into the explorer.
func (v *View) Load(ctx context.Context, repo domain.RepoRef) tea.Cmd {
	v.loading = true
	v.err = nil
	return func() tea.Msg {
		err := v.explorer.Load(ctx, repo)
		return messages.TreeLoaded{Repo: repo, Err: err}
	}
}

// Update handles messages for the explorer.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.TreeLoaded:
		v.loading = false
		v.err = msg.Err
		v.cursor, v.offset = 0, 0
		v.refresh()
		v.files = v.explorer.Files()
		v.paths = make([]string, len(v.files))
		for i, f := range v.files {
			v.paths[i] = f.Path
		}
		return v, nil

	case tea.KeyMsg:
		if v.Filtering() {
			return v.updateFilter(msg)
		}
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.move(-1)
	case keymap.Matches(k, v.keymap.Down):
		v.move(1)
	case keymap.Matches(k, v.keymap.PageUp):
		v.move(-v.visibleRows())
	case keymap.Matches(k, v.keymap.PageDown):
		v.move(v.visibleRows())
	case k == "home" || k == "g":
		v.move(-len(v.rows))
	case k == "end" || k == "G":
		v.move(len(v.rows))
	case keymap.Matches(k, v.keymap.Select), k == "right", k == "l", k == "left", k == "h":
		return v, v.activate(k)
	case keymap.Matches(k, v.keymap.Filter):
		v.filter.Reset()
		v.matches = nil
		v.cursor = 0
		return v, v.filter.Focus()
	}
	return v, nil
}

// activate opens the selected file or expands and collapses the selected
// folder. Left and right only fold.
func (v *View) activate(k string) tea.Cmd {
	row, ok := v.Selected()
	if !ok {
		return nil
	}

	if row.Node.IsFolder() {
		switch {
		case (k == "right" || k == "l") && row.Expanded,
			(k == "left" || k == "h") && !row.Expanded:
			return nil
		}
		if err := v.explorer.Toggle(row.Node.Path); err != nil {
			return errorCmd(err)
		}
		v.refresh()
		return nil
	}

	if k != "enter" {
		return nil
	}
	desc, err := v.explorer.Select(row.Node.Path)
	if err != nil {
		return errorCmd(err)
	}
	return openCmd(desc)
}

func (v *View) updateFilter(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Cancel):
		v.closeFilter()
		return v, nil
	case k == "up" || k == "ctrl+p":
		v.cursor = max(0, v.cursor-1)
		return v, nil
	case k == "down" || k == "ctrl+n":
		v.cursor = max(0, min(v.cursor+1, len(v.matches)-1))
		return v, nil
	case keymap.Matches(k, v.keymap.Select):
		if v.cursor >= len(v.matches) {
			return v, nil
		}
		desc := v.files[v.matches[v.cursor].Index]
		v.closeFilter()
		return v, openCmd(desc)
	}

	var cmd tea.Cmd
	v.filter, cmd = v.filter.Update(msg)
	v.search()
	return v, cmd
}

// search ranks every file path against the filter text.
func (v *View) search() {
	pattern := strings.TrimSpace(v.filter.Value())
	v.cursor = 0
	if pattern == "" {
		v.matches = nil
		return
	}
	v.matches = fuzzy.Find(pattern, v.paths)
	if len(v.matches) > maxMatches {
		v.matches = v.matches[:maxMatches]
	}
}

func (v *View) closeFilter() {
	v.filter.Blur()
	v.filter.Reset()
	v.matches = nil
	v.cursor = 0
	v.offset = 0
	v.clamp()
}

// Filtering reports whether the fuzzy finder has focus.
func (v *View) Filtering() bool {
	return v.filter.Focused()
}

// Matches returns the current fuzzy finder results, best first.
func (v *View) Matches() []string {
	out := make([]string, len(v.matches))
	for i, m := range v.matches {
		out[i] = m.Str
	}
	return out
}

// Selected returns the row under the cursor.
func (v *View) Selected() (driving.TreeRow, bool) {
	if v.cursor < 0 || v.cursor >= len(v.rows) {
		return driving.TreeRow{}, false
	}
	return v.rows[v.cursor], true
}

// refresh re-reads the visible rows, keeping the cursor on the same path.
func (v *View) refresh() {
	var current string
	if row, ok := v.Selected(); ok {
		current = row.Node.Path
	}
	v.rows = v.explorer.Rows()
	for i, row := range v.rows {
		if row.Node.Path == current {
			v.cursor = i
			break
		}
	}
	v.clamp()
}

func (v *View) move(delta int) {
	v.cursor += delta
	v.clamp()
}

// clamp keeps the cursor in range and inside the scroll window.
func (v *View) clamp() {
	v.cursor = max(0, min(v.cursor, len(v.rows)-1))
	visible := v.visibleRows()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+visible {
		v.offset = v.cursor - visible + 1
	}
	v.offset = max(0, v.offset)
}

// visibleRows is the height minus the header line.
func (v *View) visibleRows() int {
	return max(1, v.height-1)
}

// View renders the explorer.
func (v *View) View() string {
	var b strings.Builder

	title := "Files"
	if repo := v.explorer.Repo(); !repo.IsZero() {
		title = repo.String()
	}
	b.WriteString(v.styles.Title.Render(runewidth.Truncate(title, v.width, "…")))
	b.WriteString("\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading tree..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(describeError(v.err)))
	case v.Filtering():
		b.WriteString(v.renderMatches())
	case len(v.rows) == 0:
		b.WriteString(v.styles.Muted.Render("(empty repository)"))
	default:
		b.WriteString(v.renderRows())
	}

	return lipgloss.NewStyle().Width(v.width).Height(v.height).Render(b.String())
}

func (v *View) renderRows() string {
	end := min(len(v.rows), v.offset+v.visibleRows())
	lines := make([]string, 0, end-v.offset+1)
	for i := v.offset; i < end; i++ {
		row := v.rows[i]

		icon := "  "
		style := v.styles.File
		if row.Node.IsFolder() {
			icon = "▸ "
			if row.Expanded {
				icon = "▾ "
			}
			style = v.styles.Folder
		}

		label := strings.Repeat("  ", row.Level) + icon + row.Node.Name
		label = runewidth.Truncate(label, v.width-1, "…")
		if i == v.cursor {
			style = v.styles.Selected
		}
		lines = append(lines, style.Render(label))
	}
	if v.explorer.Truncated() && end == len(v.rows) {
		lines = append(lines, v.styles.Warning.Render("(listing truncated by host)"))
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderMatches() string {
	lines := []string{v.filter.View()}

	visible := max(1, v.visibleRows()-1)
	start := max(0, v.cursor-visible+1)
	end := min(len(v.matches), start+visible)
	for i := start; i < end; i++ {
		label := runewidth.Truncate(v.matches[i].Str, v.width-1, "…")
		if i == v.cursor {
			lines = append(lines, v.styles.Selected.Render(label))
		} else {
			lines = append(lines, v.styles.File.Render(label))
		}
	}
	if v.filter.Value() != "" && len(v.matches) == 0 {
		lines = append(lines, v.styles.Muted.Render("no matches"))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.filter.SetWidth(width)
	v.clamp()
}

// SetStyles replaces the styles, e.g. after a theme change.
func (v *View) SetStyles(s *styles.Styles) {
	v.styles = s
}

// Err returns the last tree load error.
func (v *View) Err() error {
	return v.err
}

// describeError turns tree load failures into short hints.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "Rate limited. Set github.token or GITHUB_TOKEN for a higher limit."
	case errors.Is(err, domain.ErrAuthRequired):
		return "Authentication required. Set github.token or GITHUB_TOKEN."
	case errors.Is(err, domain.ErrNotFound):
		return "Repository not found."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func openCmd(desc domain.FileDescriptor) tea.Cmd {
	return func() tea.Msg {
		return messages.OpenRequested{Desc: desc}
	}
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return messages.ErrorOccurred{Err: err}
	}
}
