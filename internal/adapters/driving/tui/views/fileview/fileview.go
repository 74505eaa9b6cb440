// Package fileview provides the active document view for the TUI.
package fileview

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/render"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// View shows the active document of the session.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	session    driving.SessionService
	dispatcher driving.RendererDispatcher
	renderers  *render.Registry
	overrider  driving.Overrider
	spinner    spinner.Model

	// copy writes to the system clipboard.
	copy func(string) error

	doc          domain.Document
	hasDoc       bool
	kind         domain.RendererKind
	renderKey    string
	lines        []string
	renderErr    error
	notice       string
	scrollOffset int
	width        int
	height       int
}

// NewView creates a file view. The view owns overrider and closes it in Close.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	session driving.SessionService,
	dispatcher driving.RendererDispatcher,
	renderers *render.Registry,
	overrider driving.Overrider,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if renderers == nil {
		renderers = render.NewRegistry()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	return &View{
		styles:     s,
		keymap:     km,
		session:    session,
		dispatcher: dispatcher,
		renderers:  renderers,
		overrider:  overrider,
		spinner:    sp,
		copy:       clipboard.WriteAll,
		width:      80,
		height:     24,
	}
}

// Init starts the loading spinner.
func (v *View) Init() tea.Cmd {
	return v.spinner.Tick
}

// Sync re-reads the active document from the session.
func (v *View) Sync() {
	doc, ok := v.session.Active()
	if !ok {
		v.doc, v.hasDoc = domain.Document{}, false
		v.kind, v.renderKey, v.lines, v.renderErr = "", "", nil, nil
		v.scrollOffset = 0
		v.notice = ""
		return
	}

	if !v.hasDoc || v.doc.Path != doc.Path {
		v.scrollOffset = 0
		v.notice = ""
	}
	v.doc, v.hasDoc = doc, true
	v.refresh()
}

// Update handles messages for the file view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ForceRenderDone:
		if msg.Err != nil && v.hasDoc && msg.Path == v.doc.Path {
			v.notice = describeOverrideError(msg.Err)
		}
		v.Sync()
		return v, nil

	case messages.Copied:
		if msg.Err != nil {
			v.notice = fmt.Sprintf("Copy failed: %v", msg.Err)
		} else {
			v.notice = "Copied to clipboard."
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.scroll(-1)
	case keymap.Matches(k, v.keymap.Down):
		v.scroll(1)
	case keymap.Matches(k, v.keymap.PageUp):
		v.scroll(-v.visibleLines())
	case keymap.Matches(k, v.keymap.PageDown):
		v.scroll(v.visibleLines())
	case k == "home" || k == "g":
		v.scrollOffset = 0
	case k == "end" || k == "G":
		v.scrollOffset = v.maxScrollOffset()
	case keymap.Matches(k, v.keymap.ForceRender):
		return v, v.forceRender()
	case keymap.Matches(k, v.keymap.Retry):
		return v, v.retry()
	case keymap.Matches(k, v.keymap.Copy):
		return v, v.copyContent()
	}
	return v, nil
}

// forceRender returns a command that re-decodes the active document as text.
func (v *View) forceRender() tea.Cmd {
	if !v.hasDoc || v.overrider == nil {
		return nil
	}
	if !v.doc.CanOverride() {
		if v.doc.Forced {
			v.notice = "Already showing the raw text."
		}
		return nil
	}

	path := v.doc.Path
	overrider := v.overrider
	v.notice = ""
	return func() tea.Msg {
		err := overrider.Override(context.Background(), path)
		return messages.ForceRenderDone{Path: path, Err: err}
	}
}

func (v *View) retry() tea.Cmd {
	if !v.hasDoc || v.doc.Phase != domain.PhaseFailed {
		return nil
	}
	if err := v.session.Retry(v.doc.Path); err != nil {
		return func() tea.Msg { return messages.ErrorOccurred{Err: err} }
	}
	v.notice = ""
	return v.spinner.Tick
}

// copyContent copies decoded text. Binary payloads are not copied.
func (v *View) copyContent() tea.Cmd {
	if !v.hasDoc || !v.doc.HasText() {
		v.notice = "Nothing to copy."
		return nil
	}
	text, path, write := v.doc.Content, v.doc.Path, v.copy
	return func() tea.Msg {
		return messages.Copied{Path: path, Err: write(text)}
	}
}

// refresh renders the document again when anything that affects the
// output changed since the last render.
func (v *View) refresh() {
	kind := v.dispatcher.RendererFor(v.doc)
	key := fmt.Sprintf("%s|%s|%d|%t|%s|%d|%s",
		v.doc.Path, v.doc.LoadID, v.doc.Phase, v.doc.Forced, kind, v.width, v.theme())
	if key == v.renderKey {
		return
	}
	v.kind = kind
	v.renderKey = key
	v.renderErr = nil

	if kind.IsStatus() {
		v.lines = nil
		return
	}

	out, err := v.renderers.Render(kind, render.Props{
		Content: v.doc.Content,
		Type:    v.doc.Type,
		Title:   v.doc.Title,
		Size:    v.doc.Size,
		Width:   v.contentWidth(),
		Theme:   v.theme(),
	})
	if err != nil {
		v.renderErr = err
		if !v.doc.CanRenderAsText {
			v.lines = nil
			v.clampScroll()
			return
		}
		out = v.doc.Content
	}
	v.lines = v.wrap(out)
	v.clampScroll()
}

// wrap splits rendered output into lines no wider than the content area.
func (v *View) wrap(out string) []string {
	width := v.contentWidth()
	raw := strings.Split(strings.TrimRight(out, "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.ReplaceAll(line, "\t", "    ")
		if ansi.StringWidth(line) <= width {
			lines = append(lines, line)
			continue
		}
		lines = append(lines, strings.Split(ansi.Hardwrap(line, width, true), "\n")...)
	}
	return lines
}

func (v *View) theme() domain.Theme {
	return v.styles.Theme().Name
}

func (v *View) contentWidth() int {
	return max(20, v.width-2)
}

// visibleLines returns the number of lines that can be displayed.
func (v *View) visibleLines() int {
	// title, separator and footer
	return max(1, v.height-4)
}

func (v *View) maxScrollOffset() int {
	return max(0, len(v.lines)-v.visibleLines())
}

func (v *View) scroll(delta int) {
	v.scrollOffset += delta
	v.clampScroll()
}

func (v *View) clampScroll() {
	v.scrollOffset = max(0, min(v.scrollOffset, v.maxScrollOffset()))
}

// View renders the file view.
func (v *View) View() string {
	if !v.hasDoc {
		return v.styles.Muted.Render("Select a file in the explorer to open it.")
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.doc.Path))
	if name := v.doc.Type.DisplayName; name != "" {
		b.WriteString(v.styles.Muted.Render("  " + name))
	}
	if v.doc.Forced {
		b.WriteString(v.styles.Warning.Render("  (raw text)"))
	}
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(strings.Repeat("─", max(0, v.width-2))))
	b.WriteString("\n")

	if v.kind.IsStatus() || (v.renderErr != nil && len(v.lines) == 0) {
		b.WriteString(v.renderStatus())
	} else {
		b.WriteString(v.renderLines())
	}

	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(v.notice))
	}
	return b.String()
}

func (v *View) renderLines() string {
	var b strings.Builder
	if v.renderErr != nil {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Preview failed (%v); showing plain text.", v.renderErr)))
		b.WriteString("\n")
	}

	visible := v.visibleLines()
	end := min(len(v.lines), v.scrollOffset+visible)
	b.WriteString(strings.Join(v.lines[v.scrollOffset:end], "\n"))

	if len(v.lines) > visible {
		percentage := 0
		if v.maxScrollOffset() > 0 {
			percentage = v.scrollOffset * 100 / v.maxScrollOffset()
		}
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("[%d%%] Line %d-%d of %d",
			percentage, v.scrollOffset+1, end, len(v.lines))))
	}
	return b.String()
}

// renderStatus draws the placeholder for documents without content to show.
func (v *View) renderStatus() string {
	switch {
	case v.kind == domain.KindLoading && v.doc.Phase == domain.PhaseForceRendering:
		return v.spinner.View() + " Decoding " + v.doc.Title + " as text..."
	case v.kind == domain.KindLoading:
		return v.spinner.View() + " Loading " + v.doc.Title + "..."
	case v.kind == domain.KindTooLarge:
		return v.styles.Warning.Render(fmt.Sprintf("%s is too large to display (%s).",
			v.doc.Title, humanize.Bytes(uint64(max(0, v.doc.Size))))) + "\n" +
			v.styles.Muted.Render("Files over the size limit are never downloaded. See the viewer.max_file_size setting.")
	case v.kind == domain.KindFailed:
		return v.styles.Error.Render(fmt.Sprintf("Could not load %s: %v", v.doc.Title, v.doc.Err)) + "\n" +
			v.styles.Muted.Render("Press r to retry.")
	case v.kind == domain.KindUnsupported:
		return v.styles.Warning.Render(fmt.Sprintf("%s cannot be displayed.", v.doc.Title)) + "\n" +
			v.styles.Muted.Render("Press o to render it as text anyway.")
	case v.renderErr != nil:
		return v.styles.Error.Render(fmt.Sprintf("Preview failed: %v", v.renderErr)) + "\n" +
			v.styles.Muted.Render("Press o to render it as text anyway.")
	}
	return ""
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	if v.hasDoc {
		v.refresh()
	}
	v.clampScroll()
}

// SetStyles replaces the styles and re-renders with the new theme.
func (v *View) SetStyles(s *styles.Styles) {
	v.styles = s
	v.spinner.Style = s.Title
	if v.hasDoc {
		v.refresh()
	}
}

// Document returns the document on screen.
func (v *View) Document() (domain.Document, bool) {
	return v.doc, v.hasDoc
}

// Kind returns the renderer kind chosen for the document on screen.
func (v *View) Kind() domain.RendererKind {
	return v.kind
}

// Loading reports whether the document on screen is waiting on work.
func (v *View) Loading() bool {
	return v.hasDoc && !v.doc.Phase.IsSettled()
}

// Close releases the view's overrider.
func (v *View) Close() error {
	if v.overrider == nil {
		return nil
	}
	return v.overrider.Close()
}

func describeOverrideError(err error) string {
	switch {
	case errors.Is(err, domain.ErrForcedDecodeFailed):
		return "Could not decode the file as text. Press o to try again."
	case errors.Is(err, domain.ErrSessionClosed):
		return "Session closed."
	default:
		return fmt.Sprintf("Render as text failed: %v", err)
	}
}
