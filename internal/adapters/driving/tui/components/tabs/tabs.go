// Package tabs renders the open-document tab bar.
package tabs

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// DefaultMaxTitle is the widest a tab title may be, in cells.
const DefaultMaxTitle = 24

// Bar renders one tab per open document and keeps the active tab visible.
type Bar struct {
	styles   *styles.Styles
	width    int
	maxTitle int
}

// NewBar creates a tab bar.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Bar{styles: s, width: 80, maxTitle: DefaultMaxTitle}
}

// SetWidth sets the available width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// SetStyles replaces the styles, e.g. after a theme change.
func (b *Bar) SetStyles(s *styles.Styles) {
	b.styles = s
}

// Label returns the tab text for a document: its truncated title and a
// marker for the phase.
func (b *Bar) Label(doc domain.Document) string {
	title := runewidth.Truncate(doc.Title, b.maxTitle, "…")
	switch {
	case doc.Phase == domain.PhaseLoading || doc.Phase == domain.PhaseForceRendering:
		return title + " ⋯"
	case doc.Phase == domain.PhaseFailed:
		return title + " !"
	case doc.Forced:
		return title + " *"
	default:
		return title
	}
}

// View renders the tabs. When they overflow, tabs are dropped from the side
// away from the active tab and replaced by an ellipsis.
func (b *Bar) View(docs []domain.Document, active int) string {
	if len(docs) == 0 {
		return b.styles.Muted.Render("No open files")
	}

	rendered := make([]string, len(docs))
	for i, doc := range docs {
		style := b.styles.Tab
		if i == active {
			style = b.styles.ActiveTab
		}
		rendered[i] = style.Render(b.Label(doc))
	}

	first, last := b.visibleRange(rendered, active)

	var out []string
	if first > 0 {
		out = append(out, b.styles.Muted.Render("…"))
	}
	out = append(out, rendered[first:last+1]...)
	if last < len(rendered)-1 {
		out = append(out, b.styles.Muted.Render("…"))
	}
	return strings.Join(out, b.styles.Muted.Render("│"))
}

// visibleRange grows a window around active while it fits the width.
func (b *Bar) visibleRange(rendered []string, active int) (int, int) {
	active = max(0, min(active, len(rendered)-1))
	first, last := active, active
	used := lipgloss.Width(rendered[active])

	// Reserve room for the separators and both ellipses.
	budget := b.width - 4

	for {
		grew := false
		if last+1 < len(rendered) {
			if w := lipgloss.Width(rendered[last+1]) + 1; used+w <= budget {
				last++
				used += w
				grew = true
			}
		}
		if first > 0 {
			if w := lipgloss.Width(rendered[first-1]) + 1; used+w <= budget {
				first--
				used += w
				grew = true
			}
		}
		if !grew {
			return first, last
		}
	}
}
