package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// rstAdornments are the characters reStructuredText accepts for
// section underlines.
const rstAdornments = "=-~^\"'`#*+_:."

// MarkupRenderer presents AsciiDoc and reStructuredText with styled
// section titles and wrapped paragraphs.
type MarkupRenderer struct {
	title lipgloss.Style
	body  lipgloss.Style
}

// NewMarkupRenderer creates a markup renderer.
func NewMarkupRenderer() *MarkupRenderer {
	return &MarkupRenderer{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		body:  lipgloss.NewStyle(),
	}
}

// Render implements Renderer.
func (r *MarkupRenderer) Render(props Props) (string, error) {
	width := props.contentWidth()
	lines := strings.Split(strings.ReplaceAll(props.Content, "\r\n", "\n"), "\n")

	rst := props.Type.Type == "restructuredtext"

	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if !rst {
			if title, ok := asciidocTitle(line); ok {
				out = append(out, r.title.Render(title))
				continue
			}
		} else {
			if strings.TrimSpace(line) != "" && i+1 < len(lines) && isUnderline(lines[i+1], line) {
				out = append(out, r.title.Render(strings.TrimSpace(line)))
				i++
				continue
			}
			if isUnderline(line, "") {
				// Overline of a title.
				continue
			}
		}

		out = append(out, r.body.Width(width).Render(line))
	}
	return strings.Join(out, "\n"), nil
}

// asciidocTitle recognises "= Title" through "====== Title".
func asciidocTitle(line string) (string, bool) {
	level := 0
	for level < len(line) && line[level] == '=' {
		level++
	}
	if level == 0 || level > 6 || level >= len(line) || line[level] != ' ' {
		return "", false
	}
	return strings.TrimSpace(line[level:]), true
}

// isUnderline reports whether line is an rST adornment at least as long as
// the title above it.
func isUnderline(line, title string) bool {
	line = strings.TrimRight(line, " ")
	if len(line) < 3 || !strings.ContainsRune(rstAdornments, rune(line[0])) {
		return false
	}
	if strings.Trim(line, line[:1]) != "" {
		return false
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return true
	}
	return len(line) >= lipgloss.Width(title)
}
