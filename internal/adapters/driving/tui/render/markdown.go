package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// minOutlineHeadings is the heading count at which a contents list is shown.
const minOutlineHeadings = 4

// Heading is one entry of a markdown outline.
type Heading struct {
	Level int
	Text  string
}

// MarkdownRenderer renders markdown with glamour. YAML front matter is shown
// as a property list and long documents get a contents list.
type MarkdownRenderer struct {
	// Style overrides the glamour style. Empty selects from the theme.
	Style string

	parser goldmark.Markdown
}

// NewMarkdownRenderer creates a markdown renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		parser: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Render implements Renderer.
func (r *MarkdownRenderer) Render(props Props) (string, error) {
	meta, body := SplitFrontMatter(props.Content)

	style := r.Style
	if style == "" {
		style = string(props.Theme)
		if style == "" {
			style = "dark"
		}
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(24, props.contentWidth()-4)),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("creating markdown renderer: %w", err)
	}

	rendered, err := tr.Render(body)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", props.Title, err)
	}

	var b strings.Builder
	if len(meta) > 0 {
		b.WriteString(renderFrontMatter(meta))
		b.WriteString("\n")
	}
	if outline := r.Outline(body); len(outline) >= minOutlineHeadings {
		b.WriteString(renderOutline(outline))
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimRight(rendered, "\n"))
	return b.String(), nil
}

// Outline returns the headings of a markdown document in order.
func (r *MarkdownRenderer) Outline(src string) []Heading {
	source := []byte(src)
	doc := r.parser.Parser().Parse(text.NewReader(source))

	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headings = append(headings, Heading{Level: h.Level, Text: nodeText(h, source)})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// nodeText concatenates the text segments below n.
func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// SplitFrontMatter separates a leading "---" YAML block from the body.
// Content without valid front matter is returned unchanged.
func SplitFrontMatter(content string) (map[string]any, string) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return nil, content
	}

	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, content
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil || len(meta) == 0 {
		return nil, content
	}

	body := rest[end+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return meta, body
}

func renderFrontMatter(meta map[string]any) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-*s  %v\n", width, k, formatValue(meta[k]))
	}
	return b.String()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func renderOutline(headings []Heading) string {
	top := headings[0].Level
	for _, h := range headings {
		top = min(top, h.Level)
	}

	var b strings.Builder
	b.WriteString("  Contents\n")
	for _, h := range headings {
		fmt.Fprintf(&b, "  %s• %s\n", strings.Repeat("  ", h.Level-top), h.Text)
	}
	return b.String()
}
