package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// chroma style names per theme.
var codeStyles = map[domain.Theme]string{
	domain.ThemeDark:  "monokai",
	domain.ThemeLight: "github",
}

// lexerAliases maps detected type identifiers to chroma lexer names
// where the two disagree.
var lexerAliases = map[string]string{
	"shell":    "bash",
	"ignore":   "plaintext",
	"dotenv":   "bash",
	"gomod":    "go",
	"asciidoc": "plaintext",
}

// CodeRenderer highlights source code with chroma.
type CodeRenderer struct {
	// Formatter is the chroma formatter name, e.g. "terminal256" or "noop".
	Formatter string

	// LineNumbers prefixes each line with its number.
	LineNumbers bool
}

// NewCodeRenderer creates a code renderer for 256-colour terminals.
func NewCodeRenderer() *CodeRenderer {
	return &CodeRenderer{Formatter: "terminal256", LineNumbers: true}
}

// Render implements Renderer.
func (r *CodeRenderer) Render(props Props) (string, error) {
	return r.Highlight(props.Content, props.Type.Type, props.Title, props.Theme)
}

// Highlight formats text in the language identified by typ, falling back to
// the file name and then content analysis.
func (r *CodeRenderer) Highlight(text, typ, title string, theme domain.Theme) (string, error) {
	lexer := lexerFor(typ, title, text)

	style := styles.Get(codeStyles[theme])
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get(r.Formatter)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", fmt.Errorf("tokenising %s: %w", title, err)
	}

	lines := chroma.SplitTokensIntoLines(iterator.Tokens())
	gutter := len(fmt.Sprint(len(lines)))

	var buf bytes.Buffer
	for i, line := range lines {
		if r.LineNumbers {
			fmt.Fprintf(&buf, "%*d │ ", gutter, i+1)
		}
		if err := formatter.Format(&buf, style, chroma.Literator(line...)); err != nil {
			return "", fmt.Errorf("formatting %s: %w", title, err)
		}
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func lexerFor(typ, title, text string) chroma.Lexer {
	name := typ
	if alias, ok := lexerAliases[typ]; ok {
		name = alias
	}

	var lexer chroma.Lexer
	if name != "" {
		lexer = lexers.Get(name)
	}
	if lexer == nil && title != "" {
		lexer = lexers.Match(title)
	}
	if lexer == nil && name != "plaintext" {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
