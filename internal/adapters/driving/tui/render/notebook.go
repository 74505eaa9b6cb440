package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sourceText is a notebook string field, stored either as one string or as
// a list of lines.
type sourceText string

// UnmarshalJSON accepts both encodings.
func (s *sourceText) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = sourceText(one)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*s = sourceText(strings.Join(lines, ""))
	return nil
}

type notebookOutput struct {
	OutputType string                     `json:"output_type"`
	Text       sourceText                 `json:"text"`
	Data       map[string]json.RawMessage `json:"data"`
	EName      string                     `json:"ename"`
	EValue     string                     `json:"evalue"`
}

type notebookCell struct {
	CellType       string           `json:"cell_type"`
	Source         sourceText       `json:"source"`
	ExecutionCount *int             `json:"execution_count"`
	Outputs        []notebookOutput `json:"outputs"`
}

type notebook struct {
	Cells    []notebookCell `json:"cells"`
	Metadata struct {
		KernelSpec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
	} `json:"metadata"`
}

func (nb *notebook) language() string {
	if nb.Metadata.LanguageInfo.Name != "" {
		return nb.Metadata.LanguageInfo.Name
	}
	if nb.Metadata.KernelSpec.Language != "" {
		return nb.Metadata.KernelSpec.Language
	}
	return "python"
}

// NotebookRenderer renders Jupyter notebooks cell by cell.
type NotebookRenderer struct {
	Code     *CodeRenderer
	Markdown *MarkdownRenderer

	prompt lipgloss.Style
	output lipgloss.Style
	errout lipgloss.Style
}

// NewNotebookRenderer creates a notebook renderer.
func NewNotebookRenderer() *NotebookRenderer {
	return &NotebookRenderer{
		Code:     &CodeRenderer{Formatter: "terminal256"},
		Markdown: NewMarkdownRenderer(),
		prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		output:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		errout:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// Render implements Renderer.
func (r *NotebookRenderer) Render(props Props) (string, error) {
	var nb notebook
	if err := json.Unmarshal([]byte(props.Content), &nb); err != nil {
		return "", fmt.Errorf("parsing notebook %s: %w", props.Title, err)
	}
	if len(nb.Cells) == 0 {
		return "(empty notebook)", nil
	}

	lang := nb.language()
	blocks := make([]string, 0, len(nb.Cells))
	for _, cell := range nb.Cells {
		block, err := r.renderCell(cell, lang, props)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}

func (r *NotebookRenderer) renderCell(cell notebookCell, lang string, props Props) (string, error) {
	src := string(cell.Source)

	switch cell.CellType {
	case "markdown":
		return r.Markdown.Render(Props{Content: src, Width: props.Width, Theme: props.Theme, Title: props.Title})
	case "code":
		count := " "
		if cell.ExecutionCount != nil {
			count = fmt.Sprint(*cell.ExecutionCount)
		}
		code, err := r.Code.Highlight(src, lang, "", props.Theme)
		if err != nil {
			return "", err
		}

		var b strings.Builder
		b.WriteString(r.prompt.Render(fmt.Sprintf("In [%s]:", count)))
		b.WriteString("\n")
		b.WriteString(code)
		for _, out := range cell.Outputs {
			if text := r.renderOutput(out); text != "" {
				b.WriteString("\n")
				b.WriteString(text)
			}
		}
		return b.String(), nil
	default:
		return src, nil
	}
}

func (r *NotebookRenderer) renderOutput(out notebookOutput) string {
	switch out.OutputType {
	case "stream":
		return r.output.Render(strings.TrimRight(string(out.Text), "\n"))
	case "execute_result", "display_data":
		if raw, ok := out.Data["text/plain"]; ok {
			var text sourceText
			if err := json.Unmarshal(raw, &text); err == nil {
				return r.output.Render(strings.TrimRight(string(text), "\n"))
			}
		}
		for mime := range out.Data {
			if strings.HasPrefix(mime, "image/") {
				return r.output.Render("[" + mime + " output]")
			}
		}
	case "error":
		return r.errout.Render(out.EName + ": " + out.EValue)
	}
	return ""
}
