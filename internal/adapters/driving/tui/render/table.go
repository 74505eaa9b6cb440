package render

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// DefaultMaxRows caps how many data rows a table shows.
const DefaultMaxRows = 500

// TableRenderer renders CSV and TSV files as bordered tables.
type TableRenderer struct {
	MaxRows int
}

// NewTableRenderer creates a table renderer with DefaultMaxRows.
func NewTableRenderer() *TableRenderer {
	return &TableRenderer{MaxRows: DefaultMaxRows}
}

// Render implements Renderer.
func (r *TableRenderer) Render(props Props) (string, error) {
	comma := ','
	if props.Type.Type == "tsv" {
		comma = '\t'
	}

	rows, err := ParseDelimited(props.Content, comma)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", props.Title, err)
	}
	if len(rows) == 0 {
		return "(empty table)", nil
	}

	header, data := rows[0], rows[1:]
	hidden := 0
	if r.MaxRows > 0 && len(data) > r.MaxRows {
		hidden = len(data) - r.MaxRows
		data = data[:r.MaxRows]
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(header...).
		Rows(data...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	if w := props.contentWidth(); lipgloss.Width(t.String()) > w {
		t = t.Width(w)
	}

	out := t.String()
	if hidden > 0 {
		out += fmt.Sprintf("\n… %d more rows", hidden)
	}
	return out, nil
}

// ParseDelimited reads delimited text leniently: ragged rows are padded to
// the widest row and stray quotes are accepted.
func ParseDelimited(content string, comma rune) ([][]string, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	width := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
		width = max(width, len(record))
	}

	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}
	return rows, nil
}
