package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// defaultLineLimit caps read_document when no limit is given.
const defaultLineLimit = 500

// ListFilesInput is the input schema for the list_files tool.
type ListFilesInput struct {
	Pattern string `json:"pattern,omitempty" jsonschema:"doublestar glob such as **/*.go; empty lists every file"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum number of files to return (default all)"`
}

// ListFilesOutput is the output schema for the list_files tool.
type ListFilesOutput struct {
	Repository string       `json:"repository"`
	Files      []FileOutput `json:"files"`
	Count      int          `json:"count"`
	Truncated  bool         `json:"truncated,omitempty"`
}

// FileOutput is one file of the repository tree.
type FileOutput struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// PathInput names a file by its repository path.
type PathInput struct {
	Path string `json:"path" jsonschema:"file path relative to the repository root"`
}

// ReadDocumentInput is the input schema for the read_document tool.
type ReadDocumentInput struct {
	Path   string `json:"path" jsonschema:"path of an open document"`
	Offset int    `json:"offset,omitempty" jsonschema:"first line to return, zero based"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of lines to return (default 500)"`
}

// DocumentOutput describes one open document.
type DocumentOutput struct {
	Path            string `json:"path"`
	Title           string `json:"title"`
	Type            string `json:"type,omitempty"`
	Size            int64  `json:"size"`
	Phase           string `json:"phase"`
	Renderer        string `json:"renderer"`
	CanRenderAsText bool   `json:"can_render_as_text"`
	Forced          bool   `json:"forced,omitempty"`
	Active          bool   `json:"active,omitempty"`
	Error           string `json:"error,omitempty"`
}

// ReadDocumentOutput is a window of a document's decoded text.
type ReadDocumentOutput struct {
	Document   DocumentOutput `json:"document"`
	Content    string         `json:"content,omitempty"`
	StartLine  int            `json:"start_line"`
	EndLine    int            `json:"end_line"`
	TotalLines int            `json:"total_lines"`
	Note       string         `json:"note,omitempty"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents   []DocumentOutput `json:"documents"`
	ActiveIndex int              `json:"active_index"`
}

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_files",
		Description: "List files in the loaded repository, optionally filtered by a glob",
	}, s.handleListFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "open_file",
		Description: "Open a repository file in a tab and wait for it to load",
	}, s.handleOpenFile)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the open documents in tab order",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_document",
		Description: "Read lines of an open document's decoded text",
	}, s.handleReadDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "close_tab",
		Description: "Close the open document at a path",
	}, s.handleCloseTab)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "close_all",
		Description: "Close every open document",
	}, s.handleCloseAll)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "force_render",
		Description: "Decode an open document as raw text even if it is not a text file",
	}, s.handleForceRender)
}

// handleListFiles handles the list_files tool invocation.
func (s *Server) handleListFiles(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListFilesInput,
) (*mcp.CallToolResult, ListFilesOutput, error) {
	files := s.ports.Explorer.Files()
	if input.Pattern != "" {
		matched, err := s.ports.Explorer.Match(input.Pattern)
		if err != nil {
			return nil, ListFilesOutput{}, err
		}
		files = matched
	}
	if input.Limit > 0 && len(files) > input.Limit {
		files = files[:input.Limit]
	}

	output := ListFilesOutput{
		Repository: s.ports.Explorer.Repo().String(),
		Files:      make([]FileOutput, len(files)),
		Count:      len(files),
		Truncated:  s.ports.Explorer.Truncated(),
	}
	for i, f := range files {
		output.Files[i] = FileOutput{Path: f.Path, Size: f.Size}
	}
	return nil, output, nil
}

// handleOpenFile handles the open_file tool invocation. Opening a file whose
// download failed retries it.
func (s *Server) handleOpenFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PathInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	desc, err := s.ports.Explorer.Select(input.Path)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	if err := s.ports.Session.OpenFile(desc); err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("opening %s: %w", desc.Path, err)
	}
	if doc, ok := s.ports.Session.Document(desc.Path); ok && doc.Phase == domain.PhaseFailed {
		if err := s.ports.Session.Retry(desc.Path); err != nil {
			return nil, DocumentOutput{}, err
		}
	}

	doc, err := s.ports.Session.Await(ctx, desc.Path)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, s.describe(doc), nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs := s.ports.Session.Documents()
	output := ListDocumentsOutput{
		Documents:   make([]DocumentOutput, len(docs)),
		ActiveIndex: s.ports.Session.ActiveIndex(),
	}
	for i := range docs {
		output.Documents[i] = s.describe(docs[i])
	}
	return nil, output, nil
}

// handleReadDocument handles the read_document tool invocation.
func (s *Server) handleReadDocument(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ReadDocumentInput,
) (*mcp.CallToolResult, ReadDocumentOutput, error) {
	doc, ok := s.ports.Session.Document(input.Path)
	if !ok {
		return nil, ReadDocumentOutput{}, fmt.Errorf("%w: %s is not open", domain.ErrNotFound, input.Path)
	}

	output := ReadDocumentOutput{Document: s.describe(doc)}
	if !doc.HasText() {
		output.Note = noteFor(doc)
		return nil, output, nil
	}

	lines := strings.Split(doc.Content, "\n")
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLineLimit
	}
	start := min(max(0, input.Offset), len(lines))
	end := min(start+limit, len(lines))

	output.Content = strings.Join(lines[start:end], "\n")
	output.StartLine = start
	output.EndLine = end
	output.TotalLines = len(lines)
	return nil, output, nil
}

// handleCloseTab handles the close_tab tool invocation.
func (s *Server) handleCloseTab(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input PathInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	index, err := s.indexOf(input.Path)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	if err := s.ports.Session.CloseTab(index); err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	return s.handleListDocuments(context.Background(), nil, EmptyInput{})
}

// handleCloseAll handles the close_all tool invocation.
func (s *Server) handleCloseAll(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	s.ports.Session.CloseAll()
	return nil, ListDocumentsOutput{Documents: []DocumentOutput{}}, nil
}

// handleForceRender handles the force_render tool invocation. The document
// is made active first since a forced decode only commits to the active tab.
func (s *Server) handleForceRender(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PathInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	if s.ports.Overrider == nil {
		return nil, DocumentOutput{}, ErrOverrideUnavailable
	}
	index, err := s.indexOf(input.Path)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	if err := s.ports.Session.SetActive(index); err != nil {
		return nil, DocumentOutput{}, err
	}
	if err := s.ports.Overrider.Override(ctx, input.Path); err != nil {
		return nil, DocumentOutput{}, err
	}

	doc, ok := s.ports.Session.Document(input.Path)
	if !ok {
		return nil, DocumentOutput{}, fmt.Errorf("%w: %s", domain.ErrNotFound, input.Path)
	}
	return nil, s.describe(doc), nil
}

// indexOf returns the tab index of the document at path.
func (s *Server) indexOf(path string) (int, error) {
	for i, doc := range s.ports.Session.Documents() {
		if doc.Path == path {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s is not open", domain.ErrNotFound, path)
}

// describe converts a document to its tool output.
func (s *Server) describe(doc domain.Document) DocumentOutput {
	out := DocumentOutput{
		Path:            doc.Path,
		Title:           doc.Title,
		Type:            doc.Type.DisplayName,
		Size:            doc.Size,
		Phase:           doc.Phase.String(),
		Renderer:        s.ports.Dispatcher.RendererFor(doc).String(),
		CanRenderAsText: doc.CanRenderAsText,
		Forced:          doc.Forced,
	}
	if active, ok := s.ports.Session.Active(); ok && active.Path == doc.Path {
		out.Active = true
	}
	if doc.Err != nil {
		out.Error = doc.Err.Error()
	}
	return out
}

// noteFor explains why a document has no text to read.
func noteFor(doc domain.Document) string {
	switch doc.Phase {
	case domain.PhaseLoading, domain.PhaseForceRendering:
		return "still loading"
	case domain.PhaseTooLarge:
		return "file exceeds the size limit and was not downloaded"
	case domain.PhaseFailed:
		return "download failed; open the file again to retry"
	case domain.PhaseUnsupported:
		return "content is not text; call force_render to read it anyway"
	default:
		return "content is binary; call force_render to read it as text"
	}
}
