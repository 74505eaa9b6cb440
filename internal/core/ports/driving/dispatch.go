package driving

import "github.com/custodia-labs/reposcope/internal/core/domain"

// RendererDispatcher selects the renderer for a document.
type RendererDispatcher interface {
	// SelectRenderer maps a detected type and text availability to a kind.
	SelectRenderer(fileType domain.FileType, canRenderAsText bool) domain.RendererKind

	// RendererFor maps a whole document, including its phase, to a kind.
	RendererFor(doc domain.Document) domain.RendererKind

	// Register routes a file type identifier to a renderer kind.
	Register(fileType string, kind domain.RendererKind)
}
