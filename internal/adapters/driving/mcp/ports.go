package mcp

import (
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session owns the open documents.
	Session driving.SessionService

	// Explorer resolves paths against the loaded repository tree.
	Explorer driving.ExplorerService

	// Dispatcher reports which renderer a document maps to.
	Dispatcher driving.RendererDispatcher

	// Overrider runs "render as text". Optional; force_render fails without it.
	Overrider driving.Overrider
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSession
	}
	if p.Explorer == nil {
		return ErrMissingExplorer
	}
	if p.Dispatcher == nil {
		return ErrMissingDispatcher
	}
	return nil
}
