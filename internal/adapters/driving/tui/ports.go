// Package tui provides an interactive terminal user interface for reposcope.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/render"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Session owns the open tabs.
	Session driving.SessionService

	// Explorer browses the repository tree.
	Explorer driving.ExplorerService

	// Dispatcher picks the renderer for each document.
	Dispatcher driving.RendererDispatcher

	// NewOverrider creates the "render as text" handler for the file view.
	// Nil disables the override.
	NewOverrider func() driving.Overrider

	// Settings provides the theme. Optional.
	Settings driving.SettingsService

	// Renderers draws documents. Nil means the built-in renderers.
	Renderers *render.Registry

	// Repo is the repository opened at start.
	Repo domain.RepoRef
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(
	session driving.SessionService,
	explorer driving.ExplorerService,
	dispatcher driving.RendererDispatcher,
	repo domain.RepoRef,
) *Ports {
	return &Ports{
		Session:    session,
		Explorer:   explorer,
		Dispatcher: dispatcher,
		Repo:       repo,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Session == nil {
		return ErrMissingSession
	}
	if p.Explorer == nil {
		return ErrMissingExplorer
	}
	if p.Dispatcher == nil {
		return ErrMissingDispatcher
	}
	if p.Repo.IsZero() {
		return ErrMissingRepo
	}
	return nil
}
