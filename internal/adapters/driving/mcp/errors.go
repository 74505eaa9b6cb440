// Package mcp provides an MCP (Model Context Protocol) server adapter for reposcope.
// It lets AI assistants browse a remote repository and read its files through
// the same session the terminal viewer uses.
package mcp

import "errors"

var (
	// ErrMissingSession is returned when the session service is not provided.
	ErrMissingSession = errors.New("mcp: session service is required")

	// ErrMissingExplorer is returned when the explorer service is not provided.
	ErrMissingExplorer = errors.New("mcp: explorer service is required")

	// ErrMissingDispatcher is returned when the renderer dispatcher is not provided.
	ErrMissingDispatcher = errors.New("mcp: renderer dispatcher is required")

	// ErrOverrideUnavailable is returned by force_render when no overrider is wired.
	ErrOverrideUnavailable = errors.New("mcp: render as text is not available")
)
