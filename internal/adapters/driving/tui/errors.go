package tui

import "errors"

// ErrInvalidPorts is returned when no ports are provided.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// ErrMissingSession is returned when the session service is not provided.
var ErrMissingSession = errors.New("tui: session service is required")

// ErrMissingExplorer is returned when the explorer service is not provided.
var ErrMissingExplorer = errors.New("tui: explorer service is required")

// ErrMissingDispatcher is returned when the renderer dispatcher is not provided.
var ErrMissingDispatcher = errors.New("tui: renderer dispatcher is required")

// ErrMissingRepo is returned when no repository is given.
var ErrMissingRepo = errors.New("tui: repository is required")
