package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	errors := []error{
		ErrInvalidPorts,
		ErrMissingSession,
		ErrMissingExplorer,
		ErrMissingDispatcher,
		ErrMissingRepo,
	}

	// Ensure all errors are unique
	seen := make(map[string]bool)
	for _, err := range errors {
		msg := err.Error()
		assert.False(t, seen[msg], "duplicate error message: %s", msg)
		seen[msg] = true
	}
}

func TestErrMissingSession_Message(t *testing.T) {
	assert.Contains(t, ErrMissingSession.Error(), "session service")
}

func TestErrMissingExplorer_Message(t *testing.T) {
	assert.Contains(t, ErrMissingExplorer.Error(), "explorer service")
}

func TestErrMissingDispatcher_Message(t *testing.T) {
	assert.Contains(t, ErrMissingDispatcher.Error(), "renderer dispatcher")
}

func TestErrInvalidPorts_Message(t *testing.T) {
	assert.Contains(t, ErrInvalidPorts.Error(), "invalid ports")
}
