package auth

import (
	"os"
	"strings"

	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
)

// NewTokenProvider returns the provider for the current configuration:
// PAT lookup when a config store is available, anonymous otherwise.
func NewTokenProvider(store driven.ConfigStore) driven.TokenProvider {
	if store == nil && strings.TrimSpace(os.Getenv(EnvToken)) == "" {
		return NewNullTokenProvider()
	}
	return NewPATProvider(store)
}
