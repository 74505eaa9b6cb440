package driven

import (
	"context"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

// TokenProvider provides access tokens for authenticated API calls.
type TokenProvider interface {
	// GetToken returns an access token.
	// Returns empty string for anonymous access.
	GetToken(ctx context.Context) (string, error)

	// AuthMethod returns the authentication method (pat, none).
	AuthMethod() domain.AuthMethod

	// IsAuthenticated returns true if a token is available.
	IsAuthenticated() bool
}
