package auth

import (
	"context"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
)

// Ensure NullTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*NullTokenProvider)(nil)

// NullTokenProvider makes anonymous requests. GitHub allows 60 of them an
// hour, which is enough to browse a small repository.
type NullTokenProvider struct{}

// NewNullTokenProvider creates a token provider for anonymous access.
func NewNullTokenProvider() *NullTokenProvider {
	return &NullTokenProvider{}
}

// GetToken returns an empty string.
func (p *NullTokenProvider) GetToken(_ context.Context) (string, error) {
	return "", nil
}

// AuthMethod returns AuthMethodNone.
func (p *NullTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodNone
}

// IsAuthenticated always returns false.
func (p *NullTokenProvider) IsAuthenticated() bool {
	return false
}
