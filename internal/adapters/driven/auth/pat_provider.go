package auth

import (
	"context"
	"os"
	"strings"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
)

// EnvToken is the environment variable that overrides the configured token.
const EnvToken = "GITHUB_TOKEN"

// TokenKey is the config key holding the personal access token.
//
//nolint:gosec // G101: config key name, not a credential.
const TokenKey = "github.token"

// Ensure PATProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*PATProvider)(nil)

// PATProvider provides a static Personal Access Token.
// The token is looked up on every call so config reloads take effect.
// PATs don't expire and don't require refresh.
type PATProvider struct {
	store  driven.ConfigStore
	getenv func(string) string
}

// NewPATProvider creates a provider reading GITHUB_TOKEN, then store.
// A nil store means the environment only.
func NewPATProvider(store driven.ConfigStore) *PATProvider {
	return &PATProvider{store: store, getenv: os.Getenv}
}

// GetToken returns the token, or "" for anonymous access.
func (p *PATProvider) GetToken(_ context.Context) (string, error) {
	return p.token(), nil
}

// AuthMethod returns AuthMethodPAT when a token is available.
func (p *PATProvider) AuthMethod() domain.AuthMethod {
	if p.token() == "" {
		return domain.AuthMethodNone
	}
	return domain.AuthMethodPAT
}

// IsAuthenticated returns true if a token is available.
func (p *PATProvider) IsAuthenticated() bool {
	return p.token() != ""
}

func (p *PATProvider) token() string {
	if tok := strings.TrimSpace(p.getenv(EnvToken)); tok != "" {
		return tok
	}
	if p.store == nil {
		return ""
	}
	return strings.TrimSpace(p.store.GetString(TokenKey))
}
