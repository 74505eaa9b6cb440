package domain

// AuthMethod defines how requests to the repository host authenticate.
type AuthMethod string

const (
	// AuthMethodNone sends anonymous requests.
	AuthMethodNone AuthMethod = "none"
	// AuthMethodPAT uses a Personal Access Token.
	AuthMethodPAT AuthMethod = "pat"
)
