package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with helper methods.
type Client struct {
	tokenProvider driven.TokenProvider
	apiURL        string
	httpClient    *http.Client

	mu          sync.Mutex
	gh          *gh.Client
	token       string
	rateLimiter *RateLimiter
}

// NewClient creates a GitHub API client with a token provider.
// An empty apiURL targets api.github.com.
func NewClient(tokenProvider driven.TokenProvider, apiURL string) *Client {
	return &Client{
		tokenProvider: tokenProvider,
		apiURL:        apiURL,
		rateLimiter:   NewRateLimiter(AnonymousRateLimit),
	}
}

// NewClientWithHTTPClient creates a GitHub client that sends every request
// through httpClient, unauthenticated unless httpClient adds credentials.
func NewClientWithHTTPClient(httpClient *http.Client, apiURL string) *Client {
	return &Client{
		apiURL:      apiURL,
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(AnonymousRateLimit),
	}
}

// ensureClient returns the go-github client for the current token.
// The client is rebuilt when the token changes, e.g. after a config reload.
func (c *Client) ensureClient(ctx context.Context) (*gh.Client, error) {
	var token string
	if c.tokenProvider != nil {
		t, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("get token: %w", err)
		}
		token = t
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gh != nil && token == c.token {
		return c.gh, nil
	}

	httpClient := c.httpClient
	if httpClient == nil {
		if token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
			httpClient = oauth2.NewClient(context.Background(), ts)
		} else {
			httpClient = &http.Client{}
		}
		httpClient.Timeout = DefaultTimeout
	}

	client := gh.NewClient(httpClient)
	if c.apiURL != "" {
		base := c.apiURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("github api url %q: %w", c.apiURL, err)
		}
		client.BaseURL = u
		client.UploadURL = u
	}

	if token != c.token || c.gh == nil {
		limit := AnonymousRateLimit
		if token != "" {
			limit = AuthenticatedRateLimit
		}
		c.rateLimiter = NewRateLimiter(limit)
	}
	c.gh = client
	c.token = token
	return client, nil
}

// limiter returns the rate limiter for the current token.
func (c *Client) limiter() *RateLimiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimiter
}

// GetRepository fetches a single repository.
func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*gh.Repository, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter().Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repository, resp, err := client.Repositories.Get(ctx, owner, repo)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get repo")
	}
	return repository, nil
}

// GetTree fetches the entire tree for a repository recursively.
// This is efficient for getting all file paths in one API call.
func (c *Client) GetTree(ctx context.Context, owner, repo, sha string) (*gh.Tree, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter().Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	tree, resp, err := client.Git.GetTree(ctx, owner, repo, sha, true) // recursive=true
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get tree")
	}
	return tree, nil
}

// GetBlobByURL fetches a blob from the API URL carried by a tree entry.
func (c *Client) GetBlobByURL(ctx context.Context, blobURL string) (*gh.Blob, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter().Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := client.NewRequest(http.MethodGet, blobURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build blob request: %w", err)
	}

	blob := new(gh.Blob)
	resp, err := client.Do(ctx, req, blob)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, "get blob")
	}
	return blob, nil
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.limiter()
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.limiter().UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (c *Client) wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		lim := c.limiter()
		resetAt := lim.ResetTime()
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{ResetAt: resetAt, Remaining: lim.Remaining(), Limit: lim.Limit()}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}
