package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// Ensure Connector implements the driven ports.
var (
	_ driven.TreeProvider = (*Connector)(nil)
	_ driven.FileFetcher  = (*Connector)(nil)
)

// Connector lists GitHub repository trees and fetches their blobs.
type Connector struct {
	client *Client
	mu     sync.RWMutex
	closed bool
}

// New creates a new GitHub connector. An empty apiURL targets api.github.com.
func New(tokenProvider driven.TokenProvider, apiURL string) *Connector {
	return NewWithClient(NewClient(tokenProvider, apiURL))
}

// NewWithClient creates a connector around an existing client.
func NewWithClient(client *Client) *Connector {
	return &Connector{client: client}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "github"
}

// Client returns the underlying API client.
func (c *Connector) Client() *Client {
	return c.client
}

// ListTree returns the full recursive listing of repo. An empty ref
// resolves to the repository's default branch.
func (c *Connector) ListTree(ctx context.Context, repo domain.RepoRef) (*domain.RepoTree, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}

	ref := repo.Ref
	if ref == "" {
		r, err := c.client.GetRepository(ctx, repo.Owner, repo.Name)
		if err != nil {
			if IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s: %w", ErrRepoNotFound, repo.FullName(), err)
			}
			return nil, err
		}
		ref = r.GetDefaultBranch()
		logger.Debug("Resolved default branch of %s to %s", repo.FullName(), ref)
	}

	tree, err := c.client.GetTree(ctx, repo.Owner, repo.Name, ref)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s@%s: %w", ErrRepoNotFound, repo.FullName(), ref, err)
		}
		return nil, err
	}

	resolved := repo
	resolved.Ref = ref
	return convertTree(resolved, tree), nil
}

// GetFile fetches the blob at url and returns its base64 content.
func (c *Connector) GetFile(ctx context.Context, url string) (string, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}

	blob, err := c.client.GetBlobByURL(ctx, url)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(blob.GetEncoding()) {
	case "", "base64":
		return blob.GetContent(), nil
	case "utf-8", "utf8":
		return base64.StdEncoding.EncodeToString([]byte(blob.GetContent())), nil
	default:
		return "", fmt.Errorf("%w: unsupported blob encoding %q", domain.ErrFetchFailed, blob.GetEncoding())
	}
}

// Close marks the connector closed. Later calls fail with ErrConnectorClosed.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Connector) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnectorClosed
	}
	return nil
}

// convertTree maps a git tree onto the domain listing. Submodule entries
// (type "commit") have no blob and are skipped.
func convertTree(repo domain.RepoRef, tree *gh.Tree) *domain.RepoTree {
	out := &domain.RepoTree{
		Repo:      repo,
		SHA:       tree.GetSHA(),
		Truncated: tree.GetTruncated(),
		Entries:   make([]domain.TreeEntry, 0, len(tree.Entries)),
	}

	for _, e := range tree.Entries {
		var typ domain.EntryType
		switch e.GetType() {
		case "blob":
			typ = domain.EntryFile
		case "tree":
			typ = domain.EntryFolder
		default:
			continue
		}
		out.Entries = append(out.Entries, domain.TreeEntry{
			Path: e.GetPath(),
			Type: typ,
			URL:  e.GetURL(),
			Size: int64(e.GetSize()),
			SHA:  e.GetSHA(),
		})
	}
	return out
}
