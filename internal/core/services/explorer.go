package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driven"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// Ensure ExplorerService implements the interface.
var _ driving.ExplorerService = (*ExplorerService)(nil)

// ExplorerService browses the file tree of one repository at a time.
type ExplorerService struct {
	trees driven.TreeProvider

	mu        sync.RWMutex
	repo      domain.RepoRef
	roots     []*domain.TreeNode
	nodes     map[string]*domain.TreeNode
	expanded  map[string]bool
	truncated bool
}

// NewExplorerService creates an explorer backed by trees.
func NewExplorerService(trees driven.TreeProvider) *ExplorerService {
	return &ExplorerService{
		trees:    trees,
		nodes:    make(map[string]*domain.TreeNode),
		expanded: make(map[string]bool),
	}
}

// Load fetches and indexes the tree for repo.
func (s *ExplorerService) Load(ctx context.Context, repo domain.RepoRef) error {
	logger.Section("Explorer")
	logger.Info("Listing tree for %s", repo)

	tree, err := s.trees.ListTree(ctx, repo)
	if err != nil {
		return fmt.Errorf("list tree for %s: %w", repo, err)
	}
	if tree.Truncated {
		logger.Warn("Tree for %s is truncated; some files are not listed", repo)
	}

	roots := domain.BuildTree(tree.Entries)
	nodes := make(map[string]*domain.TreeNode, len(tree.Entries))
	var index func([]*domain.TreeNode)
	index = func(ns []*domain.TreeNode) {
		for _, n := range ns {
			nodes[n.Path] = n
			index(n.Children)
		}
	}
	index(roots)

	if tree.Repo.IsZero() {
		tree.Repo = repo
	}

	s.mu.Lock()
	s.repo = tree.Repo
	s.roots = roots
	s.nodes = nodes
	s.expanded = make(map[string]bool)
	s.truncated = tree.Truncated
	s.mu.Unlock()

	logger.Info("Indexed %d entries", len(nodes))
	return nil
}

// Repo returns the loaded repository.
func (s *ExplorerService) Repo() domain.RepoRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo
}

// Truncated reports whether the listing was partial.
func (s *ExplorerService) Truncated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.truncated
}

// Rows returns the visible rows in display order.
func (s *ExplorerService) Rows() []driving.TreeRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []driving.TreeRow
	var walk func([]*domain.TreeNode, int)
	walk = func(ns []*domain.TreeNode, level int) {
		for _, n := range ns {
			open := n.IsFolder() && s.expanded[n.Path]
			rows = append(rows, driving.TreeRow{Node: n, Level: level, Expanded: open})
			if open {
				walk(n.Children, level+1)
			}
		}
	}
	walk(s.roots, 0)
	return rows
}

// Toggle expands or collapses the folder at path.
func (s *ExplorerService) Toggle(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[path]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if !n.IsFolder() {
		return fmt.Errorf("%w: %s is not a folder", domain.ErrInvalidInput, path)
	}
	s.expanded[path] = !s.expanded[path]
	return nil
}

// Select resolves a file path to its descriptor.
func (s *ExplorerService) Select(path string) (domain.FileDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[path]
	if !ok {
		return domain.FileDescriptor{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if n.IsFolder() {
		return domain.FileDescriptor{}, fmt.Errorf("%w: %s", domain.ErrIsDirectory, path)
	}
	return n.Descriptor(), nil
}

// Match returns files whose paths match a doublestar pattern, e.g. "**/*.go".
func (s *ExplorerService) Match(pattern string) ([]domain.FileDescriptor, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", domain.ErrInvalidInput, pattern)
	}

	var matches []domain.FileDescriptor
	for _, f := range s.Files() {
		ok, err := doublestar.Match(pattern, f.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if ok {
			matches = append(matches, f)
		}
	}
	return matches, nil
}

// Files returns every file in path order.
func (s *ExplorerService) Files() []domain.FileDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]domain.FileDescriptor, 0, len(s.nodes))
	for _, n := range s.nodes {
		if !n.IsFolder() {
			files = append(files, n.Descriptor())
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}
