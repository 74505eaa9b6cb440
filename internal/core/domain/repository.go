package domain

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// RepoRef identifies a repository and an optional ref (branch, tag or SHA).
// An empty Ref means the repository's default branch.
type RepoRef struct {
	Owner string
	Name  string
	Ref   string
}

// FullName returns "owner/name".
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// String returns "owner/name" or "owner/name@ref".
func (r RepoRef) String() string {
	if r.Ref == "" {
		return r.FullName()
	}
	return r.FullName() + "@" + r.Ref
}

// IsZero reports whether the reference is unset.
func (r RepoRef) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

// ParseRepoRef parses "owner/repo", "owner/repo@ref" or a web URL such as
// "https://github.com/owner/repo/tree/main".
func ParseRepoRef(s string) (RepoRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RepoRef{}, fmt.Errorf("%w: empty repository", ErrInvalidInput)
	}

	if strings.Contains(s, "://") {
		return parseRepoURL(s)
	}

	var ref RepoRef
	if at := strings.LastIndexByte(s, '@'); at >= 0 {
		ref.Ref = s[at+1:]
		s = s[:at]
	}

	parts := strings.Split(strings.Trim(s, "/"), "/")
	if len(parts) != 2 {
		return RepoRef{}, fmt.Errorf("%w: repository must be owner/name, got %q", ErrInvalidInput, s)
	}
	ref.Owner = parts[0]
	ref.Name = strings.TrimSuffix(parts[1], ".git")

	if err := ref.validate(); err != nil {
		return RepoRef{}, err
	}
	return ref, nil
}

func parseRepoURL(s string) (RepoRef, error) {
	u, err := url.Parse(s)
	if err != nil {
		return RepoRef{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return RepoRef{}, fmt.Errorf("%w: no repository in %q", ErrInvalidInput, s)
	}

	ref := RepoRef{
		Owner: parts[0],
		Name:  strings.TrimSuffix(parts[1], ".git"),
	}
	if len(parts) > 3 && (parts[2] == "tree" || parts[2] == "blob") {
		ref.Ref = strings.Join(parts[3:], "/")
	}

	if err := ref.validate(); err != nil {
		return RepoRef{}, err
	}
	return ref, nil
}

func (r RepoRef) validate() error {
	if r.Owner == "" || r.Name == "" {
		return fmt.Errorf("%w: repository must be owner/name", ErrInvalidInput)
	}
	if strings.ContainsAny(r.Owner+r.Name, " \t\n") {
		return fmt.Errorf("%w: repository name contains whitespace", ErrInvalidInput)
	}
	return nil
}

// EntryType distinguishes files from folders in a repository tree.
type EntryType string

// Entry types, named after the git object kinds.
const (
	EntryFile   EntryType = "blob"
	EntryFolder EntryType = "tree"
)

// TreeEntry is one flat entry of a repository tree listing.
type TreeEntry struct {
	Path string
	Type EntryType
	URL  string
	Size int64
	SHA  string
}

// RepoTree is the full listing of a repository at one commit.
type RepoTree struct {
	Repo      RepoRef
	SHA       string
	Entries   []TreeEntry
	Truncated bool
}

// TreeNode is one node of the hierarchical tree built from a listing.
type TreeNode struct {
	Name     string
	Path     string
	Type     EntryType
	URL      string
	Size     int64
	Children []*TreeNode
}

// IsFolder reports whether the node has children.
func (n *TreeNode) IsFolder() bool {
	return n.Type == EntryFolder
}

// Descriptor returns the file descriptor for a file node.
func (n *TreeNode) Descriptor() FileDescriptor {
	return FileDescriptor{Path: n.Path, Name: n.Name, URL: n.URL, Size: n.Size}
}

// BuildTree turns a flat listing into sorted root nodes. Folders missing
// from the listing are created from their children's paths.
func BuildTree(entries []TreeEntry) []*TreeNode {
	root := &TreeNode{Type: EntryFolder}
	folders := map[string]*TreeNode{"": root}

	var folderFor func(p string) *TreeNode
	folderFor = func(p string) *TreeNode {
		if n, ok := folders[p]; ok {
			return n
		}
		parent := folderFor(ParentPath(p))
		n := &TreeNode{Name: BaseName(p), Path: p, Type: EntryFolder}
		parent.Children = append(parent.Children, n)
		folders[p] = n
		return n
	}

	for _, e := range entries {
		p := strings.Trim(e.Path, "/")
		if p == "" {
			continue
		}
		if e.Type == EntryFolder {
			n := folderFor(p)
			n.URL = e.URL
			continue
		}
		parent := folderFor(ParentPath(p))
		parent.Children = append(parent.Children, &TreeNode{
			Name: BaseName(p),
			Path: p,
			Type: EntryFile,
			URL:  e.URL,
			Size: e.Size,
		})
	}

	sortNodes(root.Children)
	return root.Children
}

// sortNodes orders folders before files, then by name.
func sortNodes(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].IsFolder() != nodes[j].IsFolder() {
			return nodes[i].IsFolder()
		}
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})
	for _, n := range nodes {
		if n.IsFolder() {
			sortNodes(n.Children)
		}
	}
}
