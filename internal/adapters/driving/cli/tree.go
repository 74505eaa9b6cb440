package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/reposcope/internal/core/domain"
)

var treeCmd = &cobra.Command{
	Use:   "tree <repository>",
	Short: "Print a repository's file tree",
	Long: `Print the files of a repository.

Use --pattern to keep only files matching a glob; ** matches across
directories. --flat prints one path per line and --json prints the
files with their sizes.`,
	Example: `  reposcope tree spf13/cobra
  reposcope tree spf13/cobra --pattern '**/*_test.go' --flat`,
	Args: cobra.ExactArgs(1),
	RunE: runTree,
}

func init() {
	treeCmd.Flags().StringP("pattern", "p", "", "only list files matching this glob")
	treeCmd.Flags().Bool("flat", false, "print one path per line")
	treeCmd.Flags().Bool("json", false, "print JSON")
	rootCmd.AddCommand(treeCmd)
}

type treeFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

func runTree(cmd *cobra.Command, args []string) error {
	pattern, _ := cmd.Flags().GetString("pattern")
	flat, _ := cmd.Flags().GetBool("flat")
	asJSON, _ := cmd.Flags().GetBool("json")

	r, repo, err := loadTree(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	files := r.Explorer.Files()
	if pattern != "" {
		if files, err = r.Explorer.Match(pattern); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case asJSON:
		list := make([]treeFile, len(files))
		for i, f := range files {
			list[i] = treeFile{Path: f.Path, Size: f.Size}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			return fmt.Errorf("encoding files: %w", err)
		}
	case flat:
		for _, f := range files {
			fmt.Fprintln(out, f.Path)
		}
	default:
		fmt.Fprintln(out, renderTree(repo, files))
		fmt.Fprintf(out, "\n%d files\n", len(files))
	}

	if r.Explorer.Truncated() {
		cmd.PrintErrln("Warning: the repository is too large; the listing is incomplete.")
	}
	return nil
}

// renderTree draws files as a tree rooted at the repository name.
func renderTree(repo domain.RepoRef, files []domain.FileDescriptor) string {
	entries := make([]domain.TreeEntry, len(files))
	for i, f := range files {
		entries[i] = domain.TreeEntry{Path: f.Path, Type: domain.EntryFile, URL: f.URL, Size: f.Size}
	}

	root := tree.Root(repo.String())
	for _, n := range domain.BuildTree(entries) {
		root.Child(treeNode(n))
	}
	return root.String()
}

func treeNode(n *domain.TreeNode) any {
	if !n.IsFolder() {
		return fmt.Sprintf("%s (%s)", n.Name, humanize.Bytes(uint64(max(n.Size, 0))))
	}
	t := tree.Root(n.Name + "/")
	for _, c := range n.Children {
		t.Child(treeNode(c))
	}
	return t
}
