package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/render"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 80

// ErrNotRenderable is returned when a file cannot be printed.
var ErrNotRenderable = errors.New("file cannot be displayed")

var catCmd = &cobra.Command{
	Use:   "cat <repository> <path>",
	Short: "Print one file of a repository",
	Long: `Fetch one file and print it the way the viewer shows it.

Files that are not text are refused unless --force is given, which
decodes the raw bytes as text. --raw prints the decoded text without
highlighting or rendering.`,
	Example: `  reposcope cat spf13/cobra README.md
  reposcope cat spf13/cobra command.go --raw | grep Execute`,
	Args: cobra.ExactArgs(2),
	RunE: runCat,
}

func init() {
	catCmd.Flags().BoolP("force", "f", false, "render the file as text even if it is not a text file")
	catCmd.Flags().Bool("raw", false, "print decoded text without rendering")
	catCmd.Flags().IntP("width", "w", 0, "output width (default terminal width)")
	rootCmd.AddCommand(catCmd)
}

func runCat(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	raw, _ := cmd.Flags().GetBool("raw")
	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		width = terminalWidth()
	}

	r, _, err := loadTree(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	desc, err := r.Explorer.Select(args[1])
	if err != nil {
		return err
	}
	if err := r.Session.OpenFile(desc); err != nil {
		return err
	}
	doc, err := r.Session.Await(cmd.Context(), desc.Path)
	if err != nil {
		return err
	}

	if force && doc.CanOverride() {
		if r.NewOverrider == nil {
			return fmt.Errorf("%w: render as text is not available", ErrNotRenderable)
		}
		overrider := r.NewOverrider()
		defer closeQuietly(overrider)
		if err := overrider.Override(cmd.Context(), doc.Path); err != nil {
			return err
		}
		if doc, err = r.Session.Await(cmd.Context(), desc.Path); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if raw {
		if !doc.HasText() {
			return fmt.Errorf("%w: %s is not text; use --force", ErrNotRenderable, doc.Path)
		}
		fmt.Fprint(out, doc.Content)
		return nil
	}

	kind := r.Dispatcher.RendererFor(doc)
	logger.Debug("Rendering %s as %s", doc.Path, kind)
	if kind.IsStatus() {
		return statusError(doc, kind)
	}

	registry := r.Renderers
	if registry == nil {
		registry = render.NewRegistry()
	}
	props := render.Props{
		Content: doc.Content,
		Type:    doc.Type,
		Title:   doc.Title,
		Size:    doc.Size,
		Width:   width,
		Theme:   theme(r),
	}
	text, err := registry.Render(kind, props)
	if err != nil {
		if !doc.HasText() {
			return fmt.Errorf("%w: %s: %w", ErrNotRenderable, doc.Path, err)
		}
		logger.Warn("Rendering %s failed, printing text: %v", doc.Path, err)
		text = doc.Content
	}
	fmt.Fprintln(out, text)
	return nil
}

// statusError explains why a document has nothing to print.
func statusError(doc domain.Document, kind domain.RendererKind) error {
	switch kind {
	case domain.KindTooLarge:
		return fmt.Errorf("%w: %s is %s, at or above the viewer.max_file_size limit",
			ErrNotRenderable, doc.Path, humanize.Bytes(uint64(max(doc.Size, 0))))
	case domain.KindFailed:
		return fmt.Errorf("%w: %s: %w", ErrNotRenderable, doc.Path, doc.Err)
	case domain.KindUnsupported:
		return fmt.Errorf("%w: %s is not a text file; use --force", ErrNotRenderable, doc.Path)
	default:
		return fmt.Errorf("%w: %s is %s", ErrNotRenderable, doc.Path, doc.Phase)
	}
}

func theme(r *Runtime) domain.Theme {
	if r.Settings == nil {
		return domain.ThemeDark
	}
	settings, err := r.Settings.Get()
	if err != nil {
		return domain.ThemeDark
	}
	return settings.Viewer.Theme
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
