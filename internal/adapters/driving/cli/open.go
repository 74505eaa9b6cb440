package cli

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// openCmd represents the open command.
var openCmd = &cobra.Command{
	Use:   "open <repository>",
	Short: "Browse a repository in the interactive viewer",
	Long: `Open a repository in the interactive terminal viewer.

The left pane lists the repository tree, the right pane shows open files
in tabs.

Controls:
  ↑/k, ↓/j  - Navigate
  Enter     - Open file / toggle folder
  /         - Filter files
  Tab       - Switch pane
  [ ]       - Previous / next tab
  x, X      - Close tab / close all
  o         - Render the current file as text
  r         - Retry a failed download
  c         - Copy the file's text
  ,         - Settings
  ?         - Toggle help
  q         - Quit`,
	Example: `  reposcope open charmbracelet/bubbletea
  reposcope open golang/go@go1.22.0
  reposcope open https://github.com/spf13/cobra/tree/main`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

// runProgram runs the program; swapped in tests.
var runProgram = func(p *tea.Program) error {
	_, err := p.Run()
	return err
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("viewer crashed: %v", r)
		}
	}()

	repo, err := parseRepo(args[0])
	if err != nil {
		return err
	}
	r, err := loadRuntime()
	if err != nil {
		return err
	}

	ports := tui.NewPorts(r.Session, r.Explorer, r.Dispatcher, repo)
	ports.NewOverrider = r.NewOverrider
	ports.Settings = r.Settings
	ports.Renderers = r.Renderers

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer closeQuietly(app)
	app.WithContext(cmd.Context())

	p := app.NewProgram(tea.WithContext(cmd.Context()))

	if r.Watch != nil {
		watcher, werr := r.Watch(func(settings *domain.AppSettings, err error) {
			if err == nil && r.Loader != nil {
				r.Loader.SetMaxFileSize(settings.Viewer.MaxFileSize)
			}
			p.Send(messages.SettingsReloaded{Settings: settings, Err: err})
		})
		if werr != nil {
			logger.Warn("Config changes will not be picked up: %v", werr)
		} else {
			defer closeQuietly(watcher)
		}
	}

	if err := runProgram(p); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Debug("close: %v", err)
	}
}
