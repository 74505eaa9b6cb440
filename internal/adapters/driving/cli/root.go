// Package cli provides the reposcope command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/render"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
	"github.com/custodia-labs/reposcope/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// ErrNotConfigured is returned when a command runs before SetRuntimeFactory.
var ErrNotConfigured = errors.New("runtime not configured")

// CacheAdmin inspects and clears the blob cache.
type CacheAdmin interface {
	Stats(ctx context.Context) (entries int, bytes int64, err error)
	Clear(ctx context.Context) error
}

// Runtime holds the services commands drive. It is built lazily so that
// commands like version never touch the config directory.
type Runtime struct {
	Session    driving.SessionService
	Explorer   driving.ExplorerService
	Dispatcher driving.RendererDispatcher
	Settings   driving.SettingsService
	Loader     driving.ContentLoader

	// NewOverrider creates the overrider owned by one file view.
	NewOverrider func() driving.Overrider

	// Renderers draws documents. Nil means the built-in renderers.
	Renderers *render.Registry

	// Cache is nil when the persistent cache is disabled.
	Cache CacheAdmin

	// Watch calls onChange with re-read settings after the config file
	// changes. Optional.
	Watch func(onChange func(*domain.AppSettings, error)) (io.Closer, error)

	// Close releases everything above. Optional.
	Close func() error
}

// RuntimeOptions carries the global flags a runtime depends on.
type RuntimeOptions struct {
	ConfigDir string
}

// RuntimeFactory builds the runtime for one invocation.
type RuntimeFactory func(opts RuntimeOptions) (*Runtime, error)

var (
	runtimeFactory RuntimeFactory
	rt             *Runtime
)

// Global flags.
var (
	verbose   bool
	logFile   string
	configDir string
	logOutput io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "reposcope",
	Short: "Browse and preview files of a GitHub repository",
	Long: `reposcope opens a remote GitHub repository in the terminal.

Browse its tree, open files in tabs and preview them: source code is
highlighted, Markdown and notebooks are rendered, CSV becomes a table and
images are drawn as text. Files that cannot be shown can still be opened
as raw text.

Repositories are given as owner/name, owner/name@ref or a github.com URL.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.reposcope)")
}

// SetRuntimeFactory sets how commands obtain their services.
func SetRuntimeFactory(factory RuntimeFactory) {
	runtimeFactory = factory
	rt = nil
}

// Execute runs the root command until it returns or the process is
// interrupted, then releases the runtime.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer closeRuntime()

	return rootCmd.ExecuteContext(ctx)
}

// loadRuntime builds the runtime on first use.
func loadRuntime() (*Runtime, error) {
	if rt != nil {
		return rt, nil
	}
	if runtimeFactory == nil {
		return nil, ErrNotConfigured
	}
	r, err := runtimeFactory(RuntimeOptions{ConfigDir: configDir})
	if err != nil {
		return nil, fmt.Errorf("starting: %w", err)
	}
	rt = r
	return rt, nil
}

func closeRuntime() {
	if rt == nil {
		return
	}
	if rt.Close != nil {
		if err := rt.Close(); err != nil {
			logger.Warn("Shutdown: %v", err)
		}
	}
	rt = nil
}

func setupLogging(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if logFile == "" {
		return nil
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logger.SetOutput(f)
	logOutput = f
	return nil
}

func closeLogging() {
	if logOutput == nil {
		return
	}
	logger.SetOutput(os.Stderr)
	_ = logOutput.Close()
	logOutput = nil
}

// parseRepo parses the repository argument of a command.
func parseRepo(arg string) (domain.RepoRef, error) {
	repo, err := domain.ParseRepoRef(arg)
	if err != nil {
		return domain.RepoRef{}, fmt.Errorf("repository %q: %w", arg, err)
	}
	return repo, nil
}

// loadTree builds the runtime and loads repo into its explorer.
func loadTree(ctx context.Context, arg string) (*Runtime, domain.RepoRef, error) {
	repo, err := parseRepo(arg)
	if err != nil {
		return nil, domain.RepoRef{}, err
	}
	r, err := loadRuntime()
	if err != nil {
		return nil, domain.RepoRef{}, err
	}
	logger.Debug("Loading tree of %s", repo)
	if err := r.Explorer.Load(ctx, repo); err != nil {
		return nil, domain.RepoRef{}, describeRemoteError(repo, err)
	}
	return r, repo, nil
}

// describeRemoteError adds a hint for the errors users can act on.
func describeRemoteError(repo domain.RepoRef, err error) error {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return fmt.Errorf("%s: %w (set github.token or GITHUB_TOKEN)", repo, err)
	case errors.Is(err, domain.ErrRateLimited):
		return fmt.Errorf("%s: %w (a token raises the limit)", repo, err)
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%s: repository or ref not found: %w", repo, err)
	default:
		return fmt.Errorf("%s: %w", repo, err)
	}
}
