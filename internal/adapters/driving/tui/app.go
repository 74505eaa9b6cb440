package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/components/tabs"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/views/explorer"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/views/fileview"
	"github.com/custodia-labs/reposcope/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/reposcope/internal/core/domain"
	"github.com/custodia-labs/reposcope/internal/core/ports/driving"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	explorerView *explorer.View
	fileView     *fileview.View
	settingsView *settings.View
	tabBar       *tabs.Bar
	statusBar    *status.Bar

	// focus is the pane receiving key input.
	focus messages.Pane

	showHelp     bool
	showSettings bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	theme := domain.ThemeDark
	if ports.Settings != nil {
		if current, err := ports.Settings.Get(); err == nil {
			theme = current.Viewer.Theme
		}
	}
	s := styles.NewStyles(styles.ThemeFor(theme))
	km := keymap.DefaultKeyMap()

	var overrider driving.Overrider
	if ports.NewOverrider != nil {
		overrider = ports.NewOverrider()
	}

	statusBar := status.NewBar(s, km)
	statusBar.SetRepo(ports.Repo.String())

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		help:         help.New(),
		explorerView: explorer.NewView(s, km, ports.Explorer),
		fileView:     fileview.NewView(s, km, ports.Session, ports.Dispatcher, ports.Renderers, overrider),
		settingsView: settings.NewView(s, ports.Settings),
		tabBar:       tabs.NewBar(s),
		statusBar:    statusBar,
		focus:        messages.PaneExplorer,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It loads the repository tree and starts listening for session changes.
func (a *App) Init() tea.Cmd {
	a.statusBar.SetState(status.StateLoading)
	a.statusBar.SetMessage("Loading " + a.ports.Repo.String())
	return tea.Batch(
		tea.SetWindowTitle("reposcope - "+a.ports.Repo.String()),
		a.explorerView.Load(a.ctx, a.ports.Repo),
		waitForEvent(a.ports.Session.Events()),
		a.fileView.Init(),
	)
}

// waitForEvent relays the next session event into the update loop.
func waitForEvent(events <-chan driving.SessionEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return messages.SessionEnded{}
		}
		return messages.SessionChanged{Event: ev}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.TreeLoaded:
		a.explorerView, cmd = a.explorerView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		} else {
			a.statusBar.SetRepo(a.ports.Explorer.Repo().String())
			a.statusBar.Clear()
		}
		return a, cmd

	case messages.OpenRequested:
		if err := a.ports.Session.OpenFile(msg.Desc); err != nil {
			a.setError(err)
			return a, nil
		}
		a.setFocus(messages.PaneViewer)
		a.syncSession()
		return a, nil

	case messages.SessionChanged:
		a.syncSession()
		return a, waitForEvent(a.ports.Session.Events())

	case messages.SessionEnded:
		return a, nil

	case messages.ForceRenderDone:
		a.fileView, cmd = a.fileView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err)
		}
		return a, cmd

	case messages.Copied:
		a.fileView, cmd = a.fileView.Update(msg)
		return a, cmd

	case messages.SettingsReloaded:
		if msg.Err != nil {
			a.setError(fmt.Errorf("reload settings: %w", msg.Err))
			return a, nil
		}
		if msg.Settings != nil {
			a.applyTheme(msg.Settings.Viewer.Theme)
		}
		a.statusBar.SetState(status.StateInfo)
		a.statusBar.SetMessage("Settings reloaded")
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit

	case spinner.TickMsg:
		a.fileView, cmd = a.fileView.Update(msg)
		return a, cmd
	}

	return a, nil
}

// handleKey routes a key press to the global bindings or the focused pane.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	if k == "ctrl+c" {
		return a, tea.Quit
	}

	// The fuzzy finder takes every key while it is open.
	if a.focus == messages.PaneExplorer && a.explorerView.Filtering() {
		var cmd tea.Cmd
		a.explorerView, cmd = a.explorerView.Update(msg)
		return a, cmd
	}

	if a.showSettings {
		if !a.settingsView.Editing() &&
			(keymap.Matches(k, a.keymap.Settings) || keymap.Matches(k, a.keymap.Cancel)) {
			a.showSettings = false
			return a, nil
		}
		var cmd tea.Cmd
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd
	}

	if a.showHelp {
		if keymap.Matches(k, a.keymap.Help) || keymap.Matches(k, a.keymap.Cancel) {
			a.showHelp = false
			return a, nil
		}
	}

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(k, a.keymap.Help):
		a.showHelp = !a.showHelp
		return a, nil
	case keymap.Matches(k, a.keymap.Settings):
		if a.ports.Settings == nil {
			return a, nil
		}
		a.showHelp = false
		a.showSettings = true
		return a, a.settingsView.Init()
	case keymap.Matches(k, a.keymap.Focus):
		a.setFocus(a.focus.Next())
		return a, nil
	case keymap.Matches(k, a.keymap.PrevTab):
		a.cycleTab(-1)
		return a, nil
	case keymap.Matches(k, a.keymap.NextTab):
		a.cycleTab(1)
		return a, nil
	case keymap.Matches(k, a.keymap.CloseTab):
		if len(a.ports.Session.Documents()) > 0 {
			if err := a.ports.Session.CloseTab(a.ports.Session.ActiveIndex()); err != nil {
				a.setError(err)
			}
			a.syncSession()
		}
		return a, nil
	case keymap.Matches(k, a.keymap.CloseAll):
		a.ports.Session.CloseAll()
		a.syncSession()
		return a, nil
	}

	a.statusBar.Clear()
	var cmd tea.Cmd
	if a.focus == messages.PaneExplorer {
		a.explorerView, cmd = a.explorerView.Update(msg)
	} else {
		a.fileView, cmd = a.fileView.Update(msg)
	}
	return a, cmd
}

// cycleTab moves the active tab by delta, wrapping around.
func (a *App) cycleTab(delta int) {
	n := len(a.ports.Session.Documents())
	if n == 0 {
		return
	}
	next := (a.ports.Session.ActiveIndex() + delta + n) % n
	if err := a.ports.Session.SetActive(next); err != nil {
		a.setError(err)
		return
	}
	a.syncSession()
}

// syncSession re-reads tabs and the active document.
func (a *App) syncSession() {
	a.fileView.Sync()
	a.statusBar.SetTabs(len(a.ports.Session.Documents()))
}

func (a *App) setFocus(p messages.Pane) {
	a.focus = p
	a.statusBar.SetPane(p)
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	if errors.Is(err, domain.ErrSessionClosed) {
		a.statusBar.SetMessage("Session closed")
		return
	}
	a.statusBar.SetMessage(err.Error())
}

// applyTheme swaps the palette on every component.
func (a *App) applyTheme(theme domain.Theme) {
	if a.styles.Theme().Name == theme {
		return
	}
	a.styles = styles.NewStyles(styles.ThemeFor(theme))
	a.explorerView.SetStyles(a.styles)
	a.fileView.SetStyles(a.styles)
	a.settingsView.SetStyles(a.styles)
	a.tabBar.SetStyles(a.styles)
	a.statusBar.SetStyles(a.styles)
}

// View implements tea.Model.
// It renders the explorer and viewer panes above the status bar.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	explorerWidth, viewerWidth, bodyHeight := a.layout()

	left := a.styles.Pane
	right := a.styles.Pane
	if a.focus == messages.PaneExplorer {
		left = a.styles.FocusedPane
	} else {
		right = a.styles.FocusedPane
	}

	var viewer string
	switch {
	case a.showSettings:
		viewer = a.settingsView.View()
	case a.showHelp:
		a.help.Width = viewerWidth - 2
		viewer = a.styles.Title.Render("Keys") + "\n\n" + a.help.FullHelpView(a.keymap.FullHelp())
	default:
		viewer = a.tabBar.View(a.ports.Session.Documents(), a.ports.Session.ActiveIndex()) +
			"\n" + a.fileView.View()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		left.Width(explorerWidth-2).Height(bodyHeight-2).Render(a.explorerView.View()),
		right.Width(viewerWidth-2).Height(bodyHeight-2).Render(viewer),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, a.statusBar.View())
}

// layout splits the terminal between the panes. Pane borders take one
// cell on each side.
func (a *App) layout() (explorerWidth, viewerWidth, bodyHeight int) {
	explorerWidth = min(40, max(24, a.width/3))
	viewerWidth = max(20, a.width-explorerWidth)
	bodyHeight = max(4, a.height-1)
	return explorerWidth, viewerWidth, bodyHeight
}

// NewProgram wraps the app in a Bubbletea program using the alternate screen.
func (a *App) NewProgram(opts ...tea.ProgramOption) *tea.Program {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	return tea.NewProgram(a, opts...)
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	_, err := a.NewProgram().Run()
	return err
}

// Close releases the file view's decode worker.
func (a *App) Close() error {
	return a.fileView.Close()
}

// Focus returns the pane receiving key input.
func (a *App) Focus() messages.Pane {
	return a.focus
}

// ShowingSettings reports whether the settings panel is open.
func (a *App) ShowingSettings() bool {
	return a.showSettings
}

// ShowingHelp reports whether the key help is open.
func (a *App) ShowingHelp() bool {
	return a.showHelp
}

// Styles returns the current styles.
func (a *App) Styles() *styles.Styles {
	return a.styles
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions and resizes every pane.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	explorerWidth, viewerWidth, bodyHeight := a.layout()
	a.explorerView.SetDimensions(explorerWidth-2, bodyHeight-2)
	a.tabBar.SetWidth(viewerWidth - 2)
	a.fileView.SetDimensions(viewerWidth-2, bodyHeight-3)
	a.settingsView.SetDimensions(viewerWidth-2, bodyHeight-2)
	a.statusBar.SetWidth(width)
}
