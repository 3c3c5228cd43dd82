package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/views/chunks"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/views/progress"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// Start selects what the app opens on. With a document the app follows
// its ingestion; otherwise it opens the project menu.
type Start struct {
	ProjectID  string
	DocumentID string
}

// documentResolved carries the document the app was started on.
type documentResolved struct {
	document *domain.Document
	err      error
}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model
	start  Start

	projectID string

	menuView      *menu.View
	documentsView *documents.View
	chunksView    *chunks.View
	progressView  *progress.View
	searchView    *search.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports, start Start) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if start.ProjectID == "" && start.DocumentID == "" {
		return nil, ErrMissingStart
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = s.Subtitle
	h.Styles.FullDesc = s.Normal
	h.Styles.FullSeparator = s.Muted

	a := &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keys:          km,
		help:          h,
		start:         start,
		menuView:      menu.NewView(s, ports.Search != nil).WithKeyMap(km),
		documentsView: documents.NewView(s, ports.Document).WithKeyMap(km),
		chunksView:    chunks.NewView(s, ports.Document).WithKeyMap(km),
		progressView:  progress.NewView(s, ports.Ingestion).WithKeyMap(km),
		searchView:    search.NewView(s, km, ports.Search),
		currentView:   messages.ViewMenu,
	}
	a.setProject(start.ProjectID)
	if start.DocumentID != "" {
		a.currentView = messages.ViewProgress
	}
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.documentsView.WithContext(ctx)
	a.chunksView.WithContext(ctx)
	a.progressView.WithContext(ctx)
	a.searchView.WithContext(ctx)
	return a
}

func (a *App) setProject(projectID string) {
	a.projectID = projectID
	a.menuView.SetProject(projectID)
	a.searchView.SetProject(projectID)
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen, tea.SetWindowTitle("rfpvault")}

	if a.start.DocumentID != "" {
		cmds = append(cmds, a.progressView.Start(a.start.DocumentID, ""), a.resolveDocument(a.start.DocumentID))
	}
	return tea.Batch(cmds...)
}

func (a *App) resolveDocument(documentID string) tea.Cmd {
	return func() tea.Msg {
		doc, err := a.ports.Document.Get(a.ctx, documentID)
		return documentResolved{document: doc, err: err}
	}
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if key.Matches(msg, a.keys.Back, a.keys.Help) {
				return a, a.changeView(messages.ViewMenu)
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		return a, a.changeView(msg.View)

	case documentResolved:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		if a.projectID == "" {
			a.setProject(msg.document.ProjectID)
		}
		// restart with the filename; the pending poll for the same id is harmless
		if a.progressView.DocumentID() == msg.document.ID && a.progressView.Current() == nil {
			return a, a.progressView.Start(msg.document.ID, msg.document.OriginalFilename)
		}
		return a, nil

	case messages.DocumentsLoaded, messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentSelected:
		a.currentView = messages.ViewChunks
		doc := msg.Document
		return a, a.chunksView.SetDocument(&doc)

	case messages.ChunksLoaded:
		a.chunksView, cmd = a.chunksView.Update(msg)
		return a, cmd

	case messages.ProgressRequested:
		a.currentView = messages.ViewProgress
		name := ""
		if doc := a.documentsView.SelectedDocument(); doc != nil && doc.ID == msg.DocumentID {
			name = doc.OriginalFilename
		}
		return a, a.progressView.Start(msg.DocumentID, name)

	case messages.ProgressTick, messages.ProgressUpdated:
		a.progressView, cmd = a.progressView.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		// each spinner drops ticks carrying another spinner's id
		var searchCmd tea.Cmd
		a.progressView, cmd = a.progressView.Update(msg)
		a.searchView, searchCmd = a.searchView.Update(msg)
		return a, tea.Batch(cmd, searchCmd)

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)
	}

	return a, a.forward(msg)
}

// forward passes a message to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewChunks:
		a.chunksView, cmd = a.chunksView.Update(msg)
	case messages.ViewProgress:
		a.progressView, cmd = a.progressView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// changeView switches the active view. Project views quit when the app was
// started on a document whose project is unknown.
func (a *App) changeView(view messages.ViewType) tea.Cmd {
	if a.projectID == "" && view != messages.ViewProgress && view != messages.ViewChunks {
		return tea.Quit
	}

	a.currentView = view
	switch view {
	case messages.ViewDocuments:
		if a.documentsView.ProjectID() != a.projectID {
			return a.documentsView.SetProject(a.projectID)
		}
		return a.documentsView.Reload()
	case messages.ViewSearch:
		if a.ports.Search == nil {
			a.currentView = messages.ViewMenu
			return nil
		}
		a.searchView.Reset()
		return a.searchView.Init()
	case messages.ViewMenu, messages.ViewHelp, messages.ViewChunks, messages.ViewProgress:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewChunks:
		return a.chunksView.View()
	case messages.ViewProgress:
		return a.progressView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

// viewHelp renders every binding, one column per concern.
func (a *App) viewHelp() string {
	a.help.Width = a.width
	return a.styles.Title.Render("Keybindings") + "\n\n" +
		a.help.View(a.keys) + "\n\n" +
		a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// ProjectID returns the project the app is scoped to.
func (a *App) ProjectID() string {
	return a.projectID
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.chunksView.SetDimensions(width, height)
	a.progressView.SetDimensions(width, height)
}
