package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Document: &MockDocumentService{
			Documents: []domain.Document{
				{ID: "doc-1", ProjectID: "ao-2024", OriginalFilename: "rc.pdf", Status: domain.StatusCompleted},
			},
			Document: &domain.Document{ID: "doc-1", ProjectID: "ao-2024", OriginalFilename: "rc.pdf"},
			Chunks: []domain.Chunk{
				{DocumentID: "doc-1", Content: "Acme", AnonymizedContent: "[ENTREPRISE_1]"},
			},
		},
		Ingestion: &MockIngestionService{},
		Search:    &MockSearchService{},
	}
}

func newProjectApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(newTestPorts(), Start{ProjectID: "ao-2024"})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// drive runs a command and feeds its message back into the app, one level deep.
func drive(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		app.Update(msg)
	}
}

func TestNewApp(t *testing.T) {
	t.Run("invalid ports", func(t *testing.T) {
		app, err := NewApp(&Ports{}, Start{ProjectID: "p"})
		assert.ErrorIs(t, err, ErrMissingDocumentService)
		assert.Nil(t, app)
	})

	t.Run("missing start", func(t *testing.T) {
		app, err := NewApp(newTestPorts(), Start{})
		assert.ErrorIs(t, err, ErrMissingStart)
		assert.Nil(t, app)
	})

	t.Run("project opens the menu", func(t *testing.T) {
		app, err := NewApp(newTestPorts(), Start{ProjectID: "ao-2024"})
		require.NoError(t, err)
		assert.Equal(t, messages.ViewMenu, app.CurrentView())
		assert.Equal(t, "ao-2024", app.ProjectID())
	})

	t.Run("document opens progress", func(t *testing.T) {
		app, err := NewApp(newTestPorts(), Start{DocumentID: "doc-1"})
		require.NoError(t, err)
		assert.Equal(t, messages.ViewProgress, app.CurrentView())
	})
}

func TestApp_NotReady(t *testing.T) {
	app, err := NewApp(newTestPorts(), Start{ProjectID: "p"})
	require.NoError(t, err)

	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, app.Ready())
}

func TestApp_DocumentsToChunks(t *testing.T) {
	app := newProjectApp(t)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewDocuments})
	assert.Equal(t, messages.ViewDocuments, app.CurrentView())
	drive(app, cmd)
	assert.Contains(t, app.View(), "rc.pdf")

	_, cmd = app.Update(messages.DocumentSelected{Document: domain.Document{ID: "doc-1", OriginalFilename: "rc.pdf"}})
	assert.Equal(t, messages.ViewChunks, app.CurrentView())
	drive(app, cmd)
	assert.Contains(t, app.View(), "[ENTREPRISE_1]")
}

func TestApp_ProgressRequested(t *testing.T) {
	app := newProjectApp(t)
	p := domain.NewProgress("doc-1", domain.StepIndexing)
	app.ports.Ingestion.(*MockIngestionService).Current = &p

	_, cmd := app.Update(messages.ProgressRequested{DocumentID: "doc-1"})

	assert.Equal(t, messages.ViewProgress, app.CurrentView())
	require.NotNil(t, cmd)
	app.Update(messages.ProgressUpdated{DocumentID: "doc-1", Progress: &p})
	assert.Contains(t, app.View(), "Indexation vectorielle")
}

func TestApp_StartedOnDocumentResolvesProject(t *testing.T) {
	app, err := NewApp(newTestPorts(), Start{DocumentID: "doc-1"})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	app.Init()

	app.Update(app.resolveDocument("doc-1")())

	assert.Equal(t, "ao-2024", app.ProjectID())
	assert.Contains(t, app.View(), "rc.pdf")
}

func TestApp_StartedOnUnknownDocumentQuitsOnBack(t *testing.T) {
	ports := newTestPorts()
	ports.Document.(*MockDocumentService).Document = nil
	app, err := NewApp(ports, Start{DocumentID: "missing"})
	require.NoError(t, err)

	app.Update(app.resolveDocument("missing")())
	assert.ErrorIs(t, app.Err(), domain.ErrNotFound)

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewDocuments})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_SearchView(t *testing.T) {
	app := newProjectApp(t)

	app.Update(messages.ViewChanged{View: messages.ViewSearch})
	assert.Equal(t, messages.ViewSearch, app.CurrentView())

	app.Update(messages.SearchCompleted{Results: []domain.SearchResult{{DocumentID: "doc-1", DocumentName: "rc.pdf"}}})
	assert.Contains(t, app.View(), "Results (1)")
}

func TestApp_SearchUnavailableStaysOnMenu(t *testing.T) {
	ports := newTestPorts()
	ports.Search = nil
	app, err := NewApp(ports, Start{ProjectID: "ao-2024"})
	require.NoError(t, err)

	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_HelpAndBack(t *testing.T) {
	app := newProjectApp(t)

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	view := app.View()
	assert.Contains(t, view, "Keybindings")
	assert.Contains(t, view, "original/anonymized")
	assert.Contains(t, view, "new search")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newProjectApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_WithContext(t *testing.T) {
	app := newProjectApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.Same(t, app, app.WithContext(ctx))
}
