// Package chunks provides the chunk viewer for one document.
package chunks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
)

// View shows the chunks of a document. Anonymized text is shown by
// default; the original text is one key away.
type View struct {
	styles          *styles.Styles
	keys            *keymap.KeyMap
	documentService driving.DocumentService
	ctx             context.Context

	document *domain.Document
	chunks   []domain.Chunk
	original bool
	viewport viewport.Model
	width    int
	height   int
	err      error
	loading  bool
}

// NewView creates a new chunk view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:          s,
		keys:            keymap.DefaultKeyMap(),
		documentService: documentService,
		ctx:             context.Background(),
		viewport:        viewport.New(80, 18),
		width:           80,
		height:          24,
	}
}

// WithKeyMap replaces the default bindings.
func (v *View) WithKeyMap(km *keymap.KeyMap) *View {
	v.keys = km
	return v
}

// WithContext sets the context used for loading.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocument sets the document and loads its chunks.
func (v *View) SetDocument(doc *domain.Document) tea.Cmd {
	v.document = doc
	v.chunks = nil
	v.original = false
	v.err = nil
	v.loading = true
	v.viewport.SetContent("")
	v.viewport.GotoTop()
	return v.loadChunks()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) loadChunks() tea.Cmd {
	doc := v.document
	return func() tea.Msg {
		if doc == nil || v.documentService == nil {
			return messages.ChunksLoaded{Err: fmt.Errorf("document service not available")}
		}
		chunks, err := v.documentService.GetChunks(v.ctx, doc.ID)
		return messages.ChunksLoaded{DocumentID: doc.ID, Chunks: chunks, Err: err}
	}
}

// Update handles messages for the chunk view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ChunksLoaded:
		if v.document == nil || msg.DocumentID != v.document.ID {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.chunks = msg.Chunks
		v.render()
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewDocuments}
			}
		case key.Matches(msg, v.keys.Original):
			v.original = !v.original
			v.render()
			return v, nil
		case key.Matches(msg, v.keys.Top):
			v.viewport.GotoTop()
			return v, nil
		case key.Matches(msg, v.keys.Bottom):
			v.viewport.GotoBottom()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// render rebuilds the viewport content from the loaded chunks.
func (v *View) render() {
	wrap := lipgloss.NewStyle().Width(max(v.width-4, 20))

	var b strings.Builder
	for i, c := range v.chunks {
		if i > 0 {
			b.WriteString("\n")
		}
		header := fmt.Sprintf("#%d", c.ChunkIndex)
		if c.PageNumber > 0 {
			header += fmt.Sprintf("  p.%d", c.PageNumber)
		}
		if c.SectionTitle != "" {
			header += "  " + c.SectionTitle
		}
		b.WriteString(v.styles.Subtitle.Render(header))
		b.WriteString("\n")

		text := c.AnonymizedContent
		if v.original || text == "" {
			text = c.Content
		}
		text = wrap.Render(text)
		if !v.original {
			text = v.styles.Highlight(text)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	v.viewport.SetContent(b.String())
}

// View renders the chunk view.
func (v *View) View() string {
	var b strings.Builder

	title := "Chunks"
	if v.document != nil {
		title = v.document.OriginalFilename
	}
	mode := "anonymized"
	if v.original {
		mode = "original"
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %d chunks · %s", len(v.chunks), mode)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading chunks..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.chunks) == 0:
		b.WriteString(v.styles.Muted.Render("(No chunks)"))
	default:
		b.WriteString(v.viewport.View())
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%3.f%%]", v.viewport.ScrollPercent()*100)))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [o] original/anonymized  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = max(width-2, 20)
	// title, separator, scroll indicator and help
	v.viewport.Height = max(height-7, 1)
	v.render()
}

// Document returns the current document.
func (v *View) Document() *domain.Document {
	return v.document
}

// Chunks returns the loaded chunks.
func (v *View) Chunks() []domain.Chunk {
	return v.chunks
}

// ShowingOriginal reports whether original text is displayed.
func (v *View) ShowingOriginal() bool {
	return v.original
}

// Content returns the rendered viewport content.
func (v *View) Content() string {
	return v.viewport.View()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
