// Package documents lists the files ingested into a project.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
)

var errNoDocumentService = errors.New("document service not available")

type mode int

const (
	modeList mode = iota
	modeActions
	modeConfirm
)

// fixed columns: category, status, chunks, plus cell padding
const fixedColumnsWidth = 12 + 12 + 6 + 8

type action struct {
	label string
	run   func(v *View, doc domain.Document) tea.Cmd
}

var actions = []action{
	{"Show chunks", func(_ *View, doc domain.Document) tea.Cmd {
		return emit(messages.DocumentSelected{Document: doc})
	}},
	{"Follow ingestion", func(_ *View, doc domain.Document) tea.Cmd {
		return emit(messages.ProgressRequested{DocumentID: doc.ID})
	}},
	{"Delete", func(v *View, _ domain.Document) tea.Cmd {
		v.mode = modeConfirm
		return nil
	}},
	{"Cancel", func(*View, domain.Document) tea.Cmd { return nil }},
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View shows one project's documents in a table. Enter opens a small action
// menu for the highlighted row; deleting asks for confirmation.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	service driving.DocumentService
	ctx     context.Context

	table table.Model

	projectID string
	documents []domain.Document
	mode      mode
	action    int
	loading   bool
	err       error
}

func NewView(s *styles.Styles, service driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ts := table.DefaultStyles()
	ts.Header = s.Muted.Padding(0, 1).Bold(true)
	ts.Selected = s.Selected

	v := &View{
		styles:  s,
		service: service,
		ctx:     context.Background(),
		table:   table.New(table.WithFocused(true), table.WithStyles(ts)),
	}
	v.WithKeyMap(keymap.DefaultKeyMap())
	v.SetDimensions(80, 24)
	return v
}

// WithKeyMap replaces the default bindings. Table navigation follows the
// Up, Down, Top and Bottom bindings.
func (v *View) WithKeyMap(km *keymap.KeyMap) *View {
	v.keys = km
	tk := table.DefaultKeyMap()
	tk.LineUp = km.Up
	tk.LineDown = km.Down
	tk.GotoTop = km.Top
	tk.GotoBottom = km.Bottom
	v.table.KeyMap = tk
	return v
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetProject switches to projectID and loads its documents.
func (v *View) SetProject(projectID string) tea.Cmd {
	v.projectID = projectID
	v.documents = nil
	v.table.SetRows(nil)
	v.table.SetCursor(0)
	v.mode = modeList
	v.err = nil
	return v.Reload()
}

// Reload fetches the document list again.
func (v *View) Reload() tea.Cmd {
	v.loading = true
	projectID, svc, ctx := v.projectID, v.service, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{ProjectID: projectID, Err: errNoDocumentService}
		}
		docs, err := svc.List(ctx, projectID)
		return messages.DocumentsLoaded{ProjectID: projectID, Documents: docs, Err: err}
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch v.mode {
		case modeConfirm:
			return v, v.confirm(msg)
		case modeActions:
			return v, v.chooseAction(msg)
		default:
			return v.browse(msg)
		}

	case messages.DocumentsLoaded:
		if msg.ProjectID != v.projectID {
			break
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.setDocuments(msg.Documents)
		}

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			break
		}
		return v, v.Reload()

	case messages.ErrorOccurred:
		v.err = msg.Err
	}
	return v, nil
}

func (v *View) browse(msg tea.KeyMsg) (*View, tea.Cmd) {
	doc := v.SelectedDocument()
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, emit(messages.ViewChanged{View: messages.ViewMenu})
	case key.Matches(msg, v.keys.Refresh):
		return v, v.Reload()
	case key.Matches(msg, v.keys.Submit):
		if doc != nil {
			v.mode = modeActions
			v.action = 0
		}
		return v, nil
	case key.Matches(msg, v.keys.Progress):
		if doc != nil {
			return v, emit(messages.ProgressRequested{DocumentID: doc.ID})
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *View) chooseAction(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.action = max(v.action-1, 0)
	case key.Matches(msg, v.keys.Down):
		v.action = min(v.action+1, len(actions)-1)
	case key.Matches(msg, v.keys.Back):
		v.mode = modeList
	case key.Matches(msg, v.keys.Submit):
		v.mode = modeList
		if doc := v.SelectedDocument(); doc != nil {
			return actions[v.action].run(v, *doc)
		}
	}
	return nil
}

// confirm deletes the highlighted document on the Confirm key. Any other key
// cancels.
func (v *View) confirm(msg tea.KeyMsg) tea.Cmd {
	v.mode = modeList
	doc := v.SelectedDocument()
	if doc == nil || !key.Matches(msg, v.keys.Confirm) {
		return nil
	}

	id, svc, ctx := doc.ID, v.service, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentDeleted{DocumentID: id, Err: errNoDocumentService}
		}
		return messages.DocumentDeleted{DocumentID: id, Err: svc.Delete(ctx, id)}
	}
}

func (v *View) setDocuments(docs []domain.Document) {
	v.documents = docs
	rows := make([]table.Row, len(docs))
	for i, d := range docs {
		rows[i] = table.Row{
			d.OriginalFilename,
			d.Category.String(),
			styles.StatusIcon(d.Status) + " " + d.Status.String(),
			strconv.Itoa(d.ChunkCount),
		}
	}
	cursor := v.table.Cursor()
	v.table.SetRows(rows)
	v.table.SetCursor(min(max(cursor, 0), max(len(rows)-1, 0)))
}

func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents - %s (%d)", v.projectID, len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents in this project. Use `rfpvault ingest` to add some."))
	case v.mode == modeActions:
		b.WriteString(v.viewActions())
		return b.String()
	default:
		b.WriteString(v.table.View())
		if doc := v.SelectedDocument(); doc != nil && doc.Error != "" {
			b.WriteString("\n" + v.styles.Error.Render("  "+doc.Error))
		}
	}

	b.WriteString("\n\n")
	if doc := v.SelectedDocument(); v.mode == modeConfirm && doc != nil {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete %s and its chunks? [y/N]", doc.OriginalFilename)))
		return b.String()
	}
	b.WriteString(v.hints())
	return b.String()
}

func (v *View) viewActions() string {
	var b strings.Builder
	if doc := v.SelectedDocument(); doc != nil {
		b.WriteString(v.styles.Subtitle.Render("Actions for: "+doc.OriginalFilename) + "\n\n")
	}
	for i, a := range actions {
		if i == v.action {
			b.WriteString(v.styles.Selected.Render("> "+a.label) + "\n")
			continue
		}
		b.WriteString(v.styles.Normal.Render("  "+a.label) + "\n")
	}
	b.WriteString("\n" + v.styles.Help.Render("[↑/↓] navigate  [enter] select  [esc] cancel"))
	return b.String()
}

func (v *View) hints() string {
	bindings := v.keys.Hints(keymap.ScreenDocuments)
	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		parts = append(parts, "["+k.Help().Key+"] "+k.Help().Desc)
	}
	return v.styles.Help.Render(strings.Join(parts, "  "))
}

// SetDimensions sizes the table. The file column takes what the fixed
// columns leave.
func (v *View) SetDimensions(width, height int) {
	nameWidth := max(width-fixedColumnsWidth, 12)
	v.table.SetColumns([]table.Column{
		{Title: "FILE", Width: nameWidth},
		{Title: "CATEGORY", Width: 12},
		{Title: "STATUS", Width: 12},
		{Title: "CHUNKS", Width: 6},
	})
	v.table.SetWidth(width)
	// title, blank line, error line and footer
	v.table.SetHeight(max(height-6, 3))
	if len(v.documents) > 0 {
		// re-render rows against the new column widths
		v.setDocuments(v.documents)
	}
}

// ProjectID returns the project being listed.
func (v *View) ProjectID() string { return v.projectID }

// Documents returns the loaded documents.
func (v *View) Documents() []domain.Document { return v.documents }

// SelectedIndex returns the highlighted row.
func (v *View) SelectedIndex() int { return v.table.Cursor() }

// SelectedDocument returns the highlighted document, nil when the list is
// empty.
func (v *View) SelectedDocument() *domain.Document {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.documents) {
		return nil
	}
	return &v.documents[i]
}

// IsShowingMenu reports whether the action menu is open.
func (v *View) IsShowingMenu() bool { return v.mode == modeActions }

// IsConfirmingDelete reports whether the delete prompt is shown.
func (v *View) IsConfirmingDelete() bool { return v.mode == modeConfirm }

func (v *View) Err() error { return v.err }
