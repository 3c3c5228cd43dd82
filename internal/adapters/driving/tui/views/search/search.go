// Package search is the question screen: a query box over ranked chunks of
// the project's documents.
package search

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
)

// ErrNoSearchService is returned when the view was built without a service.
var ErrNoSearchService = errors.New("search service is required")

// categoryFilters is the cycle order of the category filter. The empty
// category searches every document of the project.
var categoryFilters = []domain.Category{
	"",
	domain.CategoryOldRFP,
	domain.CategoryOldResponse,
	domain.CategoryNewRFP,
}

// View is the search screen. It is either typing a query or browsing the
// results of the last one.
type View struct {
	styles  *styles.Styles
	keys    *keymap.KeyMap
	query   *input.QueryInput
	results *list.ResultList
	footer  *status.Bar

	service driving.SearchService
	ctx     context.Context

	projectID string
	filter    int
	topK      int
	typing    bool
	asked     string // last submitted query
	err       error

	width, height int
	ready         bool
}

// NewView creates the search screen. Nil styles or keys use the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:  s,
		keys:    km,
		query:   input.NewQueryInput(s),
		results: list.NewResultList(s),
		footer:  status.NewBar(s, km),
		service: service,
		ctx:     context.Background(),
		topK:    domain.DefaultTopK,
		typing:  true,
		width:   80,
		height:  24,
	}
}

// WithContext sets the context searches run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetProject scopes searches to a project.
func (v *View) SetProject(projectID string) {
	v.projectID = projectID
	v.footer.SetProject(projectID)
}

// SetTopK sets the number of results requested per search.
func (v *View) SetTopK(k int) {
	if k > 0 {
		v.topK = k
	}
}

// Init starts the cursor blink.
func (v *View) Init() tea.Cmd {
	return v.query.Init()
}

// Update handles messages for the search screen.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.typing {
			return v.handleTyping(msg)
		}
		return v.handleBrowsing(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.footer, cmd = v.footer.Update(msg)
		return v, cmd

	case messages.SearchCompleted:
		v.showResults(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.footer.Fail(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.query, cmd = v.query.Update(msg)
	return v, cmd
}

func (v *View) handleTyping(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, changeView(messages.ViewMenu)
	case key.Matches(msg, v.keys.Category):
		v.CycleCategory()
		return v, nil
	case key.Matches(msg, v.keys.HistoryPrev):
		v.query.Previous()
		return v, nil
	case key.Matches(msg, v.keys.HistoryNext):
		v.query.Next()
		return v, nil
	case key.Matches(msg, v.keys.Submit):
		q := v.query.Value()
		if q == "" {
			return v, nil
		}
		v.query.Remember(q)
		return v, v.submit(q)
	}

	var cmd tea.Cmd
	v.query, cmd = v.query.Update(msg)
	return v, cmd
}

func (v *View) handleBrowsing(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, changeView(messages.ViewMenu)
	case key.Matches(msg, v.keys.Up):
		v.results.MoveUp()
	case key.Matches(msg, v.keys.Down):
		v.results.MoveDown()
	case key.Matches(msg, v.keys.Top):
		v.results.Select(0)
	case key.Matches(msg, v.keys.Bottom):
		v.results.Select(v.results.Count() - 1)
	case key.Matches(msg, v.keys.Category):
		// rerun the question under the new filter
		v.CycleCategory()
		if v.asked != "" {
			return v, v.submit(v.asked)
		}
	case key.Matches(msg, v.keys.NewSearch):
		v.typing = true
		v.query.Reset()
		v.footer.SetScreen(keymap.ScreenQuery)
		return v, v.query.Focus()
	case key.Matches(msg, v.keys.Submit):
		if r := v.results.SelectedResult(); r != nil {
			doc := domain.Document{
				ID:               r.DocumentID,
				ProjectID:        v.projectID,
				OriginalFilename: r.DocumentName,
				Category:         r.Category,
			}
			return v, func() tea.Msg { return messages.DocumentSelected{Document: doc} }
		}
	}
	return v, nil
}

func changeView(view messages.ViewType) tea.Cmd {
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}

// CycleCategory moves to the next category filter.
func (v *View) CycleCategory() {
	v.filter = (v.filter + 1) % len(categoryFilters)
	v.footer.SetCategory(v.Category().String())
}

// Category returns the active category filter; empty means all.
func (v *View) Category() domain.Category {
	return categoryFilters[v.filter]
}

// submit leaves typing mode and runs q in the background.
func (v *View) submit(q string) tea.Cmd {
	v.asked = q
	v.typing = false
	v.query.Blur()

	opts := domain.SearchOptions{TopK: v.topK, Category: v.Category()}
	ctx, service, projectID := v.ctx, v.service, v.projectID
	run := func() tea.Msg {
		if service == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		results, err := service.Search(ctx, projectID, q, opts)
		return messages.SearchCompleted{Results: results, Err: err}
	}
	return tea.Batch(v.footer.Busy("Searching"), run)
}

func (v *View) showResults(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.footer.Fail(msg.Err)
		return
	}
	v.err = nil
	v.results.SetResults(msg.Results)
	v.footer.Done(len(msg.Results))
	v.typing = false
	v.query.Blur()
}

// View renders the search screen.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	parts := []string{v.query.View(), ""}
	if v.asked != "" && !v.typing {
		parts = append(parts, v.styles.Muted.Render("Q: ")+v.styles.Normal.Render(v.asked), "")
	}
	if v.err != nil {
		parts = append(parts, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	parts = append(parts, v.results.View(), "", v.footer.View())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SetDimensions sizes the screen and its components.
func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.ready = true

	v.query.SetWidth(width)
	// query box, question line and footer
	v.results.SetDimensions(width, height-9)
	v.footer.SetWidth(width)
}

// Query returns the text in the query box.
func (v *View) Query() string { return v.query.Value() }

// SetQuery replaces the text in the query box.
func (v *View) SetQuery(q string) { v.query.SetValue(q) }

// Asked returns the last submitted query.
func (v *View) Asked() string { return v.asked }

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult { return v.results.Results() }

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int { return v.results.Selected() }

// Err returns the error of the last search, if any.
func (v *View) Err() error { return v.err }

// InputFocused reports whether the query box has focus.
func (v *View) InputFocused() bool { return v.typing }

// Reset goes back to an empty query box. The project, the category filter
// and the query history are kept.
func (v *View) Reset() {
	v.typing = true
	v.asked = ""
	v.err = nil
	v.query.Reset()
	v.query.Focus()
	v.results.SetResults(nil)
	v.footer.Clear()
}
