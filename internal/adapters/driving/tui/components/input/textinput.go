// Package input provides the query box of the search screen.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/styles"
)

// maxHistory bounds the number of remembered queries.
const maxHistory = 50

// QueryInput is a single-line query box that remembers submitted queries.
type QueryInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	// history is oldest first; recall indexes into it, len(history) being
	// the draft the user was typing.
	history []string
	recall  int
	draft   string
}

// NewQueryInput creates a focused query box.
func NewQueryInput(s *styles.Styles) *QueryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Prompt = "› "
	ti.PromptStyle = s.Subtitle
	ti.Placeholder = "Ask about past tenders..."
	ti.CharLimit = 512
	ti.Width = 50
	ti.Focus()

	return &QueryInput{textinput: ti, styles: s, width: 50}
}

// Init starts the cursor blink.
func (q *QueryInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update forwards msg to the text box.
func (q *QueryInput) Update(msg tea.Msg) (*QueryInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the boxed input.
func (q *QueryInput) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		q.styles.Title.Render("Search "),
		q.styles.InputField.Render(q.textinput.View()),
	)
}

// Remember records a submitted query and resets recall. Blank queries and
// repeats of the latest entry are ignored.
func (q *QueryInput) Remember(query string) {
	query = strings.TrimSpace(query)
	if query != "" && (len(q.history) == 0 || q.history[len(q.history)-1] != query) {
		q.history = append(q.history, query)
		if len(q.history) > maxHistory {
			q.history = q.history[len(q.history)-maxHistory:]
		}
	}
	q.recall = len(q.history)
	q.draft = ""
}

// Previous replaces the text with the previous remembered query. The text
// being typed is kept as a draft and comes back with Next.
func (q *QueryInput) Previous() bool {
	if q.recall == 0 {
		return false
	}
	if q.recall == len(q.history) {
		q.draft = q.textinput.Value()
	}
	q.recall--
	q.setText(q.history[q.recall])
	return true
}

// Next moves toward the most recent query, then back to the draft.
func (q *QueryInput) Next() bool {
	if q.recall >= len(q.history) {
		return false
	}
	q.recall++
	if q.recall == len(q.history) {
		q.setText(q.draft)
	} else {
		q.setText(q.history[q.recall])
	}
	return true
}

// History returns the remembered queries, oldest first.
func (q *QueryInput) History() []string {
	return q.history
}

func (q *QueryInput) setText(s string) {
	q.textinput.SetValue(s)
	q.textinput.CursorEnd()
}

// Value returns the trimmed query.
func (q *QueryInput) Value() string {
	return strings.TrimSpace(q.textinput.Value())
}

// SetValue replaces the text.
func (q *QueryInput) SetValue(value string) {
	q.setText(value)
}

// Focus gives the box keyboard focus.
func (q *QueryInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur drops keyboard focus.
func (q *QueryInput) Blur() {
	q.textinput.Blur()
}

// Focused reports whether the box has focus.
func (q *QueryInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sizes the box to the terminal width.
func (q *QueryInput) SetWidth(width int) {
	q.width = width
	// title, border and prompt
	q.textinput.Width = max(width-14, 20)
}

// Width returns the terminal width last set.
func (q *QueryInput) Width() int {
	return q.width
}

// Reset clears the text and the draft. History is kept.
func (q *QueryInput) Reset() {
	q.textinput.Reset()
	q.recall = len(q.history)
	q.draft = ""
}
