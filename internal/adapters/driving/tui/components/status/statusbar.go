// Package status renders the one-line footer of the search screen.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/styles"
)

// State is what the footer reports on its left side.
type State int

const (
	StateIdle State = iota
	StateBusy
	StateDone
	StateFailed
)

// Bar shows the project scope, the outcome of the last search and the key
// hints of the current screen.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model

	screen   keymap.Screen
	state    State
	project  string
	category string
	text     string
	count    int
	width    int
}

// NewBar creates a footer. Nil arguments fall back to the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = s.Subtitle

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		screen:  keymap.ScreenQuery,
		width:   80,
	}
}

// Init implements the bubbletea component contract.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update advances the spinner while a search runs.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || b.state != StateBusy {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// Busy reports work in progress and starts the spinner.
func (b *Bar) Busy(label string) tea.Cmd {
	b.state = StateBusy
	b.text = label
	return b.spinner.Tick
}

// Done reports a finished search that returned count results.
func (b *Bar) Done(count int) {
	b.state = StateDone
	b.text = ""
	b.count = count
	b.screen = keymap.ScreenResults
}

// Fail reports err until the next state change.
func (b *Bar) Fail(err error) {
	b.state = StateFailed
	b.text = err.Error()
}

// Notify shows a neutral message.
func (b *Bar) Notify(text string) {
	b.state = StateIdle
	b.text = text
}

// Clear returns to the query screen. Project and category are kept.
func (b *Bar) Clear() {
	b.state = StateIdle
	b.text = ""
	b.count = 0
	b.screen = keymap.ScreenQuery
}

// SetScreen selects which key hints are shown.
func (b *Bar) SetScreen(screen keymap.Screen) { b.screen = screen }

// SetProject sets the project shown first.
func (b *Bar) SetProject(projectID string) { b.project = projectID }

// SetCategory sets the active category filter; empty means all.
func (b *Bar) SetCategory(label string) { b.category = label }

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) { b.width = width }

// State returns the current state.
func (b *Bar) State() State { return b.state }

// Text returns the busy label, error or notice being shown.
func (b *Bar) Text() string { return b.text }

// Count returns the result count of the last search.
func (b *Bar) Count() int { return b.count }

// Screen returns the screen whose hints are shown.
func (b *Bar) Screen() keymap.Screen { return b.screen }

// View renders the footer padded to the bar width.
func (b *Bar) View() string {
	left := b.renderScope() + b.renderState()
	right := b.renderHints()

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (b *Bar) renderScope() string {
	var parts []string
	if b.project != "" {
		parts = append(parts, b.styles.Subtitle.Render(b.project))
	}
	if b.category != "" {
		parts = append(parts, b.styles.Muted.Render(b.category))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, b.styles.Muted.Render(" / ")) + "  "
}

func (b *Bar) renderState() string {
	switch b.state {
	case StateBusy:
		return b.spinner.View() + " " + b.styles.Muted.Render(b.text)
	case StateFailed:
		return b.styles.Error.Render("Error: " + b.text)
	case StateDone:
		switch b.count {
		case 0:
			return b.styles.Warning.Render("no match")
		case 1:
			return b.styles.Normal.Render("1 result")
		default:
			return b.styles.Normal.Render(fmt.Sprintf("%d results", b.count))
		}
	default:
		if b.text != "" {
			return b.styles.Normal.Render(b.text)
		}
		return b.styles.Muted.Render("Ready")
	}
}

func (b *Bar) renderHints() string {
	hints := b.keymap.Hints(b.screen)
	out := make([]string, 0, len(hints))
	for _, h := range hints {
		out = append(out, h.Help().Key+" "+h.Help().Desc)
	}
	return b.styles.Help.Render(strings.Join(out, " · "))
}
