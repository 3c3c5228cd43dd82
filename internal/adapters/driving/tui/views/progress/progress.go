// Package progress provides the ingestion progress view for the TUI.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driving"
)

// DefaultInterval is the delay between two progress polls.
const DefaultInterval = 500 * time.Millisecond

// View follows the ingestion of one document until it completes or fails.
type View struct {
	styles    *styles.Styles
	keys      *keymap.KeyMap
	ingestion driving.IngestionService
	ctx       context.Context
	interval  time.Duration

	documentID string
	name       string
	current    *domain.Progress
	bar        progressbar.Model
	spinner    spinner.Model
	err        error

	width  int
	height int
}

// NewView creates a new progress view.
func NewView(s *styles.Styles, ingestion driving.IngestionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:    s,
		keys:      keymap.DefaultKeyMap(),
		ingestion: ingestion,
		ctx:       context.Background(),
		interval:  DefaultInterval,
		bar:       progressbar.New(progressbar.WithDefaultGradient(), progressbar.WithWidth(40)),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Subtitle)),
		width:     80,
		height:    24,
	}
}

// WithKeyMap replaces the default bindings.
func (v *View) WithKeyMap(km *keymap.KeyMap) *View {
	v.keys = km
	return v
}

// WithContext sets the context used for polling.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithInterval sets the polling interval.
func (v *View) WithInterval(d time.Duration) *View {
	if d > 0 {
		v.interval = d
	}
	return v
}

// Start follows a new document. The name is only used for display.
func (v *View) Start(documentID, name string) tea.Cmd {
	v.documentID = documentID
	v.name = name
	v.current = nil
	v.err = nil
	return tea.Batch(v.spinner.Tick, v.poll(documentID))
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) poll(documentID string) tea.Cmd {
	return func() tea.Msg {
		if v.ingestion == nil {
			return messages.ProgressUpdated{DocumentID: documentID, Err: errors.New("ingestion service not available")}
		}
		p, err := v.ingestion.Progress(v.ctx, documentID)
		return messages.ProgressUpdated{DocumentID: documentID, Progress: p, Err: err}
	}
}

func (v *View) scheduleTick(documentID string) tea.Cmd {
	return tea.Tick(v.interval, func(time.Time) tea.Msg {
		return messages.ProgressTick{DocumentID: documentID}
	})
}

// Update handles messages for the progress view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewDocuments}
			}
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Refresh):
			if v.documentID != "" {
				return v, v.poll(v.documentID)
			}
		}
		return v, nil

	case messages.ProgressTick:
		if msg.DocumentID != v.documentID || v.Done() {
			return v, nil
		}
		return v, v.poll(msg.DocumentID)

	case messages.ProgressUpdated:
		if msg.DocumentID != v.documentID {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.current = msg.Progress
		if v.Done() {
			return v, nil
		}
		return v, v.scheduleTick(msg.DocumentID)

	case spinner.TickMsg:
		if v.Done() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	return v, nil
}

// Done reports whether the followed document reached a terminal step.
func (v *View) Done() bool {
	return v.current != nil && v.current.IsTerminal()
}

// View renders the progress view.
func (v *View) View() string {
	var b strings.Builder

	title := v.name
	if title == "" {
		title = v.documentID
	}
	b.WriteString(v.styles.Title.Render("Ingestion: " + title))
	b.WriteString("\n\n")

	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.current == nil:
		b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Waiting for the pipeline..."))
	case v.current.Step == domain.StepFailed:
		b.WriteString(v.styles.Error.Render("✗ " + v.current.Label))
	case v.current.Step == domain.StepCompleted:
		b.WriteString(v.bar.ViewAs(1))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Success.Render("✓ " + v.current.Label))
	default:
		b.WriteString(v.bar.ViewAs(float64(v.current.Percent) / 100))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s %s %s", v.spinner.View(),
			v.styles.Normal.Render(v.current.Label),
			v.styles.Muted.Render(fmt.Sprintf("(%d%%)", v.current.Percent))))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] refresh  [esc] documents  [q] quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.bar.Width = min(max(width-10, 20), 80)
}

// DocumentID returns the followed document.
func (v *View) DocumentID() string {
	return v.documentID
}

// Current returns the latest progress record, or nil before the first one.
func (v *View) Current() *domain.Progress {
	return v.current
}

// Err returns the last polling error.
func (v *View) Err() error {
	return v.err
}
