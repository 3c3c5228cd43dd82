// Package menu is the landing screen of a project.
package menu

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/styles"
)

// Item is one entry of the menu. An item without a view quits.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View lists what can be done within a project.
type View struct {
	styles    *styles.Styles
	keys      *keymap.KeyMap
	items     []Item
	projectID string
	selected  int
	ready     bool
}

// NewView creates the menu. Search is only offered when a search service is
// configured.
func NewView(s *styles.Styles, withSearch bool) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	items := []Item{{Label: "Documents", Hint: "ingested files, chunks and progress", View: messages.ViewDocuments}}
	if withSearch {
		items = append(items, Item{Label: "Search", Hint: "ask a question across past tenders", View: messages.ViewSearch})
	}
	items = append(items,
		Item{Label: "Help", Hint: "keybindings", View: messages.ViewHelp},
		Item{Label: "Quit", Quit: true},
	)

	return &View{styles: s, keys: keymap.DefaultKeyMap(), items: items}
}

// WithKeyMap replaces the default bindings.
func (v *View) WithKeyMap(km *keymap.KeyMap) *View {
	v.keys = km
	return v
}

// SetProject sets the project shown under the title.
func (v *View) SetProject(projectID string) {
	v.projectID = projectID
}

// Init implements the bubbletea component contract.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor or opens the selected item.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			v.selected = max(v.selected-1, 0)
		case key.Matches(msg, v.keys.Down):
			v.selected = min(v.selected+1, len(v.items)-1)
		case key.Matches(msg, v.keys.Submit):
			return v, v.open(v.items[v.selected])
		case key.Matches(msg, v.keys.Help):
			return v, v.open(Item{View: messages.ViewHelp})
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		}
	}
	return v, nil
}

func (v *View) open(item Item) tea.Cmd {
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the menu.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("rfpvault") + "\n\n")
	if v.projectID != "" {
		b.WriteString(v.styles.Subtitle.Render("Project " + v.projectID))
	} else {
		b.WriteString(v.styles.Muted.Render("Anonymized tender archive"))
	}
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := v.styles.Normal.Render(item.Label)
		cursor := "  "
		if i == v.selected {
			label = v.styles.Selected.Render(item.Label)
			cursor = "> "
		}
		b.WriteString(cursor + label)
		if item.Hint != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Hint))
		}
		b.WriteString("\n")
	}

	hints := v.keys.Hints(keymap.ScreenMenu)
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, "["+h.Help().Key+"] "+h.Help().Desc)
	}
	b.WriteString("\n" + v.styles.Help.Render(strings.Join(parts, "  ")))
	return b.String()
}

// SetDimensions marks the view ready; the menu does not depend on size.
func (v *View) SetDimensions(_, _ int) {
	v.ready = true
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the cursor position.
func (v *View) Selected() int {
	return v.selected
}
