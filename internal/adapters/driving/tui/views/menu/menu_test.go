package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/messages"
)

func labels(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestNewView(t *testing.T) {
	assert.Equal(t, []string{"Documents", "Search", "Help", "Quit"}, labels(NewView(nil, true).Items()))
	assert.Equal(t, []string{"Documents", "Help", "Quit"}, labels(NewView(nil, false).Items()))
}

func TestView_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil, true).View())
}

func TestView_Navigation(t *testing.T) {
	view := NewView(nil, true)

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, view.Selected())

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, view.Selected())

	for range 10 {
		view.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 3, view.Selected())
}

func TestView_SelectChangesView(t *testing.T) {
	view := NewView(nil, true)
	view.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewSearch}, cmd())
}

func TestView_Quit(t *testing.T) {
	view := NewView(nil, false)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestView_RendersProject(t *testing.T) {
	view := NewView(nil, true)
	view.SetProject("ao-2024")
	view.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	out := view.View()

	assert.Contains(t, out, "rfpvault")
	assert.Contains(t, out, "Project ao-2024")
	assert.Contains(t, out, "Documents")
}

func TestView_HelpKey(t *testing.T) {
	view := NewView(nil, true)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())
}

func TestView_SelectQuitItem(t *testing.T) {
	view := NewView(nil, false)
	for range len(view.Items()) {
		view.Update(tea.KeyMsg{Type: tea.KeyDown})
	}

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestView_RendersHintsAndDescriptions(t *testing.T) {
	view := NewView(nil, true)
	view.SetDimensions(80, 24)

	out := view.View()

	assert.Contains(t, out, "ask a question across past tenders")
	assert.Contains(t, out, "[enter] open")
	assert.Contains(t, out, "[q] quit")
	assert.Contains(t, out, "Anonymized tender archive")
}
