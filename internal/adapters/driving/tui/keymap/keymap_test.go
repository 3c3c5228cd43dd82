package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ help.KeyMap = (*KeyMap)(nil)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDefaultKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
		want    bool
	}{
		{"q quits", runes("q"), km.Quit, true},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit, true},
		{"k is up", runes("k"), km.Up, true},
		{"arrow down", tea.KeyMsg{Type: tea.KeyDown}, km.Down, true},
		{"G is bottom", runes("G"), km.Bottom, true},
		{"g is not bottom", runes("g"), km.Bottom, false},
		{"slash starts a search", runes("/"), km.NewSearch, true},
		{"tab cycles category", tea.KeyMsg{Type: tea.KeyTab}, km.Category, true},
		{"ctrl+p recalls", tea.KeyMsg{Type: tea.KeyCtrlP}, km.HistoryPrev, true},
		{"o toggles original", runes("o"), km.Original, true},
		{"n does not confirm", runes("n"), km.Confirm, false},
		{"y confirms", runes("y"), km.Confirm, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestKeyMap_Hints(t *testing.T) {
	km := DefaultKeyMap()

	for _, screen := range []Screen{
		ScreenMenu, ScreenQuery, ScreenResults, ScreenDocuments, ScreenChunks, ScreenProgress,
	} {
		t.Run(string(screen), func(t *testing.T) {
			hints := km.Hints(screen)
			require.NotEmpty(t, hints)
			for _, h := range hints {
				assert.NotEmpty(t, h.Help().Key)
				assert.NotEmpty(t, h.Help().Desc)
			}
		})
	}

	assert.Contains(t, km.Hints(ScreenChunks), km.Original)
	assert.Contains(t, km.Hints(ScreenResults), km.NewSearch)
}

func TestKeyMap_Hints_QueryRelabelsSubmit(t *testing.T) {
	km := DefaultKeyMap()

	hints := km.Hints(ScreenQuery)

	assert.Equal(t, "search", hints[0].Help().Desc)
	assert.Equal(t, "open", km.Submit.Help().Desc, "shared binding must stay untouched")
}

func TestKeyMap_FullHelp(t *testing.T) {
	km := DefaultKeyMap()

	columns := km.FullHelp()

	assert.Len(t, columns, 4)
	assert.Equal(t, []key.Binding{km.Quit, km.Help}, km.ShortHelp())
}
