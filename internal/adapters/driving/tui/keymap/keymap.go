// Package keymap holds the TUI keybindings, grouped by screen.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// Screen names a view whose hints the status line shows.
type Screen string

const (
	ScreenMenu      Screen = "menu"
	ScreenQuery     Screen = "query"
	ScreenResults   Screen = "results"
	ScreenDocuments Screen = "documents"
	ScreenChunks    Screen = "chunks"
	ScreenProgress  Screen = "progress"
)

// KeyMap is the set of bindings shared by every view.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Submit runs the typed query or opens the selected entry.
	Submit key.Binding
	Back   key.Binding
	Quit   key.Binding
	Help   key.Binding

	// History recalls earlier queries while typing.
	HistoryPrev key.Binding
	HistoryNext key.Binding
	NewSearch   key.Binding
	Category    key.Binding

	Progress key.Binding
	Refresh  key.Binding
	Confirm  key.Binding

	// Original flips chunk text between anonymized and restored.
	Original key.Binding
}

func binding(keys []string, helpKey, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(helpKey, desc))
}

// DefaultKeyMap returns vim-flavoured defaults.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Up:          binding([]string{"up", "k"}, "↑/k", "up"),
		Down:        binding([]string{"down", "j"}, "↓/j", "down"),
		Top:         binding([]string{"g", "home"}, "g", "top"),
		Bottom:      binding([]string{"G", "end"}, "G", "bottom"),
		Submit:      binding([]string{"enter"}, "enter", "open"),
		Back:        binding([]string{"esc"}, "esc", "back"),
		Quit:        binding([]string{"q", "ctrl+c"}, "q", "quit"),
		Help:        binding([]string{"?"}, "?", "help"),
		HistoryPrev: binding([]string{"up", "ctrl+p"}, "↑", "previous query"),
		HistoryNext: binding([]string{"down", "ctrl+n"}, "↓", "next query"),
		NewSearch:   binding([]string{"n", "/"}, "n", "new search"),
		Category:    binding([]string{"tab"}, "tab", "category"),
		Progress:    binding([]string{"p"}, "p", "progress"),
		Refresh:     binding([]string{"r"}, "r", "refresh"),
		Confirm:     binding([]string{"y"}, "y", "confirm"),
		Original:    binding([]string{"o"}, "o", "original/anonymized"),
	}
}

// Hints returns the bindings worth showing on screen, most used first.
func (k *KeyMap) Hints(screen Screen) []key.Binding {
	switch screen {
	case ScreenQuery:
		submit := k.Submit
		submit.SetHelp("enter", "search")
		return []key.Binding{submit, k.Category, k.HistoryPrev, k.Back}
	case ScreenResults:
		return []key.Binding{k.Submit, k.NewSearch, k.Category, k.Back}
	case ScreenDocuments:
		return []key.Binding{k.Submit, k.Progress, k.Refresh, k.Back}
	case ScreenChunks:
		return []key.Binding{k.Original, k.Top, k.Bottom, k.Back}
	case ScreenProgress:
		return []key.Binding{k.Refresh, k.Back, k.Quit}
	default:
		return []key.Binding{k.Submit, k.Quit, k.Help}
	}
}

// ShortHelp implements help.KeyMap.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// FullHelp implements help.KeyMap, one column per concern.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Submit, k.NewSearch, k.Category, k.HistoryPrev},
		{k.Progress, k.Refresh, k.Original},
		{k.Back, k.Help, k.Quit},
	}
}
