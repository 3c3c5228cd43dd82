package status

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/keymap"
)

func TestNewBar_Defaults(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateIdle, bar.State())
	assert.Equal(t, keymap.ScreenQuery, bar.Screen())
	assert.Nil(t, bar.Init())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Bar)
		contains []string
		excludes []string
	}{
		{
			name:     "idle",
			setup:    func(*Bar) {},
			contains: []string{"Ready", "enter search", "tab category"},
		},
		{
			name:     "scope",
			setup:    func(b *Bar) { b.SetProject("ao-2024"); b.SetCategory("old_rfp") },
			contains: []string{"ao-2024", "old_rfp"},
		},
		{
			name:     "busy",
			setup:    func(b *Bar) { b.Busy("Searching") },
			contains: []string{"Searching"},
			excludes: []string{"Ready"},
		},
		{
			name:     "failed",
			setup:    func(b *Bar) { b.Fail(errors.New("embedder down")) },
			contains: []string{"Error: embedder down"},
		},
		{
			name:     "no match",
			setup:    func(b *Bar) { b.Done(0) },
			contains: []string{"no match"},
		},
		{
			name:     "one result",
			setup:    func(b *Bar) { b.Done(1) },
			contains: []string{"1 result", "n new search"},
			excludes: []string{"1 results"},
		},
		{
			name:     "many results",
			setup:    func(b *Bar) { b.Done(7) },
			contains: []string{"7 results"},
		},
		{
			name:     "notice",
			setup:    func(b *Bar) { b.Notify("Document deleted") },
			contains: []string{"Document deleted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(140)
			tt.setup(bar)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, view, unwanted)
			}
		})
	}
}

func TestBar_Busy_TicksOnlyWhileBusy(t *testing.T) {
	bar := NewBar(nil, nil)

	tick := bar.Busy("Searching")
	require.NotNil(t, tick)
	msg, ok := tick().(spinner.TickMsg)
	require.True(t, ok)

	_, cmd := bar.Update(msg)
	assert.NotNil(t, cmd)

	bar.Done(2)
	_, cmd = bar.Update(msg)
	assert.Nil(t, cmd)

	_, cmd = bar.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetProject("p1")
	bar.Done(3)

	bar.Clear()

	assert.Equal(t, StateIdle, bar.State())
	assert.Equal(t, 0, bar.Count())
	assert.Equal(t, keymap.ScreenQuery, bar.Screen())
	assert.Contains(t, bar.View(), "p1")
}
