// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/rfpvault/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// ResultList displays search results in a navigable list. Each entry shows
// the document, its origin on the page and a preview of the chunk.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.results)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")

	// three lines per result
	visibleCount := (r.height - 4) / 3
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.results))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	return strings.Join(lines, "\n")
}

// renderResult formats a single search result.
func (r *ResultList) renderResult(index int, result *domain.SearchResult) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	name := result.DocumentName
	if name == "" {
		name = result.DocumentID
	}
	maxNameLen := max(r.width-24, 10)
	name = Truncate(name, maxNameLen)

	score := scoreBar(result.Score) + fmt.Sprintf(" %.2f", result.Score)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxNameLen, name, score))
	} else {
		titleLine = r.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxNameLen, name)) +
			r.styles.Muted.Render(score)
	}

	origin := result.Category.String()
	if result.PageNumber > 0 {
		origin += fmt.Sprintf(" · p.%d", result.PageNumber)
	}
	if result.SectionTitle != "" {
		origin += " · " + result.SectionTitle
	}
	originLine := r.styles.Subtitle.Render("    " + Truncate(origin, max(r.width-6, 20)))

	preview := strings.Join(strings.Fields(result.Content), " ")
	previewLine := "    " + r.styles.Highlight(Truncate(preview, max(r.width-6, 20)))

	return titleLine + "\n" + originLine + "\n" + previewLine
}

// scoreBar draws a similarity score as five cells.
func scoreBar(score float64) string {
	filled := int(math.Round(math.Max(0, math.Min(1, score)) * 5))
	return strings.Repeat("▮", filled) + strings.Repeat("▯", 5-filled)
}

// Truncate shortens s to n runes, ending with an ellipsis when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetResults updates the result list.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// Select moves the selection to index i, clamped to the list.
func (r *ResultList) Select(i int) {
	r.selected = max(0, min(i, len(r.results)-1))
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() { r.Select(r.selected - 1) }

// MoveDown moves selection down.
func (r *ResultList) MoveDown() { r.Select(r.selected + 1) }

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}
