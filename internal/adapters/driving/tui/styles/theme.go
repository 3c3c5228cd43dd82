// Package styles holds the TUI palette and the lipgloss styles built from it.
package styles

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
)

// Theme is the colour palette. Placeholders are coloured by entity family
// so identities, contact details, codes and figures stand apart in chunk text.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Bar        lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Identity lipgloss.Color // person, company
	Contact  lipgloss.Color // email, phone, address
	Code     lipgloss.Color // project, tender and solution codes
	Figure   lipgloss.Color // dates and amounts

	// Placeholder colours tokens of any other type.
	Placeholder lipgloss.Color
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:     lipgloss.Color("#1D4ED8"),
		Secondary:   lipgloss.Color("#0EA5E9"),
		Foreground:  lipgloss.Color("#CDD6F4"),
		Muted:       lipgloss.Color("#6C7086"),
		Border:      lipgloss.Color("#45475A"),
		Bar:         lipgloss.Color("#181825"),
		Success:     lipgloss.Color("#A6E3A1"),
		Warning:     lipgloss.Color("#F9E2AF"),
		Error:       lipgloss.Color("#F38BA8"),
		Identity:    lipgloss.Color("#FAB387"),
		Contact:     lipgloss.Color("#89DCEB"),
		Code:        lipgloss.Color("#CBA6F7"),
		Figure:      lipgloss.Color("#F5C2E7"),
		Placeholder: lipgloss.Color("#BAC2DE"),
	}
}

var entityFamily = map[domain.EntityType]func(*Theme) lipgloss.Color{
	domain.EntityPerson:       func(t *Theme) lipgloss.Color { return t.Identity },
	domain.EntityCompany:      func(t *Theme) lipgloss.Color { return t.Identity },
	domain.EntityEmail:        func(t *Theme) lipgloss.Color { return t.Contact },
	domain.EntityPhone:        func(t *Theme) lipgloss.Color { return t.Contact },
	domain.EntityAddress:      func(t *Theme) lipgloss.Color { return t.Contact },
	domain.EntityProjectCode:  func(t *Theme) lipgloss.Color { return t.Code },
	domain.EntityRFPCode:      func(t *Theme) lipgloss.Color { return t.Code },
	domain.EntitySolutionName: func(t *Theme) lipgloss.Color { return t.Code },
	domain.EntityDate:         func(t *Theme) lipgloss.Color { return t.Figure },
	domain.EntityAmount:       func(t *Theme) lipgloss.Color { return t.Figure },
}

var placeholderToken = regexp.MustCompile(`\[[A-Z][A-Z_]*_\d+\]`)

// Styles are the lipgloss styles shared by every view.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// Placeholder renders tokens whose type has no family colour.
	Placeholder lipgloss.Style

	entities map[domain.EntityType]lipgloss.Style
}

// NewStyles builds styles from theme, DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	rounded := lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Border)

	s := &Styles{
		theme:       theme,
		Title:       fg(theme.Primary).Bold(true),
		Subtitle:    fg(theme.Secondary).Bold(true),
		Normal:      fg(theme.Foreground),
		Muted:       fg(theme.Muted),
		Selected:    fg(theme.Foreground).Background(theme.Primary).Bold(true),
		Error:       fg(theme.Error),
		Success:     fg(theme.Success),
		Warning:     fg(theme.Warning),
		InputField:  rounded.Padding(0, 1),
		StatusBar:   fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
		Help:        fg(theme.Muted),
		Border:      rounded,
		Placeholder: fg(theme.Placeholder).Bold(true),
		entities:    make(map[domain.EntityType]lipgloss.Style, len(entityFamily)),
	}
	for et, colour := range entityFamily {
		s.entities[et] = fg(colour(theme)).Bold(true)
	}
	return s
}

// DefaultStyles returns styles for the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette behind s.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Entity returns the style of placeholders of type t.
func (s *Styles) Entity(t domain.EntityType) lipgloss.Style {
	if st, ok := s.entities[t]; ok {
		return st
	}
	return s.Placeholder
}

// Highlight colours every placeholder token found in text.
func (s *Styles) Highlight(text string) string {
	return placeholderToken.ReplaceAllStringFunc(text, func(token string) string {
		t, _, ok := domain.ParsePlaceholder(token)
		if !ok {
			return s.Placeholder.Render(token)
		}
		return s.Entity(t).Render(token)
	})
}

// Status returns the style of a processing status.
func (s *Styles) Status(status domain.ProcessingStatus) lipgloss.Style {
	switch status {
	case domain.StatusCompleted:
		return s.Success
	case domain.StatusFailed:
		return s.Error
	case domain.StatusProcessing:
		return s.Warning
	default:
		return s.Muted
	}
}

// StatusIcon returns a one-character marker for a processing status.
func StatusIcon(status domain.ProcessingStatus) string {
	switch status {
	case domain.StatusCompleted:
		return "✓"
	case domain.StatusFailed:
		return "✗"
	case domain.StatusProcessing:
		return "…"
	default:
		return "•"
	}
}
