// Package styles provides colour themes and styling for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Confidence bands used when colouring scores.
const (
	HighConfidence = 0.7
	LowConfidence  = 0.4
)

// Theme defines the colour palette for the TUI.
type Theme struct {
	// Accent is used for titles and the selected row.
	Accent lipgloss.Color

	// Category highlights the classified question category.
	Category lipgloss.Color

	// Text is the default text colour.
	Text lipgloss.Color

	// Dim is for secondary text such as metadata and hints.
	Dim lipgloss.Color

	// Good, Fair and Poor colour confidence values.
	Good lipgloss.Color
	Fair lipgloss.Color
	Poor lipgloss.Color

	// Frame is the border colour.
	Frame lipgloss.Color

	// Bar is the status bar background.
	Bar lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:   lipgloss.Color("#2563EB"),
		Category: lipgloss.Color("#0EA5E9"),
		Text:     lipgloss.Color("#E2E8F0"),
		Dim:      lipgloss.Color("#64748B"),
		Good:     lipgloss.Color("#22C55E"),
		Fair:     lipgloss.Color("#EAB308"),
		Poor:     lipgloss.Color("#EF4444"),
		Frame:    lipgloss.Color("#334155"),
		Bar:      lipgloss.Color("#0F172A"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Heading  lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Category lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style

	// Answer frames the composed answer text.
	Answer lipgloss.Style

	// InputField style for the question box.
	InputField lipgloss.Style

	// StatusBar style for the bottom bar.
	StatusBar lipgloss.Style

	good lipgloss.Style
	fair lipgloss.Style
	poor lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Accent),

		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Text),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Text),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Dim),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Text).
			Background(theme.Accent),

		Category: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Category),

		Error: lipgloss.NewStyle().
			Foreground(theme.Poor),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Fair),

		Answer: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Accent).
			PaddingLeft(1).
			Foreground(theme.Text),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Frame).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Dim).
			Background(theme.Bar).
			Padding(0, 1),

		good: lipgloss.NewStyle().Foreground(theme.Good),
		fair: lipgloss.NewStyle().Foreground(theme.Fair),
		poor: lipgloss.NewStyle().Foreground(theme.Poor),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Confidence returns the style for a confidence value.
func (s *Styles) Confidence(v float64) lipgloss.Style {
	switch {
	case v >= HighConfidence:
		return s.good
	case v >= LowConfidence:
		return s.fair
	default:
		return s.poor
	}
}
