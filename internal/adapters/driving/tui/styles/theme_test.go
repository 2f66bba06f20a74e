package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for _, c := range []lipgloss.Color{
		theme.Accent, theme.Category, theme.Text, theme.Dim,
		theme.Good, theme.Fair, theme.Poor, theme.Frame, theme.Bar,
	} {
		assert.NotEmpty(t, string(c))
	}
}

func TestDefaultTheme_ConfidenceColoursDistinct(t *testing.T) {
	theme := DefaultTheme()

	assert.NotEqual(t, theme.Good, theme.Fair)
	assert.NotEqual(t, theme.Fair, theme.Poor)
	assert.NotEqual(t, theme.Good, theme.Poor)
}

func TestNewStyles(t *testing.T) {
	t.Run("with theme", func(t *testing.T) {
		theme := DefaultTheme()
		s := NewStyles(theme)

		require.NotNil(t, s)
		assert.Equal(t, theme, s.Theme())
	})

	t.Run("nil theme uses default", func(t *testing.T) {
		s := NewStyles(nil)

		require.NotNil(t, s)
		assert.Equal(t, DefaultTheme(), s.Theme())
	})
}

func TestStyles_Confidence(t *testing.T) {
	s := DefaultStyles()
	theme := s.Theme()

	tests := []struct {
		name string
		v    float64
		want lipgloss.Color
	}{
		{"high", 0.9, theme.Good},
		{"boundary high", HighConfidence, theme.Good},
		{"fair", 0.5, theme.Fair},
		{"boundary low", LowConfidence, theme.Fair},
		{"poor", 0.1, theme.Poor},
		{"zero", 0, theme.Poor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Confidence(tt.v).GetForeground())
		})
	}
}

func TestStyles_RenderNotEmpty(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Title.Render("Filings"), "Filings")
	assert.Contains(t, s.Category.Render("DIRECT_LOOKUP"), "DIRECT_LOOKUP")
	assert.Contains(t, s.Answer.Render("Revenue grew."), "Revenue grew.")
}
