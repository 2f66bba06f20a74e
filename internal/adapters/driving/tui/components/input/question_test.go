package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/styles"
)

func TestNewQuestionInput(t *testing.T) {
	q := NewQuestionInput(styles.DefaultStyles())

	require.NotNil(t, q)
	assert.Equal(t, "", q.Value())
	assert.True(t, q.Focused())
	assert.False(t, q.AnswerMode())
}

func TestNewQuestionInput_NilStyles(t *testing.T) {
	q := NewQuestionInput(nil)

	require.NotNil(t, q)
	assert.NotNil(t, q.styles)
}

func TestQuestionInput_Init(t *testing.T) {
	assert.NotNil(t, NewQuestionInput(nil).Init())
}

func TestQuestionInput_Update(t *testing.T) {
	q := NewQuestionInput(nil)

	for _, r := range "EPS" {
		q, _ = q.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "EPS", q.Value())
}

func TestQuestionInput_Question(t *testing.T) {
	q := NewQuestionInput(nil)
	q.SetValue("  margin trend  ")

	assert.Equal(t, "margin trend", q.Question())
	assert.Equal(t, "  margin trend  ", q.Value())
}

func TestQuestionInput_View(t *testing.T) {
	q := NewQuestionInput(nil)

	assert.Contains(t, q.View(), "Ask: ")

	q.ToggleAnswerMode()
	assert.True(t, q.AnswerMode())
	assert.Contains(t, q.View(), "Ask (answer): ")

	q.SetAnswerMode(false)
	assert.False(t, q.AnswerMode())
}

func TestQuestionInput_Focus(t *testing.T) {
	q := NewQuestionInput(nil)

	q.Blur()
	assert.False(t, q.Focused())

	q.Focus()
	assert.True(t, q.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	q := NewQuestionInput(nil)

	q.SetWidth(100)
	assert.Equal(t, 100, q.Width())
	assert.Equal(t, 80, q.textinput.Width)

	q.SetWidth(10)
	assert.Equal(t, 20, q.textinput.Width)
}

func TestQuestionInput_Reset(t *testing.T) {
	q := NewQuestionInput(nil)
	q.SetValue("something")

	q.Reset()

	assert.Equal(t, "", q.Value())
}
