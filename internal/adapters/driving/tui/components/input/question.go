// Package input provides text input components for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/styles"
)

// MaxQuestionLength bounds what can be typed into the question box.
const MaxQuestionLength = 512

// QuestionInput wraps a bubbles textinput for entering questions.
type QuestionInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	answer    bool
	width     int
}

// NewQuestionInput creates a focused question input.
func NewQuestionInput(s *styles.Styles) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "What was Apple's revenue in FY2023?"
	ti.Focus()
	ti.CharLimit = MaxQuestionLength
	ti.Width = 60

	return &QuestionInput{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init starts the cursor blinking.
func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	var cmd tea.Cmd
	q.textinput, cmd = q.textinput.Update(msg)
	return q, cmd
}

// View renders the label and the input box.
func (q *QuestionInput) View() string {
	label := "Ask: "
	if q.answer {
		label = "Ask (answer): "
	}
	box := q.styles.InputField.Render(q.textinput.View())
	//nolint:misspell // lipgloss.Center is the library's spelling
	return lipgloss.JoinHorizontal(lipgloss.Center, q.styles.Title.Render(label), box)
}

// Question returns the trimmed input.
func (q *QuestionInput) Question() string {
	return strings.TrimSpace(q.textinput.Value())
}

// Value returns the raw input.
func (q *QuestionInput) Value() string {
	return q.textinput.Value()
}

// SetValue replaces the input.
func (q *QuestionInput) SetValue(value string) {
	q.textinput.SetValue(value)
}

// AnswerMode reports whether questions are sent for answer composition.
func (q *QuestionInput) AnswerMode() bool {
	return q.answer
}

// ToggleAnswerMode flips answer composition on or off.
func (q *QuestionInput) ToggleAnswerMode() {
	q.answer = !q.answer
}

// SetAnswerMode sets answer composition.
func (q *QuestionInput) SetAnswerMode(on bool) {
	q.answer = on
}

// Focus sets focus on the input.
func (q *QuestionInput) Focus() tea.Cmd {
	return q.textinput.Focus()
}

// Blur removes focus from the input.
func (q *QuestionInput) Blur() {
	q.textinput.Blur()
}

// Focused returns whether the input is focused.
func (q *QuestionInput) Focused() bool {
	return q.textinput.Focused()
}

// SetWidth sets the width of the input.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	// Label, border and padding.
	inner := width - 20
	if inner < 20 {
		inner = 20
	}
	q.textinput.Width = inner
}

// Width returns the current width.
func (q *QuestionInput) Width() int {
	return q.width
}

// Reset clears the input.
func (q *QuestionInput) Reset() {
	q.textinput.Reset()
}
