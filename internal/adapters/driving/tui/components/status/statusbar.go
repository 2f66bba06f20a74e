// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateAsking   State = "asking"
	StateError    State = "error"
	StateEvidence State = "evidence"
)

// Bar displays the last classification, the conversation and keybinding hints.
type Bar struct {
	styles       *styles.Styles
	keymap       *keymap.KeyMap
	state        State
	message      string
	category     domain.QueryCategory
	confidence   float64
	status       domain.RetrievalStatus
	conversation string
	width        int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the bar is driven through its setters.
func (b *Bar) Update(tea.Msg) (*Bar, tea.Cmd) {
	return b, nil
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	var parts []string
	switch b.state {
	case StateAsking:
		parts = append(parts, b.styles.Muted.Render("Retrieving..."))
	case StateError:
		msg := "Error"
		if b.message != "" {
			msg = "Error: " + b.message
		}
		parts = append(parts, b.styles.Error.Render(msg))
	case StateReady, StateEvidence:
		if b.category == "" {
			parts = append(parts, b.styles.Muted.Render("Ready"))
			break
		}
		parts = append(parts,
			b.styles.Category.Render(string(b.category)),
			b.styles.Confidence(b.confidence).Render(fmt.Sprintf("%.2f", b.confidence)),
		)
		if b.status != "" && b.status != domain.RetrievalComplete {
			parts = append(parts, b.styles.Warning.Render(string(b.status)))
		}
		if b.message != "" {
			parts = append(parts, b.styles.Normal.Render(b.message))
		}
	}
	if b.conversation != "" {
		parts = append(parts, b.styles.Muted.Render("conv "+shortID(b.conversation)))
	}
	return strings.Join(parts, "  ")
}

func (b *Bar) renderRight() string {
	var bindings []key.Binding
	if b.state == StateEvidence {
		bindings = b.keymap.EvidenceHelp()
	} else {
		bindings = b.keymap.InputHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// SetResult records the outcome of a question.
func (b *Bar) SetResult(r domain.QueryResult) {
	b.category = r.Classification.Category
	b.confidence = r.Confidence
	b.status = r.Evidence.Status
	b.message = ""
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a custom message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetConversation sets the conversation shown in the bar.
func (b *Bar) SetConversation(id string) {
	b.conversation = id
}

// Category returns the last classified category.
func (b *Bar) Category() domain.QueryCategory {
	return b.category
}

// Confidence returns the last final confidence.
func (b *Bar) Confidence() float64 {
	return b.confidence
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the bar, keeping the conversation.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.category = ""
	b.confidence = 0
	b.status = ""
}
