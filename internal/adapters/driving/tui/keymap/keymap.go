// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Ask submits the question in the input box.
	Ask key.Binding

	// Focus returns to the question input from the evidence list.
	Focus key.Binding

	// Up and Down move through the evidence list.
	Up   key.Binding
	Down key.Binding

	// Detail toggles the full text of the selected passage.
	Detail key.Binding

	// Answer toggles answer composition for the next question.
	Answer key.Binding

	// History shows the remembered turns of the conversation.
	History key.Binding

	// Clear forgets the conversation.
	Clear key.Binding

	// NewConversation starts a fresh conversation ID.
	NewConversation key.Binding

	// Quit exits the application.
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Ask: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ask"),
		),
		Focus: key.NewBinding(
			key.WithKeys("esc", "/"),
			key.WithHelp("/", "new question"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "detail"),
		),
		Answer: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "answer mode"),
		),
		History: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "history"),
		),
		Clear: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear"),
		),
		NewConversation: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new conversation"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// InputHelp returns the hints shown while typing a question.
func (k *KeyMap) InputHelp() []key.Binding {
	return []key.Binding{k.Ask, k.Answer}
}

// EvidenceHelp returns the hints shown while browsing evidence.
func (k *KeyMap) EvidenceHelp() []key.Binding {
	return []key.Binding{k.Up, k.Detail, k.Focus, k.History, k.Clear, k.NewConversation, k.Quit}
}

// FullHelp returns every binding grouped by purpose.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Ask, k.Answer, k.Focus},
		{k.Up, k.Down, k.Detail},
		{k.History, k.Clear, k.NewConversation, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
