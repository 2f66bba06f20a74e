// Package messages defines Bubbletea message types for the TUI.
// Messages represent events that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// AskRequested is a command to run a question through the query service.
type AskRequested struct {
	ConversationID string
	Query          string
	Answer         bool
}

// AskCompleted carries the query result back to the model.
type AskCompleted struct {
	Result domain.QueryResult
	Err    error
}

// HistoryLoaded carries the remembered turns of a conversation.
type HistoryLoaded struct {
	ConversationID string
	Turns          []domain.ConversationTurn
}

// ConversationCleared signals that a conversation was forgotten.
type ConversationCleared struct {
	ConversationID string
	Turns          int
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
