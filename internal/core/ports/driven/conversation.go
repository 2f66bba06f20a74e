package driven

import "github.com/custodia-labs/filings-cli/internal/core/domain"

// ConversationStore persists conversation turns between process runs.
// The in-process context manager stays authoritative while running.
type ConversationStore interface {
	// Load returns the stored turns, oldest first. Unknown IDs yield no turns.
	Load(conversationID string) ([]domain.ConversationTurn, error)

	// Save replaces the stored turns.
	Save(conversationID string, turns []domain.ConversationTurn) error

	// Delete removes the conversation. Unknown IDs are not an error.
	Delete(conversationID string) error
}
