package driving

import "github.com/custodia-labs/filings-cli/internal/core/domain"

// ContextManager owns bounded per-conversation history.
type ContextManager interface {
	// Append records a turn, evicting the oldest when the conversation is full.
	Append(conversationID string, turn domain.ConversationTurn)

	// History returns a snapshot of the conversation, oldest first.
	History(conversationID string) []domain.ConversationTurn

	// Summary renders recent history as text for the classifier.
	Summary(conversationID string) string

	// Clear forgets a conversation.
	Clear(conversationID string)

	// Confidence combines routing and evidence confidence into the
	// final score reported for a response.
	Confidence(classification domain.ClassifiedQuery, evidence domain.EvidenceSet) float64
}
