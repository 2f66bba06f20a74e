// Package completion groups the CompletionService adapters.
//
// Every provider receives the rendered prompt as the user message and the
// conversation summary, when present, as system context:
//
//   - anthropic: /v1/messages over net/http
//   - ollama: /api/chat over net/http
//   - openai: Chat Completions through openai-go
//   - gemini: GenerateContent through generative-ai-go
package completion

// HistoryPreamble introduces the conversation summary in the system context.
const HistoryPreamble = "Conversation so far (oldest first):\n"

// SystemContext renders the system context for a history summary.
// Returns "" when there is no history.
func SystemContext(history string) string {
	if history == "" {
		return ""
	}
	return HistoryPreamble + history
}
