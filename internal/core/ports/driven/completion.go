package driven

import "context"

// CompletionService provides text completion from a language model.
// This is an optional service - when nil, classification falls back to the
// conversational category and answer composition is skipped.
//
// Implementations may include:
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
//   - Google Gemini
//   - Ollama (local models)
type CompletionService interface {
	// Complete returns the model's reply to prompt. History is a plain-text
	// rendering of the conversation so far and may be empty.
	Complete(ctx context.Context, prompt, history string) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	// This is used at startup to verify connectivity before serving.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
