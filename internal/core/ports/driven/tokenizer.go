package driven

// Tokenizer splits text into tokens for chunk sizing.
type Tokenizer interface {
	// Tokens splits text into pieces whose concatenation reproduces text.
	Tokens(text string) []string

	// Count returns the number of tokens in text.
	Count(text string) int

	// Name identifies the tokenizer, e.g. "cl100k_base" or "whitespace".
	Name() string
}
