// Package whitespace provides a dependency-free word tokenizer.
package whitespace

import (
	"regexp"

	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Name is the tokenizer name used in configuration.
const Name = "whitespace"

var _ driven.Tokenizer = (*Tokenizer)(nil)

// wordPattern matches a word together with the whitespace before it.
var wordPattern = regexp.MustCompile(`\s*\S+`)

// Tokenizer treats every run of non-space characters as one token.
// Leading whitespace is carried by the word that follows it and trailing
// whitespace by the last word, so joining the tokens reproduces the input.
type Tokenizer struct{}

// New creates a whitespace tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Name returns "whitespace".
func (t *Tokenizer) Name() string {
	return Name
}

// Tokens splits text into words. Blank text has no tokens.
func (t *Tokenizer) Tokens(text string) []string {
	locs := wordPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	tokens := make([]string, len(locs))
	for i, loc := range locs {
		tokens[i] = text[loc[0]:loc[1]]
	}
	tokens[len(tokens)-1] += text[locs[len(locs)-1][1]:]
	return tokens
}

// Count returns the number of words in text.
func (t *Tokenizer) Count(text string) int {
	return len(wordPattern.FindAllStringIndex(text, -1))
}
