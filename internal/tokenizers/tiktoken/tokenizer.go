// Package tiktoken sizes chunks with the BPE encodings used by OpenAI models.
package tiktoken

import (
	"fmt"

	tke "github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "cl100k_base"

var _ driven.Tokenizer = (*Tokenizer)(nil)

// Tokenizer wraps a tiktoken encoding.
type Tokenizer struct {
	encoding string
	enc      *tke.Tiktoken
}

// New loads the named encoding. The BPE ranks are fetched on first use and
// cached under TIKTOKEN_CACHE_DIR when that variable is set.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tke.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Tokenizer{encoding: encoding, enc: enc}, nil
}

// Name returns the encoding name.
func (t *Tokenizer) Name() string {
	return t.encoding
}

// Tokens returns the decoded text of every token. Multi-byte characters may
// straddle two tokens; the byte-wise concatenation still equals the input.
func (t *Tokenizer) Tokens(text string) []string {
	ids := t.enc.Encode(text, nil, nil)
	if len(ids) == 0 {
		return nil
	}
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = t.enc.Decode([]int{id})
	}
	return tokens
}

// Count returns the number of BPE tokens in text.
func (t *Tokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}
