package whitespace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizer_Tokens(t *testing.T) {
	tok := New()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "blank", text: "  \n\t ", want: nil},
		{name: "single word", text: "revenue", want: []string{"revenue"}},
		{name: "leading space kept", text: "  net sales", want: []string{"  net", " sales"}},
		{name: "trailing space on last token", text: "net sales\n\n", want: []string{"net", " sales\n\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.Tokens(tt.text))
		})
	}
}

func TestTokenizer_TokensReproduceText(t *testing.T) {
	tok := New()
	text := "ITEM 1A. RISK FACTORS\n\nOur business is subject to risks.  \n"

	assert.Equal(t, text, strings.Join(tok.Tokens(text), ""))
}

func TestTokenizer_Count(t *testing.T) {
	tok := New()

	assert.Equal(t, 0, tok.Count(""))
	assert.Equal(t, 4, tok.Count("one two\nthree   four "))
	assert.Equal(t, len(tok.Tokens("a b c")), tok.Count("a b c"))
}

func TestTokenizer_Name(t *testing.T) {
	assert.Equal(t, "whitespace", New().Name())
}
