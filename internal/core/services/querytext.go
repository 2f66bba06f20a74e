package services

import (
	"regexp"
	"strings"
)

var (
	queryPunct = regexp.MustCompile(`[^\p{L}\p{N}_\s$%.\-]`)
	querySpace = regexp.MustCompile(`\s+`)
)

// stopWords are dropped from lexical queries.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "did": true, "do": true, "does": true, "for": true,
	"from": true, "had": true, "has": true, "have": true, "how": true, "in": true,
	"is": true, "it": true, "its": true, "of": true, "on": true, "or": true,
	"that": true, "the": true, "their": true, "this": true, "to": true, "was": true,
	"were": true, "what": true, "when": true, "which": true, "who": true, "will": true,
	"with": true, "tell": true, "me": true, "about": true, "please": true, "can": true,
	"you": true, "i": true, "we": true, "our": true,
}

// CleanQuery reduces a question to its search terms for lexical backends.
// A question that cleans down to almost nothing is returned trimmed but
// otherwise unchanged.
func CleanQuery(text string) string {
	cleaned := queryPunct.ReplaceAllString(text, " ")
	cleaned = strings.ToLower(querySpace.ReplaceAllString(cleaned, " "))

	words := strings.Fields(cleaned)
	kept := words[:0]
	for _, w := range words {
		w = strings.Trim(w, ".-")
		if w != "" && !stopWords[w] {
			kept = append(kept, w)
		}
	}

	out := strings.Join(kept, " ")
	if len(out) < 3 {
		return strings.TrimSpace(text)
	}
	return out
}
