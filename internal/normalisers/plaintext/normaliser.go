// Package plaintext provides the fallback Normaliser for text filings.
package plaintext

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// EDGAR text submissions mark pages and wrap documents in SGML-style tags.
var (
	secHeader   = regexp.MustCompile(`(?is)<SEC-HEADER>.*?</SEC-HEADER>`)
	pageMarkers = regexp.MustCompile(`(?im)^[ \t]*</?(?:PAGE|DOCUMENT|TEXT|TYPE|SEQUENCE|FILENAME|DESCRIPTION)>.*$`)
)

// Normaliser handles plain text filings.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt", ".text"}
}

// Normalise returns the text with line endings, page breaks and EDGAR
// markers normalised. Invalid UTF-8 is replaced.
func (n *Normaliser) Normalise(_ context.Context, raw []byte) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}

	content := strings.ToValidUTF8(string(raw), "�")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\f", "\n")
	content = strings.ReplaceAll(content, "\x00", "")

	content = secHeader.ReplaceAllString(content, "")
	content = pageMarkers.ReplaceAllString(content, "")

	return strings.TrimSpace(content), nil
}
