package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown filings.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Normalise converts a Markdown filing to plain text.
func (n *Normaliser) Normalise(_ context.Context, raw []byte) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidInput
	}
	content := strings.ToValidUTF8(string(raw), "�")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return stripMarkdown(content), nil
}

var (
	frontMatter   = regexp.MustCompile(`(?s)\A---\n.*?\n---\n`)
	codeFence     = regexp.MustCompile("(?m)^```.*$")
	htmlComment   = regexp.MustCompile(`(?s)<!--.*?-->`)
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	refLinks      = regexp.MustCompile(`\[([^\]]+)\]\[[^\]]*\]`)
	linkDefs      = regexp.MustCompile(`(?m)^\s*\[[^\]]+\]:\s+\S+.*$`)
	headings      = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+`)
	closingHashes = regexp.MustCompile(`(?m)[ \t]+#+[ \t]*$`)
	emphasis      = regexp.MustCompile(`(\*\*|__|\*|~~)([^\s*_~](?:.*?[^\s*_~])?)(\*\*|__|\*|~~)`)
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	blockquote    = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	rules         = regexp.MustCompile(`(?m)^[ \t]*(?:[-*_][ \t]*){3,}$`)
	tableDivider  = regexp.MustCompile(`(?m)^[ \t]*\|?[ \t]*:?-{3,}:?[ \t]*(?:\|[ \t]*:?-{3,}:?[ \t]*)*\|?[ \t]*$\n?`)
	bullets       = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes formatting while keeping the text of every block,
// including code and tables, which in filings usually hold figures.
func stripMarkdown(content string) string {
	content = frontMatter.ReplaceAllString(content, "")
	content = htmlComment.ReplaceAllString(content, "")
	content = codeFence.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = refLinks.ReplaceAllString(content, "$1")
	content = linkDefs.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "")
	content = closingHashes.ReplaceAllString(content, "")
	content = tableDivider.ReplaceAllString(content, "")
	content = rules.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = blockquote.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = tableRow(line)
	}
	content = strings.Join(lines, "\n")

	content = blankRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// tableRow turns "| Revenue | 383,285 |" into "Revenue\t383,285".
func tableRow(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "|") || strings.Count(trimmed, "|") < 2 {
		return strings.TrimRight(line, " \t")
	}
	trimmed = strings.TrimSuffix(strings.TrimPrefix(trimmed, "|"), "|")
	cells := strings.Split(trimmed, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return strings.Join(cells, "\t")
}
