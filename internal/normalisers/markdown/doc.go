// Package markdown provides a Normaliser for filings exported as Markdown.
// Formatting is stripped so headings such as "## Item 7." become plain
// lines the segmenter recognises, and table rows keep one row per line.
package markdown
