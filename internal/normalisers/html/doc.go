// Package html provides a Normaliser implementation for HTML filings.
// It extracts readable text from EDGAR HTML and inline XBRL documents,
// stripping tags, scripts, styles and the hidden XBRL header, and decoding
// entities so section headings start their own lines.
package html
