// Package normalisers provides implementations of the Normaliser interface
// for the formats filings are distributed in. Each normaliser turns raw
// filing bytes into line-oriented text the segmenter can tag by section.
//
// The ingest service selects a normaliser by file extension.
package normalisers
