package domain

import (
	"regexp"
	"strings"
	"time"
)

// Unsectioned tags text that precedes the first recognised section boundary,
// and every chunk of a filing with no recognised boundaries at all.
const Unsectioned = "UNSECTIONED"

// Metadata keys written to the index for every chunk.
const (
	MetaCompany      = "company"
	MetaFilingType   = "filing_type"
	MetaFiscalPeriod = "fiscal_period"
	MetaSectionTag   = "section_tag"
	MetaFiscalYear   = "fiscal_year"
	MetaSourceID     = "source_id"
)

// Filing is one regulatory filing as delivered by the acquisition step.
// It is immutable once ingested.
type Filing struct {
	// Company is the issuer identifier (usually the ticker).
	Company string

	// FilingType is the form type, e.g. "10-K" or "10-Q".
	FilingType string

	// FiscalPeriod identifies the reporting period, e.g. "FY2023" or "2023-Q2".
	FiscalPeriod string

	// SourceID is the stable source identity (accession number or file path).
	SourceID string

	// FiledAt is the filing date when known.
	FiledAt time.Time

	// Text is the cleaned filing text.
	Text string
}

// Key returns the identity used to derive reproducible chunk IDs.
func (f Filing) Key() string {
	return strings.Join([]string{
		strings.ToUpper(f.Company),
		strings.ToUpper(f.FilingType),
		f.FiscalPeriod,
		f.SourceID,
	}, "|")
}

// Validate checks the filing carries enough identity to be chunked.
func (f Filing) Validate() error {
	if strings.TrimSpace(f.Company) == "" || strings.TrimSpace(f.FilingType) == "" {
		return ErrInvalidInput
	}
	return nil
}

// Chunk is a contiguous, section-tagged span of a filing's text.
// Chunks are written once and only ever replaced by re-ingesting under the same ID.
type Chunk struct {
	// ID is derived from the filing key and Index, so re-processing is idempotent.
	ID string

	Company      string
	FilingType   string
	FiscalPeriod string
	SectionTag   string
	SourceID     string

	// Index is the chunk's position within the filing.
	Index int

	Text       string
	TokenCount int
}

// Metadata returns the index metadata for the chunk.
func (c Chunk) Metadata() ChunkMetadata {
	return ChunkMetadata{
		Company:      c.Company,
		FilingType:   c.FilingType,
		FiscalPeriod: c.FiscalPeriod,
		SectionTag:   c.SectionTag,
		FiscalYear:   FiscalYear(c.FiscalPeriod),
		SourceID:     c.SourceID,
	}
}

// ChunkMetadata is the structured metadata stored alongside each chunk.
type ChunkMetadata struct {
	Company      string `json:"company"`
	FilingType   string `json:"filing_type"`
	FiscalPeriod string `json:"fiscal_period"`
	SectionTag   string `json:"section_tag"`
	FiscalYear   string `json:"fiscal_year,omitempty"`
	SourceID     string `json:"source_id,omitempty"`
}

// ToMap flattens the metadata into the key/value form the index accepts.
// Empty values are omitted.
func (m ChunkMetadata) ToMap() map[string]string {
	out := make(map[string]string, 6)
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set(MetaCompany, m.Company)
	set(MetaFilingType, m.FilingType)
	set(MetaFiscalPeriod, m.FiscalPeriod)
	set(MetaSectionTag, m.SectionTag)
	set(MetaFiscalYear, m.FiscalYear)
	set(MetaSourceID, m.SourceID)
	return out
}

// MetadataFromMap rebuilds ChunkMetadata from index metadata.
func MetadataFromMap(m map[string]string) ChunkMetadata {
	return ChunkMetadata{
		Company:      m[MetaCompany],
		FilingType:   m[MetaFilingType],
		FiscalPeriod: m[MetaFiscalPeriod],
		SectionTag:   m[MetaSectionTag],
		FiscalYear:   m[MetaFiscalYear],
		SourceID:     m[MetaSourceID],
	}
}

var yearPattern = regexp.MustCompile(`199\d|20\d{2}`)

// FiscalYear extracts the first four-digit year from a fiscal period label.
// Returns "" when the label carries no year.
func FiscalYear(period string) string {
	return yearPattern.FindString(period)
}

// SectionPattern maps a boundary regular expression to the tag it introduces.
// The table of patterns is configuration data; order breaks ties between
// patterns matching at the same offset.
type SectionPattern struct {
	// Tag is the section label, e.g. "ITEM 1A".
	Tag string `toml:"tag"`

	// Pattern is a Go regular expression matching the section heading.
	Pattern string `toml:"pattern"`

	// FilingTypes restricts the pattern to these form types. Empty means all.
	FilingTypes []string `toml:"filing_types,omitempty"`
}

// AppliesTo reports whether the pattern is used for the given form type.
func (p SectionPattern) AppliesTo(filingType string) bool {
	if len(p.FilingTypes) == 0 {
		return true
	}
	for _, ft := range p.FilingTypes {
		if strings.EqualFold(ft, filingType) {
			return true
		}
	}
	return false
}

// SectionSpan is a half-open byte range [Start, End) of text carrying one tag.
type SectionSpan struct {
	Tag   string
	Start int
	End   int
}

// IngestReport summarises one ingested filing.
type IngestReport struct {
	FilingKey string         `json:"filing_key"`
	Chunks    int            `json:"chunks"`
	Sections  map[string]int `json:"sections"`
	Upserted  int            `json:"upserted"`
	Failed    int            `json:"failed"`
}

// FilingRecord is the catalog entry written after a filing is ingested.
type FilingRecord struct {
	Key          string    `json:"filing_key"`
	Company      string    `json:"company"`
	FilingType   string    `json:"filing_type"`
	FiscalPeriod string    `json:"fiscal_period"`
	SourceID     string    `json:"source_id"`
	Chunks       int       `json:"chunks"`
	Failed       int       `json:"failed"`
	IngestedAt   time.Time `json:"ingested_at"`
}
