package domain

import (
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryCategory(t *testing.T) {
	tests := []struct {
		in    string
		want  QueryCategory
		valid bool
	}{
		{"DIRECT_LOOKUP", CategoryDirectLookup, true},
		{"cross entity comparison", CategoryCrossEntityComparison, true},
		{" Temporal-Trend ", CategoryTemporalTrend, true},
		{"conversational", CategoryConversational, true},
		{"FINANCIAL", QueryCategory("FINANCIAL"), false},
		{"", QueryCategory(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseQueryCategory(tt.in)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.2))
	assert.Equal(t, 1.0, ClampConfidence(7))
	assert.Equal(t, 0.4, ClampConfidence(0.4))
	assert.Equal(t, 0.0, ClampConfidence(math.NaN()))
}

func TestFallbackClassification(t *testing.T) {
	c := FallbackClassification("unparsable")
	assert.Equal(t, CategoryConversational, c.Category)
	assert.Equal(t, 0.0, c.Confidence)
	assert.True(t, c.Fallback)
}

func TestFiling_Key(t *testing.T) {
	a := Filing{Company: "aapl", FilingType: "10-k", FiscalPeriod: "FY2023", SourceID: "0000320193-23-000106"}
	b := Filing{Company: "AAPL", FilingType: "10-K", FiscalPeriod: "FY2023", SourceID: "0000320193-23-000106"}
	assert.Equal(t, a.Key(), b.Key())

	c := b
	c.FiscalPeriod = "FY2022"
	assert.NotEqual(t, b.Key(), c.Key())
}

func TestFiling_Validate(t *testing.T) {
	assert.NoError(t, Filing{Company: "AAPL", FilingType: "10-K"}.Validate())
	assert.ErrorIs(t, Filing{FilingType: "10-K"}.Validate(), ErrInvalidInput)
	assert.ErrorIs(t, Filing{Company: "AAPL"}.Validate(), ErrInvalidInput)
}

func TestFiscalYear(t *testing.T) {
	assert.Equal(t, "2023", FiscalYear("FY2023"))
	assert.Equal(t, "2024", FiscalYear("2024-Q2"))
	assert.Equal(t, "1998", FiscalYear("1998"))
	assert.Equal(t, "", FiscalYear("Q3"))
}

func TestChunk_Metadata(t *testing.T) {
	c := Chunk{Company: "MSFT", FilingType: "10-Q", FiscalPeriod: "2024-Q1", SectionTag: "ITEM 2"}
	m := c.Metadata().ToMap()

	assert.Equal(t, "MSFT", m[MetaCompany])
	assert.Equal(t, "2024", m[MetaFiscalYear])
	assert.NotContains(t, m, MetaSourceID)
	assert.Equal(t, c.Metadata(), MetadataFromMap(m))
}

func TestSectionPattern_AppliesTo(t *testing.T) {
	all := SectionPattern{Tag: "X"}
	tenK := SectionPattern{Tag: "Y", FilingTypes: []string{"10-K"}}

	assert.True(t, all.AppliesTo("8-K"))
	assert.True(t, tenK.AppliesTo("10-k"))
	assert.False(t, tenK.AppliesTo("10-Q"))
}

func TestDefaultSectionPatterns_MatchHeadingsOnly(t *testing.T) {
	find := func(tag, filingType string) *regexp.Regexp {
		for _, p := range DefaultSectionPatterns() {
			if p.Tag == tag && p.AppliesTo(filingType) {
				return regexp.MustCompile(p.Pattern)
			}
		}
		t.Fatalf("no pattern for %s", tag)
		return nil
	}

	item7 := find("ITEM 7", "10-K")
	assert.True(t, item7.MatchString("ITEM 7. MANAGEMENT'S DISCUSSION AND ANALYSIS"))
	assert.True(t, item7.MatchString("Item 7 Management Discussion"))
	assert.False(t, item7.MatchString("as described in Item 7 Management's Discussion"))

	item1 := find("ITEM 1", "10-K")
	assert.False(t, item1.MatchString("ITEM 10. DIRECTORS"))
	assert.True(t, find("ITEM 1A", "10-Q").MatchString("Item 1A. Risk Factors"))
}

func TestSubQuery_Label(t *testing.T) {
	assert.Equal(t, "primary", SubQuery{Kind: SubQueryPrimary}.Label())
	q := SubQuery{Kind: SubQueryEntity, Filter: map[string]string{MetaCompany: "ACME"}}
	assert.Equal(t, "entity[company=ACME]", q.Label())
}

func TestEvidenceSet_Summary(t *testing.T) {
	assert.Equal(t, "no evidence (unavailable)", EmptyEvidence(RetrievalUnavailable).Summary())

	e := EvidenceSet{
		Items: []EvidenceItem{
			{ChunkID: "a", Score: 0.9, Metadata: ChunkMetadata{Company: "AAPL", FilingType: "10-K", FiscalPeriod: "FY2023", SectionTag: "ITEM 7"}},
			{ChunkID: "b", Score: 0.8, Metadata: ChunkMetadata{Company: "AAPL", FilingType: "10-K", FiscalPeriod: "FY2023", SectionTag: "ITEM 7"}},
		},
		Status: RetrievalComplete,
	}
	assert.Equal(t, "2 passages, top 0.90: AAPL 10-K FY2023 ITEM 7", e.Summary())
}
