package domain

import (
	"fmt"
	"strings"
	"time"
)

// RetrievalPlan is the category-specific retrieval configuration.
// It is derived deterministically from a ClassifiedQuery's category.
type RetrievalPlan struct {
	Category QueryCategory `json:"category"`

	// TopK is the number of results requested from every sub-query.
	TopK int `json:"top_k"`

	// EntityFanOut issues one company-filtered sub-query per detected entity.
	EntityFanOut bool `json:"entity_fan_out"`

	// TemporalFanOut issues one year-filtered sub-query per detected year.
	TemporalFanOut bool `json:"temporal_fan_out"`

	// MaxResults caps the merged evidence set.
	MaxResults int `json:"max_results"`

	// PromptTemplate names the template used to compose a response.
	PromptTemplate string `json:"prompt_template"`

	// SubQueryTimeout bounds every individual index call.
	SubQueryTimeout time.Duration `json:"sub_query_timeout"`
}

// SubQueryKind distinguishes how a sub-query was derived.
type SubQueryKind string

// Sub-query kinds.
const (
	SubQueryPrimary SubQueryKind = "primary"
	SubQueryEntity  SubQueryKind = "entity"
	SubQueryPeriod  SubQueryKind = "period"
)

// SubQuery is one index call issued by the orchestrator.
type SubQuery struct {
	Kind   SubQueryKind      `json:"kind"`
	Text   string            `json:"text"`
	TopK   int               `json:"top_k"`
	Filter map[string]string `json:"filter,omitempty"`
}

// Label is a short, stable description used for provenance and logs.
func (q SubQuery) Label() string {
	if len(q.Filter) == 0 {
		return string(q.Kind)
	}
	parts := make([]string, 0, len(q.Filter))
	for _, k := range []string{MetaCompany, MetaFiscalYear, MetaFiscalPeriod, MetaFilingType, MetaSectionTag} {
		if v, ok := q.Filter[k]; ok {
			parts = append(parts, k+"="+v)
		}
	}
	return string(q.Kind) + "[" + strings.Join(parts, ",") + "]"
}

// EvidenceItem is one retrieved chunk with its score and provenance.
type EvidenceItem struct {
	ChunkID  string        `json:"chunk_id"`
	Score    float64       `json:"score"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`

	// SubQuery is the label of the sub-query that produced this item.
	SubQuery string `json:"sub_query"`
}

// RetrievalStatus reports how many sub-queries succeeded.
type RetrievalStatus string

// Retrieval statuses.
const (
	// RetrievalComplete means every sub-query returned.
	RetrievalComplete RetrievalStatus = "complete"

	// RetrievalPartial means at least one, but not every, sub-query returned.
	RetrievalPartial RetrievalStatus = "partial"

	// RetrievalUnavailable means no sub-query returned.
	RetrievalUnavailable RetrievalStatus = "unavailable"
)

// SubQueryOutcome records the result of one sub-query.
type SubQueryOutcome struct {
	SubQuery SubQuery      `json:"sub_query"`
	Results  int           `json:"results"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// OK reports whether the sub-query succeeded.
func (o SubQueryOutcome) OK() bool {
	return o.Err == ""
}

// EvidenceSet is the deduplicated, score-ordered evidence for one question.
type EvidenceSet struct {
	Items      []EvidenceItem    `json:"items"`
	Confidence float64           `json:"confidence"`
	Status     RetrievalStatus   `json:"status"`
	Outcomes   []SubQueryOutcome `json:"outcomes,omitempty"`
}

// EmptyEvidence returns a valid, zero-confidence evidence set.
func EmptyEvidence(status RetrievalStatus) EvidenceSet {
	return EvidenceSet{
		Items:      []EvidenceItem{},
		Confidence: 0,
		Status:     status,
	}
}

// IsEmpty reports whether the set carries no evidence.
func (e EvidenceSet) IsEmpty() bool {
	return len(e.Items) == 0
}

// Summary renders a compact description used in conversation history.
func (e EvidenceSet) Summary() string {
	if e.IsEmpty() {
		return fmt.Sprintf("no evidence (%s)", e.Status)
	}
	seen := make(map[string]bool)
	var refs []string
	for _, item := range e.Items {
		ref := item.Metadata.Company + " " + item.Metadata.FilingType + " " +
			item.Metadata.FiscalPeriod + " " + item.Metadata.SectionTag
		ref = strings.Join(strings.Fields(ref), " ")
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true
		refs = append(refs, ref)
		if len(refs) == 3 {
			break
		}
	}
	return fmt.Sprintf("%d passages, top %.2f: %s", len(e.Items), e.Items[0].Score, strings.Join(refs, "; "))
}
