package domain

import "strings"

// QueryCategory is the routing label assigned to an incoming question.
type QueryCategory string

// Available query categories.
const (
	// CategoryDirectLookup asks for a specific fact from one filing.
	CategoryDirectLookup QueryCategory = "DIRECT_LOOKUP"

	// CategoryCrossEntityComparison compares two or more companies.
	CategoryCrossEntityComparison QueryCategory = "CROSS_ENTITY_COMPARISON"

	// CategoryTemporalTrend asks how something changed over time.
	CategoryTemporalTrend QueryCategory = "TEMPORAL_TREND"

	// CategoryConversational covers greetings, meta questions and anything
	// that could not be routed with confidence.
	CategoryConversational QueryCategory = "CONVERSATIONAL"
)

// Categories lists every category in the order the classifier prompt presents them.
func Categories() []QueryCategory {
	return []QueryCategory{
		CategoryDirectLookup,
		CategoryCrossEntityComparison,
		CategoryTemporalTrend,
		CategoryConversational,
	}
}

// IsValid returns true if the category is recognised.
func (c QueryCategory) IsValid() bool {
	switch c {
	case CategoryDirectLookup, CategoryCrossEntityComparison, CategoryTemporalTrend, CategoryConversational:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c QueryCategory) String() string {
	return string(c)
}

// Description returns a human-readable description of the category.
func (c QueryCategory) Description() string {
	switch c {
	case CategoryDirectLookup:
		return "Direct lookup of a specific figure or fact"
	case CategoryCrossEntityComparison:
		return "Comparison across companies"
	case CategoryTemporalTrend:
		return "Trend across reporting periods"
	case CategoryConversational:
		return "General conversation"
	default:
		return "Unknown"
	}
}

// ParseQueryCategory normalises a label such as "cross entity comparison"
// or "Temporal-Trend" into a QueryCategory.
func ParseQueryCategory(s string) (QueryCategory, bool) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	c := QueryCategory(norm)
	return c, c.IsValid()
}

// ClassifiedQuery is the routing decision for one question.
// It lives for the current turn only.
type ClassifiedQuery struct {
	Category   QueryCategory `json:"category"`
	Confidence float64       `json:"confidence"`
	Rationale  string        `json:"rationale"`

	// Fallback is set when the completion output was unusable and the
	// category was defaulted.
	Fallback bool `json:"fallback,omitempty"`

	// Hedged is set when the completion named more than one category.
	Hedged bool `json:"hedged,omitempty"`
}

// FallbackClassification is the result used whenever classification cannot be trusted.
func FallbackClassification(reason string) ClassifiedQuery {
	return ClassifiedQuery{
		Category:   CategoryConversational,
		Confidence: 0,
		Rationale:  reason,
		Fallback:   true,
	}
}

// ClampConfidence bounds a score to [0,1].
func ClampConfidence(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// Answer is a composed response built from an evidence set.
type Answer struct {
	Text       string   `json:"answer"`
	Sources    []string `json:"sources,omitempty"`
	Confidence float64  `json:"confidence"`
}

// QueryResult is what presentation layers receive for one question.
type QueryResult struct {
	ConversationID string          `json:"conversation_id"`
	Query          string          `json:"query"`
	Classification ClassifiedQuery `json:"classification"`
	Plan           RetrievalPlan   `json:"plan"`
	Evidence       EvidenceSet     `json:"evidence"`

	// Confidence is the final score for the response as a whole.
	Confidence float64 `json:"confidence"`

	// Answer is only set when answer composition was requested.
	Answer *Answer `json:"answer,omitempty"`
}
