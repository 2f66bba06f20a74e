package driving

import (
	"context"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// RetrievalService gathers evidence for a question.
type RetrievalService interface {
	// Plan returns the retrieval plan for a category.
	Plan(category domain.QueryCategory) domain.RetrievalPlan

	// Retrieve runs the plan's sub-queries and merges their results.
	// It never fails: an unreachable index yields an empty, zero-confidence set.
	Retrieve(ctx context.Context, query string, plan domain.RetrievalPlan) domain.EvidenceSet
}
