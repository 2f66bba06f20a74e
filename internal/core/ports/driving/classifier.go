package driving

import (
	"context"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// ClassifierService routes a question into a query category.
type ClassifierService interface {
	// Classify never fails: unusable completion output yields the
	// conversational category with zero confidence.
	Classify(ctx context.Context, query, historySummary string) domain.ClassifiedQuery
}
