package driving

import (
	"context"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// QueryService runs classify and retrieve as one unit for presentation layers.
type QueryService interface {
	// Ask classifies the question, retrieves evidence and records the turn.
	Ask(ctx context.Context, conversationID, query string) (domain.QueryResult, error)

	// Answer runs Ask and composes a response from the evidence.
	Answer(ctx context.Context, conversationID, query string) (domain.QueryResult, error)
}
