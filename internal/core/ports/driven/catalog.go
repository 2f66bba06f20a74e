package driven

import (
	"context"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// FilingCatalog records which filings have been ingested.
// This is an optional service - when nil, ingest still writes chunks but
// nothing is listed by `filings list`.
type FilingCatalog interface {
	// Record stores or replaces the entry for record.Key.
	Record(ctx context.Context, record domain.FilingRecord) error

	// List returns every entry ordered by company, filing type then period.
	List(ctx context.Context) ([]domain.FilingRecord, error)
}
