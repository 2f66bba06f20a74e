package driving

import (
	"context"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// SegmenterService converts a cleaned filing into section-tagged chunks.
type SegmenterService interface {
	// Segment returns the filing's chunks in document order.
	// A filing without recognisable sections is tagged UNSECTIONED, never rejected.
	// Errors only come from cancellation or a failing post-processor.
	Segment(ctx context.Context, filing domain.Filing) ([]domain.Chunk, error)

	// Sections returns the tagged spans of cleaned filing text.
	Sections(filing domain.Filing) []domain.SectionSpan
}

// IngestService segments filings and writes their chunks to the index.
type IngestService interface {
	// Ingest segments the filing and upserts every chunk by ID.
	// Re-ingesting a filing overwrites its previous chunks.
	Ingest(ctx context.Context, filing domain.Filing) (domain.IngestReport, error)

	// IngestFile reads, normalises and ingests a local file.
	IngestFile(ctx context.Context, path string, filing domain.Filing) (domain.IngestReport, error)

	// Filings lists the catalog of ingested filings. Empty without a catalog.
	Filings(ctx context.Context) ([]domain.FilingRecord, error)
}
