package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
	"github.com/custodia-labs/filings-cli/internal/logger"
	"github.com/custodia-labs/filings-cli/internal/metrics"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService segments filings and writes their chunks to the index.
type IngestService struct {
	segmenter   driving.SegmenterService
	index       driven.Index
	normalisers map[string]driven.Normaliser
	fallback    driven.Normaliser
	catalog     driven.FilingCatalog
	now         func() time.Time
}

// NewIngestService creates a new ingest service. The first normaliser is used
// for extensions no normaliser claims. The index may be nil, in which case
// every ingest fails with domain.ErrIndexUnavailable.
func NewIngestService(
	segmenter driving.SegmenterService,
	index driven.Index,
	normalisers ...driven.Normaliser,
) *IngestService {
	s := &IngestService{
		segmenter:   segmenter,
		index:       index,
		normalisers: make(map[string]driven.Normaliser),
		now:         time.Now,
	}
	for i, n := range normalisers {
		if i == 0 {
			s.fallback = n
		}
		for _, ext := range n.SupportedExtensions() {
			s.normalisers[strings.ToLower(ext)] = n
		}
	}
	return s
}

// SetCatalog sets the catalog that records every ingested filing.
func (s *IngestService) SetCatalog(catalog driven.FilingCatalog) {
	s.catalog = catalog
}

// Ingest segments the filing and upserts every chunk by ID.
// Chunk failures are counted in the report and returned as one error.
func (s *IngestService) Ingest(ctx context.Context, filing domain.Filing) (domain.IngestReport, error) {
	logger.Section("Ingest")

	report := domain.IngestReport{FilingKey: filing.Key(), Sections: make(map[string]int)}

	if err := filing.Validate(); err != nil {
		return report, fmt.Errorf("ingest: company and filing type are required: %w", err)
	}
	if s.index == nil {
		return report, fmt.Errorf("ingest %s: %w", report.FilingKey, domain.ErrIndexUnavailable)
	}

	chunks, err := s.segmenter.Segment(ctx, filing)
	if err != nil {
		return report, fmt.Errorf("ingest: %w", err)
	}
	report.Chunks = len(chunks)

	var firstErr error
	for _, c := range chunks {
		report.Sections[c.SectionTag]++

		if err := s.index.Upsert(ctx, c.ID, c.Text, c.Metadata().ToMap()); err != nil {
			logger.Warn("Upsert %s failed: %v", c.ID, err)
			report.Failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		report.Upserted++
	}

	metrics.AddIngested(report.Upserted, report.Failed)
	s.record(ctx, filing, report)
	logger.Info("Ingested %s: %d chunks, %d upserted, %d failed",
		report.FilingKey, report.Chunks, report.Upserted, report.Failed)

	if firstErr != nil {
		return report, fmt.Errorf("ingest %s: %d of %d chunks failed: %w",
			report.FilingKey, report.Failed, report.Chunks, firstErr)
	}
	return report, nil
}

// record writes the catalog entry. Catalog failures never fail the ingest.
func (s *IngestService) record(ctx context.Context, filing domain.Filing, report domain.IngestReport) {
	if s.catalog == nil || report.Upserted == 0 {
		return
	}
	rec := domain.FilingRecord{
		Key:          report.FilingKey,
		Company:      filing.Company,
		FilingType:   filing.FilingType,
		FiscalPeriod: filing.FiscalPeriod,
		SourceID:     filing.SourceID,
		Chunks:       report.Chunks,
		Failed:       report.Failed,
		IngestedAt:   s.now().UTC(),
	}
	if err := s.catalog.Record(ctx, rec); err != nil {
		logger.Warn("Catalog record %s failed: %v", rec.Key, err)
	}
}

// Filings lists the catalog of ingested filings.
func (s *IngestService) Filings(ctx context.Context) ([]domain.FilingRecord, error) {
	if s.catalog == nil {
		return []domain.FilingRecord{}, nil
	}
	records, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list filings: %w", err)
	}
	return records, nil
}

// IngestFile reads and normalises a local file, then ingests it.
// Identity fields left empty on filing are taken from the file name.
func (s *IngestService) IngestFile(ctx context.Context, path string, filing domain.Filing) (domain.IngestReport, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.IngestReport{}, fmt.Errorf("read %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	n, ok := s.normalisers[ext]
	if !ok {
		n = s.fallback
	}
	if n == nil {
		return domain.IngestReport{}, fmt.Errorf("%w: no normaliser for %q", domain.ErrUnsupportedType, ext)
	}

	text, err := n.Normalise(ctx, raw)
	if err != nil {
		return domain.IngestReport{}, fmt.Errorf("normalise %s: %w", path, err)
	}

	filing = FilingFromName(path, filing)
	filing.Text = text
	logger.Debug("File %s -> %s (%d bytes cleaned)", path, filing.Key(), len(text))

	return s.Ingest(ctx, filing)
}

// FilingFromName fills empty identity fields of filing from a file named
// COMPANY_FORM_PERIOD[_ACCESSION].ext. SourceID defaults to the base name.
func FilingFromName(path string, filing domain.Filing) domain.Filing {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.SplitN(stem, "_", 4)

	fill := func(dst *string, i int) {
		if *dst == "" && i < len(parts) && len(parts) >= 3 {
			*dst = parts[i]
		}
	}
	fill(&filing.Company, 0)
	fill(&filing.FilingType, 1)
	fill(&filing.FiscalPeriod, 2)
	fill(&filing.SourceID, 3)

	if filing.SourceID == "" {
		filing.SourceID = base
	}
	filing.Company = strings.ToUpper(filing.Company)
	filing.FilingType = strings.ToUpper(filing.FilingType)
	return filing
}
