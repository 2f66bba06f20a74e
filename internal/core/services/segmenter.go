package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
	"github.com/custodia-labs/filings-cli/internal/logger"
)

// Ensure Segmenter implements the interface.
var _ driving.SegmenterService = (*Segmenter)(nil)

var blankLines = regexp.MustCompile(`\n[ \t]*(?:\n[ \t]*){2,}`)

// Segmenter strips boilerplate from a filing, tags its sections and hands
// the sections to the post-processor pipeline for windowing.
type Segmenter struct {
	noise    []*regexp.Regexp
	sections *SectionMatcher
	pipeline driven.PostProcessorPipeline
}

// NewSegmenter validates the chunking settings and compiles the pattern tables.
// Invalid settings return an error wrapping domain.ErrInvalidConfig.
func NewSegmenter(cfg domain.SegmenterSettings, pipeline driven.PostProcessorPipeline) (*Segmenter, error) {
	if errs := cfg.Violations(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, multierror.Append(nil, errs...))
	}
	if pipeline == nil {
		return nil, fmt.Errorf("%w: segmenter needs a post-processor pipeline", domain.ErrInvalidConfig)
	}

	sections, err := NewSectionMatcher(cfg.Sections)
	if err != nil {
		return nil, err
	}

	noise := make([]*regexp.Regexp, 0, len(cfg.Noise))
	for _, n := range cfg.Noise {
		re, err := regexp.Compile(n)
		if err != nil {
			return nil, fmt.Errorf("%w: noise pattern %q: %v", domain.ErrInvalidConfig, n, err)
		}
		noise = append(noise, re)
	}

	return &Segmenter{
		noise:    noise,
		sections: sections,
		pipeline: pipeline,
	}, nil
}

// Clean removes noise spans and collapses the blank lines they leave behind.
func (s *Segmenter) Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, re := range s.noise {
		text = re.ReplaceAllString(text, "")
	}
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Sections returns the tagged spans of the filing's cleaned text.
func (s *Segmenter) Sections(filing domain.Filing) []domain.SectionSpan {
	return s.sections.Detect(s.Clean(filing.Text), filing.FilingType)
}

// Segment cleans the filing, splits it by section and windows each section.
func (s *Segmenter) Segment(ctx context.Context, filing domain.Filing) ([]domain.Chunk, error) {
	logger.Section("Segment")
	logger.Debug("Filing: %s", filing.Key())

	text := s.Clean(filing.Text)
	spans := s.sections.Detect(text, filing.FilingType)
	logger.Debug("Cleaned %d -> %d bytes, %d sections", len(filing.Text), len(text), len(spans))

	sections := make([]domain.Chunk, 0, len(spans))
	for i, span := range spans {
		sections = append(sections, domain.Chunk{
			Company:      filing.Company,
			FilingType:   filing.FilingType,
			FiscalPeriod: filing.FiscalPeriod,
			SectionTag:   span.Tag,
			SourceID:     filing.SourceID,
			Index:        i,
			Text:         text[span.Start:span.End],
		})
	}

	chunks, err := s.pipeline.Process(ctx, filing, sections)
	if err != nil {
		return nil, fmt.Errorf("segment %s: %w", filing.Key(), err)
	}

	logger.Info("Segmented %s into %d chunks", filing.Key(), len(chunks))
	return chunks, nil
}
