package driven

import (
	"context"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// PostProcessor transforms the section chunks of a filing.
// PostProcessors are chained in a pipeline (e.g., token windowing).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes the filing and its current chunks and returns new chunks.
	// The first processor receives one chunk per detected section.
	Process(ctx context.Context, filing domain.Filing, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the chunks through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, filing domain.Filing, chunks []domain.Chunk) ([]domain.Chunk, error)
}
