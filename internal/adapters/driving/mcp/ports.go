package mcp

import (
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query runs classify, retrieve and remember as one unit.
	Query driving.QueryService

	// Classifier labels questions without touching the index.
	Classifier driving.ClassifierService

	// Retrieval plans and executes evidence retrieval.
	Retrieval driving.RetrievalService

	// History keeps per-conversation turns.
	History driving.ContextManager

	// Ingest exposes the filing catalog. Optional.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.History == nil {
		return ErrMissingHistory
	}
	return nil
}
