// Package tui provides an interactive terminal interface for asking
// questions about ingested filings.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Query answers questions.
	Query driving.QueryService

	// History shows and clears conversations.
	History driving.ContextManager
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Query == nil {
		return ErrMissingQueryService
	}
	if p.History == nil {
		return ErrMissingHistory
	}
	return nil
}
