package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.FilingCatalog = (*Catalog)(nil)

// Catalog is an in-memory ingest ledger.
type Catalog struct {
	mu      sync.RWMutex
	records map[string]domain.FilingRecord
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{records: make(map[string]domain.FilingRecord)}
}

// Record stores or replaces the record for its filing key.
func (c *Catalog) Record(_ context.Context, record domain.FilingRecord) error {
	if record.Key == "" {
		return domain.ErrInvalidInput
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[record.Key] = record
	return nil
}

// List returns every record ordered by key.
func (c *Catalog) List(_ context.Context) ([]domain.FilingRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.FilingRecord, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
