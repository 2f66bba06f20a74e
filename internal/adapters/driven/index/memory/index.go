// Package memory provides an in-process driven.Index.
package memory

import (
	"context"
	"maps"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.Index = (*Index)(nil)

var termPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

type entry struct {
	text     string
	terms    map[string]bool
	metadata map[string]string
}

// Index is an in-memory lexical index. A chunk scores the fraction of
// distinct query terms it contains.
type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty in-memory index.
func New() *Index {
	return &Index{entries: make(map[string]entry)}
}

// Upsert stores or replaces a chunk.
func (x *Index) Upsert(ctx context.Context, chunkID, text string, metadata map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if chunkID == "" {
		return domain.ErrInvalidInput
	}
	e := entry{
		text:     text,
		terms:    make(map[string]bool),
		metadata: maps.Clone(metadata),
	}
	for _, t := range terms(text) {
		e.terms[t] = true
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.entries[chunkID] = e
	return nil
}

// Query ranks chunks by query term coverage. Chunks matching no term are
// never returned. Ties are broken by chunk ID.
func (x *Index) Query(ctx context.Context, text string, topK int, filter map[string]string) ([]driven.IndexMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []driven.IndexMatch{}, nil
	}

	want := unique(terms(text))
	if len(want) == 0 {
		return []driven.IndexMatch{}, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := make([]driven.IndexMatch, 0)
	for id, e := range x.entries {
		if !driven.MatchesFilter(e.metadata, filter) {
			continue
		}
		hits := 0
		for _, t := range want {
			if e.terms[t] {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		matches = append(matches, driven.IndexMatch{
			ChunkID:  id,
			Score:    float64(hits) / float64(len(want)),
			Metadata: maps.Clone(e.metadata),
			Text:     e.text,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ChunkID < matches[j].ChunkID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len returns the number of stored chunks.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Get returns a stored chunk's text and metadata.
func (x *Index) Get(chunkID string) (string, map[string]string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	e, ok := x.entries[chunkID]
	if !ok {
		return "", nil, false
	}
	return e.text, maps.Clone(e.metadata), true
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

func terms(text string) []string {
	return termPattern.FindAllString(strings.ToLower(text), -1)
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
