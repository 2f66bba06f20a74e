package driven

import "context"

// Index stores chunks and answers ranked text queries over them.
// The core never computes embeddings; backends that need vectors embed
// the submitted text themselves.
type Index interface {
	// Upsert writes a chunk, replacing any existing chunk with the same ID.
	// Metadata must carry company, filing_type, fiscal_period and section_tag.
	Upsert(ctx context.Context, chunkID, text string, metadata map[string]string) error

	// Query returns at most topK matches ordered by descending score.
	// Every key in filter must equal the chunk's metadata value. A nil filter matches all.
	Query(ctx context.Context, text string, topK int, filter map[string]string) ([]IndexMatch, error)

	// Close releases resources.
	Close() error
}

// IndexMatch is one ranked query result.
type IndexMatch struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the backend similarity normalised to [0,1], higher is better.
	Score float64

	// Metadata is the metadata stored with the chunk.
	Metadata map[string]string

	// Text is the chunk text.
	Text string
}

// MatchesFilter reports whether metadata satisfies every filter key.
// Backends without native filtering use it to post-filter.
func MatchesFilter(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}
