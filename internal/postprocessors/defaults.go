package postprocessors

import (
	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(chunker.Name, buildChunker)
}

// NewSegmenterPipeline builds the default pipeline for the segmenter:
// token windowing sized by tok.
func NewSegmenterPipeline(cfg domain.SegmenterSettings, tok driven.Tokenizer) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	return r.BuildPipeline([]string{chunker.Name}, map[string]map[string]any{
		chunker.Name: {
			"chunk_size":     cfg.ChunkSize,
			"overlap":        cfg.Overlap,
			"min_chunk_size": cfg.MinChunkSize,
			"tokenizer":      tok,
		},
	})
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Tokens per chunk (default: 800)
//   - overlap (int): Overlapping tokens between chunks (default: 100)
//   - min_chunk_size (int): Smallest standalone chunk (default: 200)
//   - tokenizer (driven.Tokenizer): Token splitter (default: whitespace)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
		if _, ok := cfg["min_chunk_size"]; ok {
			opts = append(opts, chunker.WithMinChunkSize(getIntFromConfig(cfg, "min_chunk_size")))
		}
		if tok, ok := cfg["tokenizer"].(driven.Tokenizer); ok {
			opts = append(opts, chunker.WithTokenizer(tok))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
