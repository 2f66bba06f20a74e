// Package chunker splits section text into overlapping token windows.
package chunker

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/tokenizers/whitespace"
)

// Name is the processor name used in the registry.
const Name = "chunker"

// chunkNamespace scopes the name-based UUIDs used as chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("filings-cli/chunk"))

var _ driven.PostProcessor = (*Processor)(nil)

// Processor splits every section chunk into windows of chunkSize tokens.
// Consecutive windows of a section share overlap tokens.
type Processor struct {
	chunkSize    int
	overlap      int
	minChunkSize int
	tokenizer    driven.Tokenizer
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in tokens.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMinChunkSize sets the smallest window kept on its own.
func WithMinChunkSize(size int) Option {
	return func(p *Processor) {
		if size >= 0 {
			p.minChunkSize = size
		}
	}
}

// WithTokenizer sets the tokenizer used to size windows.
func WithTokenizer(t driven.Tokenizer) Option {
	return func(p *Processor) {
		if t != nil {
			p.tokenizer = t
		}
	}
}

// New creates a new chunker processor with the given options.
// Settings are expected to have passed domain validation; an overlap that
// still reaches the chunk size is reduced to a quarter of it.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:    domain.DefaultChunkSize,
		overlap:      domain.DefaultChunkOverlap,
		minChunkSize: domain.DefaultMinChunkSize,
		tokenizer:    whitespace.New(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	if p.minChunkSize > p.chunkSize {
		p.minChunkSize = p.chunkSize
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Tokenizer returns the tokenizer sizing the windows.
func (p *Processor) Tokenizer() driven.Tokenizer {
	return p.tokenizer
}

// Process replaces each section chunk with its token windows. Output chunks
// are numbered across the whole filing and carry reproducible IDs.
func (p *Processor) Process(ctx context.Context, filing domain.Filing, sections []domain.Chunk) ([]domain.Chunk, error) {
	var out []domain.Chunk
	index := 0

	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tokens := p.tokenizer.Tokens(section.Text)
		windows := p.Windows(len(tokens))
		for i, w := range windows {
			// Short chunks survive only as the last chunk of their section.
			if w.End-w.Start < p.minChunkSize && i < len(windows)-1 {
				continue
			}
			text := strings.TrimSpace(strings.Join(tokens[w.Start:w.End], ""))
			if text == "" {
				continue
			}
			chunk := section
			chunk.ID = ChunkID(filing, index)
			chunk.Index = index
			chunk.Text = text
			chunk.TokenCount = w.End - w.Start
			out = append(out, chunk)
			index++
		}
	}

	return out, nil
}

// Window is a half-open token range [Start, End).
type Window struct {
	Start int
	End   int
}

// Windows returns the token windows for a section of n tokens. No window is
// longer than the chunk size; only the last window of a section may be
// shorter than the minimum size.
func (p *Processor) Windows(n int) []Window {
	if n <= 0 {
		return nil
	}

	step := p.chunkSize - p.overlap
	windows := make([]Window, 0, n/step+1)

	for start := 0; ; start += step {
		end := min(start+p.chunkSize, n)
		windows = append(windows, Window{Start: start, End: end})
		if end == n {
			break
		}
	}

	return windows
}

// ChunkID derives the ID of the chunk at index within a filing.
// The same filing identity and index always yield the same ID.
func ChunkID(filing domain.Filing, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(filing.Key()+"#"+strconv.Itoa(index))).String()
}
