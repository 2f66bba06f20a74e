// Package ai provides factory functions for creating completion, embedding
// and index adapters from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	anthropiccompletion "github.com/custodia-labs/filings-cli/internal/adapters/driven/completion/anthropic"
	geminicompletion "github.com/custodia-labs/filings-cli/internal/adapters/driven/completion/gemini"
	ollamacompletion "github.com/custodia-labs/filings-cli/internal/adapters/driven/completion/ollama"
	openaicompletion "github.com/custodia-labs/filings-cli/internal/adapters/driven/completion/openai"
	ollamaembed "github.com/custodia-labs/filings-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/filings-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/filings-cli/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/filings-cli/internal/adapters/driven/index/pgvector"
	"github.com/custodia-labs/filings-cli/internal/adapters/driven/index/resilient"
	"github.com/custodia-labs/filings-cli/internal/adapters/driven/index/sqlite"
	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/logger"
	"github.com/custodia-labs/filings-cli/internal/tokenizers/tiktoken"
	"github.com/custodia-labs/filings-cli/internal/tokenizers/whitespace"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains every driven adapter built from settings.
type InitResult struct {
	Completion driven.CompletionService // nil when no provider is configured or reachable.
	Embedding  driven.EmbeddingService  // nil unless the index needs one.
	Index      driven.Index
	Catalog    driven.FilingCatalog
	Tokenizer  driven.Tokenizer
	Warnings   []string // Non-fatal issues that caused degradation.

	closers []func() error
}

// LexicalBackend reports whether the backend ranks by terms, in which case
// queries are cleaned before reaching it.
func LexicalBackend(b domain.IndexBackend) bool {
	return b == domain.IndexBackendMemory || b == domain.IndexBackendSQLite
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() error {
	var result error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	r.closers = nil
	return result
}

func (r *InitResult) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	r.Warnings = append(r.Warnings, msg)
}

// Init builds every driven adapter. Unreachable services degrade to nil
// adapters with a warning; only configuration errors are returned.
func Init(ctx context.Context, settings domain.Settings) (*InitResult, error) {
	r := &InitResult{}

	tok, err := CreateTokenizer(settings.Segmenter)
	if err != nil {
		r.warn("tokenizer %q unavailable, using whitespace: %v", settings.Segmenter.Tokenizer, err)
		tok = whitespace.New()
	}
	r.Tokenizer = tok

	completion, err := CreateAndValidateCompletionService(ctx, settings.Completion)
	if err != nil {
		r.warn("%v", err)
	}
	if completion != nil {
		r.Completion = completion
		r.closers = append(r.closers, completion.Close)
	}

	if settings.Index.Backend.RequiresEmbedding() {
		embedding, err := CreateEmbeddingService(settings.Embedding)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if embedding == nil {
			r.Close()
			return nil, fmt.Errorf("index backend %s: %w", settings.Index.Backend, domain.ErrEmbeddingUnavailable)
		}
		if err := ping(ctx, embedding.Ping); err != nil {
			embedding.Close()
			r.warn("embedding service unreachable, retrieval disabled: %v", err)
		} else {
			r.Embedding = embedding
			r.closers = append(r.closers, embedding.Close)
		}
	}

	if err := r.initIndex(ctx, settings.Index); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// initIndex opens the configured backend. Unreachable remote backends leave
// Index nil with a warning; configuration errors are returned.
func (r *InitResult) initIndex(ctx context.Context, settings domain.IndexSettings) error {
	var index driven.Index
	switch settings.Backend {
	case domain.IndexBackendMemory:
		index = memory.New()
		r.Catalog = memory.NewCatalog()

	case domain.IndexBackendSQLite:
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		index = store
		r.Catalog = store

	case domain.IndexBackendPGVector:
		// The ingest ledger stays local.
		store, err := sqlite.NewStore(settings.DataDir)
		if err != nil {
			r.warn("filing catalog unavailable: %v", err)
			r.Catalog = memory.NewCatalog()
		} else {
			r.closers = append(r.closers, store.Close)
			r.Catalog = store
		}

		if r.Embedding == nil {
			return nil
		}
		pg, err := pgvector.New(ctx, pgvector.Config{DSN: settings.DSN, Table: settings.Table}, r.Embedding)
		if errors.Is(err, domain.ErrInvalidConfig) {
			return err
		}
		if err != nil {
			r.warn("%v: %v", domain.ErrIndexUnavailable, err)
			return nil
		}
		index = pg

	default:
		return fmt.Errorf("index backend %q: %w", settings.Backend, domain.ErrUnsupportedType)
	}

	r.Index = resilient.New(index,
		resilient.WithRetryAttempts(settings.RetryAttempts),
		resilient.WithRateLimit(settings.RateLimit, settings.Burst),
	)
	r.closers = append(r.closers, r.Index.Close)
	return nil
}

// CreateTokenizer returns the tokenizer named in settings.
func CreateTokenizer(settings domain.SegmenterSettings) (driven.Tokenizer, error) {
	switch settings.Tokenizer {
	case whitespace.Name:
		return whitespace.New(), nil
	case "", "tiktoken":
		tok, err := tiktoken.New(settings.Encoding)
		if err != nil {
			return nil, err
		}
		return tok, nil
	default:
		return nil, fmt.Errorf("tokenizer %q: %w", settings.Tokenizer, domain.ErrUnsupportedType)
	}
}

// CreateAndValidateCompletionService creates a completion service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateCompletionService(ctx context.Context, settings domain.CompletionSettings) (driven.CompletionService, error) {
	svc, err := CreateCompletionService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'filings config validate' to check settings",
			domain.ErrCompletionUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrCompletionUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil without error when no provider is configured.
func CreateAndValidateEmbeddingService(ctx context.Context, settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'filings config validate' to check settings",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateCompletionService creates the appropriate completion service based on settings.
// Returns nil if the provider is not configured.
func CreateCompletionService(ctx context.Context, settings domain.CompletionSettings) (driven.CompletionService, error) {
	if settings.Provider == "" {
		return nil, nil
	}
	if !settings.IsConfigured() {
		if settings.Provider.IsValid() {
			return nil, fmt.Errorf("%s requires an API key", settings.Provider)
		}
		return nil, fmt.Errorf("unsupported completion provider: %s", settings.Provider)
	}

	timeout := settings.Timeout.Std()
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamacompletion.New(ollamacompletion.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaicompletion.New(openaicompletion.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic:
		svc, err := anthropiccompletion.New(anthropiccompletion.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderGemini:
		svc, err := geminicompletion.New(ctx, geminicompletion.Config{
			APIKey:   settings.APIKey,
			Model:    settings.Model,
			Endpoint: settings.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", settings.Provider)
	}
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case "":
		return nil, nil

	case domain.AIProviderOllama:
		dimensions := settings.Dimensions
		if dimensions == 0 {
			dimensions = ollamaembed.DefaultDimensions
		}
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		if settings.APIKey == "" {
			return nil, errors.New("openai requires an API key")
		}
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.AIProviderAnthropic, domain.AIProviderGemini:
		return nil, fmt.Errorf("%s does not support embeddings, use ollama or openai", settings.Provider)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}
