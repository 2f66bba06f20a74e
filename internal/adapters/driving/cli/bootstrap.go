package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/filings-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/filings-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/services"
	"github.com/custodia-labs/filings-cli/internal/logger"
	"github.com/custodia-labs/filings-cli/internal/normalisers/docx"
	"github.com/custodia-labs/filings-cli/internal/normalisers/html"
	"github.com/custodia-labs/filings-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/filings-cli/internal/normalisers/plaintext"
	"github.com/custodia-labs/filings-cli/internal/postprocessors"
)

// Runtime is the wired service graph of one process.
type Runtime struct {
	Settings     domain.Settings
	Backend      *ai.InitResult
	Query        *services.QueryService
	Classifier   *services.Classifier
	Retrieval    *services.Orchestrator
	History      *services.ContextManager
	Ingest       *services.IngestService
	Segmenter    *services.Segmenter
	Conversation *file.ConversationStore
	Warnings     []string
}

// Bootstrap loads validated settings from store and wires every service.
// Backends that fail to start degrade with a warning where the pipeline
// can run without them.
func Bootstrap(ctx context.Context, store *file.SettingsStore) (*Runtime, error) {
	settings, err := store.LoadValidated()
	if err != nil {
		return nil, err
	}
	logger.Debug("Settings loaded from %s", store.Path())

	backend, err := ai.Init(ctx, settings)
	if err != nil {
		return nil, err
	}

	rt, err := wire(settings, backend, store)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	return rt, nil
}

func wire(settings domain.Settings, backend *ai.InitResult, store *file.SettingsStore) (*Runtime, error) {
	prompts, err := file.NewPromptStore(store.PromptDir())
	if err != nil {
		return nil, fmt.Errorf("prompt store: %w", err)
	}

	pipeline, err := postprocessors.NewSegmenterPipeline(settings.Segmenter, backend.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("segmenter pipeline: %w", err)
	}
	segmenter, err := services.NewSegmenter(settings.Segmenter, pipeline)
	if err != nil {
		return nil, fmt.Errorf("segmenter: %w", err)
	}

	ingest := services.NewIngestService(segmenter, backend.Index,
		plaintext.New(), html.New(), markdown.New(), docx.New())
	ingest.SetCatalog(backend.Catalog)

	classifier := services.NewClassifier(backend.Completion, settings.Classifier)
	classifier.SetPromptStore(prompts)

	retrieval := services.NewOrchestrator(backend.Index, settings.Retrieval,
		services.WithQueryCleaning(ai.LexicalBackend(settings.Index.Backend)))

	conversations := file.NewConversationStore(filepath.Join(store.Dir(), "conversations"))
	history := services.NewContextManager(settings.Conversation)
	history.SetStore(conversations)

	query := services.NewQueryService(classifier, retrieval, history, backend.Completion)
	query.SetPromptStore(prompts)
	query.SetAnswerTimeout(settings.Completion.Timeout.Std())

	return &Runtime{
		Settings:     settings,
		Backend:      backend,
		Query:        query,
		Classifier:   classifier,
		Retrieval:    retrieval,
		History:      history,
		Ingest:       ingest,
		Segmenter:    segmenter,
		Conversation: conversations,
		Warnings:     backend.Warnings,
	}, nil
}

// Close releases the index and provider clients.
func (r *Runtime) Close() error {
	if r.Backend == nil {
		return nil
	}
	return r.Backend.Close()
}

// apply publishes the runtime's services to the commands.
func (r *Runtime) apply() {
	queryService = r.Query
	classifierService = r.Classifier
	retrievalService = r.Retrieval
	historyService = r.History
	ingestService = r.Ingest
	segmenterService = r.Segmenter
}

func (r *Runtime) clear() {
	queryService = nil
	classifierService = nil
	retrievalService = nil
	historyService = nil
	ingestService = nil
	segmenterService = nil
}

// openSettingsStore honours --config, then --home, then the defaults.
func openSettingsStore() (*file.SettingsStore, error) {
	if configPath != "" {
		return file.NewSettingsStoreFromFile(configPath), nil
	}
	return file.NewSettingsStore(configDir)
}
