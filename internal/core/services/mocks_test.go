package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// indexCall records one Query call.
type indexCall struct {
	text   string
	topK   int
	filter map[string]string
}

// mockIndex implements driven.Index for testing. The query func, when set,
// decides each response; otherwise the fixed matches are returned.
type mockIndex struct {
	mu        sync.Mutex
	calls     []indexCall
	upserts   map[string]map[string]string
	texts     map[string]string
	matches   []driven.IndexMatch
	queryFn   func(ctx context.Context, text string, topK int, filter map[string]string) ([]driven.IndexMatch, error)
	upsertErr func(chunkID string) error
}

func newMockIndex() *mockIndex {
	return &mockIndex{
		upserts: make(map[string]map[string]string),
		texts:   make(map[string]string),
	}
}

func (m *mockIndex) Upsert(_ context.Context, chunkID, text string, metadata map[string]string) error {
	if m.upsertErr != nil {
		if err := m.upsertErr(chunkID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts[chunkID] = metadata
	m.texts[chunkID] = text
	return nil
}

func (m *mockIndex) Query(ctx context.Context, text string, topK int, filter map[string]string) ([]driven.IndexMatch, error) {
	m.mu.Lock()
	m.calls = append(m.calls, indexCall{text: text, topK: topK, filter: filter})
	m.mu.Unlock()

	if m.queryFn != nil {
		return m.queryFn(ctx, text, topK, filter)
	}
	return m.matches, nil
}

func (m *mockIndex) Close() error {
	return nil
}

func (m *mockIndex) Calls() []indexCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]indexCall(nil), m.calls...)
}

// mockCompletion implements driven.CompletionService for testing.
type mockCompletion struct {
	mu        sync.Mutex
	reply     string
	replies   []string
	err       error
	prompts   []string
	histories []string
}

func (m *mockCompletion) Complete(_ context.Context, prompt, history string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.histories = append(m.histories, history)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) > 0 {
		r := m.replies[0]
		m.replies = m.replies[1:]
		return r, nil
	}
	return m.reply, nil
}

func (m *mockCompletion) ModelName() string { return "mock-model" }
func (m *mockCompletion) Ping(_ context.Context) error { return nil }
func (m *mockCompletion) Close() error { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// mockNormaliser implements driven.Normaliser for testing.
type mockNormaliser struct {
	exts   []string
	prefix string
}

func (m *mockNormaliser) SupportedExtensions() []string { return m.exts }

func (m *mockNormaliser) Normalise(_ context.Context, raw []byte) (string, error) {
	return m.prefix + string(raw), nil
}

// match builds an index match with filing metadata.
func match(id string, score float64, company, section string) driven.IndexMatch {
	return driven.IndexMatch{
		ChunkID: id,
		Score:   score,
		Text:    "text of " + id,
		Metadata: map[string]string{
			domain.MetaCompany:      company,
			domain.MetaFilingType:   "10-K",
			domain.MetaFiscalPeriod: "FY2023",
			domain.MetaSectionTag:   section,
		},
	}
}

// words builds n distinct space-separated words.
func words(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(parts, " ")
}

// mockConversationStore keeps conversations in a map. The before hooks run
// outside the store lock and can stall a call.
type mockConversationStore struct {
	mu      sync.Mutex
	data    map[string][]domain.ConversationTurn
	saves   int
	deleted []string
	err     error

	beforeLoad func(id string)
	beforeSave func(id string, turns []domain.ConversationTurn)
}

func newMockConversationStore() *mockConversationStore {
	return &mockConversationStore{data: make(map[string][]domain.ConversationTurn)}
}

func (m *mockConversationStore) Load(id string) ([]domain.ConversationTurn, error) {
	if m.beforeLoad != nil {
		m.beforeLoad(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.ConversationTurn(nil), m.data[id]...), nil
}

func (m *mockConversationStore) Save(id string, turns []domain.ConversationTurn) error {
	if m.beforeSave != nil {
		m.beforeSave(id, turns)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.data[id] = append([]domain.ConversationTurn(nil), turns...)
	return nil
}

func (m *mockConversationStore) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	delete(m.data, id)
	return m.err
}
