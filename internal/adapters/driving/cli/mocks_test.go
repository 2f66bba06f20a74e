package cli

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
)

// --- Mock implementations ---

type mockQueryService struct {
	mu      sync.Mutex
	history driving.ContextManager
	calls   []string
	err     error
}

func (m *mockQueryService) Ask(_ context.Context, id, query string) (domain.QueryResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, id+":"+query)
	m.mu.Unlock()
	if m.err != nil {
		return domain.QueryResult{}, m.err
	}
	if m.history != nil {
		m.history.Append(id, domain.ConversationTurn{
			Query:     query,
			Category:  domain.CategoryDirectLookup,
			Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		})
	}
	return domain.QueryResult{
		ConversationID: id,
		Query:          query,
		Classification: domain.ClassifiedQuery{Category: domain.CategoryDirectLookup, Confidence: 0.9, Rationale: "single company, single period"},
		Plan:           domain.DefaultSettings().Retrieval.Plan(domain.CategoryDirectLookup),
		Evidence:       sampleEvidence(),
		Confidence:     0.72,
	}, nil
}

func (m *mockQueryService) Answer(ctx context.Context, id, query string) (domain.QueryResult, error) {
	r, err := m.Ask(ctx, id, query)
	if err != nil {
		return r, err
	}
	r.Answer = &domain.Answer{Text: "Revenue was $383.3 billion.", Sources: []string{"AAPL|10-K|FY2023|#0003"}, Confidence: 0.72}
	return r, nil
}

type mockClassifier struct{ summary string }

func (m *mockClassifier) Classify(_ context.Context, _, summary string) domain.ClassifiedQuery {
	m.summary = summary
	return domain.ClassifiedQuery{Category: domain.CategoryTemporalTrend, Confidence: 0.64, Hedged: true}
}

type mockRetrieval struct{ plan domain.RetrievalPlan }

func (m *mockRetrieval) Plan(c domain.QueryCategory) domain.RetrievalPlan {
	return domain.DefaultSettings().Retrieval.Plan(c)
}

func (m *mockRetrieval) Retrieve(_ context.Context, _ string, plan domain.RetrievalPlan) domain.EvidenceSet {
	m.plan = plan
	return sampleEvidence()
}

type mockHistory struct {
	mu    sync.Mutex
	turns map[string][]domain.ConversationTurn
}

func newMockHistory() *mockHistory {
	return &mockHistory{turns: make(map[string][]domain.ConversationTurn)}
}

func (m *mockHistory) Append(id string, turn domain.ConversationTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns[id] = append(m.turns[id], turn)
}

func (m *mockHistory) History(id string) []domain.ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ConversationTurn{}, m.turns[id]...)
}

func (m *mockHistory) Summary(id string) string {
	if len(m.History(id)) == 0 {
		return ""
	}
	return "user: earlier question"
}

func (m *mockHistory) Clear(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.turns, id)
}

func (m *mockHistory) Confidence(c domain.ClassifiedQuery, _ domain.EvidenceSet) float64 {
	return c.Confidence
}

type mockIngest struct {
	mu      sync.Mutex
	paths   []string
	filings []domain.Filing
	records []domain.FilingRecord
	fail    map[string]error
}

func (m *mockIngest) Ingest(_ context.Context, f domain.Filing) (domain.IngestReport, error) {
	return domain.IngestReport{FilingKey: f.Key()}, nil
}

func (m *mockIngest) IngestFile(_ context.Context, path string, f domain.Filing) (domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
	m.filings = append(m.filings, f)
	if err := m.fail[path]; err != nil {
		return domain.IngestReport{}, err
	}
	return domain.IngestReport{FilingKey: "AAPL|10-K|FY2023|" + path, Chunks: 12, Upserted: 12}, nil
}

func (m *mockIngest) Filings(context.Context) ([]domain.FilingRecord, error) {
	return m.records, nil
}

func (m *mockIngest) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.paths...)
}

func sampleEvidence() domain.EvidenceSet {
	return domain.EvidenceSet{
		Items: []domain.EvidenceItem{{
			ChunkID: "AAPL|10-K|FY2023|#0003",
			Score:   0.81,
			Text:    "Total net sales were $383.3 billion in 2023.",
			Metadata: domain.ChunkMetadata{
				Company:      "AAPL",
				FilingType:   "10-K",
				FiscalPeriod: "FY2023",
				SectionTag:   "ITEM_7",
			},
		}},
		Confidence: 0.8,
		Status:     domain.RetrievalComplete,
	}
}

var errBoom = errors.New("boom")

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	query     *mockQueryService
	classify  *mockClassifier
	retrieval *mockRetrieval
	history   *mockHistory
	ingest    *mockIngest
}

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() (*testServices, func()) {
	old := struct {
		q driving.QueryService
		c driving.ClassifierService
		r driving.RetrievalService
		h driving.ContextManager
		i driving.IngestService
		s driving.SegmenterService
		j bool
	}{queryService, classifierService, retrievalService, historyService, ingestService, segmenterService, injected}

	ts := &testServices{
		classify:  &mockClassifier{},
		retrieval: &mockRetrieval{},
		history:   newMockHistory(),
		ingest:    &mockIngest{},
	}
	ts.query = &mockQueryService{history: ts.history}

	queryService = ts.query
	classifierService = ts.classify
	retrievalService = ts.retrieval
	historyService = ts.history
	ingestService = ts.ingest
	segmenterService = nil
	injected = true

	return ts, func() {
		queryService, classifierService, retrievalService = old.q, old.c, old.r
		historyService, ingestService, segmenterService = old.h, old.i, old.s
		injected = old.j
	}
}
