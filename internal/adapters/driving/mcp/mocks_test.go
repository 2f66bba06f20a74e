package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result   domain.QueryResult
	err      error
	answered bool
	lastID   string
}

func (m *mockQueryService) Ask(_ context.Context, id, query string) (domain.QueryResult, error) {
	m.lastID = id
	r := m.result
	r.ConversationID = id
	r.Query = query
	return r, m.err
}

func (m *mockQueryService) Answer(ctx context.Context, id, query string) (domain.QueryResult, error) {
	m.answered = true
	r, err := m.Ask(ctx, id, query)
	r.Answer = &domain.Answer{Text: "Revenue grew.", Sources: []string{"c1"}, Confidence: 0.7}
	return r, err
}

// mockClassifier is a mock implementation of driving.ClassifierService.
type mockClassifier struct {
	result      domain.ClassifiedQuery
	lastSummary string
}

func (m *mockClassifier) Classify(_ context.Context, _, summary string) domain.ClassifiedQuery {
	m.lastSummary = summary
	return m.result
}

// mockRetrieval is a mock implementation of driving.RetrievalService.
type mockRetrieval struct {
	evidence domain.EvidenceSet
	lastPlan domain.RetrievalPlan
}

func (m *mockRetrieval) Plan(category domain.QueryCategory) domain.RetrievalPlan {
	return domain.DefaultSettings().Retrieval.Plan(category)
}

func (m *mockRetrieval) Retrieve(_ context.Context, _ string, plan domain.RetrievalPlan) domain.EvidenceSet {
	m.lastPlan = plan
	return m.evidence
}

// mockHistory is a mock implementation of driving.ContextManager.
type mockHistory struct {
	turns   map[string][]domain.ConversationTurn
	cleared []string
}

func newMockHistory() *mockHistory {
	return &mockHistory{turns: make(map[string][]domain.ConversationTurn)}
}

func (m *mockHistory) Append(id string, turn domain.ConversationTurn) {
	m.turns[id] = append(m.turns[id], turn)
}

func (m *mockHistory) History(id string) []domain.ConversationTurn {
	return append([]domain.ConversationTurn{}, m.turns[id]...)
}

func (m *mockHistory) Summary(id string) string {
	if len(m.turns[id]) == 0 {
		return ""
	}
	return "user: " + m.turns[id][len(m.turns[id])-1].Query
}

func (m *mockHistory) Clear(id string) {
	m.cleared = append(m.cleared, id)
	delete(m.turns, id)
}

func (m *mockHistory) Confidence(c domain.ClassifiedQuery, e domain.EvidenceSet) float64 {
	return c.Confidence * e.Confidence
}

// mockIngest is a mock implementation of driving.IngestService.
type mockIngest struct {
	records []domain.FilingRecord
	err     error
}

func (m *mockIngest) Ingest(_ context.Context, f domain.Filing) (domain.IngestReport, error) {
	return domain.IngestReport{FilingKey: f.Key()}, m.err
}

func (m *mockIngest) IngestFile(_ context.Context, _ string, f domain.Filing) (domain.IngestReport, error) {
	return domain.IngestReport{FilingKey: f.Key()}, m.err
}

func (m *mockIngest) Filings(_ context.Context) ([]domain.FilingRecord, error) {
	return m.records, m.err
}

func sampleEvidence() domain.EvidenceSet {
	return domain.EvidenceSet{
		Items: []domain.EvidenceItem{{
			ChunkID: "aapl-c1",
			Score:   0.82,
			Text:    "Total net sales increased 2%.",
			Metadata: domain.ChunkMetadata{
				Company: "AAPL", FilingType: "10-K", FiscalPeriod: "FY2023", SectionTag: "ITEM 7",
			},
		}},
		Confidence: 0.6,
		Status:     domain.RetrievalComplete,
	}
}

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	s, err := NewServer(ports)
	require.NoError(t, err)
	return s
}
