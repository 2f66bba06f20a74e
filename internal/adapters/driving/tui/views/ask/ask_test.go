package ask

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/filings-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

type mockQueryService struct {
	calls   []string
	answers int
	err     error
}

func (m *mockQueryService) Ask(_ context.Context, id, query string) (domain.QueryResult, error) {
	m.calls = append(m.calls, id+":"+query)
	if m.err != nil {
		return domain.QueryResult{}, m.err
	}
	return sampleResult(id, query), nil
}

func (m *mockQueryService) Answer(ctx context.Context, id, query string) (domain.QueryResult, error) {
	m.answers++
	r, err := m.Ask(ctx, id, query)
	if err != nil {
		return r, err
	}
	r.Answer = &domain.Answer{Text: "Net sales were $383.3 billion.", Confidence: 0.7}
	return r, nil
}

type mockHistory struct {
	turns   map[string][]domain.ConversationTurn
	cleared []string
}

func newMockHistory() *mockHistory {
	return &mockHistory{turns: map[string][]domain.ConversationTurn{}}
}

func (m *mockHistory) Append(id string, t domain.ConversationTurn) {
	m.turns[id] = append(m.turns[id], t)
}

func (m *mockHistory) History(id string) []domain.ConversationTurn { return m.turns[id] }

func (m *mockHistory) Summary(string) string { return "" }

func (m *mockHistory) Clear(id string) {
	m.cleared = append(m.cleared, id)
	delete(m.turns, id)
}

func (m *mockHistory) Confidence(c domain.ClassifiedQuery, _ domain.EvidenceSet) float64 {
	return c.Confidence
}

func sampleResult(id, query string) domain.QueryResult {
	return domain.QueryResult{
		ConversationID: id,
		Query:          query,
		Classification: domain.ClassifiedQuery{
			Category:   domain.CategoryDirectLookup,
			Confidence: 0.9,
			Rationale:  "single company, single metric",
		},
		Evidence: domain.EvidenceSet{
			Status:     domain.RetrievalComplete,
			Confidence: 0.8,
			Items: []domain.EvidenceItem{
				{
					ChunkID:  "AAPL|10-K|FY2023|ITEM_7|0",
					Score:    0.8,
					Text:     "Total net sales were $383.3 billion.",
					Metadata: domain.ChunkMetadata{Company: "AAPL", FilingType: "10-K", FiscalPeriod: "FY2023", SectionTag: "ITEM_7"},
				},
				{
					ChunkID:  "AAPL|10-K|FY2023|ITEM_8|0",
					Score:    0.6,
					Text:     "Consolidated statements of operations.",
					Metadata: domain.ChunkMetadata{Company: "AAPL", SectionTag: "ITEM_8"},
				},
			},
		},
		Confidence: 0.72,
	}
}

func newTestView(q *mockQueryService, h *mockHistory) *View {
	v := NewView(nil, nil, q, h, "c-1")
	v.SetDimensions(120, 40)
	return v
}

func typeText(v *View, text string) *View {
	for _, r := range text {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return v
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// submit types a question, presses enter and feeds the command's message back.
func submit(t *testing.T, v *View, question string) *View {
	t.Helper()
	v = typeText(v, question)
	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, status.StateAsking, v.Status().State())
	v, _ = v.Update(cmd())
	return v
}

func TestNewView(t *testing.T) {
	t.Run("keeps conversation id", func(t *testing.T) {
		v := NewView(nil, nil, nil, nil, "c-7")

		assert.Equal(t, "c-7", v.ConversationID())
		assert.True(t, v.InputFocused())
		assert.False(t, v.Ready())
		assert.Nil(t, v.Result())
		assert.NotNil(t, v.Init())
	})

	t.Run("generates conversation id", func(t *testing.T) {
		a := NewView(nil, nil, nil, nil, "")
		b := NewView(nil, nil, nil, nil, "")

		assert.NotEmpty(t, a.ConversationID())
		assert.NotEqual(t, a.ConversationID(), b.ConversationID())
	})
}

func TestView_Ask(t *testing.T) {
	t.Run("shows classification and evidence", func(t *testing.T) {
		q := &mockQueryService{}
		v := submit(t, newTestView(q, newMockHistory()), "Apple revenue FY2023")

		assert.Equal(t, []string{"c-1:Apple revenue FY2023"}, q.calls)
		require.NotNil(t, v.Result())
		assert.Equal(t, 2, v.Evidence().Count())
		assert.False(t, v.InputFocused())
		assert.Equal(t, "", v.Input().Value())
		assert.Equal(t, status.StateEvidence, v.Status().State())
		assert.Equal(t, domain.CategoryDirectLookup, v.Status().Category())

		view := v.View()
		assert.Contains(t, view, "DIRECT_LOOKUP")
		assert.Contains(t, view, "classified 0.90")
		assert.Contains(t, view, "final 0.72")
		assert.Contains(t, view, "single company, single metric")
		assert.Contains(t, view, "Evidence (2)")
	})

	t.Run("blank question is ignored", func(t *testing.T) {
		q := &mockQueryService{}
		v := typeText(newTestView(q, newMockHistory()), "   ")

		_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

		assert.Nil(t, cmd)
		assert.Empty(t, q.calls)
	})

	t.Run("answer mode composes an answer", func(t *testing.T) {
		q := &mockQueryService{}
		v := newTestView(q, newMockHistory())
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
		require.True(t, v.Input().AnswerMode())

		v = submit(t, v, "Apple revenue")

		assert.Equal(t, 1, q.answers)
		assert.Contains(t, v.View(), "Net sales were $383.3 billion.")
	})

	t.Run("service error is shown", func(t *testing.T) {
		q := &mockQueryService{err: errors.New("completion timed out")}
		v := submit(t, newTestView(q, newMockHistory()), "Apple revenue")

		require.Error(t, v.Err())
		assert.True(t, v.InputFocused())
		assert.Equal(t, status.StateError, v.Status().State())
		assert.Contains(t, v.View(), "Error: completion timed out")
	})

	t.Run("missing service", func(t *testing.T) {
		v := NewView(nil, nil, nil, nil, "c-1")
		v.SetDimensions(120, 40)
		v = submit(t, v, "anything")

		assert.ErrorIs(t, v.Err(), ErrNoQueryService)
	})

	t.Run("failed sub-queries are listed", func(t *testing.T) {
		v := newTestView(&mockQueryService{}, newMockHistory())
		r := sampleResult("c-1", "Apple vs Microsoft")
		r.Evidence.Status = domain.RetrievalPartial
		r.Evidence.Outcomes = []domain.SubQueryOutcome{
			{SubQuery: domain.SubQuery{Kind: domain.SubQueryEntity, Filter: map[string]string{domain.MetaCompany: "MSFT"}}, Err: "index down"},
		}

		v, _ = v.Update(messages.AskCompleted{Result: r})

		assert.Contains(t, v.View(), "failed: index down")
	})
}

func TestView_Browse(t *testing.T) {
	q := &mockQueryService{}
	v := submit(t, newTestView(q, newMockHistory()), "Apple revenue")

	v, _ = v.Update(key("j"))
	assert.Equal(t, 1, v.Evidence().Selected())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, v.Evidence().Expanded())
	assert.Contains(t, v.View(), "chunk AAPL|10-K|FY2023|ITEM_8|0")

	v, _ = v.Update(key("/"))
	assert.True(t, v.InputFocused())

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, v.InputFocused())

	_, cmd := v.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_History(t *testing.T) {
	h := newMockHistory()
	h.Append("c-1", domain.ConversationTurn{
		Query:     "Apple revenue",
		Category:  domain.CategoryDirectLookup,
		Timestamp: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
	})
	v := submit(t, newTestView(&mockQueryService{}, h), "and margins?")

	v, cmd := v.Update(key("h"))
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())

	require.True(t, v.ShowingHistory())
	require.Len(t, v.Turns(), 1)
	view := v.View()
	assert.Contains(t, view, "History (1)")
	assert.Contains(t, view, "Apple revenue")

	v, _ = v.Update(key("h"))
	assert.False(t, v.ShowingHistory())

	t.Run("other conversation is ignored", func(t *testing.T) {
		v, _ := v.Update(messages.HistoryLoaded{ConversationID: "other"})
		assert.False(t, v.ShowingHistory())
	})
}

func TestView_Clear(t *testing.T) {
	h := newMockHistory()
	h.Append("c-1", domain.ConversationTurn{Query: "a"})
	h.Append("c-1", domain.ConversationTurn{Query: "b"})
	v := submit(t, newTestView(&mockQueryService{}, h), "c")

	v, cmd := v.Update(key("x"))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, messages.ConversationCleared{ConversationID: "c-1", Turns: 2}, msg)

	v, _ = v.Update(msg)
	assert.Equal(t, []string{"c-1"}, h.cleared)
	assert.Equal(t, "Cleared 2 turns", v.Status().Message())
}

func TestView_NewConversation(t *testing.T) {
	v := submit(t, newTestView(&mockQueryService{}, newMockHistory()), "Apple revenue")

	v, _ = v.Update(key("n"))

	assert.NotEqual(t, "c-1", v.ConversationID())
	assert.Nil(t, v.Result())
	assert.Equal(t, 0, v.Evidence().Count())
	assert.True(t, v.InputFocused())
	assert.Contains(t, v.View(), "Ask a question")
}

func TestView_ErrorMessage(t *testing.T) {
	v := NewView(nil, nil, nil, nil, "c-1")

	v, _ = v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Equal(t, status.StateError, v.Status().State())
}

func TestView_NotReady(t *testing.T) {
	v := NewView(nil, nil, nil, nil, "c-1")
	assert.Equal(t, "Initialising...", v.View())
}
