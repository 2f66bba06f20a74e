package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
	"github.com/custodia-labs/filings-cli/internal/logger"
)

// Ensure QueryService implements the interfaces.
var (
	_ driving.QueryService    = (*QueryService)(nil)
	_ driven.PromptStoreAware = (*QueryService)(nil)
)

// QueryService runs one conversational turn: classify, retrieve, remember.
type QueryService struct {
	classifier    driving.ClassifierService
	retrieval     driving.RetrievalService
	history       driving.ContextManager
	completion    driven.CompletionService
	prompts       driven.PromptStore
	answerTimeout time.Duration
	now           func() time.Time
}

// NewQueryService creates a new query service.
// The completion service is optional and only used by Answer.
func NewQueryService(
	classifier driving.ClassifierService,
	retrieval driving.RetrievalService,
	history driving.ContextManager,
	completion driven.CompletionService,
) *QueryService {
	return &QueryService{
		classifier: classifier,
		retrieval:  retrieval,
		history:    history,
		completion: completion,
		now:        time.Now,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *QueryService) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetAnswerTimeout bounds answer composition. Zero leaves the caller's deadline.
func (s *QueryService) SetAnswerTimeout(d time.Duration) {
	s.answerTimeout = d
}

// Ask classifies the question, retrieves evidence and records the turn.
// Only an empty question or conversation ID is an error.
func (s *QueryService) Ask(ctx context.Context, conversationID, query string) (domain.QueryResult, error) {
	res, _, err := s.ask(ctx, conversationID, query)
	return res, err
}

func (s *QueryService) ask(ctx context.Context, conversationID, query string) (domain.QueryResult, string, error) {
	query = strings.TrimSpace(query)
	conversationID = strings.TrimSpace(conversationID)
	if query == "" {
		return domain.QueryResult{}, "", fmt.Errorf("ask: empty question: %w", domain.ErrInvalidInput)
	}
	if conversationID == "" {
		return domain.QueryResult{}, "", fmt.Errorf("ask: empty conversation id: %w", domain.ErrInvalidInput)
	}

	logger.Section("Ask")
	logger.Debug("Conversation %s: %q", conversationID, query)

	summary := s.history.Summary(conversationID)
	classification := s.classifier.Classify(ctx, query, summary)
	plan := s.retrieval.Plan(classification.Category)
	evidence := s.retrieval.Retrieve(ctx, query, plan)
	confidence := s.history.Confidence(classification, evidence)

	s.history.Append(conversationID, domain.ConversationTurn{
		Query:           query,
		Category:        classification.Category,
		EvidenceSummary: evidence.Summary(),
		Timestamp:       s.now().UTC(),
	})

	logger.Info("Turn recorded: %s, %d passages, confidence %.2f",
		classification.Category, len(evidence.Items), confidence)

	return domain.QueryResult{
		ConversationID: conversationID,
		Query:          query,
		Classification: classification,
		Plan:           plan,
		Evidence:       evidence,
		Confidence:     confidence,
	}, summary, nil
}

// Answer runs Ask and composes a response with the plan's prompt template.
// Without a completion service, or when composition fails, the result
// carries evidence only.
func (s *QueryService) Answer(ctx context.Context, conversationID, query string) (domain.QueryResult, error) {
	res, summary, err := s.ask(ctx, conversationID, query)
	if err != nil {
		return res, err
	}
	if s.completion == nil {
		logger.Warn("Answer skipped: %v", domain.ErrCompletionUnavailable)
		return res, nil
	}

	logger.Section("Answer")
	prompt := FillAnswerPrompt(s.template(res.Plan.PromptTemplate), res.Query, RenderEvidence(res.Evidence))

	if s.answerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.answerTimeout)
		defer cancel()
	}

	raw, err := s.completion.Complete(ctx, prompt, summary)
	if err != nil {
		logger.Warn("Answer composition failed: %v", err)
		return res, nil
	}

	answer := ParseAnswer(raw, res.Evidence)
	res.Answer = &answer
	logger.Info("Answer composed: %d chars, %d sources", len(answer.Text), len(answer.Sources))
	return res, nil
}

// template loads an answer template, falling back to the built-in one and
// then to the conversational template.
func (s *QueryService) template(name string) string {
	if s.prompts != nil {
		if t, err := s.prompts.Load(name); err == nil && t != "" {
			return t
		}
	}
	defaults := domain.DefaultPrompts()
	if t, ok := defaults[name]; ok {
		return t
	}
	return defaults[domain.TemplateAnswerConversational]
}

// FillAnswerPrompt substitutes the question and excerpts for the first two
// %s verbs of tmpl. Values are inserted literally.
func FillAnswerPrompt(tmpl, query, excerpts string) string {
	parts := strings.SplitN(tmpl, "%s", 3)
	switch len(parts) {
	case 3:
		return parts[0] + query + parts[1] + excerpts + parts[2]
	case 2:
		return parts[0] + query + parts[1] + "\n\nExcerpts:\n" + excerpts
	default:
		return tmpl + "\n\nQuestion: " + query + "\n\nExcerpts:\n" + excerpts
	}
}

// RenderEvidence formats evidence items as numbered excerpts with provenance.
func RenderEvidence(ev domain.EvidenceSet) string {
	if ev.IsEmpty() {
		return "(no excerpts found)"
	}
	var b strings.Builder
	for i, item := range ev.Items {
		m := item.Metadata
		fmt.Fprintf(&b, "[%d] id=%s %s %s %s %s (score %.2f)\n%s\n\n",
			i+1, item.ChunkID, m.Company, m.FilingType, m.FiscalPeriod, m.SectionTag, item.Score, item.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}

// answerPayload is the reply shape requested by the answer templates.
type answerPayload struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence *float64 `json:"confidence"`
}

// ParseAnswer reads a JSON answer from a completion. Replies that are not
// JSON are used verbatim, citing every evidence item.
func ParseAnswer(raw string, ev domain.EvidenceSet) domain.Answer {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var p answerPayload
		if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err == nil && strings.TrimSpace(p.Answer) != "" {
			confidence := ev.Confidence
			if p.Confidence != nil {
				confidence = domain.ClampConfidence(*p.Confidence)
			}
			return domain.Answer{
				Text:       strings.TrimSpace(p.Answer),
				Sources:    p.Sources,
				Confidence: confidence,
			}
		}
	}

	sources := make([]string, 0, len(ev.Items))
	for _, item := range ev.Items {
		sources = append(sources, item.ChunkID)
	}
	return domain.Answer{
		Text:       strings.TrimSpace(raw),
		Sources:    sources,
		Confidence: ev.Confidence,
	}
}
