package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
	"github.com/custodia-labs/filings-cli/internal/logger"
	"github.com/custodia-labs/filings-cli/internal/metrics"
)

// Ensure Orchestrator implements the interface.
var _ driving.RetrievalService = (*Orchestrator)(nil)

// defaultCollectionGrace is how long past the sub-query timeout the
// orchestrator waits for an index that ignores cancellation.
const defaultCollectionGrace = 250 * time.Millisecond

// Orchestrator fans a question out into sub-queries and merges the results.
type Orchestrator struct {
	index    driven.Index
	settings domain.RetrievalSettings
	entities *EntityDetector
	clean    bool
	grace    time.Duration
}

// OrchestratorOption configures the orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithQueryCleaning reduces sub-query text to search terms. Use it for
// lexical backends, which score stop words as noise.
func WithQueryCleaning(enabled bool) OrchestratorOption {
	return func(o *Orchestrator) {
		o.clean = enabled
	}
}

// WithCollectionGrace sets how long results are awaited past the sub-query timeout.
func WithCollectionGrace(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.grace = d
		}
	}
}

// NewOrchestrator creates a new retrieval orchestrator.
// The index is optional; without it every retrieval is empty and unavailable.
func NewOrchestrator(index driven.Index, settings domain.RetrievalSettings, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		index:    index,
		settings: settings,
		entities: NewEntityDetector(settings.Entities),
		grace:    defaultCollectionGrace,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Plan returns the retrieval plan for a category.
func (o *Orchestrator) Plan(category domain.QueryCategory) domain.RetrievalPlan {
	return o.settings.Plan(category)
}

// SubQueries expands a question into the index calls the plan asks for:
// the question as typed, then one per detected entity, then one per year.
func (o *Orchestrator) SubQueries(query string, plan domain.RetrievalPlan) []domain.SubQuery {
	text := query
	if o.clean {
		text = CleanQuery(query)
	}

	subs := []domain.SubQuery{{Kind: domain.SubQueryPrimary, Text: text, TopK: plan.TopK}}

	if plan.EntityFanOut {
		for _, id := range o.entities.Detect(query) {
			subs = append(subs, domain.SubQuery{
				Kind:   domain.SubQueryEntity,
				Text:   text,
				TopK:   plan.TopK,
				Filter: map[string]string{domain.MetaCompany: id},
			})
		}
	}

	if plan.TemporalFanOut {
		for _, year := range DetectYears(query) {
			subs = append(subs, domain.SubQuery{
				Kind:   domain.SubQueryPeriod,
				Text:   text,
				TopK:   plan.TopK,
				Filter: map[string]string{domain.MetaFiscalYear: year},
			})
		}
	}

	return subs
}

// subQueryResult carries one finished sub-query back to the collector.
type subQueryResult struct {
	i        int
	matches  []driven.IndexMatch
	err      error
	duration time.Duration
}

// Retrieve runs every sub-query concurrently, each under its own timeout,
// and merges whatever returned in time. It never fails.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, plan domain.RetrievalPlan) domain.EvidenceSet {
	logger.Section("Retrieve")

	if strings.TrimSpace(query) == "" {
		logger.Debug("Empty query, returning no evidence")
		return domain.EmptyEvidence(domain.RetrievalComplete)
	}
	if o.index == nil {
		logger.Warn("Retrieval unavailable: index is nil")
		ev := domain.EmptyEvidence(domain.RetrievalUnavailable)
		metrics.ObserveEvidence(string(ev.Status), 0, 0)
		return ev
	}

	subs := o.SubQueries(query, plan)
	timeout := plan.SubQueryTimeout
	if timeout <= 0 {
		timeout = domain.DefaultSubQueryTimeout
	}
	logger.Debug("Plan %s: %d sub-queries, top_k=%d, timeout=%s", plan.Category, len(subs), plan.TopK, timeout)

	// Buffered so late sub-queries never block after collection stops.
	results := make(chan subQueryResult, len(subs))
	for i, sq := range subs {
		go o.run(ctx, i, sq, timeout, results)
	}

	outcomes := make([]domain.SubQueryOutcome, len(subs))
	matches := make([][]driven.IndexMatch, len(subs))
	for i, sq := range subs {
		outcomes[i] = domain.SubQueryOutcome{SubQuery: sq, Err: "timed out", Duration: timeout}
	}

	deadline := time.NewTimer(timeout + o.grace)
	defer deadline.Stop()

collect:
	for pending := len(subs); pending > 0; pending-- {
		select {
		case r := <-results:
			outcomes[r.i].Duration = r.duration
			if r.err != nil {
				outcomes[r.i].Err = r.err.Error()
				continue
			}
			outcomes[r.i].Err = ""
			outcomes[r.i].Results = len(r.matches)
			matches[r.i] = r.matches
		case <-deadline.C:
			logger.Warn("Retrieval deadline reached with %d sub-queries pending", pending)
			break collect
		case <-ctx.Done():
			logger.Warn("Retrieval abandoned: %v", ctx.Err())
			break collect
		}
	}

	ev := MergeEvidence(subs, outcomes, matches, plan.MaxResults)
	metrics.ObserveEvidence(string(ev.Status), len(ev.Items), ev.Confidence)
	logger.Info("Evidence: %d items, status %s, confidence %.2f", len(ev.Items), ev.Status, ev.Confidence)
	return ev
}

// run executes one sub-query and reports it on results.
func (o *Orchestrator) run(ctx context.Context, i int, sq domain.SubQuery, timeout time.Duration, results chan<- subQueryResult) {
	start := time.Now()
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m, err := o.index.Query(qctx, sq.Text, sq.TopK, sq.Filter)
	if err != nil {
		logger.Warn("Sub-query %s failed: %v", sq.Label(), err)
	} else {
		logger.Debug("Sub-query %s: %d matches", sq.Label(), len(m))
	}
	metrics.ObserveSubQuery(string(sq.Kind), start, err == nil)

	results <- subQueryResult{i: i, matches: m, err: err, duration: time.Since(start)}
}

// MergeEvidence pools the matches of successful sub-queries, keeps the best
// score per chunk, orders by score (chunk ID breaks ties) and caps the set.
// Confidence is computed on the pool before the cap.
func MergeEvidence(
	subs []domain.SubQuery,
	outcomes []domain.SubQueryOutcome,
	matches [][]driven.IndexMatch,
	maxResults int,
) domain.EvidenceSet {
	best := make(map[string]domain.EvidenceItem)
	succeeded := 0

	for i, o := range outcomes {
		if !o.OK() {
			continue
		}
		succeeded++
		for _, m := range matches[i] {
			prev, seen := best[m.ChunkID]
			if seen && prev.Score >= m.Score {
				continue
			}
			best[m.ChunkID] = domain.EvidenceItem{
				ChunkID:  m.ChunkID,
				Score:    m.Score,
				Text:     m.Text,
				Metadata: domain.MetadataFromMap(m.Metadata),
				SubQuery: subs[i].Label(),
			}
		}
	}

	status := domain.RetrievalPartial
	switch succeeded {
	case len(outcomes):
		status = domain.RetrievalComplete
	case 0:
		status = domain.RetrievalUnavailable
	}

	items := make([]domain.EvidenceItem, 0, len(best))
	for _, item := range best {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ChunkID < items[j].ChunkID
	})

	confidence := EvidenceConfidence(items, succeeded, len(outcomes))

	if maxResults > 0 && len(items) > maxResults {
		items = items[:maxResults]
	}

	return domain.EvidenceSet{
		Items:      items,
		Confidence: confidence,
		Status:     status,
		Outcomes:   outcomes,
	}
}
