package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driven"
	"github.com/custodia-labs/filings-cli/internal/core/ports/driving"
	"github.com/custodia-labs/filings-cli/internal/logger"
	"github.com/custodia-labs/filings-cli/internal/metrics"
)

// Ensure Classifier implements the interfaces.
var (
	_ driving.ClassifierService = (*Classifier)(nil)
	_ driven.PromptStoreAware   = (*Classifier)(nil)
)

// Classifier routes questions through the completion service.
type Classifier struct {
	completion   driven.CompletionService
	prompts      driven.PromptStore
	hedgePenalty float64
	timeout      time.Duration
}

// NewClassifier creates a new classifier. The completion service is optional;
// without it every question is routed to the conversational fallback.
func NewClassifier(completion driven.CompletionService, cfg domain.ClassifierSettings) *Classifier {
	return &Classifier{
		completion:   completion,
		hedgePenalty: cfg.HedgePenalty,
		timeout:      cfg.Timeout.Std(),
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (c *Classifier) SetPromptStore(store driven.PromptStore) {
	c.prompts = store
}

// Classify asks the completion service for a category and parses its reply.
func (c *Classifier) Classify(ctx context.Context, query, historySummary string) domain.ClassifiedQuery {
	logger.Section("Classify")
	logger.Debug("Query: %q (history %d bytes)", query, len(historySummary))

	result := c.classify(ctx, query, historySummary)

	metrics.IncClassification(result.Category.String(), result.Fallback)
	logger.Info("Category %s (confidence %.2f, fallback=%t, hedged=%t)",
		result.Category, result.Confidence, result.Fallback, result.Hedged)
	return result
}

func (c *Classifier) classify(ctx context.Context, query, historySummary string) domain.ClassifiedQuery {
	if strings.TrimSpace(query) == "" {
		return domain.FallbackClassification("empty question")
	}
	if c.completion == nil {
		return domain.FallbackClassification(domain.ErrCompletionUnavailable.Error())
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	raw, err := c.completion.Complete(ctx, c.prompt(query), historySummary)
	if err != nil {
		logger.Warn("Classification completion failed: %v", err)
		return domain.FallbackClassification("completion failed: " + err.Error())
	}
	logger.Debug("Completion: %q", raw)

	return ParseClassification(raw, c.hedgePenalty)
}

// prompt renders the classification template. The question is substituted
// literally so '%' characters in it are never interpreted.
func (c *Classifier) prompt(query string) string {
	tmpl := domain.DefaultPrompts()[domain.PromptClassify]
	if c.prompts != nil {
		if custom, err := c.prompts.Load(domain.PromptClassify); err == nil && custom != "" {
			tmpl = custom
		}
	}
	if !strings.Contains(tmpl, "%s") {
		return tmpl + "\n\nQuestion: " + query
	}
	return strings.Replace(tmpl, "%s", query, 1)
}

// classificationPayload is the reply shape requested by the prompt.
// Explanation is accepted as an alias of Rationale.
type classificationPayload struct {
	Category     *string  `json:"category"`
	Confidence   *float64 `json:"confidence"`
	Rationale    string   `json:"rationale"`
	Explanation  string   `json:"explanation"`
	Alternatives []string `json:"alternatives"`
}

// ParseClassification extracts the first JSON object from a completion and
// maps it to a ClassifiedQuery. Anything unusable yields the fallback.
// When the category names more than one label, or alternatives are listed,
// the first valid label wins and the confidence is scaled by hedgePenalty.
func ParseClassification(raw string, hedgePenalty float64) domain.ClassifiedQuery {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return domain.FallbackClassification("completion was not a JSON object")
	}

	var p classificationPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &p); err != nil {
		return domain.FallbackClassification("malformed classification: " + err.Error())
	}
	if p.Category == nil {
		return domain.FallbackClassification("classification has no category")
	}

	labels := categoriesIn(*p.Category)
	if len(labels) == 0 {
		return domain.FallbackClassification("unknown category " + *p.Category)
	}

	var confidence float64
	if p.Confidence != nil {
		confidence = domain.ClampConfidence(*p.Confidence)
	}

	hedged := len(labels) > 1 || len(p.Alternatives) > 0
	if hedged {
		confidence = domain.ClampConfidence(confidence * hedgePenalty)
	}

	rationale := p.Rationale
	if rationale == "" {
		rationale = p.Explanation
	}

	return domain.ClassifiedQuery{
		Category:   labels[0],
		Confidence: confidence,
		Rationale:  rationale,
		Hedged:     hedged,
	}
}

// categoriesIn returns the distinct category labels named in s, in the order
// they appear. Labels match on whole words, so "Temporal trend",
// "TEMPORAL-TREND" and "temporal_trend" all match but "DIRECT_LOOKUPS" does
// not. A label directly preceded by "not" or "no" is negated and ignored.
func categoriesIn(s string) []domain.QueryCategory {
	words := strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var out []domain.QueryCategory
	seen := make(map[domain.QueryCategory]bool)
	for i := range words {
		for _, c := range domain.Categories() {
			label := strings.Split(string(c), "_")
			if seen[c] || !hasWordsAt(words, i, label) {
				continue
			}
			if i > 0 && (words[i-1] == "NOT" || words[i-1] == "NO") {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func hasWordsAt(words []string, i int, want []string) bool {
	if i+len(want) > len(words) {
		return false
	}
	for j, w := range want {
		if words[i+j] != w {
			return false
		}
	}
	return true
}
