package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

func testClassifierSettings() domain.ClassifierSettings {
	return domain.ClassifierSettings{HedgePenalty: 0.5, Timeout: domain.Duration(time.Second)}
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantCat    domain.QueryCategory
		wantConf   float64
		wantFb     bool
		wantHedged bool
	}{
		{
			name:     "plain json",
			reply:    `{"category": "DIRECT_LOOKUP", "confidence": 0.9, "rationale": "one company, one figure"}`,
			wantCat:  domain.CategoryDirectLookup,
			wantConf: 0.9,
		},
		{
			name:     "json wrapped in prose and fences",
			reply:    "Sure!\n```json\n{\"category\": \"cross entity comparison\", \"confidence\": 0.8}\n```",
			wantCat:  domain.CategoryCrossEntityComparison,
			wantConf: 0.8,
		},
		{
			name:    "hedge in prose is unusable",
			reply:   "I'm not sure, maybe FINANCIAL or GENERAL",
			wantCat: domain.CategoryConversational,
			wantFb:  true,
		},
		{
			name:       "two categories take the first with a penalty",
			reply:      `{"category": "TEMPORAL_TREND or DIRECT_LOOKUP", "confidence": 0.8}`,
			wantCat:    domain.CategoryTemporalTrend,
			wantConf:   0.4,
			wantHedged: true,
		},
		{
			name:     "negated label is ignored",
			reply:    `{"category": "not DIRECT_LOOKUP but TEMPORAL_TREND", "confidence": 0.8}`,
			wantCat:  domain.CategoryTemporalTrend,
			wantConf: 0.8,
		},
		{
			name:       "slash separated labels are a hedge",
			reply:      `{"category": "CROSS_ENTITY_COMPARISON/TEMPORAL_TREND", "confidence": 0.6}`,
			wantCat:    domain.CategoryCrossEntityComparison,
			wantConf:   0.3,
			wantHedged: true,
		},
		{
			name:    "label inside a longer word does not match",
			reply:   `{"category": "DIRECT_LOOKUPS", "confidence": 0.9}`,
			wantCat: domain.CategoryConversational,
			wantFb:  true,
		},
		{
			name:       "alternatives are a hedge",
			reply:      `{"category": "DIRECT_LOOKUP", "confidence": 0.6, "alternatives": ["TEMPORAL_TREND"]}`,
			wantCat:    domain.CategoryDirectLookup,
			wantConf:   0.3,
			wantHedged: true,
		},
		{
			name:     "confidence above one is clamped",
			reply:    `{"category": "TEMPORAL_TREND", "confidence": 1.7}`,
			wantCat:  domain.CategoryTemporalTrend,
			wantConf: 1,
		},
		{
			name:     "negative confidence is clamped",
			reply:    `{"category": "CONVERSATIONAL", "confidence": -0.2}`,
			wantCat:  domain.CategoryConversational,
			wantConf: 0,
		},
		{
			name:     "missing confidence is zero",
			reply:    `{"category": "DIRECT_LOOKUP"}`,
			wantCat:  domain.CategoryDirectLookup,
			wantConf: 0,
		},
		{
			name:    "unknown category",
			reply:   `{"category": "FINANCIAL_RAG", "confidence": 0.9}`,
			wantCat: domain.CategoryConversational,
			wantFb:  true,
		},
		{
			name:    "missing category",
			reply:   `{"confidence": 0.9}`,
			wantCat: domain.CategoryConversational,
			wantFb:  true,
		},
		{
			name:    "truncated json",
			reply:   `{"category": "DIRECT_LOOKUP", "confidence": }`,
			wantCat: domain.CategoryConversational,
			wantFb:  true,
		},
		{
			name:    "wrong confidence type",
			reply:   `{"category": "DIRECT_LOOKUP", "confidence": "high"}`,
			wantCat: domain.CategoryConversational,
			wantFb:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&mockCompletion{reply: tt.reply}, testClassifierSettings())

			got := c.Classify(context.Background(), "What was Acme's revenue in 2023?", "")

			assert.Equal(t, tt.wantCat, got.Category)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantFb, got.Fallback)
			assert.Equal(t, tt.wantHedged, got.Hedged)
			assert.GreaterOrEqual(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestClassifier_Classify_Degraded(t *testing.T) {
	t.Run("nil completion", func(t *testing.T) {
		got := NewClassifier(nil, testClassifierSettings()).Classify(context.Background(), "hello", "")
		assert.Equal(t, domain.FallbackClassification(domain.ErrCompletionUnavailable.Error()), got)
	})

	t.Run("completion error", func(t *testing.T) {
		c := NewClassifier(&mockCompletion{err: errors.New("503")}, testClassifierSettings())
		got := c.Classify(context.Background(), "hello", "")
		assert.Equal(t, domain.CategoryConversational, got.Category)
		assert.Zero(t, got.Confidence)
		assert.True(t, got.Fallback)
	})

	t.Run("empty question", func(t *testing.T) {
		mc := &mockCompletion{reply: `{"category": "DIRECT_LOOKUP", "confidence": 1}`}
		got := NewClassifier(mc, testClassifierSettings()).Classify(context.Background(), "  ", "")
		assert.True(t, got.Fallback)
		assert.Empty(t, mc.prompts)
	})
}

func TestClassifier_Prompt(t *testing.T) {
	mc := &mockCompletion{reply: `{"category": "DIRECT_LOOKUP", "confidence": 0.7}`}
	c := NewClassifier(mc, testClassifierSettings())

	c.Classify(context.Background(), "Did gross margin exceed 40%s?", "user: hi\nassistant [CONVERSATIONAL]: no evidence (complete)")
	require.Len(t, mc.prompts, 1)
	assert.Contains(t, mc.prompts[0], "Question: Did gross margin exceed 40%s?")
	assert.Contains(t, mc.prompts[0], "CROSS_ENTITY_COMPARISON")
	assert.Equal(t, "user: hi\nassistant [CONVERSATIONAL]: no evidence (complete)", mc.histories[0])

	// Identical input renders an identical prompt.
	c.Classify(context.Background(), "Did gross margin exceed 40%s?", "")
	assert.Equal(t, mc.prompts[0], mc.prompts[1])
}

func TestClassifier_PromptStore(t *testing.T) {
	mc := &mockCompletion{reply: `{"category": "DIRECT_LOOKUP", "confidence": 0.7}`}
	c := NewClassifier(mc, testClassifierSettings())
	c.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		domain.PromptClassify: "Route: %s",
	}})

	c.Classify(context.Background(), "revenue?", "")
	require.Len(t, mc.prompts, 1)
	assert.Equal(t, "Route: revenue?", mc.prompts[0])
}

func TestParseClassification_ExplanationAlias(t *testing.T) {
	got := ParseClassification(`{"category": "TEMPORAL_TREND", "confidence": 0.5, "explanation": "spans years"}`, 0.5)
	assert.Equal(t, "spans years", got.Rationale)
}
