package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

func TestSectionMatcher_Detect(t *testing.T) {
	m, err := NewSectionMatcher([]domain.SectionPattern{
		{Tag: "A", Pattern: `(?m)^A:`},
		{Tag: "B", Pattern: `(?m)^B:`},
		{Tag: "AB", Pattern: `(?m)^A:`},
	})
	require.NoError(t, err)

	t.Run("covers all text in order", func(t *testing.T) {
		text := "intro\nA: one\nB: two\n"
		spans := m.Detect(text, "10-K")

		require.Len(t, spans, 3)
		assert.Equal(t, domain.SectionSpan{Tag: domain.Unsectioned, Start: 0, End: 6}, spans[0])
		assert.Equal(t, "A", spans[1].Tag)
		assert.Equal(t, "B", spans[2].Tag)
		assert.Equal(t, len(text), spans[2].End)
		assert.Equal(t, spans[1].End, spans[2].Start)
	})

	t.Run("table order breaks ties", func(t *testing.T) {
		spans := m.Detect("A: first", "10-K")
		require.Len(t, spans, 1)
		assert.Equal(t, "A", spans[0].Tag)
	})

	t.Run("no boundaries", func(t *testing.T) {
		spans := m.Detect("plain text", "10-K")
		require.Len(t, spans, 1)
		assert.Equal(t, domain.Unsectioned, spans[0].Tag)
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, m.Detect("", "10-K"))
	})
}

func TestNewSectionMatcher_InvalidPattern(t *testing.T) {
	_, err := NewSectionMatcher([]domain.SectionPattern{{Tag: "X", Pattern: "(unclosed"}})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
