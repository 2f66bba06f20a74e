package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/filings-cli/internal/core/domain"
)

func seed(t *testing.T) *Index {
	t.Helper()
	x := New()
	ctx := context.Background()
	require.NoError(t, x.Upsert(ctx, "aapl-1", "Net sales increased due to iPhone revenue.",
		map[string]string{domain.MetaCompany: "AAPL", domain.MetaFiscalYear: "2023"}))
	require.NoError(t, x.Upsert(ctx, "aapl-2", "Risk factors include supply chain concentration.",
		map[string]string{domain.MetaCompany: "AAPL", domain.MetaFiscalYear: "2022"}))
	require.NoError(t, x.Upsert(ctx, "msft-1", "Revenue grew in the Intelligent Cloud segment; net sales rose.",
		map[string]string{domain.MetaCompany: "MSFT", domain.MetaFiscalYear: "2023"}))
	return x
}

func TestIndex_Query(t *testing.T) {
	x := seed(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		text    string
		topK    int
		filter  map[string]string
		wantIDs []string
	}{
		{"ranked by coverage then id", "net sales revenue", 10, nil, []string{"aapl-1", "msft-1"}},
		{"case insensitive", "RISK Factors", 10, nil, []string{"aapl-2"}},
		{"company filter", "revenue", 10, map[string]string{domain.MetaCompany: "MSFT"}, []string{"msft-1"}},
		{"year filter", "net sales", 10, map[string]string{domain.MetaFiscalYear: "2023"}, []string{"aapl-1", "msft-1"}},
		{"filter with no match", "revenue", 10, map[string]string{domain.MetaCompany: "TSLA"}, []string{}},
		{"topK caps", "net sales revenue", 1, nil, []string{"aapl-1"}},
		{"no terms", "?!", 10, nil, []string{}},
		{"zero topK", "revenue", 0, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := x.Query(ctx, tt.text, tt.topK, tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ChunkID)
				assert.Greater(t, m.Score, 0.0)
				assert.LessOrEqual(t, m.Score, 1.0)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestIndex_UpsertReplaces(t *testing.T) {
	x := seed(t)
	ctx := context.Background()

	require.NoError(t, x.Upsert(ctx, "aapl-1", "Services margin expanded.", map[string]string{domain.MetaCompany: "AAPL"}))

	assert.Equal(t, 3, x.Len())
	text, meta, ok := x.Get("aapl-1")
	require.True(t, ok)
	assert.Equal(t, "Services margin expanded.", text)
	assert.Equal(t, map[string]string{domain.MetaCompany: "AAPL"}, meta)

	got, err := x.Query(ctx, "iphone", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIndex_MetadataIsCopied(t *testing.T) {
	x := New()
	ctx := context.Background()
	meta := map[string]string{domain.MetaCompany: "NVDA"}
	require.NoError(t, x.Upsert(ctx, "n1", "data center revenue", meta))
	meta[domain.MetaCompany] = "changed"

	got, err := x.Query(ctx, "revenue", 1, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NVDA", got[0].Metadata[domain.MetaCompany])

	got[0].Metadata[domain.MetaCompany] = "mutated"
	_, stored, _ := x.Get("n1")
	assert.Equal(t, "NVDA", stored[domain.MetaCompany])
}

func TestIndex_Errors(t *testing.T) {
	x := New()

	assert.ErrorIs(t, x.Upsert(context.Background(), "", "text", nil), domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, x.Upsert(ctx, "id", "text", nil))
	_, err := x.Query(ctx, "text", 1, nil)
	assert.Error(t, err)
}

func TestIndex_ConcurrentAccess(t *testing.T) {
	x := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = x.Upsert(ctx, fmt.Sprintf("c%d", i), "operating income", nil)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = x.Query(ctx, "income", 5, nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, x.Len())
}
