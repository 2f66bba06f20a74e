package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantErr  bool
		wantDims int
		wantSend bool
	}{
		{name: "missing key", cfg: Config{}, wantErr: true},
		{name: "default model", cfg: Config{APIKey: "k"}, wantDims: 1536},
		{name: "large model", cfg: Config{APIKey: "k", Model: "text-embedding-3-large"}, wantDims: 3072},
		{name: "reduced dimensions", cfg: Config{APIKey: "k", Dimensions: 512}, wantDims: 512, wantSend: true},
		{name: "native dimensions not sent", cfg: Config{APIKey: "k", Dimensions: 1536}, wantDims: 1536},
		{name: "unknown model needs dimensions", cfg: Config{APIKey: "k", Model: "custom"}, wantErr: true},
		{name: "unknown model with dimensions", cfg: Config{APIKey: "k", Model: "custom", Dimensions: 64}, wantDims: 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewEmbeddingService(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDims, svc.Dimensions())
			assert.Equal(t, tt.wantSend, svc.sendDimensions)
		})
	}
}

func TestEmbedBatch_ReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)

		// Reply in reverse order; the adapter must restore input order.
		var data []string
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, fmt.Sprintf(`{"object":"embedding","index":%d,"embedding":[%d,0.5]}`, i, i))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"object":"list","model":%q,"data":[%s],"usage":{"prompt_tokens":2,"total_tokens":2}}`,
			req.Model, strings.Join(data, ","))
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"net sales", "operating income"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{0, 0.5}, vecs[0])
	assert.Equal(t, []float32{1, 0.5}, vecs[1])

	empty, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
