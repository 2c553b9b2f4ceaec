package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions"`
}

// newEmbeddingServer returns an httptest server that echoes one vector
// per input, encoding the input's position so reordering is detectable.
// It serves response data in reverse index order.
func newEmbeddingServer(t *testing.T, calls *atomic.Int32, lastReq *recordedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/embeddings", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req recordedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*lastReq = req

		type datum struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]datum, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, datum{Embedding: []float32{float32(i), 0.5}, Index: i})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func TestNewEmbeddingServiceRequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestEmbedBatchOrdersByResponseIndex(t *testing.T) {
	var calls atomic.Int32
	var lastReq recordedRequest
	srv := newEmbeddingServer(t, &calls, &lastReq)
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"耶加雪菲", "藝伎", "曼特寧"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for i, vec := range vectors {
		assert.Equal(t, float32(i), vec[0], "vector %d placed by response index", i)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedBatchSplitsOversizedBatches(t *testing.T) {
	var calls atomic.Int32
	var lastReq recordedRequest
	srv := newEmbeddingServer(t, &calls, &lastReq)
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	texts := make([]string, maxInputsPerRequest+1)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
	}

	vectors, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vectors, len(texts))
	assert.Equal(t, int32(2), calls.Load())
	assert.Len(t, lastReq.Input, 1, "final request carries the remainder")
}

func TestEmbedBatchSendsDimensionsForSupportedModels(t *testing.T) {
	var calls atomic.Int32
	var lastReq recordedRequest
	srv := newEmbeddingServer(t, &calls, &lastReq)
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "text-embedding-3-large",
		Dimensions: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 256, svc.Dimensions())

	_, err = svc.EmbedBatch(context.Background(), []string{"水洗"})
	require.NoError(t, err)
	assert.Equal(t, 256, lastReq.Dimensions)
}

func TestEmbedBatchOmitsDimensionsForLegacyModels(t *testing.T) {
	var calls atomic.Int32
	var lastReq recordedRequest
	srv := newEmbeddingServer(t, &calls, &lastReq)
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "text-embedding-ada-002",
		Dimensions: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 1536, svc.Dimensions(), "override ignored for models without dimensions support")

	_, err = svc.EmbedBatch(context.Background(), []string{"日曬"})
	require.NoError(t, err)
	assert.Zero(t, lastReq.Dimensions)
}

func TestEmbedBatchRejectsMissingIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no embedding returned for input 1")
}

func TestEmbedBatchSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key", "type": "auth"},
		})
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(Config{APIKey: "bad-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "耶加雪菲")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "test-key"})
	require.NoError(t, err)

	vectors, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}
