package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveProductsAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []domain.ProductRecord{
		{
			Name:  "衣索比亞 耶加雪菲 G1",
			Price: float64(30000000),
			Link:  "https://example.com/1",
			Fields: map[string]any{
				"description": "檸檬柑橘調性",
			},
		},
		{
			Name:   "巴拿馬 藝妓 水洗",
			Price:  "NT$1200",
			Fields: map[string]any{"description": "茉莉花香"},
		},
		{
			// Nameless records are not searchable and are skipped.
			Fields: map[string]any{"description": "無名"},
		},
	}

	require.NoError(t, store.SaveProducts(ctx, records))

	count, err := store.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	hits, err := store.SearchProducts(ctx, "耶加雪菲")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "衣索比亞 耶加雪菲 G1", hits[0].Name)
	assert.Equal(t, 300.0, hits[0].Price)
	assert.Equal(t, "https://example.com/1", hits[0].Link)

	// Description text matches too.
	hits, err = store.SearchProducts(ctx, "茉莉")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "巴拿馬 藝妓 水洗", hits[0].Name)
	assert.Equal(t, 1200.0, hits[0].Price)
}

func TestSearchProductsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProducts(ctx, []domain.ProductRecord{
		{Name: "Kenya AA Top", Fields: map[string]any{"description": "blackcurrant"}},
	}))

	hits, err := store.SearchProducts(ctx, "kenya aa")
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchProductsEscapesWildcards(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProducts(ctx, []domain.ProductRecord{
		{Name: "豆 100% 阿拉比卡"},
		{Name: "豆 1000 阿拉比卡"},
	}))

	hits, err := store.SearchProducts(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "豆 100% 阿拉比卡", hits[0].Name)
}

func TestSaveProductsReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProducts(ctx, []domain.ProductRecord{{Name: "A"}, {Name: "B"}}))
	require.NoError(t, store.SaveProducts(ctx, []domain.ProductRecord{{Name: "C"}}))

	count, err := store.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestChunkRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	chunks := []domain.Chunk{
		{
			DocID:   "doc1",
			ChunkID: "doc1-core_info-0",
			Type:    domain.ChunkCoreInfo,
			Content: "產品：藝妓。",
			Metadata: map[string]any{
				"name":      "藝妓",
				"price_min": 450.0,
			},
		},
		{
			DocID:    "doc1",
			ChunkID:  "doc1-description_segment-0",
			Type:     domain.ChunkDescriptionSegment,
			Content:  "花香調性。",
			Metadata: map[string]any{"name": "藝妓"},
		},
	}
	require.NoError(t, store.SaveChunks(ctx, chunks))

	got, err := store.GetChunk(ctx, "doc1-core_info-0")
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkCoreInfo, got.Type)
	assert.Equal(t, "產品：藝妓。", got.Content)
	assert.Equal(t, 450.0, got.Metadata["price_min"])

	listed, err := store.ListChunks(ctx, "doc1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestSaveChunksUpserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	chunk := domain.Chunk{
		DocID:    "doc1",
		ChunkID:  "doc1-core_info-0",
		Type:     domain.ChunkCoreInfo,
		Content:  "舊內容",
		Metadata: map[string]any{},
	}

	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{chunk}))
	chunk.Content = "新內容"
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{chunk}))

	got, err := store.GetChunk(ctx, "doc1-core_info-0")
	require.NoError(t, err)
	assert.Equal(t, "新內容", got.Content)
}

func TestGetChunkNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetChunk(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
