package jsonl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
)

func sampleChunks() []domain.Chunk {
	return []domain.Chunk{
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
}

func TestWriteAndReadChunks(t *testing.T) {
	store := NewChunkFile()
	path := filepath.Join(t.TempDir(), "chunks.jsonl")

	require.NoError(t, store.WriteChunks(path, sampleChunks()))

	chunks, skipped, err := store.ReadChunks(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, chunks, 2)
	assert.Equal(t, "doc1-core_info-0", chunks[0].ChunkID)
	assert.Equal(t, domain.ChunkCoreInfo, chunks[0].Type)
	assert.Equal(t, 450.0, chunks[0].Metadata["price_min"])
}

func TestWriteChunksReplacesArtifact(t *testing.T) {
	store := NewChunkFile()
	path := filepath.Join(t.TempDir(), "chunks.jsonl")

	require.NoError(t, store.WriteChunks(path, sampleChunks()))
	require.NoError(t, store.WriteChunks(path, sampleChunks()[:1]))

	chunks, _, err := store.ReadChunks(path)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestReadChunksSkipsInvalidLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	artifact := `{"doc_id":"d1","chunk_id":"d1-core_info-0","type":"core_info","content":"內容","metadata":{}}
not json at all
{"doc_id":"","chunk_id":"x","type":"core_info","content":"缺 doc_id","metadata":{}}
{"doc_id":"d2","chunk_id":"d2-core_info-0","type":"unknown_type","content":"壞類型","metadata":{}}

{"doc_id":"d3","chunk_id":"d3-core_info-0","type":"core_info","content":"另一筆","metadata":{}}
`
	require.NoError(t, os.WriteFile(path, []byte(artifact), 0644))

	chunks, skipped, err := NewChunkFile().ReadChunks(path)
	require.NoError(t, err)
	assert.Equal(t, 3, skipped)
	require.Len(t, chunks, 2)
	assert.Equal(t, "d1-core_info-0", chunks[0].ChunkID)
	assert.Equal(t, "d3-core_info-0", chunks[1].ChunkID)
}

func TestReadChunksMissingFile(t *testing.T) {
	_, _, err := NewChunkFile().ReadChunks(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}
