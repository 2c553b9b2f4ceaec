package driven

import "context"

// VectorStore persists chunk embeddings and serves nearest-neighbour
// queries. Core treats the store as a black box satisfying upsert, query
// and delete-collection-by-name.
type VectorStore interface {
	// Rebuild deletes any existing collection under the configured name
	// and recreates it empty. Index builds are idempotent-by-replacement,
	// not incremental merge, so stale chunks from a previous schema never
	// coexist with new ones.
	Rebuild(ctx context.Context) error

	// AddBatch upserts a batch of chunks. All slices are parallel and the
	// batch is bounded by the store's maximum accepted batch size.
	// Metadata values must already be sanitised to scalars.
	AddBatch(ctx context.Context, ids []string, contents []string, metadatas []map[string]any, embeddings [][]float32) error

	// Query runs a nearest-neighbour search bounded to topK results.
	Query(ctx context.Context, embedding []float32, topK int) ([]VectorHit, error)

	// Count returns the number of stored chunks.
	Count() int

	// MaxBatchSize returns the largest batch AddBatch accepts.
	MaxBatchSize() int

	// Close releases resources.
	Close() error
}

// VectorHit is one nearest-neighbour result, carrying the stored content
// and metadata so callers need no second lookup.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Content is the stored chunk text.
	Content string

	// Metadata is the stored metadata sidecar.
	Metadata map[string]string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
