package driven

import (
	"context"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
)

// ProductStore persists products and chunks, and serves the direct
// substring search the hybrid retriever falls back to.
// Backed by SQLite.
type ProductStore interface {
	// SaveProducts stores raw product rows (name, price, description,
	// link, sold count, rating) for direct search.
	SaveProducts(ctx context.Context, records []domain.ProductRecord) error

	// SaveChunks stores extracted chunks for hydration and inspection.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a chunk by its chunk id.
	GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error)

	// ListChunks returns all chunks for a product.
	ListChunks(ctx context.Context, docID string) ([]domain.Chunk, error)

	// SearchProducts runs a case-insensitive substring match of the query
	// against the name and description columns of the full product set.
	SearchProducts(ctx context.Context, query string) ([]domain.DirectHit, error)

	// CountProducts returns the number of stored product rows.
	CountProducts(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// ChunkStore reads and writes the line-delimited chunk artifact that
// hands off between extraction and indexing (one JSON chunk per line).
type ChunkStore interface {
	// WriteChunks writes chunks to the artifact path, overwriting any
	// previous artifact.
	WriteChunks(path string, chunks []domain.Chunk) error

	// ReadChunks reads chunks back. Invalid lines and lines missing
	// essential keys are skipped and counted, not fatal.
	ReadChunks(path string) ([]domain.Chunk, int, error)
}
