package driving

import (
	"context"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
)

// Indexer rebuilds the vector index from an extracted chunk set.
type Indexer interface {
	// Index embeds and persists the chunks, returning the count of chunks
	// actually stored. The build is idempotent-by-replacement: any
	// existing collection is cleared first.
	Index(ctx context.Context, chunks []domain.Chunk) (int, error)
}

// Retriever serves hybrid retrieval queries.
type Retriever interface {
	// Search returns a ranked, merged, name-deduplicated result set
	// combining semantic and direct substring search. An empty result is
	// a normal "no match" outcome, not an error.
	Search(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.RetrievedChunk, error)
}

// Synthesizer turns retrieved chunks into a natural-language answer.
type Synthesizer interface {
	// Synthesize assembles a grounding context from the retrieved chunks
	// and delegates generation to the language model.
	Synthesize(ctx context.Context, query string, retrieved []domain.RetrievedChunk) (string, error)
}

// Flattener restructures raw records into flat dictionaries through the
// language model, preserving input order.
type Flattener interface {
	// Flatten processes every record concurrently through the model.
	// Output index i always corresponds to input index i; a record whose
	// retries are exhausted yields an empty object at its slot.
	Flatten(ctx context.Context, records []map[string]any) ([]map[string]any, error)
}
