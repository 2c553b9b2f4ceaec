package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, semantic retrieval is disabled
// and the retriever degrades to direct substring search.
//
// The index and the query must use the same model version: embeddings are
// deterministic per model version, and mixing models silently breaks
// nearest-neighbour distances.
//
// Implementations may include:
//   - OpenAI-compatible endpoints (text-embedding-3-small and friends)
//   - Ollama (bge-small-zh, nomic-embed-text)
//   - Local inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// One fixed-dimension vector is returned per input string, in input
	// order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 512, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup before committing to an index build.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
