package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoIdentity indicates a record with no resolvable identifier and
	// no name. Such records are dropped and counted, never reported as a
	// hard failure.
	ErrNoIdentity = errors.New("record has no resolvable identity")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Answer synthesis and flattening are disabled without it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Indexing and semantic retrieval are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not
	// configured. Semantic similarity search is disabled.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrProductStoreUnavailable indicates the product store is not
	// configured. Direct substring search is disabled.
	ErrProductStoreUnavailable = errors.New("product store unavailable")

	// ErrScrapeFailed indicates a scrape job returned an error status.
	ErrScrapeFailed = errors.New("scrape failed")

	// ErrRetryExhausted indicates a bounded-retry policy gave up.
	ErrRetryExhausted = errors.New("retry attempts exhausted")
)
