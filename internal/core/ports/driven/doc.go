// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the build pipeline to function:
//
//   - ProductStore: Raw and canonical product persistence, plus the direct
//     substring search the hybrid retriever falls back to.
//   - ChunkStore: The line-delimited chunk artifact between extraction and
//     indexing.
//   - ConfigStore: Application configuration.
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VectorStore: Vector persistence and nearest-neighbour queries.
//   - EmbeddingService: Generates vector embeddings. Without it, the
//     VectorStore is also disabled and retrieval is direct-only.
//   - LLMService: Language model operations. Without it, answer synthesis
//     and record flattening are disabled.
//   - Scraper: Marketplace scrape job submission/polling.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser, or chunker package
package driven
