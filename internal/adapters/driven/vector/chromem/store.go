// Package chromem provides a vector store adapter backed by chromem-go,
// an embedded vector database persisted on the local filesystem.
package chromem

import (
	"context"
	"fmt"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultCollection = "coffee"
	DefaultMaxBatch   = 5000
)

// collectionMetadata pins the cosine distance space.
var collectionMetadata = map[string]string{
	"hnsw:space": "cosine",
}

// Config holds configuration for the chromem vector store.
type Config struct {
	// Path is the on-disk database directory (required).
	Path string

	// Collection is the collection name (default: coffee).
	Collection string

	// MaxBatch bounds a single Add call (default: 5000).
	MaxBatch int
}

// Store persists chunk embeddings in a chromem-go collection.
type Store struct {
	mu         sync.RWMutex
	db         *chromemgo.DB
	collection *chromemgo.Collection
	name       string
	maxBatch   int
}

// NewStore opens (or creates) the database at the configured path and
// binds the collection. Embeddings are always supplied by the caller, so
// no embedding function is registered with the collection.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("chromem: path is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultMaxBatch
	}

	db, err := chromemgo.NewPersistentDB(cfg.Path, false)
	if err != nil {
		return nil, fmt.Errorf("chromem: open database: %w", err)
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, collectionMetadata, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: bind collection %q: %w", cfg.Collection, err)
	}

	logger.Debug("Chromem store open: path=%s collection=%s count=%d",
		cfg.Path, cfg.Collection, collection.Count())

	return &Store{
		db:         db,
		collection: collection,
		name:       cfg.Collection,
		maxBatch:   cfg.MaxBatch,
	}, nil
}

// Rebuild drops the collection and recreates it empty.
func (s *Store) Rebuild(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("chromem: delete collection %q: %w", s.name, err)
	}

	collection, err := s.db.CreateCollection(s.name, collectionMetadata, nil)
	if err != nil {
		return fmt.Errorf("chromem: recreate collection %q: %w", s.name, err)
	}

	s.collection = collection
	logger.Debug("Collection %q rebuilt", s.name)
	return nil
}

// AddBatch upserts one bounded batch. Metadata values are rendered to
// strings, as chromem stores string-valued metadata only; numeric values
// keep their decimal form so they parse back cleanly.
func (s *Store) AddBatch(
	ctx context.Context, ids, contents []string, metadatas []map[string]any, embeddings [][]float32,
) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > s.maxBatch {
		return fmt.Errorf("chromem: batch of %d exceeds limit %d", len(ids), s.maxBatch)
	}
	if len(contents) != len(ids) || len(metadatas) != len(ids) || len(embeddings) != len(ids) {
		return fmt.Errorf("chromem: mismatched batch slice lengths")
	}

	stringMetas := make([]map[string]string, len(metadatas))
	for i, meta := range metadatas {
		flat := make(map[string]string, len(meta))
		for k, v := range meta {
			flat[k] = domain.ScalarString(v)
		}
		stringMetas[i] = flat
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.collection.Add(ctx, ids, embeddings, stringMetas, contents); err != nil {
		return fmt.Errorf("chromem: add batch: %w", err)
	}
	return nil
}

// Query runs a nearest-neighbour search. chromem rejects a topK larger
// than the collection, so the bound is clamped; an empty collection
// yields an empty result.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int) ([]driven.VectorHit, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("chromem: empty query embedding")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem: query: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, driven.VectorHit{
			ChunkID:    r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: float64(r.Similarity),
		})
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count()
}

// MaxBatchSize returns the largest batch AddBatch accepts.
func (s *Store) MaxBatchSize() int {
	return s.maxBatch
}

// Close releases resources. chromem persists on every write, so there is
// no flush to do here.
func (s *Store) Close() error {
	return nil
}
