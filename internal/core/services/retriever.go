package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driving"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// DefaultTopK is the default semantic result bound.
const DefaultTopK = 7

// RetrieverService serves hybrid retrieval: semantic similarity over the
// vector store plus direct substring search over the raw product set.
type RetrieverService struct {
	embedding driven.EmbeddingService
	vectors   driven.VectorStore
	products  driven.ProductStore
}

// NewRetrieverService creates a new retriever service.
// The embedding and vectors parameters are optional (can be nil);
// without them retrieval degrades to direct-only.
func NewRetrieverService(
	embedding driven.EmbeddingService,
	vectors driven.VectorStore,
	products driven.ProductStore,
) *RetrieverService {
	return &RetrieverService{
		embedding: embedding,
		vectors:   vectors,
		products:  products,
	}
}

// Search runs both strategies and merges their results. Semantic hits
// come first in similarity order; direct hits are appended only when
// their product name did not already appear in the semantic set. An
// empty result is a normal outcome.
func (s *RetrieverService) Search(
	ctx context.Context, query string, opts domain.QueryOptions,
) ([]domain.RetrievedChunk, error) {
	logger.Section("Hybrid Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.RetrievedChunk{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	logger.Debug("TopK: %d, semantic-only: %t", topK, opts.SemanticOnly)

	var semantic, direct []domain.RetrievedChunk
	var semanticErr, directErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		semantic, semanticErr = s.semanticSearch(ctx, query, topK)
	}()

	go func() {
		defer wg.Done()
		if opts.SemanticOnly {
			return
		}
		direct, directErr = s.directSearch(ctx, query)
	}()

	wg.Wait()

	if semanticErr != nil && directErr != nil {
		return nil, fmt.Errorf("retrieval: semantic=%w, direct=%w", semanticErr, directErr)
	}
	if semanticErr != nil {
		logger.Warn("Semantic search failed, using direct results only: %v", semanticErr)
	}
	if directErr != nil {
		logger.Warn("Direct search failed, using semantic results only: %v", directErr)
	}

	merged := mergeByName(semantic, direct)
	logger.Info("Results: %d semantic + %d direct -> %d merged",
		len(semantic), len(direct), len(merged))
	return merged, nil
}

// semanticSearch embeds the query and runs nearest-neighbour retrieval.
// Unconfigured services are a degradation, not an error.
func (s *RetrieverService) semanticSearch(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	if s.embedding == nil || s.vectors == nil {
		logger.Debug("Semantic search unavailable: embedding=%t, vectors=%t",
			s.embedding != nil, s.vectors != nil)
		return nil, nil
	}

	embedding, err := s.embedding.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.vectors.Query(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	logger.Debug("Semantic search: %d hits", len(hits))

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		metadata := make(map[string]any, len(hit.Metadata))
		for k, v := range hit.Metadata {
			metadata[k] = v
		}
		results = append(results, domain.RetrievedChunk{
			Chunk: domain.Chunk{
				DocID:    hit.Metadata["doc_id"],
				ChunkID:  hit.ChunkID,
				Type:     domain.ChunkType(hit.Metadata["type"]),
				Content:  hit.Content,
				Metadata: metadata,
			},
			Score:  hit.Similarity,
			Source: domain.RetrievalSemantic,
		})
	}
	return results, nil
}

// directSearch wraps raw-product substring matches into chunk-shaped
// hits. It catches exact model numbers and names the embedding model
// ranks poorly.
func (s *RetrieverService) directSearch(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	if s.products == nil {
		logger.Debug("Direct search unavailable: product store is nil")
		return nil, nil
	}

	hits, err := s.products.SearchProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("direct search: %w", err)
	}
	logger.Debug("Direct search: %d hits", len(hits))

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		content := fmt.Sprintf("商品名稱：%s\n價格：%s元\n描述：%s",
			hit.Name, domain.ScalarString(hit.Price), hit.Description)
		results = append(results, domain.RetrievedChunk{
			Chunk: domain.Chunk{
				Content: content,
				Metadata: map[string]any{
					"name":        hit.Name,
					"price":       hit.Price,
					"price_min":   hit.Price,
					"price_max":   hit.Price,
					"sold_count":  hit.SoldCount,
					"rating":      hit.Rating,
					"description": hit.Description,
					"link":        hit.Link,
				},
			},
			Source: domain.RetrievalDirect,
		})
	}
	return results, nil
}

// mergeByName keeps semantic hits as-is and appends direct hits whose
// product name is absent from the semantic set. Different chunks of the
// same product share a name, so a direct hit adds nothing once any chunk
// of that product matched semantically.
func mergeByName(semantic, direct []domain.RetrievedChunk) []domain.RetrievedChunk {
	seen := make(map[string]bool, len(semantic))
	for _, r := range semantic {
		if name := r.ProductName(); name != "" {
			seen[name] = true
		}
	}

	merged := make([]domain.RetrievedChunk, 0, len(semantic)+len(direct))
	merged = append(merged, semantic...)
	for _, r := range direct {
		if name := r.ProductName(); name != "" && seen[name] {
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
