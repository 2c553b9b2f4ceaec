package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driving"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.Indexer = (*IndexService)(nil)

// DefaultIndexBatchSize bounds a single vector store write.
const DefaultIndexBatchSize = 5000

// numericMetadataFields are always stored as float64 so price and rating
// filters compare numbers, never strings.
var numericMetadataFields = map[string]bool{
	"price":       true,
	"price_min":   true,
	"price_max":   true,
	"sold_count":  true,
	"rating":      true,
	"shop_rating": true,
	"item_rating": true,
	"model_price": true,
}

var numericSubstring = regexp.MustCompile(`-?\d+\.?\d*`)

// IndexService embeds chunks and writes them to the vector store.
type IndexService struct {
	embedding driven.EmbeddingService
	vectors   driven.VectorStore
}

// NewIndexService creates a new index service.
func NewIndexService(embedding driven.EmbeddingService, vectors driven.VectorStore) *IndexService {
	return &IndexService{
		embedding: embedding,
		vectors:   vectors,
	}
}

// Index rebuilds the vector collection from the given chunks and returns
// the number of chunks actually stored. The build replaces any existing
// collection; rerunning with the same input converges to the same state.
func (s *IndexService) Index(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if s.embedding == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}
	if s.vectors == nil {
		return 0, domain.ErrVectorStoreUnavailable
	}

	logger.Section("Index Build")
	logger.Debug("Input chunks: %d", len(chunks))

	// Whitespace-only content would embed as noise; skip and count.
	indexable := make([]domain.Chunk, 0, len(chunks))
	skipped := 0
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			skipped++
			continue
		}
		indexable = append(indexable, c)
	}
	if skipped > 0 {
		logger.Warn("Skipped %d chunks with empty content", skipped)
	}

	if err := s.vectors.Rebuild(ctx); err != nil {
		return 0, fmt.Errorf("rebuild collection: %w", err)
	}

	batchSize := s.vectors.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = DefaultIndexBatchSize
	}

	stored := 0
	for start := 0; start < len(indexable); start += batchSize {
		end := start + batchSize
		if end > len(indexable) {
			end = len(indexable)
		}
		batch := indexable[start:end]

		n, err := s.indexBatch(ctx, batch)
		stored += n
		if err != nil {
			// One bad batch must not abandon the rest of the build.
			logger.Warn("Batch %d-%d failed: %v", start, end, err)
			continue
		}
		logger.Debug("Batch %d-%d stored", start, end)
	}

	logger.Info("Index build complete: %d stored, %d skipped", stored, skipped)
	return stored, nil
}

func (s *IndexService) indexBatch(ctx context.Context, batch []domain.Chunk) (int, error) {
	ids := make([]string, len(batch))
	contents := make([]string, len(batch))
	metadatas := make([]map[string]any, len(batch))
	for i, c := range batch {
		ids[i] = c.ChunkID
		contents[i] = c.Content
		metadatas[i] = SanitizeMetadata(c)
	}

	embeddings, err := s.embedding.EmbedBatch(ctx, contents)
	if err != nil {
		return 0, fmt.Errorf("embed batch: %w", err)
	}
	if len(embeddings) != len(batch) {
		return 0, fmt.Errorf("embed batch: got %d embeddings for %d chunks", len(embeddings), len(batch))
	}

	if err := s.vectors.AddBatch(ctx, ids, contents, metadatas, embeddings); err != nil {
		return 0, fmt.Errorf("add batch: %w", err)
	}
	return len(batch), nil
}

// SanitizeMetadata flattens a chunk's metadata for vector store storage.
// Composite values become JSON strings, nil becomes "", and the numeric
// fields are coerced to float64 with a numeric-substring fallback.
// The chunk's own identity (doc_id, chunk_id, type) is merged in so a
// hit needs no second lookup.
func SanitizeMetadata(c domain.Chunk) map[string]any {
	out := make(map[string]any, len(c.Metadata)+3)
	out["doc_id"] = c.DocID
	out["chunk_id"] = c.ChunkID
	out["type"] = string(c.Type)

	for key, value := range c.Metadata {
		if numericMetadataFields[key] {
			out[key] = coerceFloat(value)
			continue
		}
		switch v := value.(type) {
		case nil:
			out[key] = ""
		case string, bool, float64, float32, int, int64:
			out[key] = v
		case map[string]any, []any, []string:
			encoded, err := json.Marshal(v)
			if err != nil {
				out[key] = ""
				continue
			}
			out[key] = string(encoded)
		default:
			out[key] = domain.ScalarString(v)
		}
	}
	return out
}

// coerceFloat converts any raw value to float64, recovering a numeric
// substring from strings like "NT$300" or "約450up". Unrecoverable
// values become 0.
func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
		if m := numericSubstring.FindString(t); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return f
			}
		}
	}
	return 0
}
