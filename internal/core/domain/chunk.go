package domain

import (
	"fmt"
	"strconv"
)

// ChunkType classifies a retrieval chunk.
type ChunkType string

// The four chunk type tags.
const (
	ChunkCoreInfo           ChunkType = "core_info"
	ChunkDescriptionSegment ChunkType = "description_segment"
	ChunkAttributeInfo      ChunkType = "attribute_info"
	ChunkModelVariant       ChunkType = "model_variant"
)

// Valid reports whether t is one of the known chunk types.
func (t ChunkType) Valid() bool {
	switch t {
	case ChunkCoreInfo, ChunkDescriptionSegment, ChunkAttributeInfo, ChunkModelVariant:
		return true
	}
	return false
}

// Chunk is the atomic retrieval unit: one piece of text derived from a
// product record, plus a metadata sidecar carrying enough of the parent
// product's identity to be useful without rejoining to the parent.
type Chunk struct {
	// DocID identifies the parent product. Stable across all chunks of
	// the same product.
	DocID string `json:"doc_id"`

	// ChunkID is unique per chunk, derived as doc_id + type + ordinal.
	// Deterministic given identical input.
	ChunkID string `json:"chunk_id"`

	// Type is one of the four chunk type tags.
	Type ChunkType `json:"type"`

	// Content is the human-readable Traditional Chinese text.
	Content string `json:"content"`

	// Metadata is a flat mapping. Before storage every value must be a
	// scalar: composites get serialised to strings, nulls become "",
	// numeric fields are coerced to float64.
	Metadata map[string]any `json:"metadata"`
}

// NewChunkID derives the deterministic chunk identifier for the given
// parent, type and ordinal.
func NewChunkID(docID string, typ ChunkType, ordinal int) string {
	return fmt.Sprintf("%s-%s-%d", docID, typ, ordinal)
}

// ScalarString renders a scalar value as its string form. Composites and
// nil render as "". Numeric values avoid the exponent notation that
// fmt.Sprint would produce for large floats decoded from JSON.
func ScalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
