package domain

// RetrievalSource tags which strategy produced a retrieved chunk.
type RetrievalSource string

// Retrieval strategies.
const (
	RetrievalSemantic RetrievalSource = "semantic"
	RetrievalDirect   RetrievalSource = "direct"
)

// QueryOptions configures a retrieval query.
type QueryOptions struct {
	// TopK is the maximum number of semantic results (default 7).
	TopK int

	// SemanticOnly disables the direct substring fallback.
	SemanticOnly bool
}

// RetrievedChunk is a single retrieval hit, from either strategy.
type RetrievedChunk struct {
	// Chunk is the matched chunk. Direct hits synthesise a chunk-shaped
	// view over the raw product row.
	Chunk Chunk

	// Score is the similarity score for semantic hits (0-1). Direct hits
	// carry 0; they are appended after semantic hits, not ranked.
	Score float64

	// Source is the strategy that produced this hit.
	Source RetrievalSource
}

// ProductName returns the parent product name from the hit metadata.
// Used for the name-based merge dedup.
func (r RetrievedChunk) ProductName() string {
	if r.Chunk.Metadata == nil {
		return ""
	}
	return ScalarString(r.Chunk.Metadata["name"])
}

// DirectHit is a raw-product match from the substring search, before it
// is wrapped into a RetrievedChunk.
type DirectHit struct {
	Name        string
	Price       float64
	SoldCount   float64
	Rating      float64
	Description string
	Link        string
}
