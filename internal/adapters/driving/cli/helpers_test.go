package cli

import (
	"context"
	"errors"

	"github.com/kohi-labs/kohi-cli/internal/chunker"
	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/normalisers"
)

// mockRetriever returns a fixed result set and records the options it
// was called with.
type mockRetriever struct {
	retrieved []domain.RetrievedChunk
	err       error
	gotOpts   domain.QueryOptions
}

func (m *mockRetriever) Search(_ context.Context, _ string, opts domain.QueryOptions) ([]domain.RetrievedChunk, error) {
	m.gotOpts = opts
	return m.retrieved, m.err
}

// mockSynthesizer echoes a fixed answer.
type mockSynthesizer struct {
	answer string
	err    error
}

func (m *mockSynthesizer) Synthesize(_ context.Context, _ string, _ []domain.RetrievedChunk) (string, error) {
	return m.answer, m.err
}

// mockIndexer records the chunks it was given.
type mockIndexer struct {
	indexed []domain.Chunk
	err     error
}

func (m *mockIndexer) Index(_ context.Context, chunks []domain.Chunk) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.indexed = chunks
	return len(chunks), nil
}

// mockFlattener uppercases nothing; it returns its input unchanged.
type mockFlattener struct {
	err error
}

func (m *mockFlattener) Flatten(_ context.Context, records []map[string]any) ([]map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	return records, nil
}

// setupTestServices wires mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	prev := Services{
		Normaliser:  normaliser,
		Extractor:   extractor,
		Indexer:     indexService,
		Retriever:   retrieverService,
		Synthesizer: answerService,
		Flattener:   flattenService,
		Products:    productStore,
		Chunks:      chunkStore,
		Scraper:     scrapeClient,
		Config:      configStore,
	}

	retrieved := []domain.RetrievedChunk{
		{
			Chunk: domain.Chunk{
				DocID:    "doc1",
				ChunkID:  "doc1-core_info-0",
				Type:     domain.ChunkCoreInfo,
				Content:  "產品：衣索比亞 耶加雪菲。價格範圍：300.00 TWD 至 300.00 TWD。",
				Metadata: map[string]any{"name": "衣索比亞 耶加雪菲"},
			},
			Score:  0.91,
			Source: domain.RetrievalSemantic,
		},
	}

	SetServices(Services{
		Normaliser:  normalisers.New(),
		Extractor:   chunker.New(),
		Indexer:     &mockIndexer{},
		Retriever:   &mockRetriever{retrieved: retrieved},
		Synthesizer: &mockSynthesizer{answer: "推薦衣索比亞 耶加雪菲。"},
		Flattener:   &mockFlattener{},
	})

	return func() { SetServices(prev) }
}

var errService = errors.New("service unavailable")
