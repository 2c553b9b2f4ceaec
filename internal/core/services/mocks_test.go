package services

import (
	"context"
	"sync"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockEmbedding implements driven.EmbeddingService.
type mockEmbedding struct {
	embedding []float32
	embedErr  error
}

func (m *mockEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbedding) Dimensions() int   { return len(m.embedding) }
func (m *mockEmbedding) ModelName() string { return "mock-embed" }

func (m *mockEmbedding) Ping(_ context.Context) error { return nil }
func (m *mockEmbedding) Close() error                 { return nil }

// addedBatch records one AddBatch call.
type addedBatch struct {
	ids       []string
	contents  []string
	metadatas []map[string]any
}

// mockVectorStore implements driven.VectorStore.
type mockVectorStore struct {
	hits     []driven.VectorHit
	queryErr error

	maxBatch   int
	rebuildErr error
	addErrOnce error
	rebuilds   int
	batches    []addedBatch
}

func (m *mockVectorStore) Rebuild(_ context.Context) error {
	if m.rebuildErr != nil {
		return m.rebuildErr
	}
	m.rebuilds++
	m.batches = nil
	return nil
}

func (m *mockVectorStore) AddBatch(
	_ context.Context, ids, contents []string, metadatas []map[string]any, _ [][]float32,
) error {
	if m.addErrOnce != nil {
		err := m.addErrOnce
		m.addErrOnce = nil
		return err
	}
	m.batches = append(m.batches, addedBatch{ids: ids, contents: contents, metadatas: metadatas})
	return nil
}

func (m *mockVectorStore) Query(_ context.Context, _ []float32, topK int) ([]driven.VectorHit, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if topK < len(m.hits) {
		return m.hits[:topK], nil
	}
	return m.hits, nil
}

func (m *mockVectorStore) Count() int {
	n := 0
	for _, b := range m.batches {
		n += len(b.ids)
	}
	return n
}

func (m *mockVectorStore) MaxBatchSize() int { return m.maxBatch }
func (m *mockVectorStore) Close() error      { return nil }

// mockLLM implements driven.LLMService. chatFn receives the running call
// count so tests can script per-attempt behaviour.
type mockLLM struct {
	mu       sync.Mutex
	calls    int
	response string
	genErr   error
	prompts  []string
	chatFn   func(prompt string, call int) (string, error)
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.genErr != nil {
		return "", m.genErr
	}
	return m.response, nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	prompt := ""
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.chatFn != nil {
		return m.chatFn(prompt, call)
	}
	if m.genErr != nil {
		return "", m.genErr
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockProductStore implements driven.ProductStore.
type mockProductStore struct {
	hits      []domain.DirectHit
	searchErr error
}

func (m *mockProductStore) SaveProducts(_ context.Context, _ []domain.ProductRecord) error {
	return nil
}

func (m *mockProductStore) SaveChunks(_ context.Context, _ []domain.Chunk) error { return nil }

func (m *mockProductStore) GetChunk(_ context.Context, _ string) (*domain.Chunk, error) {
	return nil, domain.ErrNotFound
}

func (m *mockProductStore) ListChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, nil
}

func (m *mockProductStore) SearchProducts(_ context.Context, _ string) ([]domain.DirectHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *mockProductStore) CountProducts(_ context.Context) (int, error) {
	return len(m.hits), nil
}

func (m *mockProductStore) Close() error { return nil }
