// Package openai provides an embedding service adapter for OpenAI and
// OpenAI-compatible APIs.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// maxInputsPerRequest is the API's cap on input items per call. Index
	// builds hand the adapter batches of up to 5000 chunks, so EmbedBatch
	// splits them across requests.
	maxInputsPerRequest = 2048
)

// modelDimensions maps known models to their native vector size.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can point at any compatible endpoint.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the native vector size. Only the
	// text-embedding-3-* models honour it.
	Dimensions int
}

// EmbeddingService generates embeddings using the OpenAI embeddings API.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 || !supportsDimensions(cfg.Model) {
		var ok bool
		dimensions, ok = modelDimensions[cfg.Model]
		if !ok {
			dimensions = modelDimensions[DefaultModel]
		}
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: dimensions,
	}, nil
}

// supportsDimensions reports whether the model accepts a dimensions
// override in the request.
func supportsDimensions(model string) bool {
	return strings.HasPrefix(model, "text-embedding-3-")
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates one embedding per input, in input order. Batches
// beyond the per-request input cap are split across sequential calls.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxInputsPerRequest {
		end := start + maxInputsPerRequest
		if end > len(texts) {
			end = len(texts)
		}
		part, err := s.embedRequestChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		embeddings = append(embeddings, part...)
	}
	return embeddings, nil
}

// embedRequestChunk embeds one request-sized slice of inputs. The API
// may return data out of order; vectors are placed by their index field
// and a gap is an error, never a silent nil vector in the index.
func (s *EmbeddingService) embedRequestChunk(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Model: s.model,
		Input: texts,
	}
	if supportsDimensions(s.model) && s.dimensions > 0 {
		reqBody.Dimensions = s.dimensions
	}

	body, status, err := s.post(ctx, "/embeddings", reqBody)
	if err != nil {
		return nil, err
	}

	var embedResp embeddingResponse
	if err := json.Unmarshal(body, &embedResp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if embedResp.Error != nil {
		return nil, fmt.Errorf("openai error: %s", embedResp.Error.Message)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("openai error (status %d): %s", status, string(body))
	}

	vectors := make([][]float32, len(texts))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(texts) {
			return nil, fmt.Errorf("openai: embedding index %d out of range for %d inputs", data.Index, len(texts))
		}
		vectors[data.Index] = data.Embedding
	}
	for i, vec := range vectors {
		if vec == nil {
			return nil, fmt.Errorf("openai: no embedding returned for input %d of %d", i, len(texts))
		}
	}
	logger.Debug("Embedded %d texts (%s)", len(texts), s.model)
	return vectors, nil
}

func (s *EmbeddingService) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, 0, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("openai: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("openai: read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the API key against the /models endpoint without
// running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
