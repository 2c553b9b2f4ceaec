package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driving"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

// Ensure FlattenService implements the interface.
var _ driving.Flattener = (*FlattenService)(nil)

// Flatten concurrency and retry bounds. Ten workers stays inside the
// provider's rate limit while keeping the pipeline busy.
const (
	FlattenConcurrency  = 10
	FlattenMaxAttempts  = 3
	FlattenRetryBackoff = 2 * time.Second
)

var (
	jsonFencePattern = regexp.MustCompile("```json\\s*([\\s\\S]+?)```")
	bracePattern     = regexp.MustCompile(`(\{[\s\S]+\})`)
)

// FlattenService restructures nested marketplace records into flat
// dictionaries through the language model.
type FlattenService struct {
	llm driven.LLMService

	concurrency int
	maxAttempts int
	backoff     time.Duration
}

// FlattenOption configures the flatten service.
type FlattenOption func(*FlattenService)

// WithFlattenConcurrency bounds the number of in-flight model calls.
func WithFlattenConcurrency(n int) FlattenOption {
	return func(s *FlattenService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithFlattenBackoff sets the pause between retry attempts.
func WithFlattenBackoff(d time.Duration) FlattenOption {
	return func(s *FlattenService) {
		if d >= 0 {
			s.backoff = d
		}
	}
}

// NewFlattenService creates a flatten service.
func NewFlattenService(llm driven.LLMService, opts ...FlattenOption) *FlattenService {
	s := &FlattenService{
		llm:         llm,
		concurrency: FlattenConcurrency,
		maxAttempts: FlattenMaxAttempts,
		backoff:     FlattenRetryBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Flatten processes every record through the model concurrently.
// Output index i always holds the result for input index i; a record
// whose retries are exhausted yields an empty object at its slot, so a
// partial provider outage degrades quality rather than failing the run.
func (s *FlattenService) Flatten(
	ctx context.Context, records []map[string]any,
) ([]map[string]any, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	logger.Section("Record Flattening")
	logger.Info("Flattening %d records (concurrency %d)", len(records), s.concurrency)

	results := make([]map[string]any, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			flat, err := s.flattenOne(gctx, record)
			if err != nil {
				logger.Warn("Record %d: retries exhausted: %v", i, err)
				flat = map[string]any{}
			}
			results[i] = flat
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("flatten records: %w", err)
	}
	return results, nil
}

func (s *FlattenService) flattenOne(ctx context.Context, record map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	prompt := "這是一筆商品原始資料，請幫我展平成適合檢索的欄位，回傳一個有意義欄位的 JSON dict，欄位要有意義、不要遺漏重要資訊：\n" + string(raw)

	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.backoff):
			}
		}

		content, err := s.llm.Chat(ctx, []driven.ChatMessage{
			{Role: "user", Content: prompt},
		}, driven.ChatOptions{MaxTokens: 1024, Temperature: 1})
		if err != nil {
			lastErr = err
			logger.Debug("Flatten attempt %d failed: %v", attempt+1, err)
			continue
		}

		flat, ok := decodeFlatRecord(content)
		if !ok {
			// A malformed response is a final answer, not a transient
			// failure; the original pipeline returns an empty record here.
			logger.Debug("Flatten: no JSON block in model response")
			return map[string]any{}, nil
		}
		return flat, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrRetryExhausted, lastErr)
}

// decodeFlatRecord extracts and parses the JSON object from a model
// response. A fenced ```json block wins over a bare brace block.
func decodeFlatRecord(content string) (map[string]any, bool) {
	candidate := ""
	if m := jsonFencePattern.FindStringSubmatch(content); m != nil {
		candidate = m[1]
		if b := bracePattern.FindStringSubmatch(candidate); b != nil {
			candidate = b[1]
		}
	} else if m := bracePattern.FindStringSubmatch(content); m != nil {
		candidate = m[1]
	}
	if candidate == "" {
		return nil, false
	}

	var flat map[string]any
	if err := json.Unmarshal([]byte(candidate), &flat); err != nil {
		// Trim to the outermost brace block and retry once.
		if b := bracePattern.FindStringSubmatch(candidate); b != nil {
			if err := json.Unmarshal([]byte(b[1]), &flat); err == nil {
				return flat, true
			}
		}
		return nil, false
	}
	return flat, true
}
