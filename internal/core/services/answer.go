package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driving"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.Synthesizer = (*AnswerService)(nil)

// NoResultsAnswer is returned when retrieval produced nothing to ground
// an answer on.
const NoResultsAnswer = "根據提供的資料，找不到相關資訊。請換個問法再試一次。"

// answerPromptTemplate instructs the model to integrate fragments that
// share a doc_id before answering. %s slots: context, query.
const answerPromptTemplate = `你是一位專業的咖啡產品顧問。請根據以下提供的多個「資料片段」來回答用戶的問題。
每個片段可能只包含產品的部分資訊（例如，核心資訊、描述的一部分、單一屬性等）。
你需要綜合判斷這些片段，特別注意具有相同「產品ID (doc_id)」的片段通常屬於同一個產品。

【資料片段開始】
%s
【資料片段結束】

用戶的問題是：「%s」

請依照以下指示作答：
1. 整合資訊：如果多個資料片段描述同一個產品（基於內容或 doc_id），請整合這些資訊來形成對該產品的更完整理解。
2. 回答問題：直接回答用戶的問題。
3. 產品推薦（若適用）：推薦1至3個最相關的產品，提供商品名稱、價格、描述摘要與商店名稱。
4. 最低價（若適用）：如果查詢要求或上下文中有多個價格，請指出找到的最低價格的商品。
5. 依據資料：嚴格根據提供的資料片段作答，不要編造資料以外的資訊。
6. 無相關資訊：如果資料片段中確實找不到相關資訊，請明確說明「根據提供的資料，找不到相關資訊」。
7. 語言：請使用台灣正體中文回答。

請生成您的分析與回答。`

// AnswerService turns retrieved chunks into a consultant-style answer.
type AnswerService struct {
	llm driven.LLMService

	maxTokens   int
	temperature float64
}

// AnswerOption configures the answer service.
type AnswerOption func(*AnswerService)

// WithMaxTokens bounds the generated answer length.
func WithMaxTokens(n int) AnswerOption {
	return func(s *AnswerService) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithTemperature sets the generation temperature.
func WithTemperature(t float64) AnswerOption {
	return func(s *AnswerService) {
		if t >= 0 {
			s.temperature = t
		}
	}
}

// NewAnswerService creates an answer service. The llm parameter is
// optional (can be nil); synthesis then reports ErrLLMUnavailable.
func NewAnswerService(llm driven.LLMService, opts ...AnswerOption) *AnswerService {
	s := &AnswerService{
		llm:         llm,
		maxTokens:   1200,
		temperature: 0.55,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize builds the grounding context and delegates generation.
// An empty retrieval set short-circuits to the no-results answer.
func (s *AnswerService) Synthesize(
	ctx context.Context, query string, retrieved []domain.RetrievedChunk,
) (string, error) {
	logger.Section("Answer Synthesis")

	if len(retrieved) == 0 {
		logger.Debug("No retrieved chunks, returning no-results answer")
		return NoResultsAnswer, nil
	}
	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	prompt := fmt.Sprintf(answerPromptTemplate, groundingContext(retrieved), query)
	logger.Debug("Prompt: %d chars, %d fragments", len(prompt), len(retrieved))

	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return "", fmt.Errorf("synthesize answer: %w", err)
	}

	logger.Info("Answer generated: %d chars", len(answer))
	return answer, nil
}

// groundingContext renders one attributable block per fragment. The
// metadata header lets the model cross-reference fragments of the same
// product and cite shop and price without guessing.
func groundingContext(retrieved []domain.RetrievedChunk) string {
	blocks := make([]string, 0, len(retrieved))
	for i, r := range retrieved {
		var header string
		switch r.Source {
		case domain.RetrievalDirect:
			header = fmt.Sprintf(
				"片段 %d (來源: 直接搜尋, 產品名: %s, 價格: %s元)",
				i+1,
				metaString(r, "name"),
				metaString(r, "price"),
			)
		default:
			header = fmt.Sprintf(
				"片段 %d (來源: 語義檢索, 產品ID: %s, 區塊ID: %s, 區塊類型: %s, 原始產品名: %s, 商店: %s, 價格: %s元)",
				i+1,
				r.Chunk.DocID,
				r.Chunk.ChunkID,
				r.Chunk.Type,
				metaString(r, "name"),
				metaString(r, "shop_name"),
				metaString(r, "price_min"),
			)
		}
		blocks = append(blocks, header+":\n內容: "+r.Chunk.Content)
	}
	return strings.Join(blocks, "\n\n")
}

func metaString(r domain.RetrievedChunk, key string) string {
	if r.Chunk.Metadata == nil {
		return "N/A"
	}
	if s := domain.ScalarString(r.Chunk.Metadata[key]); s != "" {
		return s
	}
	return "N/A"
}
