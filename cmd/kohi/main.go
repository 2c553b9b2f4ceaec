// Command kohi is the coffee product pipeline CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kohi-labs/kohi-cli/internal/adapters/driven/config/file"
	"github.com/kohi-labs/kohi-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/kohi-labs/kohi-cli/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/kohi-labs/kohi-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/kohi-labs/kohi-cli/internal/adapters/driven/llm/openai"
	"github.com/kohi-labs/kohi-cli/internal/adapters/driven/llm/xai"
	"github.com/kohi-labs/kohi-cli/internal/adapters/driven/scraper/scrapeless"
	"github.com/kohi-labs/kohi-cli/internal/adapters/driven/storage/jsonl"
	"github.com/kohi-labs/kohi-cli/internal/adapters/driven/storage/sqlite"
	"github.com/kohi-labs/kohi-cli/internal/adapters/driven/vector/chromem"
	"github.com/kohi-labs/kohi-cli/internal/adapters/driving/cli"
	"github.com/kohi-labs/kohi-cli/internal/chunker"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/core/services"
	"github.com/kohi-labs/kohi-cli/internal/logger"
	"github.com/kohi-labs/kohi-cli/internal/normalisers"
)

func main() {
	svcs, cleanup, err := buildServices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "kohi: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cli.SetServices(svcs)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildServices wires the adapter stack. Optional backends (LLM keys,
// scraper key) degrade to nil services; the commands that need them
// report their absence.
func buildServices() (cli.Services, func(), error) {
	cfg, err := file.NewConfigStore(os.Getenv("KOHI_CONFIG_DIR"))
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("open config: %w", err)
	}

	products, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return cli.Services{}, nil, fmt.Errorf("open product store: %w", err)
	}

	vectors, err := openVectorStore(cfg)
	if err != nil {
		products.Close()
		return cli.Services{}, nil, fmt.Errorf("open vector store: %w", err)
	}

	embedding := buildEmbedding(cfg)
	answerLLM := buildAnswerLLM(cfg)
	flattenLLM := buildFlattenLLM(cfg, answerLLM)
	scraper := buildScraper(cfg)

	extractor := chunker.New(
		chunker.WithSegmentLength(cfg.GetInt("chunker.segment_length")),
		chunker.WithOverlap(cfg.GetInt("chunker.overlap")),
		chunker.WithTokenizer(buildTokenizer()),
	)

	var synthesizer *services.AnswerService
	if answerLLM != nil {
		synthesizer = services.NewAnswerService(answerLLM,
			services.WithMaxTokens(cfg.GetInt("llm.max_tokens")),
			services.WithTemperature(cfg.GetFloat("llm.temperature")),
		)
	}
	var flattener *services.FlattenService
	if flattenLLM != nil {
		flattener = services.NewFlattenService(flattenLLM,
			services.WithFlattenConcurrency(cfg.GetInt("flatten.concurrency")),
		)
	}

	svcs := cli.Services{
		Normaliser: normalisers.New(),
		Extractor:  extractor,
		Indexer:    services.NewIndexService(embedding, vectors),
		Retriever:  services.NewRetrieverService(embedding, vectors, products),
		Products:   products,
		Chunks:     jsonl.NewChunkFile(),
		Config:     cfg,
	}
	if synthesizer != nil {
		svcs.Synthesizer = synthesizer
	}
	if flattener != nil {
		svcs.Flattener = flattener
	}
	if scraper != nil {
		svcs.Scraper = scraper
	}

	cleanup := func() {
		products.Close()
		vectors.Close()
	}
	return svcs, cleanup, nil
}

func openVectorStore(cfg driven.ConfigStore) (*chromem.Store, error) {
	path := cfg.GetString("storage.vector_dir")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".kohi", "vectors")
	}
	return chromem.NewStore(chromem.Config{
		Path:       path,
		Collection: cfg.GetString("index.collection"),
		MaxBatch:   cfg.GetInt("index.batch_size"),
	})
}

func buildEmbedding(cfg driven.ConfigStore) driven.EmbeddingService {
	switch cfg.GetString("embedding.provider") {
	case "openai":
		key := apiKey(cfg, "embedding.api_key", "OPENAI_API_KEY")
		if key == "" {
			logger.Warn("embedding.provider is openai but no API key is set")
			return nil
		}
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey: key,
			Model:  cfg.GetString("embedding.model"),
		})
		if err != nil {
			logger.Warn("openai embedding unavailable: %v", err)
			return nil
		}
		return svc
	default:
		// Local Ollama needs no key.
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
	}
}

func buildAnswerLLM(cfg driven.ConfigStore) driven.LLMService {
	switch cfg.GetString("llm.provider") {
	case "ollama":
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.GetString("llm.base_url"),
			Model:   cfg.GetString("llm.model"),
		})
	case "openai":
		key := apiKey(cfg, "llm.api_key", "OPENAI_API_KEY")
		if key == "" {
			return nil
		}
		svc, err := openaillm.NewLLMService(openaillm.Config{
			APIKey: key,
			Model:  cfg.GetString("llm.model"),
		})
		if err != nil {
			return nil
		}
		return svc
	default:
		key := apiKey(cfg, "llm.api_key", "XAI_API_KEY")
		if key == "" {
			return nil
		}
		svc, err := xai.NewLLMService(xai.Config{
			APIKey: key,
			Model:  cfg.GetString("llm.model"),
		})
		if err != nil {
			return nil
		}
		return svc
	}
}

// buildFlattenLLM prefers Groq for the flatten stage; without a Groq
// key it shares the answer model.
func buildFlattenLLM(cfg driven.ConfigStore, fallback driven.LLMService) driven.LLMService {
	key := apiKey(cfg, "flatten.api_key", "GROQ_API_KEY")
	if key == "" {
		return fallback
	}
	svc, err := openaillm.NewLLMService(openaillm.Config{
		APIKey:  key,
		BaseURL: openaillm.GroqBaseURL,
		Model:   cfg.GetString("flatten.model"),
	})
	if err != nil {
		return fallback
	}
	return svc
}

func buildScraper(cfg driven.ConfigStore) driven.Scraper {
	key := apiKey(cfg, "scraper.api_key", "SCRAPELESS_API_KEY")
	if key == "" {
		return nil
	}
	client, err := scrapeless.NewClient(scrapeless.Config{
		APIKey:  key,
		Timeout: 120 * time.Second,
	})
	if err != nil {
		return nil
	}
	return client
}

func buildTokenizer() chunker.ContentTokenizer {
	tok, err := chunker.NewTokenizer()
	if err != nil {
		logger.Warn("segmentation dictionary unavailable, indexing raw content: %v", err)
		return nil
	}
	return tok
}

func apiKey(cfg driven.ConfigStore, configKey, envVar string) string {
	if key := cfg.GetString(configKey); key != "" {
		return key
	}
	return os.Getenv(envVar)
}
