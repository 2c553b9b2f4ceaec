// Package scrapeless provides a scraper adapter for the Scrapeless
// marketplace scraping API.
package scrapeless

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
	"github.com/kohi-labs/kohi-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Scraper = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL      = "https://api.scrapeless.com"
	DefaultActor        = "scraper.shopee"
	DefaultTimeout      = 60 * time.Second
	DefaultPollInterval = 5 * time.Second
)

// Config holds configuration for the Scrapeless client.
type Config struct {
	// APIKey is the Scrapeless API token (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.scrapeless.com).
	BaseURL string

	// Actor selects the scraping actor (default: scraper.shopee).
	Actor string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// PollInterval is the minimum spacing between poll requests
	// (default: 5s).
	PollInterval time.Duration
}

// Client submits scrape jobs and polls their results.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	actor   string
	limiter *rate.Limiter
}

// scrapeRequest is the Scrapeless request envelope.
type scrapeRequest struct {
	Actor string         `json:"actor"`
	Input map[string]any `json:"input"`
}

// scrapeResponse covers both response shapes: an async task handle or
// an inline payload.
type scrapeResponse struct {
	TaskID string `json:"taskId"`
	State  string `json:"state"`
	Data   struct {
		Items []map[string]any `json:"items"`
		Data  json.RawMessage  `json:"data"`
	} `json:"data"`
	Message string `json:"message"`
}

// NewClient creates a new Scrapeless client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("scrapeless: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Actor == "" {
		cfg.Actor = DefaultActor
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		actor:   cfg.Actor,
		limiter: rate.NewLimiter(rate.Every(cfg.PollInterval), 1),
	}, nil
}

// Submit sends a scrape request. When the service answers inline the
// job id is "" and items holds the payload; otherwise the returned task
// id must be polled.
func (c *Client) Submit(ctx context.Context, req driven.ScrapeRequest) (string, []domain.ProductRecord, error) {
	input := map[string]any{}
	if req.URL != "" {
		input["url"] = req.URL
	}
	if req.Keyword != "" {
		input["action"] = strings.TrimPrefix(c.actor, "scraper.") + ".search"
		input["url"] = fmt.Sprintf("https://shopee.tw/search?keyword=%s&page=1", req.Keyword)
	}
	if req.Country != "" {
		input["country"] = req.Country
	}

	requestID := uuid.New().String()
	logger.Debug("Scrape submit %s: actor=%s input=%v", requestID, c.actor, input)

	body, status, err := c.post(ctx, "/api/v1/scraper/request", scrapeRequest{
		Actor: c.actor,
		Input: input,
	})
	if err != nil {
		return "", nil, err
	}
	if status != http.StatusOK {
		return "", nil, fmt.Errorf("%w: status %d: %s", domain.ErrScrapeFailed, status, string(body))
	}

	var resp scrapeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("scrapeless: decode response: %w", err)
	}

	if resp.TaskID != "" {
		logger.Debug("Scrape %s queued as task %s", requestID, resp.TaskID)
		return resp.TaskID, nil, nil
	}

	records := recordsFromResponse(body, &resp)
	logger.Debug("Scrape %s answered inline: %d records", requestID, len(records))
	return "", records, nil
}

// Poll blocks until the task completes, pacing requests with the rate
// limiter. Context cancellation stops the wait.
func (c *Client) Poll(ctx context.Context, jobID string) ([]domain.ProductRecord, error) {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("scrapeless: poll wait: %w", err)
		}

		body, status, err := c.get(ctx, "/api/v1/scraper/result/"+jobID)
		if err != nil {
			return nil, err
		}

		// 202 means still running.
		if status == http.StatusAccepted {
			logger.Debug("Task %s still running", jobID)
			continue
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("%w: task %s: status %d: %s",
				domain.ErrScrapeFailed, jobID, status, string(body))
		}

		var resp scrapeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("scrapeless: decode result: %w", err)
		}
		switch resp.State {
		case "running", "pending", "queued":
			logger.Debug("Task %s state: %s", jobID, resp.State)
			continue
		case "failed", "error":
			return nil, fmt.Errorf("%w: task %s: %s", domain.ErrScrapeFailed, jobID, resp.Message)
		}

		return recordsFromResponse(body, &resp), nil
	}
}

// recordsFromResponse maps the payload into raw product records. Search
// responses carry a flat item list; single-item responses carry one
// nested detail payload, stored under scrape_result so downstream
// extraction finds it where marketplace records keep it.
func recordsFromResponse(raw []byte, resp *scrapeResponse) []domain.ProductRecord {
	items := resp.Data.Items
	if items == nil {
		var envelope map[string]any
		if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope) == 0 {
			return nil
		}
		record := domain.ProductRecord{
			Fields: map[string]any{"scrape_result": envelope},
		}
		if item := record.Item(); item != nil {
			if name, ok := item["name"].(string); ok {
				record.Name = name
			}
		}
		return []domain.ProductRecord{record}
	}

	records := make([]domain.ProductRecord, 0, len(items))
	for _, item := range items {
		records = append(records, domain.RecordFromFields(item))
	}
	return records
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("scrapeless: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, 0, fmt.Errorf("scrapeless: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-token", c.apiKey)

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("scrapeless: create request: %w", err)
	}
	req.Header.Set("x-api-token", c.apiKey)

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("scrapeless: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("scrapeless: read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// Close releases resources.
func (c *Client) Close() error {
	return nil
}
