package scrapeless

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
	"github.com/kohi-labs/kohi-cli/internal/core/ports/driven"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:       "test-token",
		BaseURL:      server.URL,
		PollInterval: time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestSubmitSearchInline(t *testing.T) {
	var gotPayload scrapeRequest
	var gotToken string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/scraper/request", r.URL.Path)
		gotToken = r.Header.Get("x-api-token")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"items": []map[string]any{
					{
						"name":            "衣索比亞 耶加雪菲 水洗",
						"link":            "https://shopee.tw/item/1",
						"price":           30000000,
						"historical_sold": 120,
					},
					{
						"name":  "曼特寧 G1",
						"link":  "https://shopee.tw/item/2",
						"price": 45000000,
					},
				},
			},
		})
	})

	jobID, records, err := client.Submit(context.Background(), driven.ScrapeRequest{
		Keyword: "咖啡豆",
	})
	require.NoError(t, err)
	assert.Empty(t, jobID)

	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "scraper.shopee", gotPayload.Actor)
	assert.Equal(t, "shopee.search", gotPayload.Input["action"])
	assert.Contains(t, gotPayload.Input["url"], "keyword=咖啡豆")

	require.Len(t, records, 2)
	assert.Equal(t, "衣索比亞 耶加雪菲 水洗", records[0].Name)
	assert.Equal(t, "https://shopee.tw/item/1", records[0].Link)
	assert.Equal(t, float64(30000000), records[0].Price)
	assert.Equal(t, float64(120), records[0].SoldCount)
	assert.Equal(t, "曼特寧 G1", records[1].Name)
}

func TestSubmitSingleItemWrapsScrapeResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data": map[string]any{
					"item": map[string]any{
						"itemid": 456,
						"name":   "藝伎 咖啡豆",
					},
				},
			},
		})
	})

	jobID, records, err := client.Submit(context.Background(), driven.ScrapeRequest{
		URL: "https://shopee.tw/item/456",
	})
	require.NoError(t, err)
	assert.Empty(t, jobID)
	require.Len(t, records, 1)

	assert.Equal(t, "藝伎 咖啡豆", records[0].Name)
	assert.Equal(t, "456", records[0].ItemID())
	require.NotNil(t, records[0].Item())
}

func TestSubmitReturnsTaskID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"taskId": "task-123"})
	})

	jobID, records, err := client.Submit(context.Background(), driven.ScrapeRequest{
		URL: "https://shopee.tw/item/1",
	})
	require.NoError(t, err)
	assert.Equal(t, "task-123", jobID)
	assert.Nil(t, records)
}

func TestSubmitErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"invalid token"}`))
	})

	_, _, err := client.Submit(context.Background(), driven.ScrapeRequest{
		URL: "https://shopee.tw/item/1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScrapeFailed)
}

func TestPollRetriesUntilComplete(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/scraper/result/task-7", r.URL.Path)
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"state": "completed",
			"data": map[string]any{
				"items": []map[string]any{
					{"name": "哥倫比亞 蕙蘭", "price": 25000000},
				},
			},
		})
	})

	records, err := client.Poll(context.Background(), "task-7")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls.Load(), int32(3))
	require.Len(t, records, 1)
	assert.Equal(t, "哥倫比亞 蕙蘭", records[0].Name)
}

func TestPollFailedTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"state":   "failed",
			"message": "target unreachable",
		})
	})

	_, err := client.Poll(context.Background(), "task-9")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrScrapeFailed)
	assert.Contains(t, err.Error(), "target unreachable")
}

func TestPollHonoursContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Poll(ctx, "task-slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
