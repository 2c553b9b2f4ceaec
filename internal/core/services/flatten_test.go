package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
)

func TestFlattenRequiresLLM(t *testing.T) {
	svc := NewFlattenService(nil)

	_, err := svc.Flatten(context.Background(), []map[string]any{{"name": "a"}})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestFlattenPreservesInputOrder(t *testing.T) {
	// The model echoes each record's name so the slot can be verified.
	llm := &mockLLM{chatFn: func(prompt string, _ int) (string, error) {
		for i := 0; i < 20; i++ {
			if strings.Contains(prompt, fmt.Sprintf("%q", fmt.Sprintf("record-%d", i))) {
				return fmt.Sprintf(`{"name": "record-%d"}`, i), nil
			}
		}
		return "", errors.New("unknown record")
	}}
	svc := NewFlattenService(llm, WithFlattenBackoff(0))

	records := make([]map[string]any, 20)
	for i := range records {
		records[i] = map[string]any{"name": fmt.Sprintf("record-%d", i)}
	}

	results, err := svc.Flatten(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, results, 20)
	for i, flat := range results {
		assert.Equal(t, fmt.Sprintf("record-%d", i), flat["name"], "slot %d", i)
	}
}

func TestFlattenRetriesTransientFailures(t *testing.T) {
	llm := &mockLLM{chatFn: func(_ string, call int) (string, error) {
		if call < 3 {
			return "", errors.New("rate limited")
		}
		return `{"name": "咖啡"}`, nil
	}}
	svc := NewFlattenService(llm, WithFlattenBackoff(0))

	results, err := svc.Flatten(context.Background(), []map[string]any{{"raw": true}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "咖啡", results[0]["name"])
	assert.Equal(t, 3, llm.calls)
}

func TestFlattenExhaustedRetriesYieldEmptyObject(t *testing.T) {
	llm := &mockLLM{chatFn: func(_ string, _ int) (string, error) {
		return "", errors.New("provider down")
	}}
	svc := NewFlattenService(llm, WithFlattenBackoff(0))

	results, err := svc.Flatten(context.Background(), []map[string]any{
		{"name": "a"},
		{"name": "b"},
	})

	// A failed record degrades to an empty object, never a failed run.
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, results[0])
	assert.Empty(t, results[1])
}

func TestFlattenMalformedResponseIsFinal(t *testing.T) {
	llm := &mockLLM{response: "抱歉，我無法處理這筆資料。"}
	svc := NewFlattenService(llm, WithFlattenBackoff(0))

	results, err := svc.Flatten(context.Background(), []map[string]any{{"name": "a"}})
	require.NoError(t, err)
	assert.Empty(t, results[0])
	// No JSON in the response is not retried.
	assert.Equal(t, 1, llm.calls)
}

func TestDecodeFlatRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]any
		ok      bool
	}{
		{
			name:    "fenced json block",
			content: "說明文字\n```json\n{\"name\": \"藝妓\", \"price\": 450}\n```\n結尾",
			want:    map[string]any{"name": "藝妓", "price": 450.0},
			ok:      true,
		},
		{
			name:    "bare brace block",
			content: "這是結果：{\"name\": \"曼特寧\"} 請查收",
			want:    map[string]any{"name": "曼特寧"},
			ok:      true,
		},
		{
			name:    "fenced block with surrounding prose",
			content: "```json\n以下是 JSON：{\"name\": \"肯亞\"}\n```",
			want:    map[string]any{"name": "肯亞"},
			ok:      true,
		},
		{
			name:    "no json at all",
			content: "抱歉，無法解析。",
			ok:      false,
		},
		{
			name:    "unparseable braces",
			content: "{不是 JSON}",
			ok:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flat, ok := decodeFlatRecord(tt.content)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, flat)
			}
		})
	}
}
