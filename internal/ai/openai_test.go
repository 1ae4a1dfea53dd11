package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mock chat completions server, returns body with status and records the last request
func setupMockAPIServer(t *testing.T, status int, body string, captured *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		if captured != nil {
			assert.NoError(t, json.Unmarshal(raw, captured))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(url string) *OpenAIClient {
	return NewOpenAIClient(OpenAIOptions{APIKey: "test-key", BaseURL: url + "/v1", Model: "test-model"})
}

func TestOpenAIClient_Complete(t *testing.T) {
	var req map[string]any
	server := setupMockAPIServer(t, http.StatusOK,
		`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"YES"},"finish_reason":"stop"}]}`,
		&req)

	out, err := newTestClient(server.URL).Complete(context.Background(), "Does this frame contain job postings?")
	require.NoError(t, err)
	assert.Equal(t, "YES", out)
	assert.Equal(t, "test-model", req["model"])
	_, hasTemp := req["temperature"]
	assert.False(t, hasTemp, "zero temperature must not be sent")
}

func TestOpenAIClient_NextWithToolCalls(t *testing.T) {
	var req map[string]any
	server := setupMockAPIServer(t, http.StatusOK, `{
		"id":"2","object":"chat.completion",
		"choices":[{"index":0,"finish_reason":"tool_calls","message":{
			"role":"assistant","content":"",
			"tool_calls":[{"id":"call_1","type":"function","function":{"name":"navigate_to_url","arguments":"{\"url\":\"example.com\"}"}}]
		}}]}`, &req)

	history := []Message{
		SystemMessage("You are a Job Scraping Agent."),
		UserMessage("find jobs"),
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_0", Name: "get_page_content", Arguments: "{}"}}},
		ToolResultMessage(ToolCall{ID: "call_0", Name: "get_page_content"}, "<html></html>"),
	}
	tools := []ToolSpec{{
		Name:        "navigate_to_url",
		Description: "Navigate browser to URL",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"url": map[string]any{"type": "string"}},
			"required":   []string{"url"},
		},
	}}

	msg, err := newTestClient(server.URL).Next(context.Background(), history, tools)
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, msg.Role)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, ToolCall{ID: "call_1", Name: "navigate_to_url", Arguments: `{"url":"example.com"}`}, msg.ToolCalls[0])

	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 4)
	toolMsg := msgs[3].(map[string]any)
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "call_0", toolMsg["tool_call_id"])

	sentTools, ok := req["tools"].([]any)
	require.True(t, ok)
	require.Len(t, sentTools, 1)
	fn := sentTools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "navigate_to_url", fn["name"])
}

func TestOpenAIClient_RateLimited(t *testing.T) {
	server := setupMockAPIServer(t, http.StatusTooManyRequests,
		`{"error":{"message":"Rate limit reached for requests","type":"requests","code":"rate_limit_exceeded"}}`, nil)

	_, err := newTestClient(server.URL).Next(context.Background(), []Message{UserMessage("hi")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, IsRateLimit(err))
}

func TestOpenAIClient_ContextTooLongIsNotRateLimit(t *testing.T) {
	server := setupMockAPIServer(t, http.StatusBadRequest,
		`{"error":{"message":"This model's maximum context length is 128000 tokens. However, your messages resulted in 142913 tokens.","type":"invalid_request_error","code":"context_length_exceeded"}}`, nil)

	_, err := newTestClient(server.URL).Next(context.Background(), []Message{UserMessage("hi")}, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
	assert.False(t, IsRateLimit(err))
}

func TestOpenAIClient_OtherFailure(t *testing.T) {
	server := setupMockAPIServer(t, http.StatusInternalServerError,
		`{"error":{"message":"boom","type":"server_error"}}`, nil)

	_, err := newTestClient(server.URL).Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.False(t, IsRateLimit(err))
}

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrRateLimited, true},
		{fmt.Errorf("wrapped: %w", ErrRateLimited), true},
		{errors.New("Error code: 429 - too busy"), true},
		{errors.New("googleapi: RESOURCE_EXHAUSTED"), true},
		{errors.New("rate_limit_exceeded"), true},
		{errors.New("context deadline exceeded"), false},
		{errors.New("request id req_4291 failed"), false},
		{&openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, true},
		{&openai.APIError{HTTPStatusCode: 400, Code: "context_length_exceeded", Message: "This model's maximum context length is 128000 tokens. However, your messages resulted in 142913 tokens."}, false},
		{fmt.Errorf("reasoning turn 3: %w", &openai.APIError{HTTPStatusCode: 400, Message: "rate limit of 429 mentioned in text"}), false},
		{&openai.RequestError{HTTPStatusCode: 429, Err: errors.New("busy")}, true},
		{&openai.RequestError{HTTPStatusCode: 500, Err: errors.New("upstream 429")}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRateLimit(tt.err), "%v", tt.err)
	}
}

func TestCleanMarkdownJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanMarkdownJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1]`, CleanMarkdownJSON("```\n[1]\n```"))
	assert.Equal(t, `plain`, CleanMarkdownJSON("  plain "))
}
