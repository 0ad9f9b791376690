package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates an sdkClient pointing at a local test server.
func newTestClient(baseURL string) *sdkClient {
	return &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey("test-key"),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(0),
		),
		model: defaultModel,
	}
}

func messageBody(id, model string, texts ...string) map[string]any {
	var content []map[string]any
	for _, t := range texts {
		content = append(content, map[string]any{"type": "text", "text": t})
	}
	return map[string]any{
		"id":          id,
		"type":        "message",
		"role":        "assistant",
		"content":     content,
		"model":       model,
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":                10,
			"output_tokens":               5,
			"cache_creation_input_tokens": 0,
			"cache_read_input_tokens":     0,
		},
	}
}

func TestSDKClient_CreateMessage(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageBody("msg_test_001", defaultModel, "정책 분석 ", "결과")) //nolint:errcheck
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "분석해 주세요"}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	// An empty request model falls back to the client default, and the
	// system/temperature fields stay off the wire when unset.
	assert.Equal(t, defaultModel, got["model"])
	assert.NotContains(t, got, "system")
	assert.NotContains(t, got, "temperature")

	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "user", first["role"])

	assert.Equal(t, "msg_test_001", resp.ID)
	assert.Equal(t, defaultModel, resp.Model)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, "정책 분석 결과", resp.Text, "text blocks should concatenate")
	assert.Equal(t, int64(10), resp.Usage.InputTokens)
	assert.Equal(t, int64(5), resp.Usage.OutputTokens)
}

func TestSDKClient_CreateMessage_WithSystemAndTemp(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageBody("msg_sys", "claude-opus-4-1", "네")) //nolint:errcheck
	}))
	defer ts.Close()

	temp := 0.3
	client := newTestClient(ts.URL)
	resp, err := client.CreateMessage(context.Background(), MessageRequest{
		Model:       "claude-opus-4-1",
		MaxTokens:   128,
		System:      "당신은 정책 기획 전문가입니다",
		Messages:    []Message{{Role: "user", Content: "질문"}, {Role: "assistant", Content: "이전 답변"}},
		Temperature: &temp,
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_sys", resp.ID)

	assert.Equal(t, "claude-opus-4-1", got["model"])
	assert.Equal(t, 0.3, got["temperature"])

	sys, ok := got["system"].([]any)
	require.True(t, ok)
	require.Len(t, sys, 1)
	assert.Equal(t, "당신은 정책 기획 전문가입니다", sys[0].(map[string]any)["text"])

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
}

func TestSDKClient_CreateMessage_Error(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"type": "error",
			"error": map[string]any{
				"type":    "api_error",
				"message": "Internal server error",
			},
		})
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	_, err := client.CreateMessage(context.Background(), MessageRequest{
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "질문"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude: create message")
}

func TestNewClient_ModelOption(t *testing.T) {
	c, ok := NewClient("test-key", WithModel("claude-haiku-4-5")).(*sdkClient)
	require.True(t, ok)
	assert.Equal(t, "claude-haiku-4-5", c.model)

	d, ok := NewClient("test-key").(*sdkClient)
	require.True(t, ok)
	assert.Equal(t, defaultModel, d.model)
}
