package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletion(t *testing.T) {
	var gotReq ChatCompletionRequest
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := ChatCompletionResponse{
			ID: "chatcmpl-1",
			Choices: []Choice{
				{Message: Message{Role: "assistant", Content: `{"ok":true}`}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))

	temp := 0.7
	resp, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{
		Messages:    []Message{{Role: "user", Content: "분석해 주세요"}},
		Temperature: &temp,
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, `{"ok":true}`, resp.Choices[0].Message.Content)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	// Default chat model applies when the request leaves it empty.
	assert.Equal(t, defaultChatModel, gotReq.Model)
	require.NotNil(t, gotReq.Temperature)
	assert.InDelta(t, 0.7, *gotReq.Temperature, 1e-9)
}

func TestChatCompletion_ModelOverride(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		json.NewEncoder(w).Encode(ChatCompletionResponse{})
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL), WithChatModel("gpt-4o-mini"))
	_, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", gotModel)
}

func TestChatCompletion_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limit"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	_, err := c.ChatCompletion(context.Background(), ChatCompletionRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGenerateImage(t *testing.T) {
	payload := []byte("fake-png")
	var gotReq ImageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		resp := ImageResponse{
			Data: []ImageDatum{{B64JSON: base64.StdEncoding.EncodeToString(payload)}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))

	resp, err := c.GenerateImage(context.Background(), ImageRequest{
		Prompt:  "clean city skyline",
		Size:    "1024x1024",
		Quality: "standard",
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)

	got, err := resp.Data[0].Bytes()
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// Request defaults fill in.
	assert.Equal(t, defaultImageModel, gotReq.Model)
	assert.Equal(t, 1, gotReq.N)
	assert.Equal(t, "b64_json", gotReq.ResponseFormat)
}

func TestImageDatum_Bytes_MissingPayload(t *testing.T) {
	_, err := ImageDatum{URL: "https://example.com/img.png"}.Bytes()
	require.Error(t, err)
}

func TestImageDatum_Bytes_InvalidBase64(t *testing.T) {
	_, err := ImageDatum{B64JSON: "!!!not-base64!!!"}.Bytes()
	require.Error(t, err)
}
