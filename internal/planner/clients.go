package planner

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/jeongsedam/policy-cli/internal/resilience"
	"github.com/jeongsedam/policy-cli/pkg/claude"
	"github.com/jeongsedam/policy-cli/pkg/openai"
)

// OpenAIChat adapts pkg/openai to the ChatClient interface. Transient API
// failures (429, 5xx, timeouts) are retried with backoff.
type OpenAIChat struct {
	Client    openai.Client
	Model     string
	MaxTokens int
}

func (c *OpenAIChat) Name() string { return "openai" }

func (c *OpenAIChat) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	maxTokens := c.MaxTokens
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	}

	cfg := resilience.RetryConfig{OnRetry: resilience.RetryLogger("openai", "chat_completion")}
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*openai.ChatCompletionResponse, error) {
		return c.Client.ChatCompletion(ctx, req)
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("planner: empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// ClaudeChat adapts pkg/claude to the ChatClient interface. The SDK retries
// transient failures itself.
type ClaudeChat struct {
	Client    claude.Client
	Model     string
	MaxTokens int
}

func (c *ClaudeChat) Name() string { return "anthropic" }

func (c *ClaudeChat) Complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	resp, err := c.Client.CreateMessage(ctx, claude.MessageRequest{
		Model:       c.Model,
		MaxTokens:   int64(c.MaxTokens),
		System:      system,
		Messages:    []claude.Message{{Role: "user", Content: user}},
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// DallE adapts the OpenAI images API to the ImageGenerator interface.
type DallE struct {
	Client openai.Client
	Model  string
}

func (d *DallE) Generate(ctx context.Context, prompt, size, quality string) ([]byte, error) {
	req := openai.ImageRequest{
		Model:   d.Model,
		Prompt:  prompt,
		Size:    size,
		Quality: quality,
	}

	cfg := resilience.RetryConfig{OnRetry: resilience.RetryLogger("openai", "image_generation")}
	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*openai.ImageResponse, error) {
		return d.Client.GenerateImage(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, eris.New("planner: empty image response")
	}
	return resp.Data[0].Bytes()
}
