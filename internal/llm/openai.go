package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/llmbase/llmbase/pkg/types"
	openai "github.com/sashabaranov/go-openai"
)

// openAIClient adapts go-openai to the ChatClient interface. It covers
// every provider that exposes an OpenAI-compatible chat endpoint.
type openAIClient struct {
	inner *openai.Client
	model string
}

type openAIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Organization string
	Timeout      time.Duration
}

func newOpenAI(cfg openAIConfig) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.Organization != "" {
		c.OrgID = cfg.Organization
	}
	c.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &openAIClient{inner: openai.NewClientWithConfig(c), model: cfg.Model}, nil
}

type azureConfig struct {
	APIKey     string
	Endpoint   string
	Deployment string
	APIVersion string
	Model      string
	Timeout    time.Duration
}

func newAzure(cfg azureConfig) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure provider requires a base_url endpoint")
	}
	c := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		c.APIVersion = cfg.APIVersion
	}
	if cfg.Deployment != "" {
		deployment := cfg.Deployment
		c.AzureModelMapperFunc = func(string) string { return deployment }
	}
	c.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &openAIClient{inner: openai.NewClientWithConfig(c), model: cfg.Model}, nil
}

func (c *openAIClient) request(messages []types.Message, opts types.ChatOptions) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: float32(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}
}

func (c *openAIClient) Chat(ctx context.Context, messages []types.Message, opts types.ChatOptions) (string, error) {
	resp, err := c.inner.CreateChatCompletion(ctx, c.request(messages, opts))
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *openAIClient) ChatStream(ctx context.Context, messages []types.Message, opts types.ChatOptions) (<-chan types.StreamToken, error) {
	req := c.request(messages, opts)
	req.Stream = true
	stream, err := c.inner.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}

	tokens := make(chan types.StreamToken, 10)
	go func() {
		defer close(tokens)
		defer stream.Close()
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				tokens <- types.StreamToken{Done: true}
				return
			}
			if err != nil {
				tokens <- types.StreamToken{Err: fmt.Errorf("receiving stream: %w", err)}
				return
			}
			if len(chunk.Choices) > 0 {
				tokens <- types.StreamToken{Text: chunk.Choices[0].Delta.Content}
			}
		}
	}()
	return tokens, nil
}

func (c *openAIClient) Close() error { return nil }
