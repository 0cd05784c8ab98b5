package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/llmbase/llmbase/pkg/types"
)

const ollamaDefaultBaseURL = "http://localhost:11434"

// ollamaClient speaks the Ollama chat API. Streaming responses arrive as
// one JSON object per line.
type ollamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

func newOllama(baseURL, model string, timeout time.Duration) (*ollamaClient, error) {
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	return &ollamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []ollamaTurn   `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaTurn `json:"message"`
	Done    bool       `json:"done"`
}

func (o *ollamaClient) newRequest(ctx context.Context, messages []types.Message, opts types.ChatOptions, stream bool) (*http.Request, error) {
	turns := make([]ollamaTurn, len(messages))
	for i, m := range messages {
		turns[i] = ollamaTurn{Role: m.Role, Content: m.Content}
	}
	body := ollamaChatRequest{
		Model:    o.model,
		Messages: turns,
		Stream:   stream,
		Options:  map[string]any{},
	}
	if opts.Temperature > 0 {
		body.Options["temperature"] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		body.Options["num_predict"] = opts.MaxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (o *ollamaClient) Chat(ctx context.Context, messages []types.Message, opts types.ChatOptions) (string, error) {
	req, err := o.newRequest(ctx, messages, opts, false)
	if err != nil {
		return "", err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	var response ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return response.Message.Content, nil
}

func (o *ollamaClient) ChatStream(ctx context.Context, messages []types.Message, opts types.ChatOptions) (<-chan types.StreamToken, error) {
	req, err := o.newRequest(ctx, messages, opts, true)
	if err != nil {
		return nil, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	tokens := make(chan types.StreamToken, 10)
	go func() {
		defer close(tokens)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				tokens <- types.StreamToken{Err: ctx.Err()}
				return
			default:
			}

			line := scanner.Text()
			if line == "" {
				continue
			}
			var response ollamaChatResponse
			if err := json.Unmarshal([]byte(line), &response); err != nil {
				tokens <- types.StreamToken{Err: fmt.Errorf("failed to decode streaming response: %w", err)}
				return
			}
			tokens <- types.StreamToken{
				Text: response.Message.Content,
				Done: response.Done,
			}
			if response.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			tokens <- types.StreamToken{Err: fmt.Errorf("failed to scan response: %w", err)}
		}
	}()
	return tokens, nil
}

func (o *ollamaClient) Close() error { return nil }
