package llm

import (
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

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"

// geminiClient speaks the Gemini generateContent API directly.
type geminiClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func newGemini(apiKey, baseURL, model string, timeout time.Duration) (*geminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api_key is required")
	}
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	return &geminiClient{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *geminiClient) Chat(ctx context.Context, messages []types.Message, opts types.ChatOptions) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	body := geminiRequest{GenerationConfig: &geminiGenConfig{MaxOutputTokens: opts.MaxTokens}}
	for _, m := range messages {
		switch m.Role {
		case types.RoleSystem:
			body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
		case types.RoleAssistant:
			// Gemini calls the assistant role "model".
			body.Contents = append(body.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			body.Contents = append(body.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	if opts.Temperature > 0 {
		t := opts.Temperature
		body.GenerationConfig.Temperature = &t
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	var content strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		content.WriteString(part.Text)
	}
	return content.String(), nil
}

// ChatStream emits the complete response as a single chunk; the
// generateContent endpoint used here has no incremental variant wired.
func (g *geminiClient) ChatStream(ctx context.Context, messages []types.Message, opts types.ChatOptions) (<-chan types.StreamToken, error) {
	tokens := make(chan types.StreamToken, 2)
	go func() {
		defer close(tokens)
		text, err := g.Chat(ctx, messages, opts)
		if err != nil {
			tokens <- types.StreamToken{Err: err}
			return
		}
		tokens <- types.StreamToken{Text: text}
		tokens <- types.StreamToken{Done: true}
	}()
	return tokens, nil
}

func (g *geminiClient) Close() error { return nil }
