package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/llmbase/llmbase/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAI_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "hello there"},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer server.Close()

	client, err := newOpenAI(openAIConfig{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: time.Second,
	})
	require.NoError(t, err)

	response, err := client.Chat(context.Background(),
		[]types.Message{{Role: types.RoleUser, Content: "hi"}}, types.ChatOptions{MaxTokens: 10})
	require.NoError(t, err)
	assert.Equal(t, "hello there", response)
}

func TestOpenAI_ChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunk := `{"id":"1","object":"chat.completion.chunk","model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":%q}}]}`
		fmt.Fprintf(w, "data: "+chunk+"\n\n", "hel")
		fmt.Fprintf(w, "data: "+chunk+"\n\n", "lo")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client, err := newOpenAI(openAIConfig{
		APIKey:  "sk-test",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: time.Second,
	})
	require.NoError(t, err)

	tokens, err := client.ChatStream(context.Background(),
		[]types.Message{{Role: types.RoleUser, Content: "hi"}}, types.ChatOptions{})
	require.NoError(t, err)

	var text string
	var done bool
	for token := range tokens {
		require.NoError(t, token.Err)
		text += token.Text
		done = done || token.Done
	}
	assert.Equal(t, "hello", text)
	assert.True(t, done)
}

func TestOpenAI_RequiresAPIKey(t *testing.T) {
	_, err := newOpenAI(openAIConfig{Model: "gpt-4o"})
	assert.ErrorContains(t, err, "api_key")
}

func TestAzure_ConfigErrors(t *testing.T) {
	_, err := newAzure(azureConfig{Endpoint: "https://example.openai.azure.com"})
	assert.ErrorContains(t, err, "api_key")

	_, err = newAzure(azureConfig{APIKey: "key"})
	assert.ErrorContains(t, err, "base_url")
}
