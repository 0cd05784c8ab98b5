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

func TestAnthropic_Chat(t *testing.T) {
	var captured anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicBlock{
			{Type: "text", Text: "Hello "},
			{Type: "tool_use", Text: "ignored"},
			{Type: "text", Text: "world"},
		}})
	}))
	defer server.Close()

	client, err := newAnthropic("test-key", server.URL, "claude-3-haiku-20240307", time.Second)
	require.NoError(t, err)

	messages := []types.Message{
		{Role: types.RoleSystem, Content: "be brief"},
		{Role: types.RoleUser, Content: "hi"},
	}
	response, err := client.Chat(context.Background(), messages, types.ChatOptions{Temperature: 0.5})
	require.NoError(t, err)

	assert.Equal(t, "Hello world", response)
	// The system message moves to the top-level field.
	assert.Equal(t, "be brief", captured.System)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	// Unset max_tokens falls back to the API minimum requirement.
	assert.Equal(t, anthropicMaxTokens, captured.MaxTokens)
}

func TestAnthropic_ChatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := newAnthropic("test-key", server.URL, "m", time.Second)
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []types.Message{{Role: "user", Content: "hi"}}, types.ChatOptions{})
	assert.ErrorContains(t, err, "status 429")
}

func TestAnthropic_ChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\n")
		fmt.Fprint(w, "data: {\"type\":\"message_start\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"Hel\"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"content_block_delta\",\"delta\":{\"type\":\"text_delta\",\"text\":\"lo\"}}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"message_stop\"}\n\n")
	}))
	defer server.Close()

	client, err := newAnthropic("test-key", server.URL, "m", time.Second)
	require.NoError(t, err)

	tokens, err := client.ChatStream(context.Background(), []types.Message{{Role: "user", Content: "hi"}}, types.ChatOptions{})
	require.NoError(t, err)

	var text string
	var done bool
	for token := range tokens {
		require.NoError(t, token.Err)
		text += token.Text
		done = done || token.Done
	}
	assert.Equal(t, "Hello", text)
	assert.True(t, done)
}

func TestAnthropic_RequiresAPIKey(t *testing.T) {
	_, err := newAnthropic("", "", "m", time.Second)
	assert.ErrorContains(t, err, "api_key")
}
