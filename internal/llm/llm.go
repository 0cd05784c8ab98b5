// Package llm constructs chat clients from profiles. OpenAI-compatible
// providers share a single transport; Anthropic, Gemini, and Ollama speak
// their native HTTP APIs.
package llm

import (
	"fmt"
	"time"

	"github.com/llmbase/llmbase/pkg/types"
	"github.com/spf13/cast"
)

// New creates a chat client for the profile's provider.
func New(p types.Profile) (types.ChatClient, error) {
	provider := cast.ToString(p["provider"])
	if provider == "" {
		return nil, fmt.Errorf("profile has no provider")
	}
	model := cast.ToString(p["model"])
	if model == "" {
		return nil, fmt.Errorf("profile has no model")
	}
	apiKey := cast.ToString(p["api_key"])
	baseURL := cast.ToString(p["base_url"])
	timeout := time.Duration(cast.ToInt(p["timeout"])) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	switch provider {
	case "openai", "together", "mistral", "litellm":
		return newOpenAI(openAIConfig{
			APIKey:       apiKey,
			BaseURL:      baseURL,
			Model:        model,
			Organization: cast.ToString(p["organization"]),
			Timeout:      timeout,
		})
	case "azure":
		return newAzure(azureConfig{
			APIKey:     apiKey,
			Endpoint:   baseURL,
			Deployment: cast.ToString(p["deployment"]),
			APIVersion: cast.ToString(p["api_version"]),
			Model:      model,
			Timeout:    timeout,
		})
	case "anthropic":
		return newAnthropic(apiKey, baseURL, model, timeout)
	case "google":
		return newGemini(apiKey, baseURL, model, timeout)
	case "ollama":
		return newOllama(baseURL, model, timeout)
	default:
		// aws and cohere profiles are accepted for storage but have no
		// client in this build.
		return nil, fmt.Errorf("no chat client available for provider %q", provider)
	}
}

// Options derives per-request chat options from a profile.
func Options(p types.Profile) types.ChatOptions {
	return types.ChatOptions{
		Temperature: cast.ToFloat64(p["temperature"]),
		MaxTokens:   cast.ToInt(p["max_tokens"]),
	}
}
