package llm

// Known model names per provider, used by the `llm models` command.
// These are hints for interactive use, not a validation whitelist.
var providerModels = map[string][]string{
	"openai": {
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-4",
		"gpt-3.5-turbo",
	},
	"anthropic": {
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3-haiku-20240307",
		"claude-2.1",
		"claude-2.0",
	},
	"google": {
		"gemini-1.5-pro",
		"gemini-1.5-flash",
		"gemini-1.0-pro",
	},
	"azure": {
		"gpt-4",
		"gpt-4-turbo",
		"gpt-3.5-turbo",
	},
	"aws": {
		"anthropic.claude-3-opus-20240229",
		"anthropic.claude-3-sonnet-20240229",
		"amazon.titan-text-express-v1",
		"meta.llama3-70b-instruct-v1:0",
	},
	"cohere": {
		"command",
		"command-r",
		"command-r-plus",
	},
	"mistral": {
		"mistral-large-latest",
		"mistral-medium-latest",
		"mistral-small-latest",
		"mixtral-8x7b-instruct",
	},
	"together": {
		"Meta-Llama/Llama-3-70b-chat-hf",
		"Meta-Llama/Llama-3-8b-chat-hf",
	},
	"ollama": {
		"llama3",
		"llama3:8b",
		"llama3:70b",
		"mistral",
		"mixtral",
		"gemma",
		"phi3",
		"codellama",
	},
	// litellm proxies arbitrary providers; no fixed list.
	"litellm": {},
}

// ModelsFor returns the known models for a provider.
func ModelsFor(provider string) []string {
	return providerModels[provider]
}
