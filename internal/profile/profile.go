// Package profile manages LLM provider profiles on top of the scoped
// configuration: lifecycle, validation, and provider defaults.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/llmbase/llmbase/internal/config"
	"github.com/llmbase/llmbase/pkg/types"
	"github.com/spf13/cast"
)

// TypeLLM is the profile type this manager operates on.
const TypeLLM = "llm"

// Providers supported by the client factory.
var Providers = []string{
	"openai", "anthropic", "google", "azure", "aws",
	"ollama", "litellm", "cohere", "mistral", "together",
}

// Fields recognized on an LLM profile, in display order.
var Fields = []string{
	"name", "provider", "model", "api_key",
	"temperature", "max_tokens", "base_url", "model_kwargs",
	"deployment", "api_version", "organization", "region",
	"project_id", "timeout",
}

// providerDefaults holds per-provider field defaults applied on create.
var providerDefaults = map[string]map[string]any{
	"openai":    {"base_url": "https://api.openai.com/v1", "api_version": "v1"},
	"anthropic": {"base_url": "https://api.anthropic.com/v1", "api_version": "v1", "max_tokens": 4096},
	"google":    {"base_url": "https://generativelanguage.googleapis.com", "api_version": "v1beta"},
	"azure":     {"api_version": "2023-05-15"},
	"aws":       {},
	"ollama":    {"base_url": "http://localhost:11434"},
	"litellm":   {"base_url": "http://localhost:8000"},
	"cohere":    {"base_url": "https://api.cohere.ai", "api_version": "v1"},
	"mistral":   {"base_url": "https://api.mistral.ai", "api_version": "v1"},
	"together":  {"base_url": "https://api.together.xyz", "api_version": "v1"},
}

// Manager provides validated profile operations for one profile type.
type Manager struct {
	settings    *config.Settings
	profileType string
}

// NewManager creates an LLM profile manager over the given settings.
func NewManager(s *config.Settings) *Manager {
	return &Manager{settings: s, profileType: TypeLLM}
}

// Create validates the profile, applies defaults, and stores it in the
// given scope.
func (m *Manager) Create(p types.Profile, scope config.Scope) error {
	applyDefaults(p)
	if errs := Validate(p); len(errs) > 0 {
		return fmt.Errorf("invalid profile: %s", strings.Join(errs, "; "))
	}
	return m.settings.CreateProfile(m.profileType, p, scope)
}

// Edit updates fields of an existing profile in the scope.
func (m *Manager) Edit(name string, updates map[string]any, scope config.Scope) (types.Profile, error) {
	return m.settings.EditProfile(m.profileType, name, updates, scope)
}

// Delete removes a profile from the scope.
func (m *Manager) Delete(name string, scope config.Scope) error {
	return m.settings.DeleteProfile(m.profileType, name, scope)
}

// Use sets the default profile for the type in the scope.
func (m *Manager) Use(name string, scope config.Scope) error {
	return m.settings.SetDefaultProfile(m.profileType, name, scope)
}

// List returns profiles by scope; an empty scope lists the effective set.
func (m *Manager) List(scope config.Scope) (map[string]types.Profile, error) {
	return m.settings.Profiles(m.profileType, scope)
}

// Get looks a profile up across all scopes.
func (m *Manager) Get(name string) (types.Profile, error) {
	return m.settings.GetProfileFromAnyScope(m.profileType, name)
}

// DefaultName returns the default profile name across all scopes, or "".
func (m *Manager) DefaultName() string {
	return m.settings.DefaultProfileFromAnyScope(m.profileType)
}

// Resolve returns the named profile, or the default profile when name is
// empty. Overrides for max_tokens and temperature are applied to a copy
// of the profile; nil means not supplied, so an explicit zero override
// still takes effect.
func (m *Manager) Resolve(name string, maxTokens *int, temperature *float64) (types.Profile, error) {
	if name == "" {
		name = m.DefaultName()
		if name == "" {
			return nil, fmt.Errorf("no profile specified and no default profile set")
		}
	}
	p, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	out := types.Profile{}
	for k, v := range p {
		out[k] = v
	}
	if maxTokens != nil {
		out["max_tokens"] = *maxTokens
	}
	if temperature != nil {
		out["temperature"] = *temperature
	}
	return out, nil
}

// Validate checks profile field values. It returns a list of problems;
// an empty list means the profile is valid.
func Validate(p types.Profile) []string {
	var errs []string

	provider := cast.ToString(p["provider"])
	if provider == "" {
		errs = append(errs, "provider is required")
	} else if !supported(provider) {
		errs = append(errs, fmt.Sprintf("provider must be one of: %s", strings.Join(Providers, ", ")))
	}
	if cast.ToString(p["model"]) == "" {
		errs = append(errs, "model is required")
	}

	if v, ok := p["temperature"]; ok && v != nil {
		if t := cast.ToFloat64(v); t < 0.0 || t > 1.0 {
			errs = append(errs, "temperature must be between 0.0 and 1.0")
		}
	}
	if v, ok := p["max_tokens"]; ok && v != nil {
		if cast.ToInt(v) <= 0 {
			errs = append(errs, "max_tokens must be greater than 0")
		}
	}

	switch provider {
	case "azure":
		if cast.ToString(p["deployment"]) == "" {
			errs = append(errs, "azure provider requires a deployment name")
		}
	case "aws":
		if cast.ToString(p["region"]) == "" {
			errs = append(errs, "aws provider requires a region")
		}
	case "google":
		if cast.ToString(p["project_id"]) == "" {
			errs = append(errs, "google provider requires a project_id")
		}
	}

	if raw := cast.ToString(p["model_kwargs"]); raw != "" {
		var kw map[string]any
		if err := json.Unmarshal([]byte(raw), &kw); err != nil {
			errs = append(errs, "model_kwargs must be valid JSON")
		}
	}

	return errs
}

func supported(provider string) bool {
	for _, p := range Providers {
		if p == provider {
			return true
		}
	}
	return false
}

// applyDefaults fills common and provider-specific defaults, and falls
// back to the <PROVIDER>_API_KEY environment variable for the key.
func applyDefaults(p types.Profile) {
	provider := cast.ToString(p["provider"])

	defaults := map[string]any{
		"temperature": 0.7,
		"max_tokens":  2048,
	}
	for k, v := range providerDefaults[provider] {
		defaults[k] = v
	}
	for k, v := range defaults {
		if _, ok := p[k]; !ok {
			p[k] = v
		}
	}

	if cast.ToString(p["api_key"]) == "" && provider != "" {
		if key := os.Getenv(strings.ToUpper(provider) + "_API_KEY"); key != "" {
			p["api_key"] = key
		}
	}
}

// Redacted returns a copy of the profile with the api_key masked for
// display.
func Redacted(p types.Profile) types.Profile {
	out := types.Profile{}
	for k, v := range p {
		out[k] = v
	}
	if key := cast.ToString(out["api_key"]); len(key) > 8 {
		out["api_key"] = key[:4] + "..." + key[len(key)-4:]
	} else if key != "" {
		out["api_key"] = "****"
	}
	return out
}
