package config

import (
	"fmt"

	"github.com/llmbase/llmbase/pkg/types"
	"github.com/spf13/cast"
)

// Profile access on top of the scope documents. Profiles live under
// profiles.<type>.<name>; the default name per type lives under
// defaults.<type>.

// GetProfile returns a profile from the effective context.
func (s *Settings) GetProfile(profileType, name string) (types.Profile, error) {
	profiles, ok := section(s.context, "profiles")[profileType].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("profile type not found: %s", profileType)
	}
	p, ok := profiles[name].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("profile not found: %s", name)
	}
	return p, nil
}

// GetProfileFromAnyScope looks a profile up following the precedence
// chain: the effective context first, then the local document when the
// current scope is a named file, then the global document.
func (s *Settings) GetProfileFromAnyScope(profileType, name string) (types.Profile, error) {
	if p, err := s.GetProfile(profileType, name); err == nil {
		return p, nil
	}
	if s.scope == ScopeFile {
		if p := profileIn(s.local, profileType, name); p != nil {
			return p, nil
		}
	}
	if p := profileIn(s.global, profileType, name); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("profile %q not found in any configuration scope", name)
}

func profileIn(doc map[string]any, profileType, name string) types.Profile {
	profiles, ok := doc["profiles"].(map[string]any)
	if !ok {
		return nil
	}
	byType, ok := profiles[profileType].(map[string]any)
	if !ok {
		return nil
	}
	if p, ok := byType[name].(map[string]any); ok {
		return p
	}
	return nil
}

// Profiles returns all profiles of a type. With an empty scope the
// effective context is used; otherwise the scope's own document.
func (s *Settings) Profiles(profileType string, scope Scope) (map[string]types.Profile, error) {
	doc := s.context
	if scope != "" {
		var err error
		if doc, err = s.GetConfig(scope); err != nil {
			return nil, err
		}
	}
	out := map[string]types.Profile{}
	profiles, ok := doc["profiles"].(map[string]any)
	if !ok {
		return out, nil
	}
	byType, ok := profiles[profileType].(map[string]any)
	if !ok {
		return out, nil
	}
	for name, p := range byType {
		if m, ok := p.(map[string]any); ok {
			out[name] = m
		}
	}
	return out, nil
}

// DefaultProfile returns the default profile name for a type from the
// effective context, or "" when none is set.
func (s *Settings) DefaultProfile(profileType string) string {
	defaults, ok := s.context["defaults"].(map[string]any)
	if !ok {
		return ""
	}
	return cast.ToString(defaults[profileType])
}

// DefaultProfileFromAnyScope falls back through local (for file scope)
// and global documents when the effective context has no default.
func (s *Settings) DefaultProfileFromAnyScope(profileType string) string {
	if name := s.DefaultProfile(profileType); name != "" {
		return name
	}
	if s.scope == ScopeFile {
		if name := defaultIn(s.local, profileType); name != "" {
			return name
		}
	}
	return defaultIn(s.global, profileType)
}

func defaultIn(doc map[string]any, profileType string) string {
	defaults, ok := doc["defaults"].(map[string]any)
	if !ok {
		return ""
	}
	return cast.ToString(defaults[profileType])
}

// SetDefaultProfile marks a profile as the default for its type in the
// given scope. The profile must exist in that scope's document.
func (s *Settings) SetDefaultProfile(profileType, name string, scope Scope) error {
	doc, err := s.GetConfig(scope)
	if err != nil {
		return err
	}
	if profileIn(doc, profileType, name) == nil {
		return fmt.Errorf("profile not found: %s", name)
	}
	doc = cloneDocument(doc)
	section(doc, "defaults")[profileType] = name
	return s.SaveConfig(doc, scope)
}

// CreateProfile adds a new profile to the given scope.
func (s *Settings) CreateProfile(profileType string, profile types.Profile, scope Scope) error {
	name := cast.ToString(profile["name"])
	if name == "" {
		return fmt.Errorf("profile name is required")
	}
	doc, err := s.GetConfig(scope)
	if err != nil {
		return err
	}
	if profileIn(doc, profileType, name) != nil {
		return fmt.Errorf("profile already exists: %s", name)
	}
	doc = cloneDocument(doc)
	byType, ok := section(doc, "profiles")[profileType].(map[string]any)
	if !ok {
		byType = map[string]any{}
		section(doc, "profiles")[profileType] = byType
	}
	byType[name] = map[string]any(profile)
	return s.SaveConfig(doc, scope)
}

// EditProfile applies field updates to an existing profile in the scope.
func (s *Settings) EditProfile(profileType, name string, updates map[string]any, scope Scope) (types.Profile, error) {
	doc, err := s.GetConfig(scope)
	if err != nil {
		return nil, err
	}
	if profileIn(doc, profileType, name) == nil {
		return nil, fmt.Errorf("profile not found: %s", name)
	}
	doc = cloneDocument(doc)
	byType := section(doc, "profiles")[profileType].(map[string]any)
	p := byType[name].(map[string]any)
	for k, v := range updates {
		p[k] = v
	}
	if err := s.SaveConfig(doc, scope); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProfile removes a profile from the scope. When the profile was
// the scope's default, the default is cleared.
func (s *Settings) DeleteProfile(profileType, name string, scope Scope) error {
	doc, err := s.GetConfig(scope)
	if err != nil {
		return err
	}
	if profileIn(doc, profileType, name) == nil {
		return fmt.Errorf("profile not found: %s", name)
	}
	doc = cloneDocument(doc)
	byType := section(doc, "profiles")[profileType].(map[string]any)
	delete(byType, name)
	if defaultIn(doc, profileType) == name {
		section(doc, "defaults")[profileType] = nil
	}
	return s.SaveConfig(doc, scope)
}
