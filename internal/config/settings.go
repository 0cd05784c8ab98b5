// Package config implements the scoped configuration engine: three JSON
// documents (global, local, named file) deep-merged into a single effective
// runtime context with per-scope read/write access.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Scope identifies one of the configuration documents.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeLocal  Scope = "local"
	ScopeFile   Scope = "file"
)

const (
	configDirName  = ".llmbase"
	configFileName = "config.json"
	envPrefix      = "LLMBASE"
)

// settingsKeys lists the keys of the settings section that can be
// overridden through LLMBASE_* environment variables.
var settingsKeys = []string{"output_format", "color_theme", "log_level"}

// Args carries the scope-related command line arguments that drive the
// precedence rules.
type Args struct {
	Scope    Scope
	FilePath string
	Verbose  bool
	Quiet    bool
}

// DefaultDocument returns a fresh configuration document with defaults.
func DefaultDocument() map[string]any {
	return map[string]any{
		"profiles": map[string]any{
			"llm": map[string]any{},
		},
		"defaults": map[string]any{
			"llm": nil,
		},
		"settings": map[string]any{
			"output_format": "json",
			"color_theme":   "dark",
			"log_level":     "info",
		},
		"commands": map[string]any{},
	}
}

// Settings combines the configuration scopes and CLI arguments into a
// unified runtime context. All mutations rebuild the context.
type Settings struct {
	globalDir  string
	globalPath string
	localDir   string
	localPath  string
	namedPath  string

	global map[string]any
	local  map[string]any
	named  map[string]any // nil when no named file is loaded

	args    Args
	scope   Scope
	context map[string]any
}

// NewSettings creates runtime settings rooted at the user's home directory
// (global scope) and the current working directory (local scope).
func NewSettings(args Args) (*Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working directory: %w", err)
	}
	return newSettings(args, filepath.Join(home, configDirName), filepath.Join(cwd, configDirName))
}

func newSettings(args Args, globalDir, localDir string) (*Settings, error) {
	s := &Settings{
		globalDir:  globalDir,
		globalPath: filepath.Join(globalDir, configFileName),
		localDir:   localDir,
		localPath:  filepath.Join(localDir, configFileName),
		args:       args,
	}
	if err := s.initFiles(); err != nil {
		return nil, err
	}
	s.load()
	s.buildContext()
	return s, nil
}

// initFiles creates the global config directory and file if they do not
// exist, and the local directory (but not the local file).
func (s *Settings) initFiles() error {
	if err := os.MkdirAll(s.globalDir, 0o755); err != nil {
		return fmt.Errorf("creating global config directory: %w", err)
	}
	if _, err := os.Stat(s.globalPath); os.IsNotExist(err) {
		if err := writeDocument(s.globalPath, DefaultDocument()); err != nil {
			return fmt.Errorf("writing default global config: %w", err)
		}
	}
	if err := os.MkdirAll(s.localDir, 0o755); err != nil {
		return fmt.Errorf("creating local config directory: %w", err)
	}
	return nil
}

// load reads every scope document from disk. A file with invalid JSON
// leaves the defaults in place for that scope.
func (s *Settings) load() {
	s.global = readDocument(s.globalPath)
	s.local = readDocument(s.localPath)

	s.named = nil
	s.namedPath = ""
	if s.args.FilePath != "" {
		s.namedPath = expandPath(s.args.FilePath)
		if doc, err := loadDocument(s.namedPath); err == nil {
			s.named = doc
		} else {
			log.Warn().Str("path", s.namedPath).Err(err).Msg("named config not usable")
		}
	}
}

// readDocument loads a scope file, falling back to defaults when the file
// is missing or unreadable.
func readDocument(path string) map[string]any {
	doc, err := loadDocument(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("path", path).Err(err).Msg("ignoring invalid config file")
		}
		return DefaultDocument()
	}
	return doc
}

func loadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

func writeDocument(path string, doc map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// buildContext merges the scope documents into the effective context
// according to the precedence rules:
//
//	--file  : defaults <- global <- local <- named file
//	--global: defaults <- global
//	--local (or nothing): defaults <- global <- local
//
// The winning scope is recorded under current_scope. A named file that
// could not be loaded falls back to local precedence.
func (s *Settings) buildContext() {
	ctx := DefaultDocument()

	switch {
	case s.args.FilePath != "" && s.named != nil:
		ctx = DeepMerge(ctx, s.global)
		ctx = DeepMerge(ctx, s.local)
		ctx = DeepMerge(ctx, s.named)
		s.scope = ScopeFile
	case s.args.Scope == ScopeGlobal:
		ctx = DeepMerge(ctx, s.global)
		s.scope = ScopeGlobal
	default:
		if s.args.FilePath != "" {
			log.Warn().Str("path", s.namedPath).Msg("named config missing, using local precedence")
		}
		ctx = DeepMerge(ctx, s.global)
		ctx = DeepMerge(ctx, s.local)
		s.scope = ScopeLocal
	}

	applyEnvOverrides(section(ctx, "settings"))

	ctx["current_scope"] = string(s.scope)
	ctx["cli_args"] = map[string]any{
		"scope":     string(s.args.Scope),
		"file_path": s.args.FilePath,
		"verbose":   s.args.Verbose,
		"quiet":     s.args.Quiet,
	}
	s.context = ctx
}

// applyEnvOverrides overlays LLMBASE_* environment variables onto the
// settings section. Environment sits above the files and below CLI flags.
func applyEnvOverrides(settings map[string]any) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, key := range settingsKeys {
		if err := v.BindEnv(key); err != nil {
			continue
		}
		if v.IsSet(key) {
			settings[key] = v.GetString(key)
		}
	}
}

// Args returns the CLI arguments the settings were built from.
func (s *Settings) Args() Args { return s.args }

// CurrentScope returns the scope tag of the effective context.
func (s *Settings) CurrentScope() Scope { return s.scope }

// EffectiveContext returns the merged runtime configuration.
func (s *Settings) EffectiveContext() map[string]any { return s.context }

// ConfigPath returns the file backing the given scope.
func (s *Settings) ConfigPath(scope Scope) (string, error) {
	switch scope {
	case ScopeGlobal:
		return s.globalPath, nil
	case ScopeLocal:
		return s.localPath, nil
	case ScopeFile:
		if s.namedPath == "" {
			return "", fmt.Errorf("no named configuration file selected")
		}
		return s.namedPath, nil
	default:
		return "", fmt.Errorf("invalid scope: %s", scope)
	}
}

// GetConfig returns the document for the given scope.
func (s *Settings) GetConfig(scope Scope) (map[string]any, error) {
	switch scope {
	case ScopeGlobal:
		return s.global, nil
	case ScopeLocal:
		return s.local, nil
	case ScopeFile:
		if s.named == nil {
			return nil, fmt.Errorf("no named configuration file loaded")
		}
		return s.named, nil
	default:
		return nil, fmt.Errorf("invalid scope: %s", scope)
	}
}

// SaveConfig writes the document to the scope's file and rebuilds the
// runtime context.
func (s *Settings) SaveConfig(doc map[string]any, scope Scope) error {
	path, err := s.ConfigPath(scope)
	if err != nil {
		return err
	}
	if err := writeDocument(path, doc); err != nil {
		return fmt.Errorf("saving %s config: %w", scope, err)
	}
	switch scope {
	case ScopeGlobal:
		s.global = doc
	case ScopeLocal:
		s.local = doc
	case ScopeFile:
		s.named = doc
	}
	s.buildContext()
	return nil
}

// UpdateConfig deep-merges updates into the scope's document and saves it.
func (s *Settings) UpdateConfig(updates map[string]any, scope Scope) (map[string]any, error) {
	doc, err := s.GetConfig(scope)
	if err != nil {
		return nil, err
	}
	merged := DeepMerge(doc, updates)
	if err := s.SaveConfig(merged, scope); err != nil {
		return nil, err
	}
	return merged, nil
}

// GetSetting returns a value from the settings section of the effective
// context, or fallback when the key is absent.
func (s *Settings) GetSetting(name string, fallback any) any {
	settings := section(s.context, "settings")
	if v, ok := settings[name]; ok && v != nil {
		return v
	}
	return fallback
}

// SetSetting stores a setting value in the given scope.
func (s *Settings) SetSetting(name string, value any, scope Scope) error {
	doc, err := s.GetConfig(scope)
	if err != nil {
		return err
	}
	doc = cloneDocument(doc)
	section(doc, "settings")[name] = value
	return s.SaveConfig(doc, scope)
}

// CommandConfig returns the parameter overrides configured for a dotted
// command path, or an empty map.
func (s *Settings) CommandConfig(path string) map[string]any {
	commands, ok := s.context["commands"].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	if cfg, ok := commands[path].(map[string]any); ok {
		return cfg
	}
	return map[string]any{}
}

// ReadDocumentFile loads a configuration document from an arbitrary
// JSON file, expanding ~ and environment variables in the path.
func ReadDocumentFile(path string) (map[string]any, error) {
	return loadDocument(expandPath(path))
}

// WriteDocumentFile writes a configuration document to an arbitrary
// JSON file.
func WriteDocumentFile(path string, doc map[string]any) error {
	return writeDocument(expandPath(path), doc)
}

func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
