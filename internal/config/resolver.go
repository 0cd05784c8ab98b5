package config

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// Resolver resolves a command's parameters against the runtime context.
// Precedence per parameter: value set on the command line, then the
// commands.<path> section of the effective context, then the settings
// section, then the flag's declared default.
type Resolver struct {
	settings *Settings
	cmd      *cobra.Command
	path     string
}

// NewResolver builds a resolver for the command using the current
// runtime context.
func NewResolver(cmd *cobra.Command) (*Resolver, error) {
	s, err := Current()
	if err != nil {
		return nil, err
	}
	return &Resolver{settings: s, cmd: cmd, path: CommandPath(cmd)}, nil
}

// CommandPath returns the dotted command path with the root command
// stripped, e.g. "llm.create" or "get-page".
func CommandPath(cmd *cobra.Command) string {
	parts := strings.Fields(cmd.CommandPath())
	if len(parts) <= 1 {
		return ""
	}
	return strings.Join(parts[1:], ".")
}

// Path returns the resolver's dotted command path.
func (r *Resolver) Path() string { return r.path }

// CommandConfig returns the configured overrides for this command.
func (r *Resolver) CommandConfig() map[string]any {
	return r.settings.CommandConfig(r.path)
}

// value applies the precedence chain for a single parameter and reports
// whether anything beyond the flag default was found. Flags are named
// with dashes; the configuration keys use underscores.
func (r *Resolver) value(name string) (any, bool) {
	if f := r.cmd.Flags().Lookup(name); f != nil && f.Changed {
		return f.Value.String(), true
	}
	key := strings.ReplaceAll(name, "-", "_")
	if v, ok := r.CommandConfig()[key]; ok && v != nil {
		return v, true
	}
	if v, ok := section(r.settings.EffectiveContext(), "settings")[key]; ok && v != nil {
		return v, true
	}
	return nil, false
}

// String resolves a string parameter.
func (r *Resolver) String(name string) string {
	if v, ok := r.value(name); ok {
		return cast.ToString(v)
	}
	if f := r.cmd.Flags().Lookup(name); f != nil {
		return f.DefValue
	}
	return ""
}

// Int resolves an integer parameter.
func (r *Resolver) Int(name string) int {
	v, _ := r.IntOk(name)
	return v
}

// IntOk resolves an integer parameter and reports whether any layer
// above the flag default supplied it. An explicit zero counts as set.
func (r *Resolver) IntOk(name string) (int, bool) {
	if v, ok := r.value(name); ok {
		return cast.ToInt(v), true
	}
	if f := r.cmd.Flags().Lookup(name); f != nil {
		return cast.ToInt(f.DefValue), false
	}
	return 0, false
}

// Float resolves a float parameter.
func (r *Resolver) Float(name string) float64 {
	v, _ := r.FloatOk(name)
	return v
}

// FloatOk resolves a float parameter and reports whether any layer
// above the flag default supplied it. An explicit zero counts as set.
func (r *Resolver) FloatOk(name string) (float64, bool) {
	if v, ok := r.value(name); ok {
		return cast.ToFloat64(v), true
	}
	if f := r.cmd.Flags().Lookup(name); f != nil {
		return cast.ToFloat64(f.DefValue), false
	}
	return 0, false
}

// Bool resolves a boolean parameter.
func (r *Resolver) Bool(name string) bool {
	if v, ok := r.value(name); ok {
		return cast.ToBool(v)
	}
	if f := r.cmd.Flags().Lookup(name); f != nil {
		return cast.ToBool(f.DefValue)
	}
	return false
}

// Profile resolves the profile parameter: an explicit flag or command
// override wins, otherwise the default profile for the type, searched
// across all scopes.
func (r *Resolver) Profile(profileType string) string {
	if v, ok := r.value("profile"); ok {
		return cast.ToString(v)
	}
	return r.settings.DefaultProfileFromAnyScope(profileType)
}
