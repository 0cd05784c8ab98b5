package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resolverFixture installs a runtime context over temp dirs and returns
// a command wired into a parent named like the real root.
func resolverFixture(t *testing.T) *cobra.Command {
	t.Helper()
	s := testSettings(t, Args{})
	install(s)
	t.Cleanup(Reset)

	root := &cobra.Command{Use: "llmbase"}
	group := &cobra.Command{Use: "llm"}
	leaf := &cobra.Command{Use: "create", Run: func(cmd *cobra.Command, args []string) {}}
	root.AddCommand(group)
	group.AddCommand(leaf)
	return leaf
}

func TestCommandPath_StripsRoot(t *testing.T) {
	leaf := resolverFixture(t)

	assert.Equal(t, "llm.create", CommandPath(leaf))
	assert.Equal(t, "llm", CommandPath(leaf.Parent()))
	assert.Equal(t, "", CommandPath(leaf.Root()))
}

func TestResolver_FlagBeatsEverything(t *testing.T) {
	leaf := resolverFixture(t)
	leaf.Flags().Int("max-tokens", 100, "")

	s, err := Current()
	require.NoError(t, err)
	_, err = s.UpdateConfig(map[string]any{
		"commands": map[string]any{"llm.create": map[string]any{"max_tokens": 500}},
	}, ScopeLocal)
	require.NoError(t, err)

	require.NoError(t, leaf.Flags().Set("max-tokens", "900"))

	r, err := NewResolver(leaf)
	require.NoError(t, err)
	assert.Equal(t, 900, r.Int("max-tokens"))
}

func TestResolver_CommandConfigBeatsSettings(t *testing.T) {
	leaf := resolverFixture(t)
	leaf.Flags().String("output-format", "", "")

	s, err := Current()
	require.NoError(t, err)
	_, err = s.UpdateConfig(map[string]any{
		"commands": map[string]any{"llm.create": map[string]any{"output_format": "table"}},
	}, ScopeLocal)
	require.NoError(t, err)

	r, err := NewResolver(leaf)
	require.NoError(t, err)
	// settings.output_format is "json"; the command override wins.
	assert.Equal(t, "table", r.String("output-format"))
}

func TestResolver_SettingsBeatFlagDefault(t *testing.T) {
	leaf := resolverFixture(t)
	leaf.Flags().String("output-format", "plain", "")

	r, err := NewResolver(leaf)
	require.NoError(t, err)
	assert.Equal(t, "json", r.String("output-format"))
}

func TestResolver_FallsBackToFlagDefault(t *testing.T) {
	leaf := resolverFixture(t)
	leaf.Flags().Int("max-continuations", 10, "")
	leaf.Flags().Float64("temperature", 0.5, "")
	leaf.Flags().Bool("recursive", true, "")

	r, err := NewResolver(leaf)
	require.NoError(t, err)
	assert.Equal(t, 10, r.Int("max-continuations"))
	assert.Equal(t, 0.5, r.Float("temperature"))
	assert.True(t, r.Bool("recursive"))
}

func TestResolver_OkDistinguishesExplicitZero(t *testing.T) {
	leaf := resolverFixture(t)
	leaf.Flags().Float64("temperature", 0.7, "")
	leaf.Flags().Int("max-tokens", 0, "")

	r, err := NewResolver(leaf)
	require.NoError(t, err)

	// Nothing set anywhere: the flag default comes back unclaimed.
	v, ok := r.FloatOk("temperature")
	assert.False(t, ok)
	assert.Equal(t, 0.7, v)
	_, ok = r.IntOk("max-tokens")
	assert.False(t, ok)

	// An explicit zero on the command line counts as set.
	require.NoError(t, leaf.Flags().Set("temperature", "0"))
	r, err = NewResolver(leaf)
	require.NoError(t, err)
	v, ok = r.FloatOk("temperature")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestResolver_OkSeesCommandConfig(t *testing.T) {
	leaf := resolverFixture(t)
	leaf.Flags().Int("max-tokens", 0, "")

	s, err := Current()
	require.NoError(t, err)
	_, err = s.UpdateConfig(map[string]any{
		"commands": map[string]any{"llm.create": map[string]any{"max_tokens": 256}},
	}, ScopeLocal)
	require.NoError(t, err)

	r, err := NewResolver(leaf)
	require.NoError(t, err)
	v, ok := r.IntOk("max-tokens")
	assert.True(t, ok)
	assert.Equal(t, 256, v)
}

func TestResolver_UnknownFlagZeroValues(t *testing.T) {
	leaf := resolverFixture(t)

	r, err := NewResolver(leaf)
	require.NoError(t, err)
	assert.Equal(t, "", r.String("missing"))
	assert.Equal(t, 0, r.Int("missing"))
}

func TestResolver_ProfileFallsBackToDefault(t *testing.T) {
	leaf := resolverFixture(t)
	leaf.Flags().String("profile", "", "")

	s, err := Current()
	require.NoError(t, err)
	require.NoError(t, s.CreateProfile("llm",
		map[string]any{"name": "house", "provider": "ollama", "model": "llama3"}, ScopeLocal))
	require.NoError(t, s.SetDefaultProfile("llm", "house", ScopeLocal))

	r, err := NewResolver(leaf)
	require.NoError(t, err)
	assert.Equal(t, "house", r.Profile("llm"))

	require.NoError(t, leaf.Flags().Set("profile", "other"))
	r, err = NewResolver(leaf)
	require.NoError(t, err)
	assert.Equal(t, "other", r.Profile("llm"))
}
