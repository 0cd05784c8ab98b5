package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/llmbase/llmbase/internal/config"
	"github.com/llmbase/llmbase/internal/profile"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and modify the scoped configuration",
	Long: `Work with the layered configuration documents. The persistent scope
flags select the target: --global, --local (default), or --file PATH.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Persist the effective configuration to the selected scope",
	RunE:  runConfigSave,
}

var configUpdateCmd = &cobra.Command{
	Use:   "update JSON",
	Short: "Deep-merge a JSON fragment into the selected scope",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUpdate,
}

var configReplaceCmd = &cobra.Command{
	Use:   "replace JSON",
	Short: "Replace the selected scope's document with the given JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigReplace,
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the selected scope's document to defaults",
	RunE:  runConfigReset,
}

var configImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a configuration document from another scope or file",
	Long: `Copy a whole configuration document between scopes. The source is one
of --from-global, --from-local, or --from-file PATH; the destination is
one of --to-global, --to-local, or --to-file PATH. The source merges
into the destination unless --replace is given.

Examples:
  llmbase config import --from-global --to-local
  llmbase config import --from-file team.json --to-local --replace`,
	Args: cobra.NoArgs,
	RunE: runConfigImport,
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a configuration document to a JSON file",
	Long: `Write a scope's document to a file. The source is one of
--from-global, --from-local (default), or --from-file PATH; the
destination is --to-file PATH.`,
	Args: cobra.NoArgs,
	RunE: runConfigExport,
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Emit the commands that recreate the stored profiles",
	RunE:  runConfigGenerate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
	configCmd.AddCommand(configUpdateCmd)
	configCmd.AddCommand(configReplaceCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configImportCmd)
	configCmd.AddCommand(configExportCmd)
	configCmd.AddCommand(configGenerateCmd)

	configResetCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	addSourceFlags(configImportCmd)
	configImportCmd.Flags().Bool("to-global", false, "import into the global configuration")
	configImportCmd.Flags().Bool("to-local", false, "import into the local configuration")
	configImportCmd.Flags().String("to-file", "", "import into a named configuration file")
	configImportCmd.Flags().Bool("replace", false, "replace the document instead of merging")
	configImportCmd.MarkFlagsMutuallyExclusive("from-global", "from-local", "from-file")
	configImportCmd.MarkFlagsMutuallyExclusive("to-global", "to-local", "to-file")

	addSourceFlags(configExportCmd)
	configExportCmd.Flags().String("to-file", "", "destination file (required)")
	configExportCmd.MarkFlagRequired("to-file")
	configExportCmd.MarkFlagsMutuallyExclusive("from-global", "from-local", "from-file")
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("from-global", false, "read from the global configuration")
	cmd.Flags().Bool("from-local", false, "read from the local configuration")
	cmd.Flags().String("from-file", "", "read from a named configuration file")
}

// sourceDocument loads the document selected by the --from flags.
// Defaulting to the local scope is the caller's choice.
func sourceDocument(cmd *cobra.Command, s *config.Settings, defaultLocal bool) (map[string]any, error) {
	if path, _ := cmd.Flags().GetString("from-file"); path != "" {
		doc, err := config.ReadDocumentFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading source file: %w", err)
		}
		return doc, nil
	}
	if ok, _ := cmd.Flags().GetBool("from-global"); ok {
		return s.GetConfig(config.ScopeGlobal)
	}
	if ok, _ := cmd.Flags().GetBool("from-local"); ok || defaultLocal {
		return s.GetConfig(config.ScopeLocal)
	}
	return nil, fmt.Errorf("must specify a source configuration (--from-global, --from-local, or --from-file)")
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	return printJSON(s.EffectiveContext())
}

// runConfigSave writes the merged runtime view into the selected scope's
// file, minus the runtime-only keys.
func runConfigSave(cmd *cobra.Command, args []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	doc := map[string]any{}
	for k, v := range s.EffectiveContext() {
		if k == "current_scope" || k == "cli_args" {
			continue
		}
		doc[k] = v
	}
	scope := writeScope()
	if err := s.SaveConfig(doc, scope); err != nil {
		return err
	}
	path, _ := s.ConfigPath(scope)
	fmt.Printf("Saved effective configuration to %s\n", path)
	return nil
}

func runConfigUpdate(cmd *cobra.Command, args []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	var updates map[string]any
	if err := json.Unmarshal([]byte(args[0]), &updates); err != nil {
		return fmt.Errorf("parsing update JSON: %w", err)
	}
	merged, err := s.UpdateConfig(updates, writeScope())
	if err != nil {
		return err
	}
	return printJSON(merged)
}

func runConfigReplace(cmd *cobra.Command, args []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(args[0]), &doc); err != nil {
		return fmt.Errorf("parsing replacement JSON: %w", err)
	}
	return s.SaveConfig(doc, writeScope())
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	scope := writeScope()

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		fmt.Printf("Reset the %s configuration to defaults? [y/N]: ", scope)
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := s.SaveConfig(config.DefaultDocument(), scope); err != nil {
		return err
	}
	fmt.Printf("Reset %s configuration to defaults\n", scope)
	return nil
}

func runConfigImport(cmd *cobra.Command, args []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	source, err := sourceDocument(cmd, s, false)
	if err != nil {
		return err
	}
	replace, _ := cmd.Flags().GetBool("replace")

	if path, _ := cmd.Flags().GetString("to-file"); path != "" {
		doc := source
		if !replace {
			if existing, err := config.ReadDocumentFile(path); err == nil {
				doc = config.DeepMerge(existing, source)
			}
		}
		if err := config.WriteDocumentFile(path, doc); err != nil {
			return fmt.Errorf("writing destination file: %w", err)
		}
		fmt.Printf("Imported configuration into %s\n", path)
		return nil
	}

	var scope config.Scope
	switch {
	case mustBool(cmd, "to-global"):
		scope = config.ScopeGlobal
	case mustBool(cmd, "to-local"):
		scope = config.ScopeLocal
	default:
		return fmt.Errorf("must specify a destination configuration (--to-global, --to-local, or --to-file)")
	}

	if replace {
		err = s.SaveConfig(source, scope)
	} else {
		_, err = s.UpdateConfig(source, scope)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Imported configuration into %s scope\n", scope)
	return nil
}

func mustBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func runConfigExport(cmd *cobra.Command, args []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	// Exports default to the local document when no source is named.
	source, err := sourceDocument(cmd, s, true)
	if err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("to-file")
	if err := config.WriteDocumentFile(path, source); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	fmt.Printf("Exported configuration to %s\n", path)
	return nil
}

// runConfigGenerate prints the `llm create` invocations that would
// recreate every stored profile, one scope at a time.
func runConfigGenerate(cmd *cobra.Command, args []string) error {
	s, err := config.Current()
	if err != nil {
		return err
	}
	for _, scope := range []config.Scope{config.ScopeGlobal, config.ScopeLocal} {
		profiles, err := s.Profiles(profile.TypeLLM, scope)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(profiles))
		for name := range profiles {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(generateCreateLine(name, profiles[name], scope))
		}
	}
	return nil
}

func generateCreateLine(name string, p map[string]any, scope config.Scope) string {
	var b strings.Builder
	b.WriteString("llmbase llm create")
	fmt.Fprintf(&b, " --name %q", name)
	for _, field := range profile.Fields {
		if field == "name" {
			continue
		}
		v, ok := p[field]
		if !ok || v == nil {
			continue
		}
		flag := strings.ReplaceAll(field, "_", "-")
		value := cast.ToString(v)
		if value == "" {
			continue
		}
		if strings.ContainsAny(value, " \t{}\"") {
			fmt.Fprintf(&b, " --%s %q", flag, value)
		} else {
			fmt.Fprintf(&b, " --%s %s", flag, value)
		}
	}
	fmt.Fprintf(&b, " --%s", scope)
	return b.String()
}
