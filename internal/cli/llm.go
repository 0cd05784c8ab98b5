package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/llmbase/llmbase/internal/config"
	"github.com/llmbase/llmbase/internal/llm"
	"github.com/llmbase/llmbase/internal/profile"
	"github.com/llmbase/llmbase/pkg/types"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Manage LLM provider profiles",
	Long: `Manage named provider profiles holding credentials and model
parameters. Profiles live in the configuration scope selected by the
persistent scope flags.`,
}

var llmCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new profile",
	RunE:  runLLMCreate,
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	RunE:  runLLMList,
}

var llmShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runLLMShow,
}

var llmEditCmd = &cobra.Command{
	Use:   "edit NAME",
	Short: "Update fields of an existing profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runLLMEdit,
}

var llmDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runLLMDelete,
}

var llmUseCmd = &cobra.Command{
	Use:   "use NAME",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runLLMUse,
}

var llmModelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List known models per provider",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLLMModels,
}

// profileFlagSpec maps a profile field to its flag. Typed as string,
// float, or int for flag registration and resolution.
type profileFlagSpec struct {
	field string
	flag  string
	kind  string
	usage string
}

var profileFlags = []profileFlagSpec{
	{"provider", "provider", "string", "provider name (openai, anthropic, google, ...)"},
	{"model", "model", "string", "model name"},
	{"api_key", "api-key", "string", "API key (falls back to <PROVIDER>_API_KEY)"},
	{"temperature", "temperature", "float", "sampling temperature (0.0-1.0)"},
	{"max_tokens", "max-tokens", "int", "maximum tokens to generate"},
	{"base_url", "base-url", "string", "API base URL"},
	{"model_kwargs", "model-kwargs", "string", "extra model arguments as JSON"},
	{"deployment", "deployment", "string", "azure deployment name"},
	{"api_version", "api-version", "string", "API version"},
	{"organization", "organization", "string", "organization ID"},
	{"region", "region", "string", "aws region"},
	{"project_id", "project-id", "string", "google project ID"},
	{"timeout", "timeout", "int", "request timeout in seconds"},
}

func addProfileFlags(cmd *cobra.Command) {
	for _, spec := range profileFlags {
		switch spec.kind {
		case "float":
			cmd.Flags().Float64(spec.flag, 0, spec.usage)
		case "int":
			cmd.Flags().Int(spec.flag, 0, spec.usage)
		default:
			cmd.Flags().String(spec.flag, "", spec.usage)
		}
	}
}

func init() {
	rootCmd.AddCommand(llmCmd)
	llmCmd.AddCommand(llmCreateCmd)
	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmShowCmd)
	llmCmd.AddCommand(llmEditCmd)
	llmCmd.AddCommand(llmDeleteCmd)
	llmCmd.AddCommand(llmUseCmd)
	llmCmd.AddCommand(llmModelsCmd)

	llmCreateCmd.Flags().String("name", "", "profile name (required)")
	addProfileFlags(llmCreateCmd)
	llmCreateCmd.MarkFlagRequired("name")

	addProfileFlags(llmEditCmd)

	llmListCmd.Flags().String("output-format", "", "output format (table or json)")
}

func manager() (*profile.Manager, error) {
	s, err := config.Current()
	if err != nil {
		return nil, err
	}
	return profile.NewManager(s), nil
}

// profileFromCommand collects profile fields for which the flag was set
// on the command line or a value is configured for the command.
func profileFromCommand(cmd *cobra.Command, r *config.Resolver) types.Profile {
	p := types.Profile{}
	cfg := r.CommandConfig()
	for _, spec := range profileFlags {
		set := cmd.Flags().Changed(spec.flag)
		if !set {
			if _, ok := cfg[spec.field]; !ok {
				continue
			}
		}
		switch spec.kind {
		case "float":
			p[spec.field] = r.Float(spec.flag)
		case "int":
			p[spec.field] = r.Int(spec.flag)
		default:
			p[spec.field] = r.String(spec.flag)
		}
	}
	return p
}

func runLLMCreate(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}
	r, err := config.NewResolver(cmd)
	if err != nil {
		return err
	}
	p := profileFromCommand(cmd, r)
	name, _ := cmd.Flags().GetString("name")
	p["name"] = name

	if err := m.Create(p, writeScope()); err != nil {
		return err
	}
	fmt.Printf("Created profile %q in %s scope\n", name, writeScope())
	return nil
}

func runLLMList(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}
	r, err := config.NewResolver(cmd)
	if err != nil {
		return err
	}
	profiles, err := m.List("")
	if err != nil {
		return err
	}

	if r.String("output-format") == "table" {
		return printProfileTable(profiles, m.DefaultName())
	}
	redacted := map[string]types.Profile{}
	for name, p := range profiles {
		redacted[name] = profile.Redacted(p)
	}
	return printJSON(redacted)
}

func printProfileTable(profiles map[string]types.Profile, defaultName string) error {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%-20s %-12s %-30s %s\n", "NAME", "PROVIDER", "MODEL", "DEFAULT")
	for _, name := range names {
		p := profiles[name]
		marker := ""
		if name == defaultName {
			marker = "*"
		}
		fmt.Printf("%-20s %-12s %-30s %s\n",
			name, cast.ToString(p["provider"]), cast.ToString(p["model"]), marker)
	}
	return nil
}

func runLLMShow(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}
	p, err := m.Get(args[0])
	if err != nil {
		return err
	}
	return printJSON(profile.Redacted(p))
}

func runLLMEdit(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}
	updates := map[string]any{}
	for _, spec := range profileFlags {
		if !cmd.Flags().Changed(spec.flag) {
			continue
		}
		switch spec.kind {
		case "float":
			updates[spec.field], _ = cmd.Flags().GetFloat64(spec.flag)
		case "int":
			updates[spec.field], _ = cmd.Flags().GetInt(spec.flag)
		default:
			updates[spec.field], _ = cmd.Flags().GetString(spec.flag)
		}
	}
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}
	p, err := m.Edit(args[0], updates, writeScope())
	if err != nil {
		return err
	}
	return printJSON(profile.Redacted(p))
}

func runLLMDelete(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}
	if err := m.Delete(args[0], writeScope()); err != nil {
		return err
	}
	fmt.Printf("Deleted profile %q from %s scope\n", args[0], writeScope())
	return nil
}

func runLLMUse(cmd *cobra.Command, args []string) error {
	m, err := manager()
	if err != nil {
		return err
	}
	if err := m.Use(args[0], writeScope()); err != nil {
		return err
	}
	fmt.Printf("Default profile set to %q in %s scope\n", args[0], writeScope())
	return nil
}

func runLLMModels(cmd *cobra.Command, args []string) error {
	providers := profile.Providers
	if len(args) == 1 {
		providers = []string{args[0]}
	}
	for _, provider := range providers {
		models := llm.ModelsFor(provider)
		fmt.Printf("%s:\n", provider)
		if len(models) == 0 {
			fmt.Println("  (no fixed model list)")
			continue
		}
		fmt.Printf("  %s\n", strings.Join(models, "\n  "))
	}
	return nil
}
