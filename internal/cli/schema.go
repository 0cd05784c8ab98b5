package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the command tree",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show [command]",
	Short: "Render the command tree with flags",
	Args:  cobra.ArbitraryArgs,
	RunE:  runSchemaShow,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaShowCmd)
}

func runSchemaShow(cmd *cobra.Command, args []string) error {
	target := rootCmd
	if len(args) > 0 {
		found, _, err := rootCmd.Find(args)
		if err != nil {
			return fmt.Errorf("unknown command %q", strings.Join(args, " "))
		}
		target = found
	}
	printCommandTree(target, "")
	return nil
}

// printCommandTree renders a command and its subcommands as an indented
// tree, one flag per line.
func printCommandTree(cmd *cobra.Command, indent string) {
	fmt.Printf("%s%s", indent, cmd.Name())
	if cmd.Short != "" {
		fmt.Printf(" — %s", cmd.Short)
	}
	fmt.Println()

	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		short := "  "
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}
		fmt.Printf("%s  %s --%s <%s>  %s\n", indent, short, f.Name, f.Value.Type(), f.Usage)
	})

	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" || sub.Name() == "completion" {
			continue
		}
		printCommandTree(sub, indent+"  ")
	}
}
