package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tenebris-tech/x2md/convert"
)

var convertCmd = &cobra.Command{
	Use:   "convert PATH",
	Short: "Convert local documents to markdown offline",
	Long: `Convert a document (or a directory of documents with --recursive)
to markdown without going through an LLM. Already-converted files are
skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().BoolP("recursive", "r", false, "recurse into directories")
}

func runConvert(cmd *cobra.Command, args []string) error {
	recursive, _ := cmd.Flags().GetBool("recursive")

	converter := convert.New(
		convert.WithRecursion(recursive),
		convert.WithSkipExisting(true),
	)
	result, err := converter.Convert(args[0])
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	fmt.Printf("Converted: %d, skipped: %d, failed: %d\n",
		result.Converted, result.Skipped, result.Failed)
	return nil
}
