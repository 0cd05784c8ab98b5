package cli

import (
	"context"
	"fmt"

	"github.com/llmbase/llmbase/internal/config"
	"github.com/llmbase/llmbase/internal/content"
	"github.com/spf13/cobra"
)

var getClipboardCmd = &cobra.Command{
	Use:   "get-clipboard",
	Short: "Convert the clipboard content to a markdown file",
	Long: `Read the system clipboard, convert its content to well-formatted
markdown through the configured LLM, and save the result. When no
output name is given the model suggests one.`,
	RunE: runGetClipboard,
}

func init() {
	rootCmd.AddCommand(getClipboardCmd)
	addConversionFlags(getClipboardCmd)
}

// addConversionFlags registers the flags shared by the conversion
// commands.
func addConversionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output filename")
	cmd.Flags().String("folder", "", "output folder (default: current directory)")
	cmd.Flags().String("profile", "", "profile to use (default: the default profile)")
	cmd.Flags().Int("max-tokens", 0, "override max tokens per request")
	cmd.Flags().Float64("temperature", 0, "override temperature")
	cmd.Flags().Int("max-continuations", content.DefaultMaxContinuations, "maximum continuation requests")
}

// runConversion drives the shared convert-and-save flow for a piece of
// content.
func runConversion(cmd *cobra.Command, text string, meta content.Metadata, defaultPrefix string) error {
	r, err := config.NewResolver(cmd)
	if err != nil {
		return err
	}
	client, opts, err := clientForCommand(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	folder, err := content.ResolveFolder(r.String("folder"))
	if err != nil {
		return err
	}
	outputFile := r.String("output")

	processor := &content.Processor{
		Client:           client,
		Options:          opts,
		MaxContinuations: r.Int("max-continuations"),
	}
	result, suggested, err := processor.Convert(context.Background(), text, meta, outputFile == "")
	if err != nil {
		return err
	}

	path, err := content.SaveMarkdown(result, outputFile, folder, suggested, defaultPrefix, meta)
	if err != nil {
		return err
	}
	fmt.Printf("Saved markdown to %s\n", path)
	return nil
}

func runGetClipboard(cmd *cobra.Command, args []string) error {
	text, err := content.ReadClipboard()
	if err != nil {
		return err
	}
	meta := content.Metadata{"source_type": "clipboard"}
	return runConversion(cmd, text, meta, "clipboard")
}
