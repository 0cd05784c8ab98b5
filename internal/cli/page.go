package cli

import (
	"context"
	"time"

	"github.com/llmbase/llmbase/internal/content"
	"github.com/spf13/cobra"
)

var getPageCmd = &cobra.Command{
	Use:   "get-page",
	Short: "Convert a web page to a markdown file",
	Long: `Fetch a web page, extract its readable text, convert it to markdown
through the configured LLM, and save the result.

Examples:
  llmbase get-page --url https://example.com/post
  llmbase get-page --url https://example.com/post -o post.md --folder ~/notes`,
	RunE: runGetPage,
}

func init() {
	rootCmd.AddCommand(getPageCmd)
	getPageCmd.Flags().String("url", "", "page URL to fetch (required)")
	getPageCmd.MarkFlagRequired("url")
	addConversionFlags(getPageCmd)
}

func runGetPage(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")

	page, err := content.FetchPage(context.Background(), url, 30*time.Second)
	if err != nil {
		return err
	}

	meta := content.Metadata{
		"source_type": "webpage",
		"url":         page.URL,
	}
	if page.Title != "" {
		meta["title"] = page.Title
	}
	return runConversion(cmd, page.Text, meta, "webpage")
}
