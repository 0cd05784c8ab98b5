package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/llmbase/llmbase/internal/config"
	"github.com/llmbase/llmbase/internal/llm"
	"github.com/llmbase/llmbase/pkg/types"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt]",
	Short: "Send a one-shot prompt",
	Long: `Send a single prompt to the configured LLM and print the response.
The response streams by default; use --no-stream for a single block.

Examples:
  llmbase ask "Summarize the RFC at a high level"
  llmbase ask --profile work-gpt4 "Draft a release note"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().String("profile", "", "profile to use (default: the default profile)")
	askCmd.Flags().Bool("no-stream", false, "wait for the full response instead of streaming")
	askCmd.Flags().Int("max-tokens", 0, "override max tokens for this prompt")
	askCmd.Flags().Float64("temperature", 0, "override temperature for this prompt")
}

// clientForCommand resolves the profile and builds a chat client plus
// its per-request options. Token and temperature overrides only apply
// when some layer actually set them, so an explicit zero survives.
func clientForCommand(cmd *cobra.Command) (types.ChatClient, types.ChatOptions, error) {
	r, err := config.NewResolver(cmd)
	if err != nil {
		return nil, types.ChatOptions{}, err
	}
	m, err := manager()
	if err != nil {
		return nil, types.ChatOptions{}, err
	}
	var maxTokens *int
	if v, ok := r.IntOk("max-tokens"); ok {
		maxTokens = &v
	}
	var temperature *float64
	if v, ok := r.FloatOk("temperature"); ok {
		temperature = &v
	}
	p, err := m.Resolve(r.Profile("llm"), maxTokens, temperature)
	if err != nil {
		return nil, types.ChatOptions{}, err
	}
	client, err := llm.New(p)
	if err != nil {
		return nil, types.ChatOptions{}, err
	}
	return client, llm.Options(p), nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")

	r, err := config.NewResolver(cmd)
	if err != nil {
		return err
	}
	client, opts, err := clientForCommand(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	messages := []types.Message{{Role: types.RoleUser, Content: prompt}}

	if r.Bool("no-stream") {
		response, err := client.Chat(ctx, messages, opts)
		if err != nil {
			return fmt.Errorf("chat request failed: %w", err)
		}
		fmt.Println(response)
		return nil
	}

	tokens, err := client.ChatStream(ctx, messages, opts)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	return printStream(tokens)
}

// printStream writes tokens as they arrive, ending with a newline.
func printStream(tokens <-chan types.StreamToken) error {
	for token := range tokens {
		if token.Err != nil {
			return fmt.Errorf("stream error: %w", token.Err)
		}
		fmt.Print(token.Text)
		if token.Done {
			break
		}
	}
	fmt.Println()
	return nil
}
