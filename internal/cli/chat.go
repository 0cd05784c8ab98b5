package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/llmbase/llmbase/pkg/types"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session with the configured LLM. The full
conversation history is sent with every turn. Use 'exit' or 'quit' to
end the session.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("profile", "", "profile to use (default: the default profile)")
	chatCmd.Flags().Int("max-tokens", 0, "override max tokens for this session")
	chatCmd.Flags().Float64("temperature", 0, "override temperature for this session")
}

func runChat(cmd *cobra.Command, args []string) error {
	client, opts, err := clientForCommand(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Println("Type your messages (or 'exit'/'quit' to end):")
	fmt.Println("─────────────────────────────────────────────")

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()
	var history []types.Message

	for {
		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" || input == "bye" {
			fmt.Println("\nGoodbye!")
			break
		}

		history = append(history, types.Message{Role: types.RoleUser, Content: input})

		tokens, err := client.ChatStream(ctx, history, opts)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			history = history[:len(history)-1]
			continue
		}

		var response strings.Builder
		failed := false
		for token := range tokens {
			if token.Err != nil {
				fmt.Printf("\nError: %v\n", token.Err)
				failed = true
				break
			}
			fmt.Print(token.Text)
			response.WriteString(token.Text)
			if token.Done {
				break
			}
		}
		fmt.Println()

		if failed {
			history = history[:len(history)-1]
			continue
		}
		history = append(history, types.Message{Role: types.RoleAssistant, Content: response.String()})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}
