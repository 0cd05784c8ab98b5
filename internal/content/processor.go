// Package content converts raw content (clipboard text, web pages) into
// markdown documents through an LLM, driving the model with a
// continuation loop until it signals completion.
package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/llmbase/llmbase/pkg/types"
	"github.com/rs/zerolog/log"
)

// DefaultMaxContinuations bounds how many times the model is asked to
// continue an unfinished conversion.
const DefaultMaxContinuations = 10

// Metadata describes the content's origin and is threaded into prompts
// and default filenames.
type Metadata map[string]string

// Processor runs the LLM conversion conversation.
type Processor struct {
	Client           types.ChatClient
	Options          types.ChatOptions
	MaxContinuations int
}

// completionMarkers are phrases near the end of a reply that indicate the
// model considers the conversion done.
var completionMarkers = []string{
	"that concludes", "in conclusion", "this completes",
	"end of document", "# conclusion", "## conclusion",
	"the end", "document end", "conversion complete", "is complete",
	"has been completed", "is now complete", "complete.", "completed.",
	"fully converted", "fully formatted",
	"finished", "all content has been", "all sections",
	"all provided content", "complete conversion",
}

const explicitMarker = "CONVERSION COMPLETE"

const continuationPrompt = `Please continue where you left off.

IMPORTANT: If you've completed the conversion, say "CONVERSION COMPLETE" explicitly.

Remember to maintain the same formatting style and structure you established earlier.`

// Convert sends the content through the conversion conversation and
// returns the assembled markdown plus the model's filename suggestion
// (empty unless needFilename was set).
func (p *Processor) Convert(ctx context.Context, content string, meta Metadata, needFilename bool) (string, string, error) {
	if p.Client == nil {
		return "", "", fmt.Errorf("no chat client configured")
	}
	maxContinuations := p.MaxContinuations
	if maxContinuations <= 0 {
		maxContinuations = DefaultMaxContinuations
	}

	var messages []types.Message
	var suggested string

	if needFilename {
		messages = append(messages, types.Message{Role: types.RoleUser, Content: filenamePrompt(content, meta)})
		log.Info().Msg("determining appropriate filename")
		reply, err := p.Client.Chat(ctx, messages, p.Options)
		if err != nil {
			return "", "", fmt.Errorf("filename request: %w", err)
		}
		suggested = extractFilename(reply)
		if suggested != "" {
			log.Info().Str("filename", suggested).Msg("suggested filename")
		}
		messages = append(messages, types.Message{Role: types.RoleAssistant, Content: reply})
	}

	messages = append(messages, types.Message{Role: types.RoleUser, Content: conversionPrompt(content, meta)})
	log.Info().Int("chars", len(content)).Msg("starting markdown conversion")
	reply, err := p.Client.Chat(ctx, messages, p.Options)
	if err != nil {
		return "", "", fmt.Errorf("conversion request: %w", err)
	}
	messages = append(messages, types.Message{Role: types.RoleAssistant, Content: reply})
	result := reply

	for continuation := 1; continuation <= maxContinuations; continuation++ {
		if looksComplete(reply) {
			log.Info().Msg("conversion finished")
			break
		}

		log.Info().Int("continuation", continuation).Msg("requesting continuation")
		messages = append(messages, types.Message{Role: types.RoleUser, Content: continuationPrompt})
		reply, err = p.Client.Chat(ctx, messages, p.Options)
		if err != nil {
			return "", "", fmt.Errorf("continuation %d: %w", continuation, err)
		}
		result += "\n\n" + reply
		messages = append(messages, types.Message{Role: types.RoleAssistant, Content: reply})

		// Keep the opening context plus the most recent exchanges so the
		// conversation does not grow without bound.
		if len(messages) > 6 {
			trimmed := []types.Message{messages[0]}
			messages = append(trimmed, messages[len(messages)-5:]...)
		}

		if continuation == maxContinuations {
			log.Info().Msg("reached maximum continuations, finalizing document")
		}
	}

	return result, suggested, nil
}

// looksComplete reports whether a reply carries a completion signal: the
// explicit marker anywhere, a marker phrase within the last five lines,
// or "complete" next to a conversion-related keyword.
func looksComplete(reply string) bool {
	if strings.Contains(reply, explicitMarker) {
		return true
	}

	lines := strings.Split(strings.TrimSpace(reply), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	tail := strings.ToLower(strings.Join(lines, " "))

	for _, marker := range completionMarkers {
		if strings.Contains(tail, marker) {
			return true
		}
	}

	if strings.Contains(tail, "complete") {
		for _, word := range []string{"conversion", "all", "is", "now", "fully"} {
			if strings.Contains(tail, word) {
				return true
			}
		}
	}
	return false
}

// extractFilename scans the first lines of a reply for a FILENAME: tag.
func extractFilename(reply string) string {
	if !strings.Contains(firstN(reply, 200), "FILENAME:") {
		return ""
	}
	lines := strings.Split(reply, "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	for _, line := range lines {
		if idx := strings.Index(line, "FILENAME:"); idx >= 0 {
			return strings.TrimSpace(line[idx+len("FILENAME:"):])
		}
	}
	return ""
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func filenamePrompt(content string, meta Metadata) string {
	var b strings.Builder
	b.WriteString(`You are tasked with converting content into well-formatted markdown.

First, analyze this content and suggest an appropriate descriptive filename.
Respond with a line starting with "FILENAME:" followed by your suggestion (e.g., "FILENAME: project-overview.md").

After suggesting the filename, explain in 1-2 sentences why you chose it, but DO NOT start any conversion yet.
`)
	writeMetadata(&b, meta, false)
	b.WriteString("\nHere's the content:\n")
	b.WriteString(firstN(content, 2000))
	return b.String()
}

func conversionPrompt(content string, meta Metadata) string {
	var b strings.Builder
	b.WriteString(`Now I need you to convert the following content into well-formatted markdown.

Guidelines:
- Analyze the content carefully to determine its structure and purpose
- Use appropriate headings, lists, tables, and formatting
- Maintain the original information and hierarchy
- Add appropriate markup like bold, italic, code blocks, etc. where it makes sense
- Create a clean, professional document that preserves all important content
`)
	if meta["source_type"] == "webpage" {
		b.WriteString("- If this is a blog post or article, include the title as an H1 heading\n")
	}
	b.WriteString(`
I will ask you to continue generating if your response is incomplete.

IMPORTANT: When you finish the conversion entirely, please explicitly state "CONVERSION COMPLETE"
at the end of your response so I know you've processed everything.
`)
	writeMetadata(&b, meta, true)
	b.WriteString("\nHere is the content to convert:\n\n")
	b.WriteString(content)
	return b.String()
}

func writeMetadata(b *strings.Builder, meta Metadata, skipSourceType bool) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if skipSourceType && k == "source_type" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "%s: %s\n", k, meta[k])
	}
}

// SaveMarkdown writes the converted content to a file. Filename
// precedence: explicit output name, the model's suggestion, a
// title-derived name, then a timestamped default. A missing extension
// gets ".md".
func SaveMarkdown(result, outputFile, folder, suggested, defaultPrefix string, meta Metadata) (string, error) {
	if outputFile == "" {
		outputFile = suggested
	}
	if outputFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		if title := meta["title"]; title != "" {
			outputFile = fmt.Sprintf("%s_%s.md", safeName(title), timestamp)
		} else {
			outputFile = fmt.Sprintf("%s_%s.md", defaultPrefix, timestamp)
		}
	}
	if !strings.Contains(filepath.Base(outputFile), ".") {
		outputFile += ".md"
	}

	path := outputFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(folder, outputFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(result), 0o644); err != nil {
		return "", fmt.Errorf("writing output file: %w", err)
	}
	log.Info().Str("path", path).Int("chars", len(result)).Msg("saved markdown")
	return path, nil
}

// safeName reduces a title to a filename-safe prefix.
func safeName(title string) string {
	var b strings.Builder
	for _, r := range title {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
		if b.Len() >= 30 {
			break
		}
	}
	return b.String()
}

// ResolveFolder expands and absolutizes the target folder, creating it
// when necessary. An empty folder means the current working directory.
func ResolveFolder(folder string) (string, error) {
	if folder == "" {
		return os.Getwd()
	}
	if folder == "~" || strings.HasPrefix(folder, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand ~: %w", err)
		}
		folder = filepath.Join(home, strings.TrimPrefix(folder[1:], "/"))
	}
	folder = os.ExpandEnv(folder)
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("creating folder: %w", err)
	}
	return abs, nil
}
