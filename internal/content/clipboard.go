package content

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"
)

// ReadClipboard returns the system clipboard's text content.
func ReadClipboard() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("clipboard is empty")
	}
	log.Debug().Int("chars", len(text)).Msg("read clipboard")
	return text, nil
}
