package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/llmbase/llmbase/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient replays canned responses and records the requests.
type scriptedClient struct {
	responses []string
	calls     [][]types.Message
}

func (c *scriptedClient) Chat(ctx context.Context, messages []types.Message, opts types.ChatOptions) (string, error) {
	copied := make([]types.Message, len(messages))
	copy(copied, messages)
	c.calls = append(c.calls, copied)

	if len(c.responses) == 0 {
		return "CONVERSION COMPLETE", nil
	}
	response := c.responses[0]
	c.responses = c.responses[1:]
	return response, nil
}

func (c *scriptedClient) ChatStream(ctx context.Context, messages []types.Message, opts types.ChatOptions) (<-chan types.StreamToken, error) {
	text, err := c.Chat(ctx, messages, opts)
	if err != nil {
		return nil, err
	}
	tokens := make(chan types.StreamToken, 2)
	tokens <- types.StreamToken{Text: text}
	tokens <- types.StreamToken{Done: true}
	close(tokens)
	return tokens, nil
}

func (c *scriptedClient) Close() error { return nil }

func TestLooksComplete(t *testing.T) {
	cases := []struct {
		name     string
		reply    string
		complete bool
	}{
		{"explicit marker", "# Doc\n\nbody\n\nCONVERSION COMPLETE", true},
		{"marker phrase in tail", "body text\n\nThat concludes the document.", true},
		{"complete near keyword", "## Section\n\nThe conversion is complete", true},
		{"marker buried early", "In conclusion is at the top\n" + strings.Repeat("more body\n", 10), false},
		{"plain unfinished text", "## Section 3\n\nmore content coming", false},
		{"complete without keyword tail", "nothing to see\ncompletely unrelated\nword soup here", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.complete, looksComplete(tc.reply))
		})
	}
}

func TestExtractFilename(t *testing.T) {
	assert.Equal(t, "notes.md", extractFilename("FILENAME: notes.md\nBecause it fits."))
	assert.Equal(t, "a-b.md", extractFilename("Sure!\nFILENAME: a-b.md\nreason"))
	assert.Equal(t, "", extractFilename("No suggestion here."))
	// A tag past the opening lines is ignored.
	assert.Equal(t, "", extractFilename(strings.Repeat("x", 300)+"\nFILENAME: late.md"))
}

func TestProcessor_SingleShot(t *testing.T) {
	client := &scriptedClient{responses: []string{"# Doc\n\nbody\n\nCONVERSION COMPLETE"}}
	p := &Processor{Client: client}

	result, suggested, err := p.Convert(context.Background(), "raw text", nil, false)
	require.NoError(t, err)

	assert.Contains(t, result, "# Doc")
	assert.Empty(t, suggested)
	assert.Len(t, client.calls, 1)
}

func TestProcessor_FilenamePass(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"FILENAME: release-notes.md\nIt describes a release.",
		"# Release Notes\n\nCONVERSION COMPLETE",
	}}
	p := &Processor{Client: client}

	result, suggested, err := p.Convert(context.Background(), "raw text", nil, true)
	require.NoError(t, err)

	assert.Equal(t, "release-notes.md", suggested)
	assert.Contains(t, result, "# Release Notes")
	// The filename exchange stays in the conversation history.
	require.Len(t, client.calls, 2)
	assert.Len(t, client.calls[1], 3)
}

func TestProcessor_ContinuesUntilComplete(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"# Part 1\n\nstill going",
		"## Part 2\n\nstill going",
		"## Part 3\n\nCONVERSION COMPLETE",
	}}
	p := &Processor{Client: client}

	result, _, err := p.Convert(context.Background(), "raw text", nil, false)
	require.NoError(t, err)

	assert.Contains(t, result, "# Part 1")
	assert.Contains(t, result, "## Part 2")
	assert.Contains(t, result, "## Part 3")
	assert.Len(t, client.calls, 3)
}

func TestProcessor_StopsAtMaxContinuations(t *testing.T) {
	client := &scriptedClient{}
	// Every canned response runs out, so Chat would answer with the
	// completion marker; feed unfinished replies instead.
	for i := 0; i < 20; i++ {
		client.responses = append(client.responses, "still going, nothing final here")
	}
	p := &Processor{Client: client, MaxContinuations: 3}

	_, _, err := p.Convert(context.Background(), "raw text", nil, false)
	require.NoError(t, err)

	// Initial request plus three continuations.
	assert.Len(t, client.calls, 4)
}

func TestProcessor_TrimsHistory(t *testing.T) {
	client := &scriptedClient{}
	for i := 0; i < 10; i++ {
		client.responses = append(client.responses, "still going, nothing final here")
	}
	p := &Processor{Client: client, MaxContinuations: 5}

	_, _, err := p.Convert(context.Background(), "raw text", nil, false)
	require.NoError(t, err)

	for _, call := range client.calls {
		assert.LessOrEqual(t, len(call), 7)
	}
	// Later calls always start from the original conversion request.
	last := client.calls[len(client.calls)-1]
	assert.Contains(t, last[0].Content, "convert the following content")
}

func TestSaveMarkdown_ExplicitName(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveMarkdown("# Doc", "out", dir, "ignored.md", "clipboard", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "out.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Doc", string(data))
}

func TestSaveMarkdown_SuggestedName(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveMarkdown("# Doc", "", dir, "suggested.md", "clipboard", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "suggested.md"), path)
}

func TestSaveMarkdown_TitleFallback(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveMarkdown("# Doc", "", dir, "", "webpage", Metadata{"title": "My Post!"})
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "My_Post_"), base)
	assert.True(t, strings.HasSuffix(base, ".md"), base)
}

func TestSaveMarkdown_PrefixFallback(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveMarkdown("# Doc", "", dir, "", "clipboard", nil)
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "clipboard_"), base)
	assert.True(t, strings.HasSuffix(base, ".md"), base)
}

func TestResolveFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	resolved, err := ResolveFolder(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, resolved)

	info, err := os.Stat(resolved)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveFolder_EmptyMeansCwd(t *testing.T) {
	resolved, err := ResolveFolder("")
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, cwd, resolved)
}
